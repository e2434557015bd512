package vault

import (
	"time"

	"github.com/google/uuid"
)

// ContentKind is the discriminant of the content union.
type ContentKind string

// Content kind constants (typed).
const (
	KindFile ContentKind = "file"
	KindText ContentKind = "text"
)

// IsValid reports whether k is a known content kind.
func (k ContentKind) IsValid() bool {
	return k == KindFile || k == KindText
}

// User is an account identified by a verified phone number. Users are
// created on first successful verification and never hard-deleted here.
type User struct {
	ID          int64     `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	Verified    bool      `json:"is_phone_verified"`
	Active      bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Content is a user-owned unit of stored data: either an uploaded file or an
// inline text blob. Exactly one of File/Text is set, matching Kind.
type Content struct {
	ID        uuid.UUID   `json:"id"`
	OwnerID   int64       `json:"owner_id"`
	Kind      ContentKind `json:"kind"`
	Title     string      `json:"title,omitempty"`
	Tags      []string    `json:"tags,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	File *FilePayload `json:"file,omitempty"`
	Text *TextPayload `json:"text,omitempty"`
}

// FilePayload carries the blob-store coordinates and file metadata of a
// KindFile content. The blob lives at (Bucket, ObjectKey).
type FilePayload struct {
	Bucket       string `json:"bucket"`
	ObjectKey    string `json:"object_key"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"file_size"`
	MimeType     string `json:"mime_type"`
}

// TextPayload carries the inline body of a KindText content.
type TextPayload struct {
	Body string `json:"body"`
}

// StatsSummary aggregates a single user's content.
type StatsSummary struct {
	TotalCount     int64 `json:"total_content"`
	TextCount      int64 `json:"text_content"`
	FileCount      int64 `json:"file_content"`
	TotalFileBytes int64 `json:"total_file_bytes"`
}
