package vault

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// BlobStore defines the interface for blob storage backends. Objects are
// addressed by (bucket, object key); buckets are created on demand.
type BlobStore interface {
	// EnsureBucket creates the bucket if it does not exist. Idempotent.
	EnsureBucket(ctx context.Context, bucket string) error

	// Upload writes the reader's bytes under (bucket, key). The reader may
	// be of unknown length; backends must support streaming input.
	Upload(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download opens a lazy, forward-only byte stream for (bucket, key).
	// The caller must drain or close the returned stream; either path
	// releases the underlying connection. Returns ErrObjectNotFound when
	// the blob does not exist.
	Download(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// Delete removes the blob at (bucket, key).
	Delete(ctx context.Context, bucket, key string) error

	// GetObjectMeta retrieves size and content type for (bucket, key).
	// Returns ErrObjectNotFound when the blob does not exist.
	GetObjectMeta(ctx context.Context, bucket, key string) (*ObjectMeta, error)
}

// UploadParams contains parameters for uploading a blob.
type UploadParams struct {
	Bucket    string
	ObjectKey string
	MimeType  string
}

// ObjectMeta contains metadata about a stored blob.
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}

// Repository defines the interface for user and content persistence.
type Repository interface {
	// User operations
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByPhone(ctx context.Context, phoneNumber string) (*User, error)
	// UpsertVerifiedUser creates the user for phoneNumber if absent, or
	// marks an existing one verified and active. Idempotent.
	UpsertVerifiedUser(ctx context.Context, phoneNumber string) (*User, error)

	// Content operations
	CreateContent(ctx context.Context, content *Content) error
	GetContent(ctx context.Context, id uuid.UUID) (*Content, error)
	ListContent(ctx context.Context, params ListContentParams) ([]*Content, int64, error)
	DeleteContent(ctx context.Context, id uuid.UUID) error
	ContentStats(ctx context.Context, ownerID int64) (*StatsSummary, error)
}

// ListContentParams filters and pages a single owner's content. Search
// matches case-insensitively against title, text body and original filename.
type ListContentParams struct {
	OwnerID int64
	Kind    *ContentKind
	Search  string
	Limit   int
	Offset  int
}
