package vault

import (
	"context"

	"github.com/google/uuid"
)

// Service is the content lifecycle orchestrator. Every operation is scoped
// to the resolved caller; content owned by another user is reported as
// ErrContentNotFound, never as a distinct error.
type Service interface {
	// UploadFile stores the file bytes in the caller's bucket and then
	// persists a KindFile content record. The blob write is strictly
	// ordered before the metadata write.
	UploadFile(ctx context.Context, user *User, req UploadFileRequest) (*Content, error)

	// UploadText persists a KindText content record. No blob store
	// interaction.
	UploadText(ctx context.Context, user *User, req UploadTextRequest) (*Content, error)

	// ListContent returns a page of the caller's content, most recent
	// first, plus the filtered total count.
	ListContent(ctx context.Context, user *User, req ListContentRequest) (*ContentList, error)

	// GetContent returns a single content record owned by the caller.
	GetContent(ctx context.Context, user *User, id uuid.UUID) (*Content, error)

	// OpenDownload opens a streaming read of a KindFile content's blob.
	OpenDownload(ctx context.Context, user *User, id uuid.UUID) (*Download, error)

	// DeleteContent removes the content record and, for KindFile,
	// best-effort deletes the blob first. A blob-delete failure is logged
	// and does not block metadata deletion.
	DeleteContent(ctx context.Context, user *User, id uuid.UUID) error

	// Stats aggregates the caller's content counts and file bytes.
	Stats(ctx context.Context, user *User) (*StatsSummary, error)
}
