package vault

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrContentNotFound indicates a content was not found or is not owned
	// by the caller. The two cases are deliberately indistinguishable.
	ErrContentNotFound = errors.New("content not found")

	// ErrUserNotFound indicates a user was not found
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidInput indicates a malformed or missing required field
	ErrInvalidInput = errors.New("invalid input")

	// ErrFileTooLarge indicates an uploaded file exceeds the size ceiling
	ErrFileTooLarge = errors.New("file too large")

	// ErrTextTooLarge indicates an inline text body exceeds the size ceiling
	ErrTextTooLarge = errors.New("text content too large")

	// ErrUnsupportedMediaType indicates a MIME type outside the allow-list
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrObjectNotFound indicates a blob was not found in the blob store
	ErrObjectNotFound = errors.New("object not found")
)

// ContentError represents an error related to a content operation.
type ContentError struct {
	ContentID uuid.UUID
	Op        string
	Err       error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content operation %s failed for content %s: %v", e.Op, e.ContentID, e.Err)
}

func (e *ContentError) Unwrap() error {
	return e.Err
}

// StorageError represents a failed blob store operation. The wrapped error
// is logged server-side and never shown to clients.
type StorageError struct {
	Bucket string
	Key    string
	Op     string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s in bucket %s: %v", e.Op, e.Key, e.Bucket, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
