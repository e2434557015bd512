package vault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository Repository
	blobStore  BlobStore
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the blob storage backend
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

func (s *service) UploadFile(ctx context.Context, user *User, req UploadFileRequest) (*Content, error) {
	if req.Reader == nil || req.FileName == "" {
		return nil, ErrInvalidInput
	}

	// The ceiling is enforced against bytes actually read, not against a
	// client-declared length. One extra byte distinguishes "exactly at the
	// limit" from "over it" without reading an unbounded stream.
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(req.Reader, MaxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if n > MaxFileBytes {
		return nil, ErrFileTooLarge
	}

	if !IsAllowedMimeType(req.MimeType) {
		return nil, ErrUnsupportedMediaType
	}

	bucket := BucketForUser(user.PhoneNumber)
	if err := s.blobStore.EnsureBucket(ctx, bucket); err != nil {
		return nil, &StorageError{Bucket: bucket, Op: "ensure_bucket", Err: err}
	}

	id := uuid.New()
	key := ObjectKeyFor(id, req.FileName)

	// Blob write strictly precedes the metadata write. A storage failure
	// here leaves no metadata behind.
	params := UploadParams{Bucket: bucket, ObjectKey: key, MimeType: req.MimeType}
	if err := s.blobStore.Upload(ctx, bytes.NewReader(buf.Bytes()), params); err != nil {
		return nil, &StorageError{Bucket: bucket, Key: key, Op: "upload", Err: err}
	}

	title := req.Title
	if title == "" {
		title = req.FileName
	}

	now := time.Now().UTC()
	content := &Content{
		ID:        id,
		OwnerID:   user.ID,
		Kind:      KindFile,
		Title:     SanitizeTitle(title, "Untitled"),
		Tags:      req.Tags,
		CreatedAt: now,
		UpdatedAt: now,
		File: &FilePayload{
			Bucket:       bucket,
			ObjectKey:    key,
			OriginalName: req.FileName,
			Size:         n,
			MimeType:     req.MimeType,
		},
	}

	if err := s.repository.CreateContent(ctx, content); err != nil {
		// The blob is now orphaned. Surface it in logs for operator
		// reconciliation; no automatic sweep exists.
		s.logger.Error("metadata commit failed after blob write, blob orphaned",
			"content_id", id, "bucket", bucket, "object_key", key, "err", err)
		return nil, &ContentError{ContentID: id, Op: "create_file", Err: err}
	}

	s.logger.Info("file content created",
		"content_id", id, "owner_id", user.ID, "bucket", bucket, "size", n, "mime_type", req.MimeType)
	return content, nil
}

func (s *service) UploadText(ctx context.Context, user *User, req UploadTextRequest) (*Content, error) {
	if len(req.Body) > MaxTextBytes {
		return nil, ErrTextTooLarge
	}

	now := time.Now().UTC()
	content := &Content{
		ID:        uuid.New(),
		OwnerID:   user.ID,
		Kind:      KindText,
		Title:     SanitizeTitle(req.Title, "Text Content"),
		Tags:      req.Tags,
		CreatedAt: now,
		UpdatedAt: now,
		Text:      &TextPayload{Body: req.Body},
	}

	if err := s.repository.CreateContent(ctx, content); err != nil {
		return nil, &ContentError{ContentID: content.ID, Op: "create_text", Err: err}
	}

	s.logger.Info("text content created", "content_id", content.ID, "owner_id", user.ID)
	return content, nil
}

func (s *service) ListContent(ctx context.Context, user *User, req ListContentRequest) (*ContentList, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	items, total, err := s.repository.ListContent(ctx, ListContentParams{
		OwnerID: user.ID,
		Kind:    req.Kind,
		Search:  req.Search,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listing content: %w", err)
	}

	return &ContentList{Items: items, TotalCount: total}, nil
}

func (s *service) GetContent(ctx context.Context, user *User, id uuid.UUID) (*Content, error) {
	return s.getOwned(ctx, user, id)
}

func (s *service) OpenDownload(ctx context.Context, user *User, id uuid.UUID) (*Download, error) {
	content, err := s.getOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if content.Kind != KindFile {
		// Text content has no blob; indistinguishable from absent.
		return nil, ErrContentNotFound
	}

	body, err := s.blobStore.Download(ctx, content.File.Bucket, content.File.ObjectKey)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			// Lost a race with a concurrent delete, or the blob drifted.
			return nil, ErrContentNotFound
		}
		return nil, &StorageError{Bucket: content.File.Bucket, Key: content.File.ObjectKey, Op: "download", Err: err}
	}

	return &Download{
		Body:     body,
		FileName: content.File.OriginalName,
		MimeType: content.File.MimeType,
		Size:     content.File.Size,
	}, nil
}

func (s *service) DeleteContent(ctx context.Context, user *User, id uuid.UUID) error {
	content, err := s.getOwned(ctx, user, id)
	if err != nil {
		return err
	}

	// Blob delete precedes metadata delete, but best-effort only: the
	// user-visible contract is "this content is gone", so a storage-side
	// failure leaks a blob rather than blocking the delete.
	if content.Kind == KindFile {
		if err := s.blobStore.Delete(ctx, content.File.Bucket, content.File.ObjectKey); err != nil {
			s.logger.Warn("blob delete failed, leaking blob",
				"content_id", id, "bucket", content.File.Bucket, "object_key", content.File.ObjectKey, "err", err)
		}
	}

	if err := s.repository.DeleteContent(ctx, id); err != nil {
		return &ContentError{ContentID: id, Op: "delete", Err: err}
	}

	s.logger.Info("content deleted", "content_id", id, "owner_id", user.ID)
	return nil
}

func (s *service) Stats(ctx context.Context, user *User) (*StatsSummary, error) {
	return s.repository.ContentStats(ctx, user.ID)
}

// getOwned loads a content record and enforces ownership. Missing and
// not-owned collapse to the same error so existence never leaks.
func (s *service) getOwned(ctx context.Context, user *User, id uuid.UUID) (*Content, error) {
	content, err := s.repository.GetContent(ctx, id)
	if err != nil {
		if errors.Is(err, ErrContentNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("loading content: %w", err)
	}
	if content.OwnerID != user.ID {
		return nil, ErrContentNotFound
	}
	return content, nil
}
