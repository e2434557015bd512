package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/localvault/localvault/pkg/vault"
)

// Backend is an in-memory implementation of the vault.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	buckets map[string]map[string]object
}

type object struct {
	data      []byte
	mimeType  string
	updatedAt time.Time
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		buckets: make(map[string]map[string]object),
	}
}

// EnsureBucket creates the bucket if absent. Idempotent.
func (b *Backend) EnsureBucket(ctx context.Context, bucket string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.buckets[bucket]; !exists {
		b.buckets[bucket] = make(map[string]object)
	}
	return nil
}

// Upload stores the reader's bytes under (bucket, key)
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params vault.UploadParams) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	objects, exists := b.buckets[params.Bucket]
	if !exists {
		return errors.New("bucket does not exist")
	}
	mimeType := params.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	objects[params.ObjectKey] = object{data: data, mimeType: mimeType, updatedAt: time.Now().UTC()}
	return nil
}

// Download returns a reader over the stored bytes
func (b *Backend) Download(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.buckets[bucket][key]
	if !exists {
		return nil, vault.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// Delete removes the blob at (bucket, key)
func (b *Backend) Delete(ctx context.Context, bucket, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.buckets[bucket][key]; !exists {
		return vault.ErrObjectNotFound
	}
	delete(b.buckets[bucket], key)
	return nil
}

// GetObjectMeta retrieves metadata for a stored blob
func (b *Backend) GetObjectMeta(ctx context.Context, bucket, key string) (*vault.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.buckets[bucket][key]
	if !exists {
		return nil, vault.ErrObjectNotFound
	}
	return &vault.ObjectMeta{
		Key:         key,
		Size:        int64(len(obj.data)),
		ContentType: obj.mimeType,
		UpdatedAt:   obj.updatedAt,
	}, nil
}
