package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/localvault/localvault/pkg/vault"
)

// Backend is a filesystem implementation of the vault.BlobStore interface.
// Buckets map to directories under the base directory.
type Backend struct {
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing files
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{baseDir: config.BaseDir}, nil
}

// EnsureBucket creates the bucket directory if absent. Idempotent.
func (b *Backend) EnsureBucket(ctx context.Context, bucket string) error {
	if err := os.MkdirAll(filepath.Join(b.baseDir, bucket), 0755); err != nil {
		return fmt.Errorf("failed to create bucket directory: %w", err)
	}
	return nil
}

// Upload writes the reader's bytes to a file under the bucket directory
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params vault.UploadParams) error {
	filePath := filepath.Join(b.baseDir, params.Bucket, params.ObjectKey)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Download opens the stored file for reading. The caller closes it.
func (b *Backend) Download(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(b.baseDir, bucket, key))
	if os.IsNotExist(err) {
		return nil, vault.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes the stored file
func (b *Backend) Delete(ctx context.Context, bucket, key string) error {
	err := os.Remove(filepath.Join(b.baseDir, bucket, key))
	if os.IsNotExist(err) {
		return vault.ErrObjectNotFound
	}
	return err
}

// GetObjectMeta retrieves metadata for a stored file. The content type is
// sniffed from the first bytes since the filesystem keeps no MIME metadata.
func (b *Backend) GetObjectMeta(ctx context.Context, bucket, key string) (*vault.ObjectMeta, error) {
	filePath := filepath.Join(b.baseDir, bucket, key)

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, vault.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	contentType := "application/octet-stream"
	if file, err := os.Open(filePath); err == nil {
		defer file.Close()
		buffer := make([]byte, 512)
		if n, err := file.Read(buffer); err == nil {
			contentType = http.DetectContentType(buffer[:n])
		}
	}

	return &vault.ObjectMeta{
		Key:         key,
		Size:        info.Size(),
		ContentType: contentType,
		UpdatedAt:   info.ModTime(),
	}, nil
}
