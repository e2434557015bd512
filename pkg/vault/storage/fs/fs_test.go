package fs_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localvault/localvault/pkg/vault"
	"github.com/localvault/localvault/pkg/vault/storage/fs"
)

func newBackend(t *testing.T) *fs.Backend {
	t.Helper()
	backend, err := fs.New(fs.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	return backend
}

func TestNewRequiresBaseDir(t *testing.T) {
	_, err := fs.New(fs.Config{})
	assert.Error(t, err)
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	backend := newBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.EnsureBucket(ctx, "user-919876543210"))
	require.NoError(t, backend.Upload(ctx, strings.NewReader("hello blob"), vault.UploadParams{
		Bucket:    "user-919876543210",
		ObjectKey: "abc.txt",
		MimeType:  "text/plain",
	}))

	body, err := backend.Download(ctx, "user-919876543210", "abc.txt")
	require.NoError(t, err)
	defer body.Close()

	got, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello blob", string(got))
}

func TestEnsureBucketIdempotent(t *testing.T) {
	backend := newBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.EnsureBucket(ctx, "bucket"))
	require.NoError(t, backend.EnsureBucket(ctx, "bucket"))
}

func TestDownloadMissingObject(t *testing.T) {
	backend := newBackend(t)

	_, err := backend.Download(context.Background(), "bucket", "nope")
	assert.ErrorIs(t, err, vault.ErrObjectNotFound)
}

func TestDelete(t *testing.T) {
	backend := newBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.EnsureBucket(ctx, "bucket"))
	require.NoError(t, backend.Upload(ctx, strings.NewReader("x"), vault.UploadParams{
		Bucket:    "bucket",
		ObjectKey: "key",
	}))

	require.NoError(t, backend.Delete(ctx, "bucket", "key"))

	_, err := backend.Download(ctx, "bucket", "key")
	assert.ErrorIs(t, err, vault.ErrObjectNotFound)

	assert.ErrorIs(t, backend.Delete(ctx, "bucket", "key"), vault.ErrObjectNotFound)
}

func TestGetObjectMeta(t *testing.T) {
	backend := newBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.EnsureBucket(ctx, "bucket"))
	require.NoError(t, backend.Upload(ctx, strings.NewReader("some plain text content"), vault.UploadParams{
		Bucket:    "bucket",
		ObjectKey: "note.txt",
	}))

	meta, err := backend.GetObjectMeta(ctx, "bucket", "note.txt")
	require.NoError(t, err)
	assert.Equal(t, "note.txt", meta.Key)
	assert.Equal(t, int64(len("some plain text content")), meta.Size)
	assert.Contains(t, meta.ContentType, "text/plain")

	_, err = backend.GetObjectMeta(ctx, "bucket", "missing")
	assert.ErrorIs(t, err, vault.ErrObjectNotFound)
}
