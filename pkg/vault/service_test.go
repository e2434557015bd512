package vault_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localvault/localvault/pkg/vault"
	repomemory "github.com/localvault/localvault/pkg/vault/repo/memory"
	memorystorage "github.com/localvault/localvault/pkg/vault/storage/memory"
)

func newTestService(t *testing.T) (vault.Service, vault.Repository) {
	t.Helper()
	repo := repomemory.New()
	svc, err := vault.New(
		vault.WithRepository(repo),
		vault.WithBlobStore(memorystorage.New()),
	)
	require.NoError(t, err)
	return svc, repo
}

func testUser(t *testing.T, repo vault.Repository, phone string) *vault.User {
	t.Helper()
	user, err := repo.UpsertVerifiedUser(context.Background(), phone)
	require.NoError(t, err)
	return user
}

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []vault.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []vault.Option{},
			expectError: true,
		},
		{
			name: "repository only should fail",
			options: []vault.Option{
				vault.WithRepository(repomemory.New()),
			},
			expectError: true,
		},
		{
			name: "repository and blob store should succeed",
			options: []vault.Option{
				vault.WithRepository(repomemory.New()),
				vault.WithBlobStore(memorystorage.New()),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := vault.New(tt.options...)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestUploadFileRoundTrip(t *testing.T) {
	svc, repo := newTestService(t)
	user := testUser(t, repo, "919876543210")
	ctx := context.Background()

	payload := []byte("%PDF-1.4 not really a pdf but close enough")
	content, err := svc.UploadFile(ctx, user, vault.UploadFileRequest{
		Reader:   bytes.NewReader(payload),
		FileName: "report.pdf",
		MimeType: "application/pdf",
		Tags:     []string{"work", "q3"},
	})
	require.NoError(t, err)

	assert.Equal(t, vault.KindFile, content.Kind)
	assert.Equal(t, "report.pdf", content.Title)
	assert.Equal(t, "report.pdf", content.File.OriginalName)
	assert.Equal(t, int64(len(payload)), content.File.Size)
	assert.Equal(t, "user-919876543210", content.File.Bucket)
	assert.True(t, strings.HasSuffix(content.File.ObjectKey, ".pdf"))

	download, err := svc.OpenDownload(ctx, user, content.ID)
	require.NoError(t, err)
	defer download.Body.Close()

	got, err := io.ReadAll(download.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, "report.pdf", download.FileName)
	assert.Equal(t, "application/pdf", download.MimeType)
	assert.Equal(t, int64(len(payload)), download.Size)
}

func TestUploadFileSizeCeiling(t *testing.T) {
	svc, repo := newTestService(t)
	user := testUser(t, repo, "919876543210")
	ctx := context.Background()

	t.Run("exactly at limit succeeds", func(t *testing.T) {
		content, err := svc.UploadFile(ctx, user, vault.UploadFileRequest{
			Reader:   io.LimitReader(zeroReader{}, vault.MaxFileBytes),
			FileName: "exact.bin",
			MimeType: "application/octet-stream",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(vault.MaxFileBytes), content.File.Size)
	})

	t.Run("one byte over fails", func(t *testing.T) {
		_, err := svc.UploadFile(ctx, user, vault.UploadFileRequest{
			Reader:   io.LimitReader(zeroReader{}, vault.MaxFileBytes+1),
			FileName: "over.bin",
			MimeType: "application/octet-stream",
		})
		assert.ErrorIs(t, err, vault.ErrFileTooLarge)
	})
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestUploadFileMimeGate(t *testing.T) {
	svc, repo := newTestService(t)
	user := testUser(t, repo, "919876543210")
	ctx := context.Background()

	_, err := svc.UploadFile(ctx, user, vault.UploadFileRequest{
		Reader:   strings.NewReader("data"),
		FileName: "weird.xyz",
		MimeType: "application/x-nonsense",
	})
	assert.ErrorIs(t, err, vault.ErrUnsupportedMediaType)

	_, err = svc.UploadFile(ctx, user, vault.UploadFileRequest{
		Reader:   strings.NewReader("data"),
		FileName: "fine.pdf",
		MimeType: "application/pdf",
	})
	assert.NoError(t, err)
}

func TestUploadFileValidation(t *testing.T) {
	svc, repo := newTestService(t)
	user := testUser(t, repo, "919876543210")
	ctx := context.Background()

	_, err := svc.UploadFile(ctx, user, vault.UploadFileRequest{
		FileName: "no-reader.txt",
		MimeType: "text/plain",
	})
	assert.ErrorIs(t, err, vault.ErrInvalidInput)

	_, err = svc.UploadFile(ctx, user, vault.UploadFileRequest{
		Reader:   strings.NewReader("data"),
		MimeType: "text/plain",
	})
	assert.ErrorIs(t, err, vault.ErrInvalidInput)
}

func TestUploadTextDefaultsAndCeiling(t *testing.T) {
	svc, repo := newTestService(t)
	user := testUser(t, repo, "919876543210")
	ctx := context.Background()

	content, err := svc.UploadText(ctx, user, vault.UploadTextRequest{
		Body: "remember the milk",
	})
	require.NoError(t, err)
	assert.Equal(t, "Text Content", content.Title)
	assert.Equal(t, vault.KindText, content.Kind)
	assert.Equal(t, "remember the milk", content.Text.Body)

	_, err = svc.UploadText(ctx, user, vault.UploadTextRequest{
		Body: strings.Repeat("a", vault.MaxTextBytes+1),
	})
	assert.ErrorIs(t, err, vault.ErrTextTooLarge)

	_, err = svc.UploadText(ctx, user, vault.UploadTextRequest{
		Body: strings.Repeat("a", vault.MaxTextBytes),
	})
	assert.NoError(t, err)
}

func TestOwnershipIsolation(t *testing.T) {
	svc, repo := newTestService(t)
	owner := testUser(t, repo, "919876543210")
	other := testUser(t, repo, "918765432109")
	ctx := context.Background()

	content, err := svc.UploadText(ctx, owner, vault.UploadTextRequest{Body: "secret"})
	require.NoError(t, err)

	// A non-owner sees not-found everywhere; existence never leaks.
	_, err = svc.GetContent(ctx, other, content.ID)
	assert.ErrorIs(t, err, vault.ErrContentNotFound)

	_, err = svc.OpenDownload(ctx, other, content.ID)
	assert.ErrorIs(t, err, vault.ErrContentNotFound)

	err = svc.DeleteContent(ctx, other, content.ID)
	assert.ErrorIs(t, err, vault.ErrContentNotFound)

	got, err := svc.GetContent(ctx, owner, content.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret", got.Text.Body)

	page, err := svc.ListContent(ctx, other, vault.ListContentRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.TotalCount)
}

func TestDownloadTextContentIsNotFound(t *testing.T) {
	svc, repo := newTestService(t)
	user := testUser(t, repo, "919876543210")
	ctx := context.Background()

	content, err := svc.UploadText(ctx, user, vault.UploadTextRequest{Body: "note"})
	require.NoError(t, err)

	_, err = svc.OpenDownload(ctx, user, content.ID)
	assert.ErrorIs(t, err, vault.ErrContentNotFound)
}

func TestDeleteContent(t *testing.T) {
	svc, repo := newTestService(t)
	user := testUser(t, repo, "919876543210")
	ctx := context.Background()

	content, err := svc.UploadFile(ctx, user, vault.UploadFileRequest{
		Reader:   strings.NewReader("bytes"),
		FileName: "gone.txt",
		MimeType: "text/plain",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteContent(ctx, user, content.ID))

	_, err = svc.GetContent(ctx, user, content.ID)
	assert.ErrorIs(t, err, vault.ErrContentNotFound)

	err = svc.DeleteContent(ctx, user, content.ID)
	assert.ErrorIs(t, err, vault.ErrContentNotFound)
}

// failingDeleteStore wraps a blob store and refuses deletes.
type failingDeleteStore struct {
	vault.BlobStore
}

func (s failingDeleteStore) Delete(ctx context.Context, bucket, objectKey string) error {
	return errors.New("storage unavailable")
}

func TestDeleteSucceedsWhenBlobDeleteFails(t *testing.T) {
	repo := repomemory.New()
	svc, err := vault.New(
		vault.WithRepository(repo),
		vault.WithBlobStore(failingDeleteStore{memorystorage.New()}),
	)
	require.NoError(t, err)
	user := testUser(t, repo, "919876543210")
	ctx := context.Background()

	content, err := svc.UploadFile(ctx, user, vault.UploadFileRequest{
		Reader:   strings.NewReader("bytes"),
		FileName: "leak.txt",
		MimeType: "text/plain",
	})
	require.NoError(t, err)

	// Metadata delete wins even when the blob store is down.
	require.NoError(t, svc.DeleteContent(ctx, user, content.ID))
	_, err = svc.GetContent(ctx, user, content.ID)
	assert.ErrorIs(t, err, vault.ErrContentNotFound)
}

func TestListContentFiltersAndSearch(t *testing.T) {
	svc, repo := newTestService(t)
	user := testUser(t, repo, "919876543210")
	ctx := context.Background()

	_, err := svc.UploadText(ctx, user, vault.UploadTextRequest{
		Title: "March planning",
		Body:  "budget numbers",
	})
	require.NoError(t, err)

	_, err = svc.UploadText(ctx, user, vault.UploadTextRequest{
		Title: "Groceries",
		Body:  "marching band tickets",
	})
	require.NoError(t, err)

	_, err = svc.UploadFile(ctx, user, vault.UploadFileRequest{
		Reader:   strings.NewReader("img"),
		FileName: "march-photo.png",
		MimeType: "image/png",
	})
	require.NoError(t, err)

	// Substring match over title, text body and original file name.
	page, err := svc.ListContent(ctx, user, vault.ListContentRequest{Search: "march"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalCount)

	kind := vault.KindText
	page, err = svc.ListContent(ctx, user, vault.ListContentRequest{Kind: &kind})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalCount)
	for _, item := range page.Items {
		assert.Equal(t, vault.KindText, item.Kind)
	}

	page, err = svc.ListContent(ctx, user, vault.ListContentRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.TotalCount)

	page, err = svc.ListContent(ctx, user, vault.ListContentRequest{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestListContentOrderedNewestFirst(t *testing.T) {
	svc, repo := newTestService(t)
	user := testUser(t, repo, "919876543210")
	ctx := context.Background()

	first, err := svc.UploadText(ctx, user, vault.UploadTextRequest{Body: "first"})
	require.NoError(t, err)
	second, err := svc.UploadText(ctx, user, vault.UploadTextRequest{Body: "second"})
	require.NoError(t, err)

	page, err := svc.ListContent(ctx, user, vault.ListContentRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, second.ID, page.Items[0].ID)
	assert.Equal(t, first.ID, page.Items[1].ID)
}

func TestStatsSummary(t *testing.T) {
	svc, repo := newTestService(t)
	user := testUser(t, repo, "919876543210")
	ctx := context.Background()

	_, err := svc.UploadText(ctx, user, vault.UploadTextRequest{Body: "note"})
	require.NoError(t, err)

	payload := strings.Repeat("x", 100)
	_, err = svc.UploadFile(ctx, user, vault.UploadFileRequest{
		Reader:   strings.NewReader(payload),
		FileName: "a.txt",
		MimeType: "text/plain",
	})
	require.NoError(t, err)

	summary, err := svc.Stats(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalCount)
	assert.Equal(t, int64(1), summary.TextCount)
	assert.Equal(t, int64(1), summary.FileCount)
	assert.Equal(t, int64(100), summary.TotalFileBytes)
}

func TestGetContentUnknownID(t *testing.T) {
	svc, repo := newTestService(t)
	user := testUser(t, repo, "919876543210")

	_, err := svc.GetContent(context.Background(), user, uuid.New())
	assert.ErrorIs(t, err, vault.ErrContentNotFound)
}
