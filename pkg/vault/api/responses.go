package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/localvault/localvault/pkg/vault"
	"github.com/localvault/localvault/pkg/vault/auth"
)

// ErrorResponse is the stable error envelope. Internal error detail is
// logged server-side and never included here.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ContentResponse is the wire shape of a content record.
type ContentResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"content_type"`
	Title     string    `json:"title,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TextContent  string `json:"text_content,omitempty"`
	OriginalName string `json:"original_name,omitempty"`
	Bucket       string `json:"bucket,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
	DownloadURL  string `json:"download_url,omitempty"`
}

// ContentListResponse is a page of content plus the filtered total.
type ContentListResponse struct {
	Contents   []ContentResponse `json:"contents"`
	TotalCount int64             `json:"total_count"`
}

func toContentResponse(content *vault.Content) ContentResponse {
	resp := ContentResponse{
		ID:        content.ID.String(),
		Kind:      string(content.Kind),
		Title:     content.Title,
		Tags:      content.Tags,
		CreatedAt: content.CreatedAt,
		UpdatedAt: content.UpdatedAt,
	}
	switch content.Kind {
	case vault.KindText:
		resp.TextContent = content.Text.Body
	case vault.KindFile:
		resp.OriginalName = content.File.OriginalName
		resp.Bucket = content.File.Bucket
		resp.FileSize = content.File.Size
		resp.MimeType = content.File.MimeType
		resp.DownloadURL = "/api/v1/content/download/" + content.ID.String()
	}
	return resp
}

// writeError maps domain errors to stable statuses and non-leaking
// messages. Full detail goes to the log only.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var storageErr *vault.StorageError
	switch {
	case errors.Is(err, vault.ErrContentNotFound), errors.Is(err, vault.ErrObjectNotFound):
		status, message = http.StatusNotFound, "content not found"
	case errors.Is(err, vault.ErrFileTooLarge):
		status, message = http.StatusRequestEntityTooLarge, "file too large, maximum size is 20MB"
	case errors.Is(err, vault.ErrTextTooLarge):
		status, message = http.StatusRequestEntityTooLarge, "text content too large, maximum size is 1MB"
	case errors.Is(err, vault.ErrUnsupportedMediaType):
		status, message = http.StatusUnsupportedMediaType, "file type not allowed"
	case errors.Is(err, vault.ErrInvalidInput), errors.Is(err, auth.ErrInvalidPhone):
		status, message = http.StatusBadRequest, "invalid input"
	case errors.Is(err, auth.ErrInvalidCode), errors.Is(err, auth.ErrCodeExpired), errors.Is(err, auth.ErrMaxAttempts):
		status, message = http.StatusBadRequest, "invalid verification code"
	case errors.Is(err, auth.ErrTokenExpired):
		status, message = http.StatusUnauthorized, "token expired, please login again"
	case errors.Is(err, auth.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "unauthorized"
	case errors.As(err, &storageErr):
		status, message = http.StatusInternalServerError, "storage operation failed"
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Status: "error", Message: message})
}
