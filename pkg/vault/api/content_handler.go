package api

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/localvault/localvault/pkg/vault"
	"github.com/localvault/localvault/pkg/vault/auth"
)

// multipartMemoryLimit is how much of an upload is buffered in memory
// before the multipart reader spills to a temp file.
const multipartMemoryLimit = 8 << 20

// downloadChunkSize is the copy buffer used when streaming blobs out.
const downloadChunkSize = 8 * 1024

type contentHandler struct {
	service vault.Service
	logger  *slog.Logger
}

// upload accepts a multipart form carrying exactly one of "file" or
// "text_content", plus optional "title" and "tags" fields.
func (h *contentHandler) upload(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeError(w, r, vault.ErrInvalidInput)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	title := r.FormValue("title")
	tags := vault.ParseTags(r.FormValue("tags"))
	textBody := r.FormValue("text_content")

	file, header, fileErr := r.FormFile("file")
	hasFile := fileErr == nil
	hasText := textBody != ""

	if hasFile == hasText {
		// Exactly one payload is required.
		writeError(w, r, vault.ErrInvalidInput)
		return
	}

	var content *vault.Content
	var err error
	if hasFile {
		defer file.Close()
		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		if mediaType, _, parseErr := mime.ParseMediaType(mimeType); parseErr == nil {
			mimeType = mediaType
		}
		content, err = h.service.UploadFile(r.Context(), user, vault.UploadFileRequest{
			Reader:   file,
			FileName: header.Filename,
			MimeType: mimeType,
			Title:    title,
			Tags:     tags,
		})
	} else {
		content, err = h.service.UploadText(r.Context(), user, vault.UploadTextRequest{
			Body:  textBody,
			Title: title,
			Tags:  tags,
		})
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toContentResponse(content))
}

func (h *contentHandler) list(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthorized)
		return
	}

	req := vault.ListContentRequest{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Limit:  queryInt(r, "limit", vault.DefaultListLimit),
		Offset: queryInt(r, "offset", 0),
	}
	if raw := r.URL.Query().Get("content_type"); raw != "" {
		kind := vault.ContentKind(raw)
		if !kind.IsValid() {
			writeError(w, r, vault.ErrInvalidInput)
			return
		}
		req.Kind = &kind
	}

	page, err := h.service.ListContent(r.Context(), user, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := ContentListResponse{
		Contents:   make([]ContentResponse, 0, len(page.Items)),
		TotalCount: page.TotalCount,
	}
	for _, item := range page.Items {
		resp.Contents = append(resp.Contents, toContentResponse(item))
	}
	render.JSON(w, r, resp)
}

func (h *contentHandler) get(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "contentID"))
	if err != nil {
		writeError(w, r, vault.ErrContentNotFound)
		return
	}
	content, err := h.service.GetContent(r.Context(), user, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, toContentResponse(content))
}

func (h *contentHandler) download(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "contentID"))
	if err != nil {
		writeError(w, r, vault.ErrContentNotFound)
		return
	}
	download, err := h.service.OpenDownload(r.Context(), user, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer download.Body.Close()

	w.Header().Set("Content-Type", download.MimeType)
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": download.FileName}))
	if download.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(download.Size, 10))
	}

	buf := make([]byte, downloadChunkSize)
	if _, err := io.CopyBuffer(w, download.Body, buf); err != nil {
		// Headers are already out; nothing left to send to the client.
		if !errors.Is(err, r.Context().Err()) {
			h.logger.Warn("download stream interrupted", "content_id", id, "err", err)
		}
	}
}

func (h *contentHandler) delete(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "contentID"))
	if err != nil {
		writeError(w, r, vault.ErrContentNotFound)
		return
	}
	if err := h.service.DeleteContent(r.Context(), user, id); err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{
		"status":  "success",
		"message": "content deleted",
	})
}

func (h *contentHandler) stats(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthorized)
		return
	}
	summary, err := h.service.Stats(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
