package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	s3infra "github.com/unimate-backend/internal/infrastructure/s3"
	"github.com/unimate-backend/internal/pkg/id"
	"github.com/unimate-backend/internal/transport/http/middleware"
)

const presignTTL = 15 * time.Minute

type attachmentStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// AttachmentHandler handles post attachment uploads backed by S3. Objects are
// keyed by a fresh ULID so uploads never collide; the original extension is
// kept for content-type detection.
type AttachmentHandler struct {
	store attachmentStore
}

func NewAttachmentHandler(store attachmentStore) *AttachmentHandler {
	return &AttachmentHandler{store: store}
}

// AttachmentEnvelope is returned after an upload; the client puts Key and URL
// on the post it creates next.
type AttachmentEnvelope struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ClaimsFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer f.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = s3infra.DetectContentType(header.Filename)
	}
	key := fmt.Sprintf("%s%s", id.New(), filepath.Ext(header.Filename))

	url, err := h.store.Upload(r.Context(), key, f, contentType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}
	writeJSON(w, http.StatusCreated, AttachmentEnvelope{Key: key, URL: url})
}

// Download streams the object body through the API for clients that cannot
// follow a presigned URL.
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ClaimsFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	key := chi.URLParam(r, "key")
	body, err := h.store.Download(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "attachment not found")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", s3infra.DetectContentType(key))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

// GetURL returns a short-lived presigned download URL so the bucket can stay
// private.
func (h *AttachmentHandler) GetURL(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ClaimsFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	key := chi.URLParam(r, "key")
	url, err := h.store.PresignedURL(r.Context(), key, presignTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "presign failed")
		return
	}
	writeJSON(w, http.StatusOK, AttachmentEnvelope{Key: key, URL: url})
}
