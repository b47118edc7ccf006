package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/unimate-backend/internal/application/board"
	"github.com/unimate-backend/internal/domain"
	"github.com/unimate-backend/internal/pkg/validate"
	"github.com/unimate-backend/internal/transport/http/middleware"
)

// PostHandler handles bulletin-board post endpoints.
type PostHandler struct {
	svc board.Service
}

func NewPostHandler(svc board.Service) *PostHandler { return &PostHandler{svc: svc} }

// PostDetailEnvelope wraps a single post together with its comments.
type PostDetailEnvelope struct {
	Post     *domain.Post     `json:"post"`
	Comments []domain.Comment `json:"comments"`
}

// LikeEnvelope reports the like state after a toggle.
type LikeEnvelope struct {
	Liked bool `json:"liked"`
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	p, err := h.svc.CreatePost(r.Context(), claims.UserID, claims.DisplayName, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListPosts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, comments, err := h.svc.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PostDetailEnvelope{Post: p, Comments: comments})
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.DeletePost(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "post deleted"})
}

func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	liked, err := h.svc.ToggleLike(r.Context(), chi.URLParam(r, "id"), claims.UserID, claims.DisplayName)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LikeEnvelope{Liked: liked})
}
