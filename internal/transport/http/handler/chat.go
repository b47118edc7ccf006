package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/unimate-backend/internal/application/chat"
	"github.com/unimate-backend/internal/domain"
	"github.com/unimate-backend/internal/pkg/validate"
	"github.com/unimate-backend/internal/transport/http/middleware"
)

// ChatHandler handles the regulation assistant endpoints. Ask replies as a
// server-sent event stream so the client can render the answer as it arrives.
type ChatHandler struct {
	svc chat.Service
}

func NewChatHandler(svc chat.Service) *ChatHandler { return &ChatHandler{svc: svc} }

type chatDelta struct {
	Delta string `json:"delta"`
}

type chatDone struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
}

func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	started := false
	reply, err := h.svc.Ask(r.Context(), claims.UserID, req, func(delta string) error {
		started = true
		payload, err := json.Marshal(chatDelta{Delta: delta})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		// Status headers are gone once the stream starts; signal failure
		// in-band instead.
		if started {
			fmt.Fprintf(w, "event: error\ndata: %s\n\n", "assistant unavailable")
			flusher.Flush()
			return
		}
		httpError(w, err)
		return
	}

	payload, _ := json.Marshal(chatDone{ConversationID: reply.ConversationID, MessageID: reply.MessageID})
	fmt.Fprintf(w, "event: done\ndata: %s\n\n", payload)
	flusher.Flush()
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	messages, err := h.svc.History(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}
