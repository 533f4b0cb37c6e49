package httpx

import (
	"net/http"

	"github.com/backlot/backlot-api/internal/domain/model"
)

// MessageHandlers serves the application thread endpoints.
type MessageHandlers struct {
	svc MessagingAPI
}

// NewMessageHandlers constructs MessageHandlers.
func NewMessageHandlers(svc MessagingAPI) *MessageHandlers {
	return &MessageHandlers{svc: svc}
}

// Send handles POST /api/applications/{id}/messages.
func (h *MessageHandlers) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req model.SendMessageRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.ApplicationID = r.PathValue("id")

	msg, err := h.svc.Send(r.Context(), identity, &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, msg)
}

// Thread handles GET /api/applications/{id}/messages.
func (h *MessageHandlers) Thread(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	msgs, err := h.svc.Thread(r.Context(), identity, r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// MarkRead handles POST /api/messages/{id}/read.
func (h *MessageHandlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	if err := h.svc.MarkRead(r.Context(), identity, r.PathValue("id")); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /api/applications/{id}/messages/read.
func (h *MessageHandlers) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	if err := h.svc.MarkAllRead(r.Context(), identity, r.PathValue("id")); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnreadBadge handles GET /api/applications/{id}/messages/unread.
func (h *MessageHandlers) UnreadBadge(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	count, err := h.svc.UnreadBadge(r.Context(), identity, r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"unread": count})
}
