package httpx

import (
	"net/http"

	"github.com/backlot/backlot-api/internal/domain/model"
)

// ApplicationHandlers serves the hiring funnel endpoints.
type ApplicationHandlers struct {
	svc PipelineAPI
}

// NewApplicationHandlers constructs ApplicationHandlers.
func NewApplicationHandlers(svc PipelineAPI) *ApplicationHandlers {
	return &ApplicationHandlers{svc: svc}
}

// Apply handles POST /api/jobs/{id}/applications.
func (h *ApplicationHandlers) Apply(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req model.ApplyRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.JobID = r.PathValue("id")

	app, err := h.svc.Apply(r.Context(), identity, &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, app)
}

// ChangeStatus handles PUT /api/applications/{id}/status.
func (h *ApplicationHandlers) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req model.StatusChangeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	app, err := h.svc.ChangeStatus(r.Context(), identity, r.PathValue("id"), req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, app)
}

type rejectBody struct {
	Reason string `json:"reason"`
}

// Reject handles POST /api/applications/{id}/reject.
func (h *ApplicationHandlers) Reject(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var body rejectBody
	if !DecodeJSON(w, r, &body) {
		return
	}

	app, err := h.svc.Reject(r.Context(), identity, r.PathValue("id"), body.Reason)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, app)
}

// Get handles GET /api/applications/{id}.
func (h *ApplicationHandlers) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	app, err := h.svc.GetApplication(r.Context(), identity, r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, app)
}

// ListByJob handles GET /api/jobs/{id}/applications.
func (h *ApplicationHandlers) ListByJob(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	apps, err := h.svc.ListJobApplications(r.Context(), identity, r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"applications": apps})
}
