package httpx

import (
	"net/http"

	"github.com/backlot/backlot-api/internal/domain/model"
)

// JobHandlers serves the posting lifecycle endpoints.
type JobHandlers struct {
	svc JobAPI
}

// NewJobHandlers constructs JobHandlers.
func NewJobHandlers(svc JobAPI) *JobHandlers {
	return &JobHandlers{svc: svc}
}

// Create handles POST /api/jobs.
func (h *JobHandlers) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req model.CreateJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	job, err := h.svc.Create(r.Context(), identity, &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, job)
}

// Get handles GET /api/jobs/{id}.
func (h *JobHandlers) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	job, err := h.svc.Get(r.Context(), identity, r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// ListMine handles GET /api/jobs/mine.
func (h *JobHandlers) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	jobs, err := h.svc.ListMine(r.Context(), identity)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

type statusChangeBody struct {
	Status model.JobStatus `json:"status"`
}

// SetStatus handles PUT /api/jobs/{id}/status.
func (h *JobHandlers) SetStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var body statusChangeBody
	if !DecodeJSON(w, r, &body) {
		return
	}

	job, err := h.svc.SetStatus(r.Context(), identity, r.PathValue("id"), body.Status)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

type stageChangeBody struct {
	Stage model.HiringStage `json:"stage"`
}

// SetStage handles PUT /api/jobs/{id}/stage.
func (h *JobHandlers) SetStage(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var body stageChangeBody
	if !DecodeJSON(w, r, &body) {
		return
	}

	job, err := h.svc.SetStage(r.Context(), identity, r.PathValue("id"), body.Stage)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// Delete handles DELETE /api/jobs/{id}.
func (h *JobHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), identity, r.PathValue("id")); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
