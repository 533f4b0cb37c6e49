package httpx

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/backlot/backlot-api/internal/domain/model"
)

// DiscoveryHandlers serves the candidate-facing feed endpoint.
type DiscoveryHandlers struct {
	svc             DiscoveryAPI
	defaultPageSize int
}

// NewDiscoveryHandlers constructs DiscoveryHandlers. A non-positive default
// page size falls back to the repository default.
func NewDiscoveryHandlers(svc DiscoveryAPI, defaultPageSize int) *DiscoveryHandlers {
	return &DiscoveryHandlers{svc: svc, defaultPageSize: defaultPageSize}
}

// Search handles GET /api/jobs/search.
func (h *DiscoveryHandlers) Search(w http.ResponseWriter, r *http.Request) {
	opts, err := h.parseSearchQuery(r.URL.Query())
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_query", Err: err})
		return
	}

	page, err := h.svc.Search(r.Context(), opts)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

func (h *DiscoveryHandlers) parseSearchQuery(q url.Values) (*model.JobSearchOptions, error) {
	opts := &model.JobSearchOptions{
		Sort:     model.NormalizeSortKey(q.Get("sort")),
		PageSize: h.defaultPageSize,
	}

	if v := strings.TrimSpace(q.Get("department")); v != "" {
		opts.Department = &v
	}
	if v := strings.TrimSpace(q.Get("job_type")); v != "" {
		opts.JobType = &v
	}
	if v := strings.TrimSpace(q.Get("work_modality")); v != "" {
		modality := model.WorkModality(v)
		opts.WorkModality = &modality
	}
	if v := strings.TrimSpace(q.Get("experience_level")); v != "" {
		level := model.ExperienceLevel(v)
		opts.ExperienceLevel = &level
	}
	if v := strings.TrimSpace(q.Get("q")); v != "" {
		opts.Search = &v
	}
	if v := strings.TrimSpace(q.Get("cursor")); v != "" {
		opts.Cursor = &v
	}

	var err error
	if opts.MinSalary, err = intParam(q, "min_salary"); err != nil {
		return nil, err
	}
	if opts.MaxSalary, err = intParam(q, "max_salary"); err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(q.Get("page_size")); v != "" {
		size, convErr := strconv.Atoi(v)
		if convErr != nil {
			return nil, fmt.Errorf("page_size must be an integer")
		}
		opts.PageSize = size
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func intParam(q url.Values, name string) (*int, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &n, nil
}
