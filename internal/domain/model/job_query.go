package model

import (
	"errors"
	"strings"
)

// SortKey selects the ordering of the discovery feed. Each key carries a
// fixed field and direction; callers cannot combine keys or flip directions.
type SortKey string

const (
	// SortRecent orders by most recently updated postings first.
	SortRecent SortKey = "recent"
	// SortDeadline orders by the soonest application deadline first.
	SortDeadline SortKey = "deadline"
	// SortSalary orders by the highest salary ceiling first.
	SortSalary SortKey = "salary"
)

// Valid returns true if the SortKey is valid.
func (k SortKey) Valid() bool {
	return k == SortRecent || k == SortDeadline || k == SortSalary
}

// NormalizeSortKey maps free-form input to a SortKey, defaulting to recent.
func NormalizeSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortDeadline:
		return SortDeadline
	case SortSalary:
		return SortSalary
	default:
		return SortRecent
	}
}

// JobSearchOptions holds the filter set for the candidate-facing discovery feed.
// Nil/empty filters are not applied.
type JobSearchOptions struct {
	Department      *string
	JobType         *string
	WorkModality    *WorkModality
	ExperienceLevel *ExperienceLevel
	MinSalary       *int
	MaxSalary       *int
	Search          *string
	Sort            SortKey
	PageSize        int
	Cursor          *string
}

// Validate validates the JobSearchOptions fields.
func (o *JobSearchOptions) Validate() error {
	if o.Sort != "" && !o.Sort.Valid() {
		return errors.New("invalid sort key")
	}
	if o.WorkModality != nil && !o.WorkModality.Valid() {
		return errors.New("invalid work modality")
	}
	if o.ExperienceLevel != nil && !o.ExperienceLevel.Valid() {
		return errors.New("invalid experience level")
	}
	if o.MinSalary != nil && *o.MinSalary < 0 {
		return errors.New("min salary must be non-negative")
	}
	if o.MaxSalary != nil && *o.MaxSalary < 0 {
		return errors.New("max salary must be non-negative")
	}
	return nil
}

// JobSearchPage is one page of discovery results.
//
// Resumable distinguishes the indexed path (cursor continuation supported)
// from the degraded fallback path, where pagination stops after one page.
// Callers can surface degraded pagination instead of inferring it from
// HasMore being false.
type JobSearchPage struct {
	Jobs       []*Job  `json:"jobs"`
	NextCursor *string `json:"next_cursor,omitempty"`
	HasMore    bool    `json:"has_more"`
	Resumable  bool    `json:"resumable"`
}
