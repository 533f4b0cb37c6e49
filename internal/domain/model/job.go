// Package model defines the core data types for the backlot casting marketplace.
package model

import (
	"errors"
	"strings"
	"time"
)

// JobStatus represents the lifecycle status of a job posting.
type JobStatus string

const (
	// JobStatusDraft indicates a posting that has been created but not published.
	JobStatusDraft JobStatus = "draft"
	// JobStatusActive indicates a published posting accepting applications.
	JobStatusActive JobStatus = "active"
	// JobStatusPaused indicates a posting temporarily hidden by its owner.
	JobStatusPaused JobStatus = "paused"
	// JobStatusFilled indicates every open position has a hired candidate.
	// Filled is derived from progress counters, never set directly by callers.
	JobStatusFilled JobStatus = "filled"
	// JobStatusExpired indicates the application deadline has passed.
	JobStatusExpired JobStatus = "expired"
	// JobStatusCancelled indicates the posting was withdrawn by its owner.
	JobStatusCancelled JobStatus = "cancelled"
)

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusDraft, JobStatusActive, JobStatusPaused, JobStatusFilled,
		JobStatusExpired, JobStatusCancelled:
		return true
	}
	return false
}

// HiringStage represents the job-level phase of the hiring funnel.
// It is tracked alongside application status but not derived from it.
type HiringStage string

const (
	StageReceivingApplications HiringStage = "receiving_applications"
	StageReviewingApplications HiringStage = "reviewing_applications"
	StageInterviews            HiringStage = "interviews"
	StageBackgroundCheck       HiringStage = "background_check"
	StageHiringProcess         HiringStage = "hiring_process"
	StageClosed                HiringStage = "closed"
)

// Valid returns true if the HiringStage is valid.
func (s HiringStage) Valid() bool {
	switch s {
	case StageReceivingApplications, StageReviewingApplications, StageInterviews,
		StageBackgroundCheck, StageHiringProcess, StageClosed:
		return true
	}
	return false
}

// WorkModality represents where the work happens.
type WorkModality string

const (
	ModalityOnSite WorkModality = "on_site"
	ModalityRemote WorkModality = "remote"
	ModalityHybrid WorkModality = "hybrid"
)

// Valid returns true if the WorkModality is valid.
func (m WorkModality) Valid() bool {
	return m == ModalityOnSite || m == ModalityRemote || m == ModalityHybrid
}

// ExperienceLevel represents the seniority expected for a role.
type ExperienceLevel string

const (
	ExperienceEntry  ExperienceLevel = "entry"
	ExperienceMid    ExperienceLevel = "mid"
	ExperienceSenior ExperienceLevel = "senior"
)

// Valid returns true if the ExperienceLevel is valid.
func (l ExperienceLevel) Valid() bool {
	return l == ExperienceEntry || l == ExperienceMid || l == ExperienceSenior
}

// StageChange records one entry of a job's stage history.
type StageChange struct {
	Stage     HiringStage `json:"stage"`
	ChangedAt time.Time   `json:"changed_at"`
}

// JobProgress holds the per-job aggregate counters summarizing how many
// applications sit at or beyond each funnel rank. The job record is the
// single source of truth for these counters; they are only ever mutated
// inside the same transaction as the application write that moves them.
type JobProgress struct {
	ApplicationsReceived int           `json:"applications_received"`
	ApplicationsReviewed int           `json:"applications_reviewed"`
	InterviewsScheduled  int           `json:"interviews_scheduled"`
	OffersExtended       int           `json:"offers_extended"`
	HiredCandidates      int           `json:"hired_candidates"`
	ProgressPercentage   int           `json:"progress_percentage"`
	CurrentStage         HiringStage   `json:"current_stage"`
	StageHistory         []StageChange `json:"stage_history,omitempty"`
}

// Job represents a casting/role posting.
type Job struct {
	ID              string          `json:"id"`
	OwnerID         string          `json:"owner_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Department      string          `json:"department"`
	JobType         string          `json:"job_type"`
	SalaryMin       int             `json:"salary_min"`
	SalaryMax       int             `json:"salary_max"`
	WorkModality    WorkModality    `json:"work_modality"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	Deadline        *time.Time      `json:"deadline,omitempty"`
	Positions       int             `json:"positions_available"`
	PositionsFilled int             `json:"positions_filled"`
	SearchTerms     []string        `json:"search_terms,omitempty"`
	Status          JobStatus       `json:"status"`
	Progress        JobProgress     `json:"progress"`
	DeletedAt       *time.Time      `json:"deleted_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Deleted returns true if the job has been soft-deleted.
func (j *Job) Deleted() bool { return j.DeletedAt != nil }

// CreateJobRequest represents a request to create a new job posting.
// New postings always start in draft.
type CreateJobRequest struct {
	OwnerID         string          `json:"owner_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Department      string          `json:"department"`
	JobType         string          `json:"job_type"`
	SalaryMin       int             `json:"salary_min"`
	SalaryMax       int             `json:"salary_max"`
	WorkModality    WorkModality    `json:"work_modality"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	Deadline        *time.Time      `json:"deadline,omitempty"`
	Positions       int             `json:"positions_available"`
	Tags            []string        `json:"tags,omitempty"`
}

// Validate validates the CreateJobRequest fields.
func (r *CreateJobRequest) Validate() error {
	if strings.TrimSpace(r.OwnerID) == "" {
		return errors.New("owner id is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	if r.Positions <= 0 {
		return errors.New("positions available must be positive")
	}
	if r.SalaryMin < 0 || r.SalaryMax < 0 {
		return errors.New("salary range must be non-negative")
	}
	if r.SalaryMax > 0 && r.SalaryMin > r.SalaryMax {
		return errors.New("salary min cannot exceed salary max")
	}
	if r.WorkModality != "" && !r.WorkModality.Valid() {
		return errors.New("invalid work modality")
	}
	if r.ExperienceLevel != "" && !r.ExperienceLevel.Valid() {
		return errors.New("invalid experience level")
	}
	return nil
}

// jobStatusToggles lists the statuses a caller may set directly.
// Filled is derived from counters and draft is only an initial state.
var jobStatusToggles = map[JobStatus]bool{
	JobStatusActive:    true,
	JobStatusPaused:    true,
	JobStatusExpired:   true,
	JobStatusCancelled: true,
}

// Toggleable returns true if the status may be set directly by the posting owner.
func (s JobStatus) Toggleable() bool { return jobStatusToggles[s] }
