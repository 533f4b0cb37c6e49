package model

import (
	"errors"
	"strings"
	"time"
)

// ApplicationStatus represents one candidate's position in the hiring funnel.
type ApplicationStatus string

const (
	StatusApplied   ApplicationStatus = "applied"
	StatusInReview  ApplicationStatus = "in_review"
	StatusInterview ApplicationStatus = "interview"
	StatusOffer     ApplicationStatus = "offer"
	StatusHired     ApplicationStatus = "hired"
	StatusRejected  ApplicationStatus = "rejected"
	StatusWithdrawn ApplicationStatus = "withdrawn"
)

// Valid returns true if the ApplicationStatus is valid.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusApplied, StatusInReview, StatusInterview, StatusOffer,
		StatusHired, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// Rank returns the ordinal position of the status within the hiring funnel.
// Rejected shares rank 1 with in_review: a rejection implies the application
// was reviewed. Withdrawn shares rank 0 with applied: the candidate left the
// funnel before any processing is attributed to the job.
func (s ApplicationStatus) Rank() int {
	switch s {
	case StatusApplied, StatusWithdrawn:
		return 0
	case StatusInReview, StatusRejected:
		return 1
	case StatusInterview:
		return 2
	case StatusOffer:
		return 3
	case StatusHired:
		return 4
	}
	return 0
}

// Label returns the human-readable form of the status used in timeline titles.
func (s ApplicationStatus) Label() string {
	switch s {
	case StatusApplied:
		return "Applied"
	case StatusInReview:
		return "In Review"
	case StatusInterview:
		return "Interview"
	case StatusOffer:
		return "Offer Extended"
	case StatusHired:
		return "Hired"
	case StatusRejected:
		return "Rejected"
	case StatusWithdrawn:
		return "Withdrawn"
	}
	return string(s)
}

// TimelineEvent is one entry of an application's append-only timeline.
// Events are never mutated or removed once written.
type TimelineEvent struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Stage       HiringStage `json:"stage"`
	CreatedAt   time.Time   `json:"created_at"`
}

// JobApplication represents one candidate's application to one job.
// The application record is the single source of truth for its own
// status and timeline; job-level aggregates live on the Job record.
type JobApplication struct {
	ID              string            `json:"id"`
	JobID           string            `json:"job_id"`
	CandidateID     string            `json:"candidate_id"`
	OwnerID         string            `json:"owner_id"`
	Status          ApplicationStatus `json:"status"`
	CurrentStage    HiringStage       `json:"current_stage"`
	Timeline        []TimelineEvent   `json:"timeline"`
	Notes           *string           `json:"notes,omitempty"`
	RejectionReason *string           `json:"rejection_reason,omitempty"`
	RejectionDate   *time.Time        `json:"rejection_date,omitempty"`
	UnreadMessages  int               `json:"unread_messages"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ApplyRequest represents a candidate applying to a job.
type ApplyRequest struct {
	JobID       string `json:"job_id"`
	CandidateID string `json:"candidate_id"`
	Notes       string `json:"notes,omitempty"`
}

// Validate validates the ApplyRequest fields.
func (r *ApplyRequest) Validate() error {
	if strings.TrimSpace(r.JobID) == "" {
		return errors.New("job id is required")
	}
	if strings.TrimSpace(r.CandidateID) == "" {
		return errors.New("candidate id is required")
	}
	return nil
}

// StatusChangeRequest represents a request to move an application to a new status.
// Stage is an optional override; when nil the stage is resolved from the
// application, then the parent job, then the initial stage.
type StatusChangeRequest struct {
	Status          ApplicationStatus `json:"status"`
	Notes           string            `json:"notes,omitempty"`
	Stage           *HiringStage      `json:"stage,omitempty"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
}

// Validate validates the StatusChangeRequest fields.
func (r *StatusChangeRequest) Validate() error {
	if !r.Status.Valid() {
		return errors.New("invalid application status")
	}
	if r.Stage != nil && !r.Stage.Valid() {
		return errors.New("invalid hiring stage")
	}
	return nil
}
