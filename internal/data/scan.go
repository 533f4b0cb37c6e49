package data

import (
	"encoding/json"
	"fmt"

	"github.com/backlot/backlot-api/internal/domain/model"
)

// rowScanner abstracts pgx.Row and pgx.Rows for the shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

// jobColumns defines the column list for job SELECT queries to keep field
// mapping consistent between the jobs table and the job_search relation.
const jobColumns = `
  id,
  owner_id,
  title,
  description,
  department,
  job_type,
  salary_min,
  salary_max,
  work_modality,
  experience_level,
  deadline,
  positions_available,
  positions_filled,
  search_terms,
  status,
  current_stage,
  stage_history,
  applications_received,
  applications_reviewed,
  interviews_scheduled,
  offers_extended,
  hired_candidates,
  progress_percentage,
  deleted_at,
  created_at,
  updated_at
`

func scanJob(row rowScanner) (*model.Job, error) {
	var (
		j            model.Job
		stageHistory []byte
	)
	err := row.Scan(
		&j.ID,
		&j.OwnerID,
		&j.Title,
		&j.Description,
		&j.Department,
		&j.JobType,
		&j.SalaryMin,
		&j.SalaryMax,
		&j.WorkModality,
		&j.ExperienceLevel,
		&j.Deadline,
		&j.Positions,
		&j.PositionsFilled,
		&j.SearchTerms,
		&j.Status,
		&j.Progress.CurrentStage,
		&stageHistory,
		&j.Progress.ApplicationsReceived,
		&j.Progress.ApplicationsReviewed,
		&j.Progress.InterviewsScheduled,
		&j.Progress.OffersExtended,
		&j.Progress.HiredCandidates,
		&j.Progress.ProgressPercentage,
		&j.DeletedAt,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(stageHistory) > 0 {
		if err := json.Unmarshal(stageHistory, &j.Progress.StageHistory); err != nil {
			return nil, fmt.Errorf("decode stage history: %w", err)
		}
	}
	return &j, nil
}

// applicationColumns defines the column list for application SELECT queries.
const applicationColumns = `
  id,
  job_id,
  candidate_id,
  owner_id,
  status,
  current_stage,
  timeline,
  notes,
  rejection_reason,
  rejection_date,
  unread_messages,
  created_at,
  updated_at
`

func scanApplication(row rowScanner) (*model.JobApplication, error) {
	var (
		a        model.JobApplication
		timeline []byte
	)
	err := row.Scan(
		&a.ID,
		&a.JobID,
		&a.CandidateID,
		&a.OwnerID,
		&a.Status,
		&a.CurrentStage,
		&timeline,
		&a.Notes,
		&a.RejectionReason,
		&a.RejectionDate,
		&a.UnreadMessages,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(timeline) > 0 {
		if err := json.Unmarshal(timeline, &a.Timeline); err != nil {
			return nil, fmt.Errorf("decode timeline: %w", err)
		}
	}
	return &a, nil
}

// messageColumns defines the column list for message SELECT queries.
const messageColumns = `id, application_id, sender_id, body, is_read, created_at`

func scanMessage(row rowScanner) (*model.Message, error) {
	var m model.Message
	err := row.Scan(
		&m.ID,
		&m.ApplicationID,
		&m.SenderID,
		&m.Body,
		&m.Read,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func marshalTimeline(events []model.TimelineEvent) ([]byte, error) {
	if events == nil {
		events = []model.TimelineEvent{}
	}
	raw, err := json.Marshal(events)
	if err != nil {
		return nil, fmt.Errorf("encode timeline: %w", err)
	}
	return raw, nil
}

func marshalStageHistory(history []model.StageChange) ([]byte, error) {
	if history == nil {
		history = []model.StageChange{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("encode stage history: %w", err)
	}
	return raw, nil
}
