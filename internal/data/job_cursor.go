package data

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/backlot/backlot-api/internal/domain/model"
)

// jobCursorPayload pins the sort key a cursor was minted under along with the
// last-seen sort value and row id. A cursor replayed against a different sort
// is rejected rather than silently producing a scrambled page.
type jobCursorPayload struct {
	Sort      model.SortKey `json:"sort"`
	UpdatedAt *time.Time    `json:"updated_at,omitempty"`
	Deadline  *time.Time    `json:"deadline,omitempty"`
	SalaryMax *int          `json:"salary_max,omitempty"`
	ID        string        `json:"id"`
}

func encodeJobCursor(cur jobCursorPayload) (string, error) {
	raw, err := json.Marshal(cur)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func decodeJobCursor(token string, sort model.SortKey) (jobCursorPayload, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return jobCursorPayload{}, fmt.Errorf("decode cursor: %w", err)
	}

	var cur jobCursorPayload
	if err := json.Unmarshal(raw, &cur); err != nil {
		return jobCursorPayload{}, fmt.Errorf("unmarshal cursor: %w", err)
	}

	if cur.ID == "" || !cur.Sort.Valid() {
		return jobCursorPayload{}, errors.New("invalid cursor payload")
	}
	if cur.Sort != sort {
		return jobCursorPayload{}, fmt.Errorf("cursor was issued for sort %q", cur.Sort)
	}

	switch cur.Sort {
	case model.SortRecent:
		if cur.UpdatedAt == nil || cur.UpdatedAt.IsZero() {
			return jobCursorPayload{}, errors.New("cursor missing updated_at for sort")
		}
	case model.SortDeadline:
		if cur.Deadline == nil || cur.Deadline.IsZero() {
			return jobCursorPayload{}, errors.New("cursor missing deadline for sort")
		}
	case model.SortSalary:
		if cur.SalaryMax == nil {
			return jobCursorPayload{}, errors.New("cursor missing salary_max for sort")
		}
	}

	return cur, nil
}

func newJobCursorFromJob(job *model.Job, sort model.SortKey) jobCursorPayload {
	payload := jobCursorPayload{
		Sort: sort,
		ID:   job.ID,
	}
	switch sort {
	case model.SortDeadline:
		payload.Deadline = job.Deadline
	case model.SortSalary:
		salary := job.SalaryMax
		payload.SalaryMax = &salary
	default:
		updated := job.UpdatedAt
		payload.UpdatedAt = &updated
	}
	return payload
}

// EncodeJobCursorFromJob builds a cursor token from the provided job under the
// given sort. Exposed so the first-page cache can store resumable tokens.
func EncodeJobCursorFromJob(job *model.Job, sort model.SortKey) (string, error) {
	if job == nil {
		return "", errors.New("job is nil")
	}
	return encodeJobCursor(newJobCursorFromJob(job, sort))
}
