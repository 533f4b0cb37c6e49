package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/backlot/backlot-api/internal/domain/model"
)

// Transition is a materialized status change for one application, ready to be
// written alongside the recomputed job aggregate in a single transaction.
type Transition struct {
	PrevStatus model.ApplicationStatus
	NewStatus  model.ApplicationStatus
	Stage      model.HiringStage
	Event      model.TimelineEvent
	// Notes overwrites the application's notes verbatim; empty input is
	// normalized to absent.
	Notes           *string
	RejectionReason *string
	RejectionDate   *time.Time
}

// ResolveStage picks the hiring stage for a transition: the explicit override,
// else the application's current stage, else the parent job's current stage,
// else the initial stage. Status and stage are independently settable; no
// joint status-stage machine is enforced.
func ResolveStage(override *model.HiringStage, app, job model.HiringStage) model.HiringStage {
	if override != nil && *override != "" {
		return *override
	}
	if app != "" {
		return app
	}
	if job != "" {
		return job
	}
	return model.StageReceivingApplications
}

// BuildTransition validates and materializes a status change. The timeline
// event id is deterministic for a given application and instant, which keeps
// transaction retries from producing duplicate events.
func BuildTransition(
	app *model.JobApplication,
	job *model.Job,
	req model.StatusChangeRequest,
	now time.Time,
) (Transition, error) {
	if err := req.Validate(); err != nil {
		return Transition{}, err
	}

	stage := ResolveStage(req.Stage, app.CurrentStage, job.Progress.CurrentStage)

	t := Transition{
		PrevStatus: app.Status,
		NewStatus:  req.Status,
		Stage:      stage,
	}

	if notes := strings.TrimSpace(req.Notes); notes != "" {
		t.Notes = &notes
	}

	description := ""
	if req.Status == model.StatusRejected {
		reason := strings.TrimSpace(req.RejectionReason)
		if reason != "" {
			t.RejectionReason = &reason
			description = reason
		}
		date := now
		t.RejectionDate = &date
	}
	if description == "" && t.Notes != nil {
		description = *t.Notes
	}

	t.Event = model.TimelineEvent{
		ID:          fmt.Sprintf("%s-status-%d", app.ID, now.UnixMilli()),
		Title:       "Status changed to " + req.Status.Label(),
		Description: description,
		Stage:       stage,
		CreatedAt:   now,
	}

	return t, nil
}

// InitialTimeline returns the timeline of a freshly created application.
func InitialTimeline(appID string, stage model.HiringStage, now time.Time) []model.TimelineEvent {
	return []model.TimelineEvent{{
		ID:        fmt.Sprintf("%s-status-%d", appID, now.UnixMilli()),
		Title:     "Application submitted",
		Stage:     stage,
		CreatedAt: now,
	}}
}
