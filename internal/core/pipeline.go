package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/backlot/backlot-api/internal/domain/auth"
	"github.com/backlot/backlot-api/internal/domain/model"
	apperrors "github.com/backlot/backlot-api/internal/errors"
)

// PipelineServiceOptions groups dependencies for PipelineService.
type PipelineServiceOptions struct {
	Applications ApplicationRepository // Required
	Jobs         JobRepository         // Required
	Notifier     Notifier              // Optional: outbound pipeline events
	Logger       *slog.Logger          // Optional: structured logger
}

// PipelineService enforces who may move an application through the hiring
// funnel and emits notifications for completed transitions. The atomicity of
// a transition lives in the repository; this layer owns authorization.
type PipelineService struct {
	apps     ApplicationRepository
	jobs     JobRepository
	notifier Notifier
	logger   *slog.Logger
}

// NewPipelineService constructs a new PipelineService.
func NewPipelineService(opts PipelineServiceOptions) (*PipelineService, error) {
	if opts.Applications == nil {
		return nil, apperrors.Internal("ApplicationRepository is required")
	}
	if opts.Jobs == nil {
		return nil, apperrors.Internal("JobRepository is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &PipelineService{
		apps:     opts.Applications,
		jobs:     opts.Jobs,
		notifier: opts.Notifier,
		logger:   logger.With("component", "pipeline_service"),
	}, nil
}

// Apply submits an application on behalf of the authenticated candidate. The
// candidate id always comes from the identity, never from the request body.
func (s *PipelineService) Apply(
	ctx context.Context,
	identity auth.Identity,
	req *model.ApplyRequest,
) (*model.JobApplication, error) {
	if !identity.IsActor() && !identity.IsAdmin() {
		return nil, apperrors.Unauthorized("only candidates can apply to postings")
	}
	if req == nil {
		return nil, apperrors.Validation("apply request is required")
	}
	if !identity.IsAdmin() {
		req.CandidateID = identity.UserID
	}

	app, err := s.apps.Apply(ctx, req)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "application.submitted", app)
	return app, nil
}

// ChangeStatus moves an application through the funnel. Posting owners may
// request any transition; candidates may only withdraw their own application;
// admins bypass both checks.
func (s *PipelineService) ChangeStatus(
	ctx context.Context,
	identity auth.Identity,
	applicationID string,
	req model.StatusChangeRequest,
) (*model.JobApplication, error) {
	if err := s.authorizeTransition(ctx, identity, applicationID, req.Status); err != nil {
		return nil, err
	}

	app, err := s.apps.ChangeStatus(ctx, applicationID, req)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "application.status_changed", app)
	return app, nil
}

// Reject is the owner-facing rejection path; it requires a reason.
func (s *PipelineService) Reject(
	ctx context.Context,
	identity auth.Identity,
	applicationID, reason string,
) (*model.JobApplication, error) {
	if err := s.authorizeTransition(ctx, identity, applicationID, model.StatusRejected); err != nil {
		return nil, err
	}

	app, err := s.apps.Reject(ctx, applicationID, reason)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "application.status_changed", app)
	return app, nil
}

// GetApplication returns an application visible to its owner, its candidate,
// or an admin.
func (s *PipelineService) GetApplication(
	ctx context.Context,
	identity auth.Identity,
	applicationID string,
) (*model.JobApplication, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(identity, app) {
		return nil, apperrors.Unauthorized("not a participant in this application")
	}
	return app, nil
}

// ListJobApplications returns a posting's applications to its owner or an admin.
func (s *PipelineService) ListJobApplications(
	ctx context.Context,
	identity auth.Identity,
	jobID string,
) ([]*model.JobApplication, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !identity.IsAdmin() && job.OwnerID != identity.UserID {
		return nil, apperrors.Unauthorized("only the posting owner can list applications")
	}
	return s.apps.ListByJob(ctx, jobID)
}

func (s *PipelineService) authorizeTransition(
	ctx context.Context,
	identity auth.Identity,
	applicationID string,
	target model.ApplicationStatus,
) error {
	if identity.IsAdmin() {
		return nil
	}

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}

	if identity.UserID == app.OwnerID && identity.IsHirer() {
		return nil
	}
	if identity.UserID == app.CandidateID {
		if target == model.StatusWithdrawn {
			return nil
		}
		return apperrors.Unauthorized("candidates may only withdraw their own application")
	}
	return apperrors.Unauthorized("not a participant in this application")
}

func isParticipant(identity auth.Identity, app *model.JobApplication) bool {
	return identity.IsAdmin() ||
		identity.UserID == app.OwnerID ||
		identity.UserID == app.CandidateID
}

// emit delivers a pipeline event without letting notifier failures surface.
func (s *PipelineService) emit(ctx context.Context, eventType string, app *model.JobApplication) {
	if s.notifier == nil {
		return
	}

	event := PipelineEvent{
		Type:          eventType,
		JobID:         app.JobID,
		ApplicationID: app.ID,
		CandidateID:   app.CandidateID,
		Status:        app.Status,
		Stage:         app.CurrentStage,
		OccurredAt:    time.Now(),
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "pipeline notification failed",
			"event", eventType, "application_id", app.ID, "err", err)
	}
}
