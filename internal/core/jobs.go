package core

import (
	"context"
	"log/slog"

	"github.com/backlot/backlot-api/internal/domain/auth"
	"github.com/backlot/backlot-api/internal/domain/model"
	apperrors "github.com/backlot/backlot-api/internal/errors"
)

// FeedInvalidator drops cached discovery pages after posting mutations.
// DiscoveryService satisfies it.
type FeedInvalidator interface {
	InvalidateCache(ctx context.Context)
}

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Jobs   JobRepository   // Required
	Feed   FeedInvalidator // Optional: discovery cache invalidation
	Logger *slog.Logger    // Optional
}

// JobService owns posting lifecycle authorization: only hirers create
// postings, and only the posting owner (or an admin) mutates one.
type JobService struct {
	jobs   JobRepository
	feed   FeedInvalidator
	logger *slog.Logger
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Jobs == nil {
		return nil, apperrors.Internal("JobRepository is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &JobService{
		jobs:   opts.Jobs,
		feed:   opts.Feed,
		logger: logger.With("component", "job_service"),
	}, nil
}

// Create opens a new posting in draft. The owner id always comes from the
// identity unless an admin creates on behalf of a hirer.
func (s *JobService) Create(
	ctx context.Context,
	identity auth.Identity,
	req *model.CreateJobRequest,
) (*model.Job, error) {
	if !identity.IsHirer() && !identity.IsAdmin() {
		return nil, apperrors.Unauthorized("only hirers can create postings")
	}
	if req == nil {
		return nil, apperrors.Validation("create request is required")
	}
	if !identity.IsAdmin() {
		req.OwnerID = identity.UserID
	}
	return s.jobs.Create(ctx, req)
}

// Get returns a posting. Drafts are visible only to their owner and admins;
// everything else is visible to any authenticated caller.
func (s *JobService) Get(ctx context.Context, identity auth.Identity, id string) (*model.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status == model.JobStatusDraft && !identity.IsAdmin() && job.OwnerID != identity.UserID {
		return nil, apperrors.NotFoundf("job %s not found", id)
	}
	return job, nil
}

// ListMine returns the caller's own postings.
func (s *JobService) ListMine(ctx context.Context, identity auth.Identity) ([]*model.Job, error) {
	if !identity.IsHirer() && !identity.IsAdmin() {
		return nil, apperrors.Unauthorized("only hirers own postings")
	}
	return s.jobs.ListByOwner(ctx, identity.UserID)
}

// SetStatus toggles a posting's lifecycle status and drops stale feed pages.
func (s *JobService) SetStatus(
	ctx context.Context,
	identity auth.Identity,
	id string,
	status model.JobStatus,
) (*model.Job, error) {
	if err := s.requireOwnership(ctx, identity, id); err != nil {
		return nil, err
	}
	job, err := s.jobs.SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.invalidateFeed(ctx)
	return job, nil
}

// SetStage moves a posting to a new hiring stage.
func (s *JobService) SetStage(
	ctx context.Context,
	identity auth.Identity,
	id string,
	stage model.HiringStage,
) (*model.Job, error) {
	if err := s.requireOwnership(ctx, identity, id); err != nil {
		return nil, err
	}
	job, err := s.jobs.SetStage(ctx, id, stage)
	if err != nil {
		return nil, err
	}
	s.invalidateFeed(ctx)
	return job, nil
}

// Delete soft-deletes a posting and drops stale feed pages.
func (s *JobService) Delete(ctx context.Context, identity auth.Identity, id string) error {
	if err := s.requireOwnership(ctx, identity, id); err != nil {
		return err
	}
	if err := s.jobs.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidateFeed(ctx)
	return nil
}

func (s *JobService) requireOwnership(ctx context.Context, identity auth.Identity, id string) error {
	if identity.IsAdmin() {
		return nil
	}
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if job.OwnerID != identity.UserID {
		return apperrors.Unauthorized("only the posting owner can modify it")
	}
	return nil
}

func (s *JobService) invalidateFeed(ctx context.Context) {
	if s.feed == nil {
		return
	}
	s.feed.InvalidateCache(ctx)
}
