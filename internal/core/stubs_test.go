package core_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/backlot/backlot-api/internal/core"
	"github.com/backlot/backlot-api/internal/domain/model"
	apperrors "github.com/backlot/backlot-api/internal/errors"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Hand-written function-field stubs for the repository ports. Unset fields
// fail loudly so tests only exercise the calls they declare.

type stubApplicationRepo struct {
	ApplyFn        func(ctx context.Context, req *model.ApplyRequest) (*model.JobApplication, error)
	ChangeStatusFn func(ctx context.Context, id string, req model.StatusChangeRequest) (*model.JobApplication, error)
	RejectFn       func(ctx context.Context, id, reason string) (*model.JobApplication, error)
	GetByIDFn      func(ctx context.Context, id string) (*model.JobApplication, error)
	ListByJobFn    func(ctx context.Context, jobID string) ([]*model.JobApplication, error)
}

var _ core.ApplicationRepository = (*stubApplicationRepo)(nil)

func (s *stubApplicationRepo) Apply(ctx context.Context, req *model.ApplyRequest) (*model.JobApplication, error) {
	if s.ApplyFn == nil {
		return nil, apperrors.Internal("unexpected Apply call")
	}
	return s.ApplyFn(ctx, req)
}

func (s *stubApplicationRepo) ChangeStatus(ctx context.Context, id string, req model.StatusChangeRequest) (*model.JobApplication, error) {
	if s.ChangeStatusFn == nil {
		return nil, apperrors.Internal("unexpected ChangeStatus call")
	}
	return s.ChangeStatusFn(ctx, id, req)
}

func (s *stubApplicationRepo) Reject(ctx context.Context, id, reason string) (*model.JobApplication, error) {
	if s.RejectFn == nil {
		return nil, apperrors.Internal("unexpected Reject call")
	}
	return s.RejectFn(ctx, id, reason)
}

func (s *stubApplicationRepo) GetByID(ctx context.Context, id string) (*model.JobApplication, error) {
	if s.GetByIDFn == nil {
		return nil, apperrors.Internal("unexpected GetByID call")
	}
	return s.GetByIDFn(ctx, id)
}

func (s *stubApplicationRepo) ListByJob(ctx context.Context, jobID string) ([]*model.JobApplication, error) {
	if s.ListByJobFn == nil {
		return nil, apperrors.Internal("unexpected ListByJob call")
	}
	return s.ListByJobFn(ctx, jobID)
}

type stubJobRepo struct {
	CreateFn          func(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	GetByIDFn         func(ctx context.Context, id string) (*model.Job, error)
	ListByOwnerFn     func(ctx context.Context, ownerID string) ([]*model.Job, error)
	SetStatusFn       func(ctx context.Context, id string, status model.JobStatus) (*model.Job, error)
	SetStageFn        func(ctx context.Context, id string, stage model.HiringStage) (*model.Job, error)
	SoftDeleteFn      func(ctx context.Context, id string) error
	RecomputeStatusFn func(ctx context.Context, id string) (*model.Job, error)
}

var _ core.JobRepository = (*stubJobRepo)(nil)

func (s *stubJobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if s.CreateFn == nil {
		return nil, apperrors.Internal("unexpected Create call")
	}
	return s.CreateFn(ctx, req)
}

func (s *stubJobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	if s.GetByIDFn == nil {
		return nil, apperrors.Internal("unexpected GetByID call")
	}
	return s.GetByIDFn(ctx, id)
}

func (s *stubJobRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Job, error) {
	if s.ListByOwnerFn == nil {
		return nil, apperrors.Internal("unexpected ListByOwner call")
	}
	return s.ListByOwnerFn(ctx, ownerID)
}

func (s *stubJobRepo) SetStatus(ctx context.Context, id string, status model.JobStatus) (*model.Job, error) {
	if s.SetStatusFn == nil {
		return nil, apperrors.Internal("unexpected SetStatus call")
	}
	return s.SetStatusFn(ctx, id, status)
}

func (s *stubJobRepo) SetStage(ctx context.Context, id string, stage model.HiringStage) (*model.Job, error) {
	if s.SetStageFn == nil {
		return nil, apperrors.Internal("unexpected SetStage call")
	}
	return s.SetStageFn(ctx, id, stage)
}

func (s *stubJobRepo) SoftDelete(ctx context.Context, id string) error {
	if s.SoftDeleteFn == nil {
		return apperrors.Internal("unexpected SoftDelete call")
	}
	return s.SoftDeleteFn(ctx, id)
}

func (s *stubJobRepo) RecomputeStatus(ctx context.Context, id string) (*model.Job, error) {
	if s.RecomputeStatusFn == nil {
		return nil, apperrors.Internal("unexpected RecomputeStatus call")
	}
	return s.RecomputeStatusFn(ctx, id)
}

type stubMessageRepo struct {
	SendFn              func(ctx context.Context, req *model.SendMessageRequest) (*model.Message, error)
	MarkReadFn          func(ctx context.Context, messageID string) error
	MarkAllReadFn       func(ctx context.Context, applicationID string) error
	UnreadCountFn       func(ctx context.Context, applicationID string) (int, error)
	GetByIDFn           func(ctx context.Context, id string) (*model.Message, error)
	ListByApplicationFn func(ctx context.Context, applicationID string) ([]*model.Message, error)
}

var _ core.MessageRepository = (*stubMessageRepo)(nil)

func (s *stubMessageRepo) Send(ctx context.Context, req *model.SendMessageRequest) (*model.Message, error) {
	if s.SendFn == nil {
		return nil, apperrors.Internal("unexpected Send call")
	}
	return s.SendFn(ctx, req)
}

func (s *stubMessageRepo) MarkRead(ctx context.Context, messageID string) error {
	if s.MarkReadFn == nil {
		return apperrors.Internal("unexpected MarkRead call")
	}
	return s.MarkReadFn(ctx, messageID)
}

func (s *stubMessageRepo) MarkAllRead(ctx context.Context, applicationID string) error {
	if s.MarkAllReadFn == nil {
		return apperrors.Internal("unexpected MarkAllRead call")
	}
	return s.MarkAllReadFn(ctx, applicationID)
}

func (s *stubMessageRepo) UnreadCount(ctx context.Context, applicationID string) (int, error) {
	if s.UnreadCountFn == nil {
		return 0, apperrors.Internal("unexpected UnreadCount call")
	}
	return s.UnreadCountFn(ctx, applicationID)
}

func (s *stubMessageRepo) GetByID(ctx context.Context, id string) (*model.Message, error) {
	if s.GetByIDFn == nil {
		return nil, apperrors.Internal("unexpected GetByID call")
	}
	return s.GetByIDFn(ctx, id)
}

func (s *stubMessageRepo) ListByApplication(ctx context.Context, applicationID string) ([]*model.Message, error) {
	if s.ListByApplicationFn == nil {
		return nil, apperrors.Internal("unexpected ListByApplication call")
	}
	return s.ListByApplicationFn(ctx, applicationID)
}
