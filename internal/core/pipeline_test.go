package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/backlot/backlot-api/internal/core"
	"github.com/backlot/backlot-api/internal/domain/auth"
	"github.com/backlot/backlot-api/internal/domain/model"
	apperrors "github.com/backlot/backlot-api/internal/errors"
	"github.com/backlot/backlot-api/internal/mocks"
)

var (
	candidateIdentity = auth.Identity{UserID: "actor-1", Role: auth.RoleActor}
	ownerIdentity     = auth.Identity{UserID: "hirer-1", Role: auth.RoleHirer}
	otherHirer        = auth.Identity{UserID: "hirer-2", Role: auth.RoleHirer}
	adminIdentity     = auth.Identity{UserID: "admin-1", Role: auth.RoleAdmin}
)

func sampleApplication() *model.JobApplication {
	return &model.JobApplication{
		ID:           "app-1",
		JobID:        "job-1",
		CandidateID:  "actor-1",
		OwnerID:      "hirer-1",
		Status:       model.StatusApplied,
		CurrentStage: model.StageReceivingApplications,
	}
}

func newPipelineService(t *testing.T, apps core.ApplicationRepository, jobs core.JobRepository, notifier core.Notifier) *core.PipelineService {
	t.Helper()
	svc, err := core.NewPipelineService(core.PipelineServiceOptions{
		Applications: apps,
		Jobs:         jobs,
		Notifier:     notifier,
		Logger:       quietLogger(),
	})
	require.NoError(t, err)
	return svc
}

func TestNewPipelineServiceRequiresRepositories(t *testing.T) {
	_, err := core.NewPipelineService(core.PipelineServiceOptions{Jobs: &stubJobRepo{}})
	assert.Error(t, err)

	_, err = core.NewPipelineService(core.PipelineServiceOptions{Applications: &stubApplicationRepo{}})
	assert.Error(t, err)
}

func TestApplyForcesCandidateFromIdentity(t *testing.T) {
	var captured *model.ApplyRequest
	apps := &stubApplicationRepo{
		ApplyFn: func(_ context.Context, req *model.ApplyRequest) (*model.JobApplication, error) {
			captured = req
			return sampleApplication(), nil
		},
	}
	svc := newPipelineService(t, apps, &stubJobRepo{}, nil)

	req := &model.ApplyRequest{JobID: "job-1", CandidateID: "someone-else"}
	app, err := svc.Apply(context.Background(), candidateIdentity, req)
	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.Equal(t, "actor-1", captured.CandidateID)
	assert.Equal(t, "app-1", app.ID)
}

func TestApplyAdminMayApplyOnBehalf(t *testing.T) {
	apps := &stubApplicationRepo{
		ApplyFn: func(_ context.Context, req *model.ApplyRequest) (*model.JobApplication, error) {
			assert.Equal(t, "actor-7", req.CandidateID)
			return sampleApplication(), nil
		},
	}
	svc := newPipelineService(t, apps, &stubJobRepo{}, nil)

	_, err := svc.Apply(context.Background(), adminIdentity,
		&model.ApplyRequest{JobID: "job-1", CandidateID: "actor-7"})
	assert.NoError(t, err)
}

func TestApplyRejectsHirers(t *testing.T) {
	svc := newPipelineService(t, &stubApplicationRepo{}, &stubJobRepo{}, nil)

	_, err := svc.Apply(context.Background(), ownerIdentity, &model.ApplyRequest{JobID: "job-1"})
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestChangeStatusOwnerMayRunFullFunnel(t *testing.T) {
	apps := &stubApplicationRepo{
		GetByIDFn: func(context.Context, string) (*model.JobApplication, error) {
			return sampleApplication(), nil
		},
		ChangeStatusFn: func(_ context.Context, id string, req model.StatusChangeRequest) (*model.JobApplication, error) {
			app := sampleApplication()
			app.Status = req.Status
			return app, nil
		},
	}
	svc := newPipelineService(t, apps, &stubJobRepo{}, nil)

	app, err := svc.ChangeStatus(context.Background(), ownerIdentity, "app-1",
		model.StatusChangeRequest{Status: model.StatusInterview})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInterview, app.Status)
}

func TestChangeStatusCandidateMayOnlyWithdraw(t *testing.T) {
	apps := &stubApplicationRepo{
		GetByIDFn: func(context.Context, string) (*model.JobApplication, error) {
			return sampleApplication(), nil
		},
		ChangeStatusFn: func(_ context.Context, id string, req model.StatusChangeRequest) (*model.JobApplication, error) {
			app := sampleApplication()
			app.Status = req.Status
			return app, nil
		},
	}
	svc := newPipelineService(t, apps, &stubJobRepo{}, nil)

	_, err := svc.ChangeStatus(context.Background(), candidateIdentity, "app-1",
		model.StatusChangeRequest{Status: model.StatusHired})
	assert.True(t, apperrors.IsUnauthorized(err), "candidate promoting themselves must be denied")

	app, err := svc.ChangeStatus(context.Background(), candidateIdentity, "app-1",
		model.StatusChangeRequest{Status: model.StatusWithdrawn})
	require.NoError(t, err)
	assert.Equal(t, model.StatusWithdrawn, app.Status)
}

func TestChangeStatusStrangerDenied(t *testing.T) {
	apps := &stubApplicationRepo{
		GetByIDFn: func(context.Context, string) (*model.JobApplication, error) {
			return sampleApplication(), nil
		},
	}
	svc := newPipelineService(t, apps, &stubJobRepo{}, nil)

	_, err := svc.ChangeStatus(context.Background(), otherHirer, "app-1",
		model.StatusChangeRequest{Status: model.StatusInReview})
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestChangeStatusAdminSkipsOwnershipLookup(t *testing.T) {
	// GetByIDFn is deliberately unset: an admin transition must not need it.
	apps := &stubApplicationRepo{
		ChangeStatusFn: func(_ context.Context, id string, req model.StatusChangeRequest) (*model.JobApplication, error) {
			return sampleApplication(), nil
		},
	}
	svc := newPipelineService(t, apps, &stubJobRepo{}, nil)

	_, err := svc.ChangeStatus(context.Background(), adminIdentity, "app-1",
		model.StatusChangeRequest{Status: model.StatusOffer})
	assert.NoError(t, err)
}

func TestRejectDelegatesWithReason(t *testing.T) {
	apps := &stubApplicationRepo{
		GetByIDFn: func(context.Context, string) (*model.JobApplication, error) {
			return sampleApplication(), nil
		},
		RejectFn: func(_ context.Context, id, reason string) (*model.JobApplication, error) {
			assert.Equal(t, "app-1", id)
			assert.Equal(t, "role already cast", reason)
			app := sampleApplication()
			app.Status = model.StatusRejected
			return app, nil
		},
	}
	svc := newPipelineService(t, apps, &stubJobRepo{}, nil)

	app, err := svc.Reject(context.Background(), ownerIdentity, "app-1", "role already cast")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, app.Status)
}

func TestNotifierFailureDoesNotFailTransition(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().
		Notify(gomock.Any(), gomock.Any()).
		Return(errors.New("endpoint down"))

	apps := &stubApplicationRepo{
		GetByIDFn: func(context.Context, string) (*model.JobApplication, error) {
			return sampleApplication(), nil
		},
		ChangeStatusFn: func(_ context.Context, id string, req model.StatusChangeRequest) (*model.JobApplication, error) {
			app := sampleApplication()
			app.Status = req.Status
			return app, nil
		},
	}
	svc := newPipelineService(t, apps, &stubJobRepo{}, notifier)

	_, err := svc.ChangeStatus(context.Background(), ownerIdentity, "app-1",
		model.StatusChangeRequest{Status: model.StatusInReview})
	assert.NoError(t, err, "notification delivery is best-effort")
}

func TestApplyEmitsSubmittedEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().
		Notify(gomock.Any(), gomock.AssignableToTypeOf(core.PipelineEvent{})).
		DoAndReturn(func(_ context.Context, event core.PipelineEvent) error {
			assert.Equal(t, "application.submitted", event.Type)
			assert.Equal(t, "job-1", event.JobID)
			assert.Equal(t, "app-1", event.ApplicationID)
			return nil
		})

	apps := &stubApplicationRepo{
		ApplyFn: func(context.Context, *model.ApplyRequest) (*model.JobApplication, error) {
			return sampleApplication(), nil
		},
	}
	svc := newPipelineService(t, apps, &stubJobRepo{}, notifier)

	_, err := svc.Apply(context.Background(), candidateIdentity, &model.ApplyRequest{JobID: "job-1"})
	assert.NoError(t, err)
}

func TestGetApplicationVisibleToParticipantsOnly(t *testing.T) {
	apps := &stubApplicationRepo{
		GetByIDFn: func(context.Context, string) (*model.JobApplication, error) {
			return sampleApplication(), nil
		},
	}
	svc := newPipelineService(t, apps, &stubJobRepo{}, nil)

	for _, identity := range []auth.Identity{candidateIdentity, ownerIdentity, adminIdentity} {
		_, err := svc.GetApplication(context.Background(), identity, "app-1")
		assert.NoError(t, err, "role %s", identity.Role)
	}

	_, err := svc.GetApplication(context.Background(), otherHirer, "app-1")
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestListJobApplicationsRequiresOwnership(t *testing.T) {
	apps := &stubApplicationRepo{
		ListByJobFn: func(context.Context, string) ([]*model.JobApplication, error) {
			return []*model.JobApplication{sampleApplication()}, nil
		},
	}
	jobs := &stubJobRepo{
		GetByIDFn: func(context.Context, string) (*model.Job, error) {
			return &model.Job{ID: "job-1", OwnerID: "hirer-1"}, nil
		},
	}
	svc := newPipelineService(t, apps, jobs, nil)

	list, err := svc.ListJobApplications(context.Background(), ownerIdentity, "job-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListJobApplications(context.Background(), otherHirer, "job-1")
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = svc.ListJobApplications(context.Background(), adminIdentity, "job-1")
	assert.NoError(t, err)
}
