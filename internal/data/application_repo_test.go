package data

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backlot/backlot-api/internal/domain/model"
	apperrors "github.com/backlot/backlot-api/internal/errors"
	"github.com/backlot/backlot-api/internal/testutil"
)

func quietRepoConfig(tp TimeProvider) RepoConfig {
	return RepoConfig{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		TimeProvider: tp,
	}
}

// createActiveJob creates a posting and toggles it to active so it accepts
// applications.
func createActiveJob(t *testing.T, jobs *JobRepo, positions int) *model.Job {
	t.Helper()
	ctx := context.Background()

	job, err := jobs.Create(ctx, testutil.NewCreateJobRequest(func(r *model.CreateJobRequest) {
		r.Positions = positions
	}))
	require.NoError(t, err)

	job, err = jobs.SetStatus(ctx, job.ID, model.JobStatusActive)
	require.NoError(t, err)
	return job
}

func TestApplyCreatesApplicationAndCountsIt(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		tp := NewFixedTimeProvider(testutil.TestTime())
		jobs := NewJobRepo(db, quietRepoConfig(tp))
		apps := NewApplicationRepo(db, quietRepoConfig(tp))

		job := createActiveJob(t, jobs, 2)

		app, err := apps.Apply(ctx, testutil.NewApplyRequest(job.ID))
		require.NoError(t, err)

		assert.Equal(t, model.StatusApplied, app.Status)
		assert.Equal(t, job.OwnerID, app.OwnerID)
		require.Len(t, app.Timeline, 1)
		assert.Equal(t, "Application submitted", app.Timeline[0].Title)

		job, err = jobs.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, job.Progress.ApplicationsReceived)
		assert.Equal(t, 0, job.Progress.ProgressPercentage)
	})
}

func TestApplyRejectsDuplicateCandidate(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		jobs := NewJobRepo(db, quietRepoConfig(nil))
		apps := NewApplicationRepo(db, quietRepoConfig(nil))

		job := createActiveJob(t, jobs, 1)

		_, err := apps.Apply(ctx, testutil.NewApplyRequest(job.ID))
		require.NoError(t, err)

		_, err = apps.Apply(ctx, testutil.NewApplyRequest(job.ID))
		assert.True(t, apperrors.IsConflict(err), "expected conflict, got %v", err)

		// The failed apply must not have bumped the received counter.
		job, err = jobs.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, job.Progress.ApplicationsReceived)
	})
}

func TestApplyRejectsNonActiveJob(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		jobs := NewJobRepo(db, quietRepoConfig(nil))
		apps := NewApplicationRepo(db, quietRepoConfig(nil))

		job, err := jobs.Create(ctx, testutil.NewCreateJobRequest())
		require.NoError(t, err)

		_, err = apps.Apply(ctx, testutil.NewApplyRequest(job.ID))
		assert.True(t, apperrors.IsValidation(err), "draft postings do not accept applications")
	})
}

func TestChangeStatusFullFunnel(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		tp := NewFixedTimeProvider(testutil.TestTime())
		jobs := NewJobRepo(db, quietRepoConfig(tp))
		apps := NewApplicationRepo(db, quietRepoConfig(tp))

		job := createActiveJob(t, jobs, 1)
		app, err := apps.Apply(ctx, testutil.NewApplyRequest(job.ID))
		require.NoError(t, err)

		statuses := []model.ApplicationStatus{
			model.StatusInReview,
			model.StatusInterview,
			model.StatusOffer,
			model.StatusHired,
		}
		for _, status := range statuses {
			tp.AddTime(time.Minute)
			app, err = apps.ChangeStatus(ctx, app.ID, testutil.StatusChange(status))
			require.NoError(t, err)
			assert.Equal(t, status, app.Status)
		}

		// One application that traversed every threshold fully processes the
		// funnel: each counter is 1 and the job is filled.
		job, err = jobs.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, job.Progress.ApplicationsReceived)
		assert.Equal(t, 1, job.Progress.ApplicationsReviewed)
		assert.Equal(t, 1, job.Progress.InterviewsScheduled)
		assert.Equal(t, 1, job.Progress.OffersExtended)
		assert.Equal(t, 1, job.Progress.HiredCandidates)
		assert.Equal(t, 100, job.Progress.ProgressPercentage)
		assert.Equal(t, 1, job.PositionsFilled)
		assert.Equal(t, model.JobStatusFilled, job.Status)

		// Timeline carries the submission plus one event per transition.
		assert.Len(t, app.Timeline, 5)
	})
}

func TestChangeStatusRepeatDoesNotDoubleCount(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		tp := NewFixedTimeProvider(testutil.TestTime())
		jobs := NewJobRepo(db, quietRepoConfig(tp))
		apps := NewApplicationRepo(db, quietRepoConfig(tp))

		job := createActiveJob(t, jobs, 1)
		app, err := apps.Apply(ctx, testutil.NewApplyRequest(job.ID))
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			tp.AddTime(time.Minute)
			app, err = apps.ChangeStatus(ctx, app.ID, testutil.StatusChange(model.StatusInReview))
			require.NoError(t, err)
		}

		job, err = jobs.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, job.Progress.ApplicationsReviewed, "same-rank repeats must not re-count")
	})
}

func TestRejectSetsReasonAndDate(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		tp := NewFixedTimeProvider(testutil.TestTime())
		jobs := NewJobRepo(db, quietRepoConfig(tp))
		apps := NewApplicationRepo(db, quietRepoConfig(tp))

		job := createActiveJob(t, jobs, 1)
		app, err := apps.Apply(ctx, testutil.NewApplyRequest(job.ID))
		require.NoError(t, err)

		tp.AddTime(time.Minute)
		app, err = apps.Reject(ctx, app.ID, "Not available for the shoot dates")
		require.NoError(t, err)

		assert.Equal(t, model.StatusRejected, app.Status)
		require.NotNil(t, app.RejectionReason)
		assert.Equal(t, "Not available for the shoot dates", *app.RejectionReason)
		require.NotNil(t, app.RejectionDate)
		assert.True(t, app.RejectionDate.Equal(tp.Now()))

		// Rejection shares the reviewed rank, so the posting still counts it
		// as processed.
		job, err = jobs.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, job.Progress.ApplicationsReviewed)
	})
}

func TestRejectRequiresReason(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		apps := NewApplicationRepo(db, quietRepoConfig(nil))

		_, err := apps.Reject(context.Background(), "app-1", "   ")
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "rejection_reason", apperrors.GetField(err))
	})
}

func TestChangeStatusUnknownApplication(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		apps := NewApplicationRepo(db, quietRepoConfig(nil))

		_, err := apps.ChangeStatus(context.Background(), "missing",
			testutil.StatusChange(model.StatusInReview))
		assert.True(t, apperrors.IsNotFound(err), "expected not found, got %v", err)
	})
}

func TestChangeStatusLeavesNothingHalfApplied(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		jobs := NewJobRepo(db, quietRepoConfig(nil))
		apps := NewApplicationRepo(db, quietRepoConfig(nil))

		job := createActiveJob(t, jobs, 1)
		app, err := apps.Apply(ctx, testutil.NewApplyRequest(job.ID))
		require.NoError(t, err)

		badStage := model.HiringStage("warp_drive")
		_, err = apps.ChangeStatus(ctx, app.ID,
			testutil.StatusChange(model.StatusInReview, func(r *model.StatusChangeRequest) {
				r.Stage = &badStage
			}))
		require.Error(t, err)

		app, err = apps.GetByID(ctx, app.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusApplied, app.Status, "application untouched by failed transition")

		job, err = jobs.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, job.Progress.ApplicationsReviewed, "counters untouched by failed transition")
	})
}

func TestWithdrawalMovesNoCounters(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		jobs := NewJobRepo(db, quietRepoConfig(nil))
		apps := NewApplicationRepo(db, quietRepoConfig(nil))

		job := createActiveJob(t, jobs, 1)
		app, err := apps.Apply(ctx, testutil.NewApplyRequest(job.ID))
		require.NoError(t, err)

		app, err = apps.ChangeStatus(ctx, app.ID, testutil.StatusChange(model.StatusWithdrawn))
		require.NoError(t, err)
		assert.Equal(t, model.StatusWithdrawn, app.Status)

		job, err = jobs.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, job.Progress.ApplicationsReceived, "received is permanent")
		assert.Equal(t, 0, job.Progress.ApplicationsReviewed)
	})
}

func TestListByJobReturnsArrivalOrder(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		tp := NewFixedTimeProvider(testutil.TestTime())
		jobs := NewJobRepo(db, quietRepoConfig(tp))
		apps := NewApplicationRepo(db, quietRepoConfig(tp))

		job := createActiveJob(t, jobs, 3)
		for i, candidate := range []string{"actor-1", "actor-2", "actor-3"} {
			tp.AddTime(time.Duration(i+1) * time.Minute)
			_, err := apps.Apply(ctx, testutil.NewApplyRequest(job.ID, func(r *model.ApplyRequest) {
				r.CandidateID = candidate
			}))
			require.NoError(t, err)
		}

		list, err := apps.ListByJob(ctx, job.ID)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "actor-1", list[0].CandidateID)
		assert.Equal(t, "actor-3", list[2].CandidateID)
	})
}
