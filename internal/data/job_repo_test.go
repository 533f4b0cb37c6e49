package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backlot/backlot-api/internal/domain/model"
	apperrors "github.com/backlot/backlot-api/internal/errors"
	"github.com/backlot/backlot-api/internal/testutil"
)

func TestCreateJobStartsAsDraft(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		jobs := NewJobRepo(db, quietRepoConfig(NewFixedTimeProvider(testutil.TestTime())))

		job, err := jobs.Create(ctx, testutil.NewCreateJobRequest())
		require.NoError(t, err)

		assert.Equal(t, model.JobStatusDraft, job.Status)
		assert.Equal(t, model.StageReceivingApplications, job.Progress.CurrentStage)
		require.Len(t, job.Progress.StageHistory, 1)
		assert.Equal(t, 0, job.Progress.ApplicationsReceived)

		// Tokenized from title, department, type, and tags.
		assert.Contains(t, job.SearchTerms, "camera")
		assert.Contains(t, job.SearchTerms, "steadicam")
		assert.NotContains(t, job.SearchTerms, "Lead", "terms are lowercased")
	})
}

func TestCreateJobValidation(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		jobs := NewJobRepo(db, quietRepoConfig(nil))

		_, err := jobs.Create(context.Background(),
			testutil.NewCreateJobRequest(func(r *model.CreateJobRequest) { r.Positions = 0 }))
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestSetStatusRejectsDerivedStatuses(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		jobs := NewJobRepo(db, quietRepoConfig(nil))

		job, err := jobs.Create(ctx, testutil.NewCreateJobRequest())
		require.NoError(t, err)

		_, err = jobs.SetStatus(ctx, job.ID, model.JobStatusFilled)
		assert.True(t, apperrors.IsValidation(err), "filled is derived, never set directly")

		_, err = jobs.SetStatus(ctx, job.ID, model.JobStatusDraft)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestSetStatusWritesAudit(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		jobs := NewJobRepo(db, quietRepoConfig(nil))

		job, err := jobs.Create(ctx, testutil.NewCreateJobRequest())
		require.NoError(t, err)

		_, err = jobs.SetStatus(ctx, job.ID, model.JobStatusActive)
		require.NoError(t, err)

		var count int
		err = db.QueryRowContext(ctx,
			`SELECT count(*) FROM job_audit WHERE job_id = $1 AND action = 'status_change'`,
			job.ID).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestSetStageAppendsHistory(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		tp := NewFixedTimeProvider(testutil.TestTime())
		jobs := NewJobRepo(db, quietRepoConfig(tp))

		job, err := jobs.Create(ctx, testutil.NewCreateJobRequest())
		require.NoError(t, err)

		tp.AddTime(time.Hour)
		job, err = jobs.SetStage(ctx, job.ID, model.StageInterviews)
		require.NoError(t, err)

		assert.Equal(t, model.StageInterviews, job.Progress.CurrentStage)
		require.Len(t, job.Progress.StageHistory, 2)
		assert.Equal(t, model.StageInterviews, job.Progress.StageHistory[1].Stage)

		// Setting the same stage again is a no-op.
		job, err = jobs.SetStage(ctx, job.ID, model.StageInterviews)
		require.NoError(t, err)
		assert.Len(t, job.Progress.StageHistory, 2)
	})
}

func TestSoftDeleteHidesJobAndKeepsAudit(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		jobs := NewJobRepo(db, quietRepoConfig(nil))

		job, err := jobs.Create(ctx, testutil.NewCreateJobRequest())
		require.NoError(t, err)

		require.NoError(t, jobs.SoftDelete(ctx, job.ID))

		_, err = jobs.GetByID(ctx, job.ID)
		assert.True(t, apperrors.IsNotFound(err))

		var snapshotTitle string
		err = db.QueryRowContext(ctx,
			`SELECT snapshot->>'title' FROM job_audit WHERE job_id = $1 AND action = 'soft_delete'`,
			job.ID).Scan(&snapshotTitle)
		require.NoError(t, err)
		assert.Equal(t, job.Title, snapshotTitle)
	})
}

func TestListByOwner(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		tp := NewFixedTimeProvider(testutil.TestTime())
		jobs := NewJobRepo(db, quietRepoConfig(tp))

		for _, owner := range []string{"hirer-1", "hirer-1", "hirer-2"} {
			tp.AddTime(time.Minute)
			_, err := jobs.Create(ctx, testutil.NewCreateJobRequest(
				func(r *model.CreateJobRequest) { r.OwnerID = owner }))
			require.NoError(t, err)
		}

		list, err := jobs.ListByOwner(ctx, "hirer-1")
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}
