package data

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/backlot/backlot-api/internal/data/pgxutil"
	"github.com/backlot/backlot-api/internal/domain/model"
	"github.com/backlot/backlot-api/internal/domain/pipeline"
	apperrors "github.com/backlot/backlot-api/internal/errors"
)

// ApplicationRepo provides database operations for job applications. Status
// changes run through a single transaction that updates the application and
// the parent job's progress aggregate together; no other writer is allowed to
// touch both records in one operation.
type ApplicationRepo struct {
	DB           *sql.DB
	cfg          RepoConfig
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewApplicationRepo creates a new ApplicationRepo with the given database
// connection and configuration.
func NewApplicationRepo(db *sql.DB, cfg RepoConfig) *ApplicationRepo {
	return &ApplicationRepo{
		DB:           db,
		cfg:          cfg,
		timeProvider: cfg.timeProvider(),
		logger:       cfg.logger(),
	}
}

const selectApplicationForUpdate = `
	SELECT ` + applicationColumns + `
	FROM job_applications
	WHERE id = $1
	FOR UPDATE`

const selectJobForUpdate = `
	SELECT ` + jobColumns + `
	FROM jobs
	WHERE id = $1 AND deleted_at IS NULL
	FOR UPDATE`

// lockApplication reads the application row under a row lock. Lock order is
// always application first, then job, so concurrent transitions on different
// applications of the same job cannot deadlock.
func lockApplication(ctx context.Context, tx pgx.Tx, id string) (*model.JobApplication, error) {
	app, err := scanApplication(tx.QueryRow(ctx, selectApplicationForUpdate, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("application %s not found", id)
		}
		return nil, err
	}
	return app, nil
}

func lockJob(ctx context.Context, tx pgx.Tx, id string) (*model.Job, error) {
	job, err := scanJob(tx.QueryRow(ctx, selectJobForUpdate, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("job %s not found", id)
		}
		return nil, err
	}
	return job, nil
}

// Apply creates an application for an active posting and bumps the job's
// applications_received counter in the same transaction.
func (r *ApplicationRepo) Apply(ctx context.Context, req *model.ApplyRequest) (*model.JobApplication, error) {
	if req == nil {
		return nil, apperrors.Validation("apply request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	appID := uuid.NewString()

	err := r.runTx(ctx, func(tx pgx.Tx) error {
		job, err := lockJob(ctx, tx, req.JobID)
		if err != nil {
			return err
		}
		if job.Status != model.JobStatusActive {
			return apperrors.Validation("job is not accepting applications")
		}

		now := r.timeProvider.Now()
		stage := job.Progress.CurrentStage
		if stage == "" {
			stage = model.StageReceivingApplications
		}

		timeline, err := marshalTimeline(pipeline.InitialTimeline(appID, stage, now))
		if err != nil {
			return err
		}

		var notes *string
		if n := strings.TrimSpace(req.Notes); n != "" {
			notes = &n
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO job_applications (
				id, job_id, candidate_id, owner_id, status, current_stage,
				timeline, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		`, appID, job.ID, req.CandidateID, job.OwnerID,
			model.StatusApplied, stage, timeline, notes, now); err != nil {
			return err
		}

		progress := pipeline.RecordApplication(job.Progress)
		if _, err := tx.Exec(ctx, `
			UPDATE jobs
			SET applications_received = $2,
			    progress_percentage = $3,
			    updated_at = $4
			WHERE id = $1
		`, job.ID, progress.ApplicationsReceived, progress.ProgressPercentage, now); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, coordinatorError(err, "application was not created")
	}

	return r.GetByID(ctx, appID)
}

// ChangeStatus applies a status transition to the application and its job's
// progress aggregate as one atomic unit. Either both records reflect the
// change or neither does. After a successful commit the application is read
// back fresh; that second read sits outside the consistency boundary.
func (r *ApplicationRepo) ChangeStatus(
	ctx context.Context,
	id string,
	req model.StatusChangeRequest,
) (*model.JobApplication, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	err := r.runTx(ctx, func(tx pgx.Tx) error {
		app, err := lockApplication(ctx, tx, id)
		if err != nil {
			return err
		}
		job, err := lockJob(ctx, tx, app.JobID)
		if err != nil {
			return err
		}

		now := r.timeProvider.Now()
		tr, err := pipeline.BuildTransition(app, job, req, now)
		if err != nil {
			return apperrors.Validation(err.Error())
		}

		timeline, err := marshalTimeline(append(app.Timeline, tr.Event))
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			UPDATE job_applications
			SET status = $2,
			    current_stage = $3,
			    timeline = $4,
			    notes = $5,
			    rejection_reason = $6,
			    rejection_date = $7,
			    updated_at = $8
			WHERE id = $1
		`, app.ID, tr.NewStatus, tr.Stage, timeline,
			tr.Notes, tr.RejectionReason, tr.RejectionDate, now); err != nil {
			return err
		}

		progress := pipeline.ApplyRankChange(
			job.Progress, tr.PrevStatus.Rank(), tr.NewStatus.Rank(), job.Positions)
		status := pipeline.DeriveJobStatus(job.Status, progress.HiredCandidates, job.Positions)

		if _, err := tx.Exec(ctx, `
			UPDATE jobs
			SET applications_reviewed = $2,
			    interviews_scheduled = $3,
			    offers_extended = $4,
			    hired_candidates = $5,
			    progress_percentage = $6,
			    positions_filled = $5,
			    status = $7,
			    updated_at = $8
			WHERE id = $1
		`, job.ID, progress.ApplicationsReviewed, progress.InterviewsScheduled,
			progress.OffersExtended, progress.HiredCandidates,
			progress.ProgressPercentage, status, now); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, coordinatorError(err, "status change was not applied")
	}

	return r.GetByID(ctx, id)
}

// Reject is a convenience wrapper that always targets the rejected status and
// requires a non-empty reason.
func (r *ApplicationRepo) Reject(ctx context.Context, id, reason string) (*model.JobApplication, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.ValidationField("rejection_reason", "rejection reason is required")
	}
	return r.ChangeStatus(ctx, id, model.StatusChangeRequest{
		Status:          model.StatusRejected,
		RejectionReason: reason,
	})
}

// GetByID retrieves an application by id.
func (r *ApplicationRepo) GetByID(ctx context.Context, id string) (*model.JobApplication, error) {
	var app *model.JobApplication
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var scanErr error
		app, scanErr = scanApplication(conn.QueryRow(ctx, `
			SELECT `+applicationColumns+`
			FROM job_applications
			WHERE id = $1
		`, id))
		return scanErr
	})
	if err != nil {
		if mapped := apperrors.MapDBError(err); apperrors.IsNotFound(mapped) {
			return nil, apperrors.NotFoundf("application %s not found", id)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "get application")
	}
	return app, nil
}

// ListByJob returns the applications for a job in arrival order.
func (r *ApplicationRepo) ListByJob(ctx context.Context, jobID string) ([]*model.JobApplication, error) {
	var apps []*model.JobApplication
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+applicationColumns+`
			FROM job_applications
			WHERE job_id = $1
			ORDER BY created_at ASC, id ASC
		`, jobID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			app, scanErr := scanApplication(rows)
			if scanErr != nil {
				return scanErr
			}
			apps = append(apps, app)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.MapDBError(err), apperrors.ErrCodeInternal, "list applications")
	}
	return apps, nil
}

// runTx wraps pgxutil.RunTx with the repo's retry policy.
func (r *ApplicationRepo) runTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return pgxutil.RunTx(ctx, r.DB, pgxutil.RunTxConfig{
		Opts: &sql.TxOptions{
			Isolation: sql.LevelReadCommitted,
			ReadOnly:  false,
		},
		MaxAttempts: r.cfg.txMaxAttempts(),
		RetryDelay:  r.cfg.txRetryDelay(),
		Fn:          fn,
	})
}

// coordinatorError maps a failed transaction to the caller-facing taxonomy.
// AppErrors raised inside the transaction (not-found, validation) pass
// through; anything else means the operation aborted without applying and
// surfaces as operation_failed.
func coordinatorError(err error, message string) error {
	mapped := apperrors.MapDBError(err)
	if apperrors.GetCode(mapped) != "" {
		return mapped
	}
	return apperrors.Wrap(mapped, apperrors.ErrCodeOperationFailed, message)
}
