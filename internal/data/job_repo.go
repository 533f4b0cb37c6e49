package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/backlot/backlot-api/internal/data/pgxutil"
	"github.com/backlot/backlot-api/internal/domain/model"
	"github.com/backlot/backlot-api/internal/domain/pipeline"
	apperrors "github.com/backlot/backlot-api/internal/errors"
)

// JobRepo provides database operations for job postings.
type JobRepo struct {
	DB           *sql.DB
	cfg          RepoConfig
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewJobRepo creates a new JobRepo with the given database connection and configuration.
func NewJobRepo(db *sql.DB, cfg RepoConfig) *JobRepo {
	return &JobRepo{
		DB:           db,
		cfg:          cfg,
		timeProvider: cfg.timeProvider(),
		logger:       cfg.logger(),
	}
}

// Create inserts a new posting in draft status with zeroed progress counters.
// Search terms are tokenized from the title, department, job type, and tags.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, apperrors.Validation("create request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	now := r.timeProvider.Now()
	id := uuid.NewString()
	terms := TokenizeSearchTerms(append([]string{req.Title, req.Department, req.JobType}, req.Tags...)...)

	stageHistory, err := marshalStageHistory([]model.StageChange{
		{Stage: model.StageReceivingApplications, ChangedAt: now},
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode stage history")
	}

	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx, `
			INSERT INTO jobs (
				id, owner_id, title, description, department, job_type,
				salary_min, salary_max, work_modality, experience_level,
				deadline, positions_available, search_terms, status,
				current_stage, stage_history, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
				$11, $12, $13, $14, $15, $16, $17, $17)
		`, id, req.OwnerID, req.Title, req.Description, req.Department, req.JobType,
			req.SalaryMin, req.SalaryMax, string(req.WorkModality),
			string(req.ExperienceLevel), req.Deadline, req.Positions,
			terms, model.JobStatusDraft, model.StageReceivingApplications,
			stageHistory, now)
		return execErr
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves a posting by id. Soft-deleted postings are not visible.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	var job *model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var scanErr error
		job, scanErr = scanJob(conn.QueryRow(ctx, `
			SELECT `+jobColumns+`
			FROM jobs
			WHERE id = $1 AND deleted_at IS NULL
		`, id))
		return scanErr
	})
	if err != nil {
		if mapped := apperrors.MapDBError(err); apperrors.IsNotFound(mapped) {
			return nil, apperrors.NotFoundf("job %s not found", id)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "get job")
	}
	return job, nil
}

// ListByOwner returns the postings created by a hirer, soft-deleted excluded,
// newest first.
func (r *JobRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Job, error) {
	var jobs []*model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+jobColumns+`
			FROM jobs
			WHERE owner_id = $1 AND deleted_at IS NULL
			ORDER BY created_at DESC, id DESC
		`, ownerID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			job, scanErr := scanJob(rows)
			if scanErr != nil {
				return scanErr
			}
			jobs = append(jobs, job)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.MapDBError(err), apperrors.ErrCodeInternal, "list jobs")
	}
	return jobs, nil
}

// SetStatus toggles a posting between the caller-settable statuses and writes
// an audit record of the change. Filled and draft are never set this way:
// filled is derived from hiring counters and draft is only an initial state.
func (r *JobRepo) SetStatus(ctx context.Context, id string, status model.JobStatus) (*model.Job, error) {
	if !status.Toggleable() {
		return nil, apperrors.Validationf("status %q cannot be set directly", status)
	}

	err := r.runTx(ctx, func(tx pgx.Tx) error {
		job, err := lockJob(ctx, tx, id)
		if err != nil {
			return err
		}
		if job.Status == status {
			return nil
		}

		now := r.timeProvider.Now()
		if _, err := tx.Exec(ctx, `
			UPDATE jobs SET status = $2, updated_at = $3 WHERE id = $1
		`, id, status, now); err != nil {
			return err
		}
		return insertJobAudit(ctx, tx, job, "status_change", now)
	})
	if err != nil {
		return nil, coordinatorError(err, "status was not changed")
	}
	return r.GetByID(ctx, id)
}

// SetStage moves the posting's hiring stage and appends to the stage history.
// Stage is job-level workflow state and never derived from application ranks.
func (r *JobRepo) SetStage(ctx context.Context, id string, stage model.HiringStage) (*model.Job, error) {
	if !stage.Valid() {
		return nil, apperrors.Validationf("invalid hiring stage %q", stage)
	}

	err := r.runTx(ctx, func(tx pgx.Tx) error {
		job, err := lockJob(ctx, tx, id)
		if err != nil {
			return err
		}
		if job.Progress.CurrentStage == stage {
			return nil
		}

		now := r.timeProvider.Now()
		history, err := marshalStageHistory(append(job.Progress.StageHistory,
			model.StageChange{Stage: stage, ChangedAt: now}))
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE jobs
			SET current_stage = $2, stage_history = $3, updated_at = $4
			WHERE id = $1
		`, id, stage, history, now)
		return err
	})
	if err != nil {
		return nil, coordinatorError(err, "stage was not changed")
	}
	return r.GetByID(ctx, id)
}

// SoftDelete marks a posting deleted and records a snapshot of the row in the
// audit table. Deleted postings disappear from discovery and reads but keep
// their applications intact.
func (r *JobRepo) SoftDelete(ctx context.Context, id string) error {
	err := r.runTx(ctx, func(tx pgx.Tx) error {
		job, err := lockJob(ctx, tx, id)
		if err != nil {
			return err
		}

		now := r.timeProvider.Now()
		if _, err := tx.Exec(ctx, `
			UPDATE jobs SET deleted_at = $2, updated_at = $2 WHERE id = $1
		`, id, now); err != nil {
			return err
		}
		return insertJobAudit(ctx, tx, job, "soft_delete", now)
	})
	if err != nil {
		return coordinatorError(err, "job was not deleted")
	}
	return nil
}

// RecomputeStatus re-derives a posting's filled/active status from its hired
// counter. Used after position counts change.
func (r *JobRepo) RecomputeStatus(ctx context.Context, id string) (*model.Job, error) {
	err := r.runTx(ctx, func(tx pgx.Tx) error {
		job, err := lockJob(ctx, tx, id)
		if err != nil {
			return err
		}
		derived := pipeline.DeriveJobStatus(job.Status, job.Progress.HiredCandidates, job.Positions)
		if derived == job.Status {
			return nil
		}
		_, err = tx.Exec(ctx, `
			UPDATE jobs SET status = $2, updated_at = $3 WHERE id = $1
		`, id, derived, r.timeProvider.Now())
		return err
	})
	if err != nil {
		return nil, coordinatorError(err, "status was not recomputed")
	}
	return r.GetByID(ctx, id)
}

// insertJobAudit stores a jsonb snapshot of the posting before the change.
func insertJobAudit(ctx context.Context, tx pgx.Tx, job *model.Job, action string, now time.Time) error {
	snapshot, err := json.Marshal(job)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO job_audit (id, job_id, action, snapshot, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), job.ID, action, snapshot, now)
	return err
}

// runTx wraps pgxutil.RunTx with the repo's retry policy.
func (r *JobRepo) runTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return pgxutil.RunTx(ctx, r.DB, pgxutil.RunTxConfig{
		Opts:        &sql.TxOptions{Isolation: sql.LevelReadCommitted},
		MaxAttempts: r.cfg.txMaxAttempts(),
		RetryDelay:  r.cfg.txRetryDelay(),
		Fn:          fn,
	})
}
