// Package devseed populates a development database with a small, realistic
// slice of the marketplace: a few active postings, applications in various
// funnel states, and message threads. Seeding is idempotent per run only in
// the sense that it skips postings whose title already exists for the owner.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/backlot/backlot-api/internal/data"
	"github.com/backlot/backlot-api/internal/domain/model"
)

const seedOwnerID = "dev-hirer-1"

// Services bundles the repositories needed for development seeding.
type Services struct {
	DB       *sql.DB
	jobs     *data.JobRepo
	apps     *data.ApplicationRepo
	messages *data.MessageRepo
}

// NewServices constructs the repositories for seeding using the provided DB.
func NewServices(db *sql.DB, logger *slog.Logger) Services {
	cfg := data.RepoConfig{Logger: logger}
	return Services{
		DB:       db,
		jobs:     data.NewJobRepo(db, cfg),
		apps:     data.NewApplicationRepo(db, cfg),
		messages: data.NewMessageRepo(db, cfg),
	}
}

// Run executes the development seeding workflow against the provided DB.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	failures := 0
	for _, spec := range seedPostings() {
		if err := seedPosting(ctx, svcs, spec); err != nil {
			failures++
			logger.WarnContext(ctx, "seed posting failed", "title", spec.job.Title, "error", err)
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	logger.InfoContext(ctx, "dev seed complete", "postings", len(seedPostings()))
	return nil
}

type applicantSpec struct {
	candidateID string
	statuses    []model.ApplicationStatus
	message     string
}

type postingSpec struct {
	job        model.CreateJobRequest
	applicants []applicantSpec
}

func seedPostings() []postingSpec {
	deadline := time.Now().AddDate(0, 1, 0).Truncate(time.Hour)
	return []postingSpec{
		{
			job: model.CreateJobRequest{
				OwnerID:         seedOwnerID,
				Title:           "Lead Camera Operator",
				Description:     "Feature shoot, six week schedule, on location.",
				Department:      "camera",
				JobType:         "contract",
				SalaryMin:       70000,
				SalaryMax:       95000,
				WorkModality:    model.ModalityOnSite,
				ExperienceLevel: model.ExperienceSenior,
				Deadline:        &deadline,
				Positions:       1,
				Tags:            []string{"film", "steadicam"},
			},
			applicants: []applicantSpec{
				{
					candidateID: "dev-actor-1",
					statuses:    []model.ApplicationStatus{model.StatusInReview, model.StatusInterview},
					message:     "Thanks for applying, can you share your reel?",
				},
				{candidateID: "dev-actor-2", statuses: nil},
			},
		},
		{
			job: model.CreateJobRequest{
				OwnerID:         seedOwnerID,
				Title:           "Gaffer",
				Description:     "Studio lighting for a three camera sitcom.",
				Department:      "lighting",
				JobType:         "full_time",
				SalaryMin:       55000,
				SalaryMax:       75000,
				WorkModality:    model.ModalityOnSite,
				ExperienceLevel: model.ExperienceMid,
				Positions:       2,
				Tags:            []string{"studio", "rigging"},
			},
			applicants: []applicantSpec{
				{
					candidateID: "dev-actor-3",
					statuses: []model.ApplicationStatus{
						model.StatusInReview, model.StatusInterview,
						model.StatusOffer, model.StatusHired,
					},
				},
			},
		},
		{
			job: model.CreateJobRequest{
				OwnerID:         seedOwnerID,
				Title:           "Script Supervisor",
				Description:     "Remote-friendly continuity work for a limited series.",
				Department:      "production",
				JobType:         "contract",
				SalaryMin:       48000,
				SalaryMax:       60000,
				WorkModality:    model.ModalityHybrid,
				ExperienceLevel: model.ExperienceMid,
				Positions:       1,
				Tags:            []string{"continuity"},
			},
		},
	}
}

func seedPosting(ctx context.Context, svcs Services, spec postingSpec) error {
	exists, err := postingExists(ctx, svcs.DB, spec.job.OwnerID, spec.job.Title)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	req := spec.job
	job, err := svcs.jobs.Create(ctx, &req)
	if err != nil {
		return fmt.Errorf("create posting: %w", err)
	}
	if _, err := svcs.jobs.SetStatus(ctx, job.ID, model.JobStatusActive); err != nil {
		return fmt.Errorf("activate posting: %w", err)
	}

	for _, applicant := range spec.applicants {
		if err := seedApplicant(ctx, svcs, job.ID, applicant); err != nil {
			return err
		}
	}
	return nil
}

func seedApplicant(ctx context.Context, svcs Services, jobID string, spec applicantSpec) error {
	app, err := svcs.apps.Apply(ctx, &model.ApplyRequest{
		JobID:       jobID,
		CandidateID: spec.candidateID,
	})
	if err != nil {
		return fmt.Errorf("apply %s: %w", spec.candidateID, err)
	}

	for _, status := range spec.statuses {
		if app, err = svcs.apps.ChangeStatus(ctx, app.ID, model.StatusChangeRequest{Status: status}); err != nil {
			return fmt.Errorf("advance %s to %s: %w", spec.candidateID, status, err)
		}
	}

	if spec.message != "" {
		if _, err := svcs.messages.Send(ctx, &model.SendMessageRequest{
			ApplicationID: app.ID,
			SenderID:      seedOwnerID,
			Body:          spec.message,
		}); err != nil {
			return fmt.Errorf("message %s: %w", spec.candidateID, err)
		}
	}
	return nil
}

func postingExists(ctx context.Context, db *sql.DB, ownerID, title string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM jobs WHERE owner_id = $1 AND title = $2 AND deleted_at IS NULL)`,
		ownerID, title).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check posting existence: %w", err)
	}
	return exists, nil
}
