package data

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/backlot/backlot-api/internal/data/pgxutil"
	"github.com/backlot/backlot-api/internal/domain/model"
	apperrors "github.com/backlot/backlot-api/internal/errors"
)

const (
	defaultSearchPageSize = 20
	maxSearchPageSize     = 100
)

// JobSearchRepo serves the candidate-facing discovery feed. The primary path
// runs keyset pagination against the job_search relation, a denormalized
// projection of active postings maintained by triggers. When that relation is
// not provisioned the repo degrades to a broad scan of the jobs table with
// in-memory filtering; the degraded page is never resumable.
type JobSearchRepo struct {
	DB     *sql.DB
	cfg    RepoConfig
	logger *slog.Logger
}

// NewJobSearchRepo creates a new JobSearchRepo with the given database
// connection and configuration.
func NewJobSearchRepo(db *sql.DB, cfg RepoConfig) *JobSearchRepo {
	return &JobSearchRepo{
		DB:     db,
		cfg:    cfg,
		logger: cfg.logger(),
	}
}

// Search returns one page of active postings matching the filter set.
// Index unavailability is absorbed here; callers only ever see results or a
// caller-relevant error.
func (r *JobSearchRepo) Search(ctx context.Context, opts *model.JobSearchOptions) (*model.JobSearchPage, error) {
	if opts == nil {
		opts = &model.JobSearchOptions{}
	}
	if err := opts.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	sortKey := opts.Sort
	if sortKey == "" {
		sortKey = model.SortRecent
	}
	limit := clampSearchPageSize(opts.PageSize)

	var cursor *jobCursorPayload
	if opts.Cursor != nil && *opts.Cursor != "" {
		cur, err := decodeJobCursor(*opts.Cursor, sortKey)
		if err != nil {
			return nil, apperrors.ValidationField("cursor", err.Error())
		}
		cursor = &cur
	}

	page, err := r.searchIndexed(ctx, opts, sortKey, limit, cursor)
	if err == nil {
		return page, nil
	}

	mapped := apperrors.MapDBError(err)
	if !apperrors.IsIndexUnavailable(mapped) {
		if apperrors.GetCode(mapped) != "" {
			return nil, mapped
		}
		return nil, apperrors.Wrap(mapped, apperrors.ErrCodeInternal, "job search")
	}

	r.logger.Warn("job search index unavailable, serving degraded scan",
		slog.String("sort", string(sortKey)))

	page, err = r.searchFallback(ctx, opts, sortKey, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.MapDBError(err),
			apperrors.ErrCodeOperationFailed, "job search unavailable")
	}
	return page, nil
}

// searchIndexed runs the keyset query against the job_search relation.
func (r *JobSearchRepo) searchIndexed(
	ctx context.Context,
	opts *model.JobSearchOptions,
	sortKey model.SortKey,
	limit int,
	cursor *jobCursorPayload,
) (*model.JobSearchPage, error) {
	where, args := buildSearchFilters(opts, sortKey)

	if cursor != nil {
		cols, comparator := keysetColumns(sortKey)
		where += fmt.Sprintf(" AND (%s) %s ($%d, $%d)",
			strings.Join(cols, ", "), comparator, len(args)+1, len(args)+2)
		args = append(args, keysetValue(sortKey, cursor), cursor.ID)
	}

	query := `SELECT ` + jobColumns + ` FROM job_search` + where +
		searchOrderClause(sortKey) +
		fmt.Sprintf(` LIMIT $%d`, len(args)+1)
	args = append(args, limit+1) // fetch one extra to know if another page exists

	jobs, err := r.collectJobs(ctx, query, args)
	if err != nil {
		return nil, err
	}

	hasMore := len(jobs) > limit
	if hasMore {
		jobs = jobs[:limit]
	}

	page := &model.JobSearchPage{
		Jobs:      jobs,
		HasMore:   hasMore,
		Resumable: true,
	}
	if hasMore && len(jobs) > 0 {
		token, encErr := EncodeJobCursorFromJob(jobs[len(jobs)-1], sortKey)
		if encErr != nil {
			return nil, encErr
		}
		page.NextCursor = &token
	}
	return page, nil
}

// searchFallback scans active postings and filters in memory. It always
// starts from the beginning and serves at most one page; a cursor from the
// indexed path cannot be honored here.
func (r *JobSearchRepo) searchFallback(
	ctx context.Context,
	opts *model.JobSearchOptions,
	sortKey model.SortKey,
	limit int,
) (*model.JobSearchPage, error) {
	jobs, err := r.collectJobs(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE status = $1 AND deleted_at IS NULL
	`, []any{model.JobStatusActive})
	if err != nil {
		return nil, err
	}

	var queryTokens []string
	if opts.Search != nil {
		queryTokens = TokenizeSearchTerms(*opts.Search)
	}

	filtered := make([]*model.Job, 0, len(jobs))
	for _, job := range jobs {
		if matchesSearchFilters(job, opts, sortKey, queryTokens) {
			filtered = append(filtered, job)
		}
	}

	sortJobs(filtered, sortKey)
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	return &model.JobSearchPage{
		Jobs:      filtered,
		HasMore:   false,
		Resumable: false,
	}, nil
}

func (r *JobSearchRepo) collectJobs(ctx context.Context, query string, args []any) ([]*model.Job, error) {
	var jobs []*model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qErr := conn.Query(ctx, query, args...)
		if qErr != nil {
			return qErr
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
		return nil, err
	}
	return jobs, nil
}

// buildSearchFilters constructs the WHERE clause and args shared by the
// indexed path. The job_search relation only holds active non-deleted rows,
// so lifecycle predicates are not repeated here.
func buildSearchFilters(opts *model.JobSearchOptions, sortKey model.SortKey) (string, []any) {
	query := ` WHERE TRUE`
	var args []any

	addFilter := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(clause, len(args))
	}

	if opts.Department != nil {
		addFilter(` AND department = $%d`, *opts.Department)
	}
	if opts.JobType != nil {
		addFilter(` AND job_type = $%d`, *opts.JobType)
	}
	if opts.WorkModality != nil {
		addFilter(` AND work_modality = $%d`, *opts.WorkModality)
	}
	if opts.ExperienceLevel != nil {
		addFilter(` AND experience_level = $%d`, *opts.ExperienceLevel)
	}
	if opts.MinSalary != nil {
		addFilter(` AND salary_max >= $%d`, *opts.MinSalary)
	}
	if opts.MaxSalary != nil {
		addFilter(` AND salary_min <= $%d`, *opts.MaxSalary)
	}
	if opts.Search != nil {
		if tokens := TokenizeSearchTerms(*opts.Search); len(tokens) > 0 {
			addFilter(` AND search_terms @> $%d`, tokens)
		}
	}
	if sortKey == model.SortDeadline {
		// Postings without a deadline have no position in this ordering.
		query += ` AND deadline IS NOT NULL`
	}

	return query, args
}

func keysetColumns(sortKey model.SortKey) ([]string, string) {
	switch sortKey {
	case model.SortDeadline:
		return []string{"deadline", "id"}, ">"
	case model.SortSalary:
		return []string{"salary_max", "id"}, "<"
	default:
		return []string{"updated_at", "id"}, "<"
	}
}

func keysetValue(sortKey model.SortKey, cur *jobCursorPayload) any {
	switch sortKey {
	case model.SortDeadline:
		return *cur.Deadline
	case model.SortSalary:
		return *cur.SalaryMax
	default:
		return *cur.UpdatedAt
	}
}

func searchOrderClause(sortKey model.SortKey) string {
	switch sortKey {
	case model.SortDeadline:
		return ` ORDER BY deadline ASC, id ASC`
	case model.SortSalary:
		return ` ORDER BY salary_max DESC, id DESC`
	default:
		return ` ORDER BY updated_at DESC, id DESC`
	}
}

// matchesSearchFilters applies the filter set to a posting in memory,
// mirroring the SQL predicates of the indexed path.
func matchesSearchFilters(job *model.Job, opts *model.JobSearchOptions, sortKey model.SortKey, queryTokens []string) bool {
	if opts.Department != nil && job.Department != *opts.Department {
		return false
	}
	if opts.JobType != nil && job.JobType != *opts.JobType {
		return false
	}
	if opts.WorkModality != nil && job.WorkModality != *opts.WorkModality {
		return false
	}
	if opts.ExperienceLevel != nil && job.ExperienceLevel != *opts.ExperienceLevel {
		return false
	}
	if opts.MinSalary != nil && job.SalaryMax < *opts.MinSalary {
		return false
	}
	if opts.MaxSalary != nil && job.SalaryMin > *opts.MaxSalary {
		return false
	}
	if !containsAllTerms(job.SearchTerms, queryTokens) {
		return false
	}
	if sortKey == model.SortDeadline && job.Deadline == nil {
		return false
	}
	return true
}

func sortJobs(jobs []*model.Job, sortKey model.SortKey) {
	sort.SliceStable(jobs, func(i, j int) bool {
		a, b := jobs[i], jobs[j]
		switch sortKey {
		case model.SortDeadline:
			if !a.Deadline.Equal(*b.Deadline) {
				return a.Deadline.Before(*b.Deadline)
			}
			return a.ID < b.ID
		case model.SortSalary:
			if a.SalaryMax != b.SalaryMax {
				return a.SalaryMax > b.SalaryMax
			}
			return a.ID > b.ID
		default:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.After(b.UpdatedAt)
			}
			return a.ID > b.ID
		}
	})
}

func clampSearchPageSize(size int) int {
	switch {
	case size <= 0:
		return defaultSearchPageSize
	case size > maxSearchPageSize:
		return maxSearchPageSize
	default:
		return size
	}
}
