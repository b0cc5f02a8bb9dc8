package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Job is an asynchronous extraction of one or more product pages. Each
// scraped page is stored as its own run.
type Job struct {
	ID          uuid.UUID  `json:"id"`
	URLs        []string   `json:"urls"`
	MaxReviews  int        `json:"max_reviews"`
	DateFrom    *time.Time `json:"date_from,omitempty"`
	DateTo      *time.Time `json:"date_to,omitempty"`
	Status      string     `json:"status"`
	URLsDone    int        `json:"urls_done"`
	FailedURLs  []string   `json:"failed_urls"`
	ReviewCount int        `json:"review_count"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type JobRepository struct {
	db *DB
}

func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, urls, max_reviews, date_from, date_to, status, urls_done, failed_urls,
	review_count, error, created_at, started_at, completed_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*Job, error) {
	job := &Job{}
	err := row.Scan(
		&job.ID, &job.URLs, &job.MaxReviews, &job.DateFrom, &job.DateTo, &job.Status,
		&job.URLsDone, &job.FailedURLs, &job.ReviewCount, &job.Error,
		&job.CreatedAt, &job.StartedAt, &job.CompletedAt,
	)
	return job, err
}

func (r *JobRepository) CreateJob(ctx context.Context, job *Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	job.Status = JobStatusPending
	job.CreatedAt = time.Now()
	if job.FailedURLs == nil {
		job.FailedURLs = []string{}
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO scrape_job (id, urls, max_reviews, date_from, date_to, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.URLs, job.MaxReviews, job.DateFrom, job.DateTo, job.Status, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *JobRepository) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM scrape_job WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", id, notFound(err))
	}
	return job, nil
}

// ListJobs returns the most recent jobs first.
func (r *JobRepository) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+jobColumns+` FROM scrape_job ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return jobs, nil
}

// ClaimNextJob marks the oldest pending job as running and returns it.
// ErrNotFound means there is nothing to do.
func (r *JobRepository) ClaimNextJob(ctx context.Context) (*Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, `
		UPDATE scrape_job
		SET status = $1, started_at = now()
		WHERE id = (
			SELECT id FROM scrape_job
			WHERE status = $2
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+jobColumns,
		JobStatusRunning, JobStatusPending))
	if err != nil {
		return nil, fmt.Errorf("failed to claim job: %w", notFound(err))
	}
	return job, nil
}

// RecordProgress counts one more processed URL and adds its reviews to the
// running total. A non-empty failedURL is appended to the job's failures.
func (r *JobRepository) RecordProgress(ctx context.Context, id uuid.UUID, reviews int, failedURL string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE scrape_job
		SET urls_done = urls_done + 1,
		    review_count = review_count + $2,
		    failed_urls = CASE WHEN $3::text = '' THEN failed_urls ELSE array_append(failed_urls, $3::text) END
		WHERE id = $1`,
		id, reviews, failedURL)
	if err != nil {
		return fmt.Errorf("failed to record job progress: %w", err)
	}
	return nil
}

func (r *JobRepository) CompleteJob(ctx context.Context, id uuid.UUID, reviewCount int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE scrape_job
		SET status = $1, review_count = $2, completed_at = now()
		WHERE id = $3`,
		JobStatusCompleted, reviewCount, id)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	return nil
}

func (r *JobRepository) FailJob(ctx context.Context, id uuid.UUID, message string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE scrape_job
		SET status = $1, error = $2, completed_at = now()
		WHERE id = $3`,
		JobStatusFailed, message, id)
	if err != nil {
		return fmt.Errorf("failed to mark job as failed: %w", err)
	}
	return nil
}
