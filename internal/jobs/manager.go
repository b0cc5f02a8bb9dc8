// Package jobs runs review extractions on behalf of the HTTP API, either
// synchronously or as queued batch jobs picked up by a background worker.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maltedev/review-scraper/internal/database"
	"github.com/maltedev/review-scraper/internal/models"
	"github.com/maltedev/review-scraper/internal/retailer"
	"github.com/maltedev/review-scraper/internal/scraper"
)

var (
	// ErrJobNotCompleted is returned when reviews are requested for a job
	// that has not finished yet.
	ErrJobNotCompleted = errors.New("job not completed")

	ErrTooManyURLs = errors.New("too many urls")
)

const (
	DefaultListLimit = 100
	MaxBatchURLs     = 50
)

type JobStore interface {
	CreateJob(ctx context.Context, job *database.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*database.Job, error)
	ListJobs(ctx context.Context, limit int) ([]*database.Job, error)
	ClaimNextJob(ctx context.Context) (*database.Job, error)
	RecordProgress(ctx context.Context, id uuid.UUID, reviews int, failedURL string) error
	CompleteJob(ctx context.Context, id uuid.UUID, reviewCount int) error
	FailJob(ctx context.Context, id uuid.UUID, message string) error
}

type RunStore interface {
	SaveRun(ctx context.Context, run *database.Run, reviews []models.Review) error
	ListJobReviews(ctx context.Context, jobID uuid.UUID) ([]models.ProductReview, error)
}

type Scraper interface {
	Scrape(ctx context.Context, req scraper.Request) (*scraper.Result, error)
}

type Manager struct {
	jobs    JobStore
	runs    RunStore
	scraper Scraper
	logger  *slog.Logger
	now     func() time.Time
}

func NewManager(jobs JobStore, runs RunStore, s Scraper, logger *slog.Logger) *Manager {
	return &Manager{
		jobs:    jobs,
		runs:    runs,
		scraper: s,
		logger:  logger.With("component", "job_manager"),
		now:     time.Now,
	}
}

// Extraction is a stored synchronous extraction.
type Extraction struct {
	RunID   uuid.UUID        `json:"run_id"`
	Product retailer.Product `json:"product"`
	*scraper.Result
}

// Extract scrapes req.URL and stores the run before returning it. Repeated
// reviews on the page are dropped.
func (m *Manager) Extract(ctx context.Context, req scraper.Request) (*Extraction, error) {
	result, err := m.scraper.Scrape(ctx, req)
	if err != nil {
		return nil, err
	}

	run, err := m.save(ctx, nil, result, retailer.NewDedup(), retailer.DateRange{})
	if err != nil {
		return nil, err
	}

	return &Extraction{
		RunID:   run.ID,
		Product: retailer.Product{ID: run.ProductID, Name: run.ProductName},
		Result:  result,
	}, nil
}

// save stores one scraped page as a run. Records already in seen are
// dropped, the rest get their unique ID and date range mark. result.Records
// is replaced by what was stored.
func (m *Manager) save(ctx context.Context, jobID *uuid.UUID, result *scraper.Result, seen *retailer.Dedup, dates retailer.DateRange) (*database.Run, error) {
	records := annotate(result.Records, seen, dates, m.now())
	product := retailer.ProductFromURL(result.URL)

	run := &database.Run{
		JobID:           jobID,
		URL:             result.URL,
		Host:            result.Host,
		Strategy:        result.Strategy,
		Retailer:        retailer.Detect(result.URL),
		ProductID:       product.ID,
		ProductName:     product.Name,
		ReviewCount:     len(records),
		Duplicates:      len(result.Records) - len(records),
		Candidates:      result.Candidates,
		ExpansionRounds: result.Expansion.Rounds,
		ExpansionClicks: result.Expansion.Clicks,
	}
	if err := m.runs.SaveRun(ctx, run, records); err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}

	result.Records = records
	return run, nil
}

func annotate(records []models.Review, seen *retailer.Dedup, dates retailer.DateRange, now time.Time) []models.Review {
	kept := make([]models.Review, 0, len(records))
	for _, r := range records {
		r.UniqueID = retailer.ReviewID(r)
		if !seen.Add(r.UniqueID) {
			continue
		}
		r.InDateRange = dates.Mark(r.Date, now)
		kept = append(kept, r)
	}
	return kept
}

// JobRequest queues the extraction of one or more product pages. URL is
// accepted for single page jobs and is scraped before URLs. DateFrom and
// DateTo are optional YYYY-MM-DD bounds used to mark each review.
type JobRequest struct {
	URL        string   `json:"url,omitempty"`
	URLs       []string `json:"urls,omitempty"`
	MaxReviews int      `json:"max_reviews"`
	DateFrom   string   `json:"date_from,omitempty"`
	DateTo     string   `json:"date_to,omitempty"`
}

func (r JobRequest) urls() []string {
	all := make([]string, 0, len(r.URLs)+1)
	for _, u := range append([]string{r.URL}, r.URLs...) {
		if u = strings.TrimSpace(u); u != "" {
			all = append(all, u)
		}
	}
	return all
}

// CreateJob queues a batch. Every URL and the date range are validated up
// front so bad requests never reach the worker.
func (m *Manager) CreateJob(ctx context.Context, req JobRequest) (*database.Job, error) {
	raw := req.urls()
	if len(raw) == 0 {
		return nil, scraper.ErrNoURL
	}
	if len(raw) > MaxBatchURLs {
		return nil, fmt.Errorf("%w: %d given, at most %d", ErrTooManyURLs, len(raw), MaxBatchURLs)
	}

	urls := make([]string, len(raw))
	for i, r := range raw {
		u, err := scraper.ParseURL(r)
		if err != nil {
			return nil, err
		}
		urls[i] = u.String()
	}

	dates, err := retailer.ParseDateRange(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}

	maxReviews := req.MaxReviews
	if maxReviews < 0 {
		maxReviews = 0
	}

	job := &database.Job{
		URLs:       urls,
		MaxReviews: maxReviews,
		DateFrom:   dates.From,
		DateTo:     dates.To,
	}
	if err := m.jobs.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	m.logger.Info("job created", "id", job.ID, "urls", len(job.URLs))
	return job, nil
}

func (m *Manager) GetJob(ctx context.Context, id uuid.UUID) (*database.Job, error) {
	return m.jobs.GetJob(ctx, id)
}

func (m *Manager) ListJobs(ctx context.Context) ([]*database.Job, error) {
	return m.jobs.ListJobs(ctx, DefaultListLimit)
}

// JobReviews returns the reviews stored by a completed job, grouped by
// product.
func (m *Manager) JobReviews(ctx context.Context, id uuid.UUID) ([]models.ProductReview, error) {
	job, err := m.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != database.JobStatusCompleted {
		return nil, fmt.Errorf("job %s is %s: %w", id, job.Status, ErrJobNotCompleted)
	}
	return m.runs.ListJobReviews(ctx, id)
}
