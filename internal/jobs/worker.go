package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maltedev/review-scraper/internal/database"
	"github.com/maltedev/review-scraper/internal/retailer"
	"github.com/maltedev/review-scraper/internal/scraper"
)

const DefaultPollInterval = 5 * time.Second

// StartWorker processes queued jobs until ctx is cancelled. Each tick drains
// every pending job before waiting again.
func (m *Manager) StartWorker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	m.logger.Info("job worker started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("job worker stopping")
			return
		case <-ticker.C:
			for ctx.Err() == nil && m.processNextJob(ctx) {
			}
		}
	}
}

// processNextJob claims and runs one job. It reports whether a job was
// claimed. The final status is written even when ctx was cancelled during
// the run.
func (m *Manager) processNextJob(ctx context.Context) bool {
	job, err := m.jobs.ClaimNextJob(ctx)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			m.logger.Error("failed to claim job", "error", err)
		}
		return false
	}

	logger := m.logger.With("job_id", job.ID, "urls", len(job.URLs))
	logger.Info("processing job")

	reviews, err := m.runBatch(ctx, job, logger)
	if err != nil {
		logger.Error("job failed", "error", err)
		if failErr := m.jobs.FailJob(context.WithoutCancel(ctx), job.ID, err.Error()); failErr != nil {
			logger.Error("failed to mark job as failed", "error", failErr)
		}
		return true
	}

	if err := m.jobs.CompleteJob(context.WithoutCancel(ctx), job.ID, reviews); err != nil {
		logger.Error("failed to mark job as completed", "error", err)
		return true
	}

	logger.Info("job completed", "reviews", reviews)
	return true
}

// runBatch scrapes every URL of job in order and returns the number of
// stored reviews. A page that cannot be scraped is recorded and skipped; the
// job only fails when no page could be scraped, when storage fails or when
// ctx ends.
func (m *Manager) runBatch(ctx context.Context, job *database.Job, logger *slog.Logger) (int, error) {
	if len(job.URLs) == 0 {
		return 0, scraper.ErrNoURL
	}

	dates := retailer.DateRange{From: job.DateFrom, To: job.DateTo}
	seen := retailer.NewDedup()

	var total, failed int
	var lastErr error

	for i, u := range job.URLs {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		urlLogger := logger.With("url", u, "current", i+1, "total", len(job.URLs))
		urlLogger.Info("scraping url")

		result, err := m.scraper.Scrape(ctx, scraper.Request{URL: u, MaxReviews: job.MaxReviews})
		if err != nil {
			if ctx.Err() != nil {
				return total, ctx.Err()
			}
			failed++
			lastErr = err
			urlLogger.Warn("url failed", "error", err)
			m.recordProgress(ctx, job, 0, u, urlLogger)
			continue
		}

		run, err := m.save(ctx, &job.ID, result, seen, dates)
		if err != nil {
			return total, err
		}
		if run.Duplicates > 0 {
			urlLogger.Info("dropped duplicate reviews", "duplicates", run.Duplicates)
		}

		total += run.ReviewCount
		m.recordProgress(ctx, job, run.ReviewCount, "", urlLogger)
	}

	if failed == len(job.URLs) {
		if failed == 1 {
			return 0, lastErr
		}
		return 0, fmt.Errorf("all %d urls failed, last error: %w", failed, lastErr)
	}
	return total, nil
}

func (m *Manager) recordProgress(ctx context.Context, job *database.Job, reviews int, failedURL string, logger *slog.Logger) {
	if err := m.jobs.RecordProgress(ctx, job.ID, reviews, failedURL); err != nil {
		logger.Warn("failed to record job progress", "error", err)
	}
}
