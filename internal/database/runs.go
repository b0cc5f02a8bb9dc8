package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/maltedev/review-scraper/internal/models"
)

const (
	AggregateRun          = "extraction_run"
	EventReviewsExtracted = "REVIEWS_EXTRACTED"
)

// Run is one stored extraction of a product page.
type Run struct {
	ID              uuid.UUID  `json:"id"`
	JobID           *uuid.UUID `json:"job_id,omitempty"`
	URL             string     `json:"url"`
	Host            string     `json:"host"`
	Strategy        string     `json:"strategy"`
	Retailer        string     `json:"retailer"`
	ProductID       string     `json:"product_id"`
	ProductName     string     `json:"product_name"`
	ReviewCount     int        `json:"review_count"`
	Duplicates      int        `json:"duplicates"`
	Candidates      int        `json:"candidates"`
	ExpansionRounds int        `json:"expansion_rounds"`
	ExpansionClicks int        `json:"expansion_clicks"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ReviewsExtractedPayload is the outbox payload announcing a stored run.
type ReviewsExtractedPayload struct {
	RunID       string  `json:"run_id"`
	JobID       *string `json:"job_id,omitempty"`
	URL         string  `json:"url"`
	Host        string  `json:"host"`
	Strategy    string  `json:"strategy"`
	Retailer    string  `json:"retailer"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	ReviewCount int     `json:"review_count"`
	Verified    int     `json:"verified_count"`
	Duplicates  int     `json:"duplicates"`
	Expanded    bool    `json:"expanded"`
}

func newReviewsExtractedEvent(run *Run, reviews []models.Review) (*OutboxEvent, error) {
	payload := ReviewsExtractedPayload{
		RunID:       run.ID.String(),
		URL:         run.URL,
		Host:        run.Host,
		Strategy:    run.Strategy,
		Retailer:    run.Retailer,
		ProductID:   run.ProductID,
		ProductName: run.ProductName,
		ReviewCount: len(reviews),
		Duplicates:  run.Duplicates,
		Expanded:    run.ExpansionClicks > 0,
	}
	if run.JobID != nil {
		id := run.JobID.String()
		payload.JobID = &id
	}
	for _, r := range reviews {
		if r.Verified {
			payload.Verified++
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return &OutboxEvent{
		AggregateType: AggregateRun,
		AggregateID:   run.ID.String(),
		EventType:     EventReviewsExtracted,
		Payload:       data,
		TargetStream:  ReviewStream,
	}, nil
}

type RunRepository struct {
	db     *DB
	outbox *OutboxRepository
}

func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db, outbox: NewOutboxRepository(db)}
}

// SaveRun stores the run, its reviews and a REVIEWS_EXTRACTED outbox event in
// a single transaction.
func (r *RunRepository) SaveRun(ctx context.Context, run *Run, reviews []models.Review) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	run.ReviewCount = len(reviews)
	run.CreatedAt = time.Now()

	event, err := newReviewsExtractedEvent(run, reviews)
	if err != nil {
		return err
	}

	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO extraction_run (
				id, job_id, url, host, strategy, retailer, product_id, product_name,
				review_count, duplicates, candidates, expansion_rounds, expansion_clicks, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			run.ID, run.JobID, run.URL, run.Host, run.Strategy, run.Retailer, run.ProductID, run.ProductName,
			run.ReviewCount, run.Duplicates, run.Candidates, run.ExpansionRounds, run.ExpansionClicks, run.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		if len(reviews) > 0 {
			_, err = tx.CopyFrom(ctx,
				pgx.Identifier{"review"},
				[]string{"run_id", "position", "rating", "title", "review_date", "body", "verified", "unique_id", "in_date_range"},
				pgx.CopyFromSlice(len(reviews), func(i int) ([]any, error) {
					rv := reviews[i]
					return []any{run.ID, i, rv.Rating, rv.Title, rv.Date, rv.Text, rv.Verified, rv.UniqueID, rv.InDateRange}, nil
				}),
			)
			if err != nil {
				return fmt.Errorf("failed to insert reviews: %w", err)
			}
		}

		return r.outbox.InsertWithTx(ctx, tx, event)
	})
}

func (r *RunRepository) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	run := &Run{}
	err := r.db.QueryRow(ctx, `
		SELECT id, job_id, url, host, strategy, retailer, product_id, product_name,
		       review_count, duplicates, candidates, expansion_rounds, expansion_clicks, created_at
		FROM extraction_run
		WHERE id = $1`, id).Scan(
		&run.ID, &run.JobID, &run.URL, &run.Host, &run.Strategy, &run.Retailer, &run.ProductID, &run.ProductName,
		&run.ReviewCount, &run.Duplicates, &run.Candidates, &run.ExpansionRounds, &run.ExpansionClicks, &run.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, notFound(err))
	}
	return run, nil
}

// ListReviews returns the reviews of a run in extraction order.
func (r *RunRepository) ListReviews(ctx context.Context, runID uuid.UUID) ([]models.Review, error) {
	rows, err := r.db.Query(ctx, `
		SELECT rating, title, review_date, body, verified, unique_id, in_date_range
		FROM review
		WHERE run_id = $1
		ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.Rating, &rv.Title, &rv.Date, &rv.Text, &rv.Verified, &rv.UniqueID, &rv.InDateRange); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return reviews, nil
}

// ListJobReviews returns the reviews stored by every run of a job, grouped by
// product and in extraction order within each product.
func (r *RunRepository) ListJobReviews(ctx context.Context, jobID uuid.UUID) ([]models.ProductReview, error) {
	rows, err := r.db.Query(ctx, `
		SELECT rv.rating, rv.title, rv.review_date, rv.body, rv.verified, rv.unique_id, rv.in_date_range,
		       er.retailer, er.product_id, er.product_name, er.url
		FROM review rv
		JOIN extraction_run er ON er.id = rv.run_id
		WHERE er.job_id = $1
		ORDER BY er.product_id, er.created_at, rv.position`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list job reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.ProductReview{}
	for rows.Next() {
		var pr models.ProductReview
		err := rows.Scan(
			&pr.Rating, &pr.Title, &pr.Date, &pr.Text, &pr.Verified, &pr.UniqueID, &pr.InDateRange,
			&pr.Retailer, &pr.ProductID, &pr.ProductName, &pr.SourceURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, pr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return reviews, nil
}
