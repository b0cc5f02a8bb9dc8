package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maltedev/review-scraper/internal/database"
	"github.com/maltedev/review-scraper/internal/jobs"
	"github.com/maltedev/review-scraper/internal/models"
	"github.com/maltedev/review-scraper/internal/output"
	"github.com/maltedev/review-scraper/internal/retailer"
	"github.com/maltedev/review-scraper/internal/scraper"
)

const (
	pendingWarnThreshold     = 1000
	deadLetterErrorThreshold = 100
)

type JobService interface {
	Extract(ctx context.Context, req scraper.Request) (*jobs.Extraction, error)
	CreateJob(ctx context.Context, req jobs.JobRequest) (*database.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*database.Job, error)
	ListJobs(ctx context.Context) ([]*database.Job, error)
	JobReviews(ctx context.Context, id uuid.UUID) ([]models.ProductReview, error)
}

// OutboxStats reports the backlog of the outbox relay.
type OutboxStats interface {
	GetPendingCount(ctx context.Context) (int64, error)
	GetDeadLetterCount(ctx context.Context) (int64, error)
}

type Handlers struct {
	jobs   JobService
	outbox OutboxStats
	logger *slog.Logger
}

func NewHandlers(jobs JobService, outbox OutboxStats, logger *slog.Logger) *Handlers {
	return &Handlers{
		jobs:   jobs,
		outbox: outbox,
		logger: logger.With("component", "api"),
	}
}

type HealthResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message,omitempty"`
	Outbox  OutboxHealth `json:"outbox"`
}

type OutboxHealth struct {
	Pending    int64 `json:"pending"`
	DeadLetter int64 `json:"dead_letter"`
}

// Health reports ok, warning or error depending on the outbox backlog.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := HealthResponse{Status: "ok"}

	pending, err := h.outbox.GetPendingCount(ctx)
	if err != nil {
		h.logger.Error("failed to get pending count", "error", err)
		h.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "error", Message: "database unavailable"})
		return
	}
	dead, err := h.outbox.GetDeadLetterCount(ctx)
	if err != nil {
		h.logger.Error("failed to get dead letter count", "error", err)
		h.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "error", Message: "database unavailable"})
		return
	}
	resp.Outbox = OutboxHealth{Pending: pending, DeadLetter: dead}

	status := http.StatusOK
	if pending > pendingWarnThreshold {
		resp.Status = "warning"
		resp.Message = "high number of pending outbox events"
	}
	if dead > deadLetterErrorThreshold {
		resp.Status = "error"
		resp.Message = "high number of dead letter events"
		status = http.StatusServiceUnavailable
	}

	h.respondJSON(w, status, resp)
}

// ExtractReviews runs a synchronous extraction.
func (h *Handlers) ExtractReviews(w http.ResponseWriter, r *http.Request) {
	var req scraper.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	extraction, err := h.jobs.Extract(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to extract reviews", "url", req.URL, "error", err)
		h.respondScrapeError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, extraction)
}

type CreateJobResponse struct {
	JobID    uuid.UUID `json:"job_id"`
	Status   string    `json:"status"`
	URLCount int       `json:"url_count"`
	Message  string    `json:"message"`
}

// CreateJob queues a batch of product pages, optionally with a date range
// used to mark each review.
func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req jobs.JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := h.jobs.CreateJob(r.Context(), req)
	if err != nil {
		if errors.Is(err, scraper.ErrNoURL) || errors.Is(err, scraper.ErrInvalidURL) ||
			errors.Is(err, retailer.ErrInvalidDateRange) || errors.Is(err, jobs.ErrTooManyURLs) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to create job", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	h.respondJSON(w, http.StatusCreated, CreateJobResponse{
		JobID:    job.ID,
		Status:   job.Status,
		URLCount: len(job.URLs),
		Message:  "job created",
	})
}

func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}

	job, err := h.jobs.GetJob(r.Context(), id)
	if err != nil {
		h.respondLookupError(w, err, "failed to get job")
		return
	}

	h.respondJSON(w, http.StatusOK, job)
}

func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	list, err := h.jobs.ListJobs(r.Context())
	if err != nil {
		h.logger.Error("failed to list jobs", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	h.respondJSON(w, http.StatusOK, list)
}

// GetJobReviews returns the reviews of a completed job as JSON, or as a CSV
// attachment with ?format=csv.
func (h *Handlers) GetJobReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}

	reviews, err := h.jobs.JobReviews(r.Context(), id)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotCompleted) {
			h.respondError(w, http.StatusConflict, err.Error())
			return
		}
		h.respondLookupError(w, err, "failed to get reviews")
		return
	}

	if r.URL.Query().Get("format") == string(output.FormatCSV) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="reviews_%s.csv"`, id))
		if err := output.WriteProductCSV(w, reviews); err != nil {
			h.logger.Error("failed to write csv", "job_id", id, "error", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, reviews)
}

func (h *Handlers) jobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid job ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handlers) respondLookupError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, database.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "job not found")
		return
	}
	h.logger.Error(message, "error", err)
	h.respondError(w, http.StatusInternalServerError, message)
}

func (h *Handlers) respondScrapeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scraper.ErrNoURL), errors.Is(err, scraper.ErrInvalidURL):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, scraper.ErrBlocked):
		h.respondError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		h.respondError(w, http.StatusGatewayTimeout, "extraction timed out")
	default:
		h.respondError(w, http.StatusInternalServerError, "failed to extract reviews")
	}
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
