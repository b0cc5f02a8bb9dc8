package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RelaySource identifies this service in published stream messages.
const RelaySource = "review-scraper"

type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// OutboxRepo is the part of OutboxRepository the relay needs.
type OutboxRepo interface {
	GetPending(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, err error) error
	CountPending(ctx context.Context) (int64, error)
	CountDeadLetter(ctx context.Context) (int64, error)
}

// Relay moves extraction events from the outbox table to Redis streams.
type Relay struct {
	redis     RedisClient
	outbox    OutboxRepo
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

type RelayConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

func NewRelay(db *DB, redisClient RedisClient, logger *slog.Logger, config RelayConfig) *Relay {
	return newRelay(NewOutboxRepository(db), redisClient, logger, config)
}

func newRelay(outbox OutboxRepo, redisClient RedisClient, logger *slog.Logger, config RelayConfig) *Relay {
	if config.PollInterval == 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}

	return &Relay{
		redis:     redisClient,
		outbox:    outbox,
		logger:    logger.With("component", "relay"),
		interval:  config.PollInterval,
		batchSize: config.BatchSize,
	}
}

// Start polls the outbox until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	r.logger.Info("starting relay",
		"interval", r.interval,
		"batch_size", r.batchSize)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	if err := r.processEvents(ctx); err != nil {
		r.logger.Error("failed to process events on startup", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("relay stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.processEvents(ctx); err != nil {
				r.logger.Error("failed to process events", "error", err)
			}
		}
	}
}

func (r *Relay) processEvents(ctx context.Context) error {
	events, err := r.outbox.GetPending(ctx, r.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending events: %w", err)
	}

	if len(events) == 0 {
		return nil
	}

	r.logger.Debug("processing events", "count", len(events))

	for _, event := range events {
		if err := r.processEvent(ctx, event); err != nil {
			r.logger.Error("failed to process event",
				"event_id", event.ID,
				"aggregate_id", event.AggregateID,
				"error", err)
		}
	}

	return nil
}

func (r *Relay) processEvent(ctx context.Context, event *OutboxEvent) error {
	if err := r.publish(ctx, event); err != nil {
		if markErr := r.outbox.MarkFailed(ctx, event.ID, err); markErr != nil {
			r.logger.Error("failed to mark event as failed",
				"event_id", event.ID,
				"error", markErr)
		}
		return err
	}

	if err := r.outbox.MarkProcessed(ctx, event.ID); err != nil {
		r.logger.Error("failed to mark event as processed",
			"event_id", event.ID,
			"error", err)
		return err
	}

	r.logger.Info("event published",
		"event_id", event.ID,
		"event_type", event.EventType,
		"aggregate_id", event.AggregateID,
		"target_stream", event.TargetStream)

	return nil
}

// runMessage is the JSON document carried in a stream entry's data field.
type runMessage struct {
	OutboxID    string                  `json:"outbox_id"`
	Event       string                  `json:"event"`
	RunID       string                  `json:"run_id"`
	PublishedBy string                  `json:"published_by"`
	Attempt     int                     `json:"attempt"`
	CreatedAt   time.Time               `json:"created_at"`
	Run         ReviewsExtractedPayload `json:"run"`
}

// streamFields flattens the fields consumers filter on so they can skip
// entries without decoding data.
func (m runMessage) streamFields(data []byte) map[string]interface{} {
	fields := map[string]interface{}{
		"data":         string(data),
		"event_type":   m.Event,
		"aggregate_id": m.RunID,
		"run_id":       m.Run.RunID,
		"host":         m.Run.Host,
		"strategy":     m.Run.Strategy,
		"retailer":     m.Run.Retailer,
		"product_id":   m.Run.ProductID,
		"review_count": strconv.Itoa(m.Run.ReviewCount),
		"created_at":   strconv.FormatInt(m.CreatedAt.UnixNano(), 10),
	}
	if m.Run.JobID != nil {
		fields["job_id"] = *m.Run.JobID
	}
	return fields
}

func (r *Relay) publish(ctx context.Context, event *OutboxEvent) error {
	var run ReviewsExtractedPayload
	if err := json.Unmarshal(event.Payload, &run); err != nil {
		return fmt.Errorf("failed to decode run payload: %w", err)
	}
	if run.RunID == "" {
		run.RunID = event.AggregateID
	}

	msg := runMessage{
		OutboxID:    event.ID.String(),
		Event:       event.EventType,
		RunID:       event.AggregateID,
		PublishedBy: RelaySource,
		Attempt:     event.RetryCount + 1,
		CreatedAt:   event.CreatedAt.UTC(),
		Run:         run,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode run message: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: event.TargetStream,
		Values: msg.streamFields(data),
	}
	if _, err := r.redis.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	return nil
}

func (r *Relay) GetPendingCount(ctx context.Context) (int64, error) {
	return r.outbox.CountPending(ctx)
}

func (r *Relay) GetDeadLetterCount(ctx context.Context) (int64, error) {
	return r.outbox.CountDeadLetter(ctx)
}
