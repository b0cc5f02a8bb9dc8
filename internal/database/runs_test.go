package database

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/review-scraper/internal/models"
)

var sampleReviews = []models.Review{
	{Rating: "5.0", Title: "Great", Date: "May 1, 2024", Text: "Works well", Verified: true},
	{Rating: models.NotAvailable, Title: "", Date: models.NotAvailable, Text: "No metadata here"},
}

func TestReviewsExtractedEvent(t *testing.T) {
	jobID := uuid.New()
	run := &Run{
		ID:              uuid.New(),
		JobID:           &jobID,
		URL:             "https://www.amazon.com/dp/B000",
		Host:            "www.amazon.com",
		Strategy:        "amazon",
		Retailer:        "amazon",
		ProductID:       "B000",
		Duplicates:      1,
		ExpansionClicks: 2,
	}

	event, err := newReviewsExtractedEvent(run, sampleReviews)
	require.NoError(t, err)
	require.NoError(t, event.validate())

	assert.Equal(t, AggregateRun, event.AggregateType)
	assert.Equal(t, run.ID.String(), event.AggregateID)
	assert.Equal(t, EventReviewsExtracted, event.EventType)
	assert.Equal(t, ReviewStream, event.TargetStream)

	var payload ReviewsExtractedPayload
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, 2, payload.ReviewCount)
	assert.Equal(t, 1, payload.Verified)
	assert.Equal(t, 1, payload.Duplicates)
	assert.Equal(t, "amazon", payload.Retailer)
	assert.Equal(t, "B000", payload.ProductID)
	assert.True(t, payload.Expanded)
	require.NotNil(t, payload.JobID)
	assert.Equal(t, jobID.String(), *payload.JobID)
}

func TestRunRepository_SaveRun(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRunRepository(db)

	run := &Run{
		URL: "https://www.amazon.com/dp/B000", Host: "www.amazon.com", Strategy: "amazon",
		Retailer: "amazon", ProductID: "B000", Candidates: 4,
	}
	require.NoError(t, repo.SaveRun(ctx, run, sampleReviews))
	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.Equal(t, 2, run.ReviewCount)

	stored, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "amazon", stored.Strategy)
	assert.Equal(t, 4, stored.Candidates)
	assert.Equal(t, "amazon", stored.Retailer)
	assert.Equal(t, "B000", stored.ProductID)
	assert.Nil(t, stored.JobID)

	reviews, err := repo.ListReviews(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, sampleReviews, reviews)

	events, err := NewOutboxRepository(db).GetPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, run.ID.String(), events[0].AggregateID)
}

func TestRunRepository_ListJobReviews(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRunRepository(db)
	jobID := uuid.New()
	in, out := true, false

	kettle := &Run{
		JobID: &jobID, URL: "https://shop.example.com/p/steel-kettle", Host: "shop.example.com",
		Strategy: "generic", Retailer: "unknown", ProductID: "steel-kettle", ProductName: "Steel Kettle",
	}
	beans := &Run{
		JobID: &jobID, URL: "https://www.tesco.com/products/baked-beans", Host: "www.tesco.com",
		Strategy: "generic", Retailer: "tesco", ProductID: "baked-beans", ProductName: "Tesco Baked Beans",
	}
	require.NoError(t, repo.SaveRun(ctx, kettle, []models.Review{
		{Rating: "4", Date: "May 1, 2024", Text: "Boils fast", UniqueID: "-boils-fast", InDateRange: &in},
	}))
	require.NoError(t, repo.SaveRun(ctx, beans, []models.Review{
		{Rating: "5", Date: "June 1, 2024", Text: "Tasty", UniqueID: "-tasty", InDateRange: &out},
	}))
	require.NoError(t, repo.SaveRun(ctx, &Run{URL: "https://other.example.com/p/1", Host: "other.example.com", Strategy: "generic"}, sampleReviews))

	reviews, err := repo.ListJobReviews(ctx, jobID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	assert.Equal(t, "baked-beans", reviews[0].ProductID)
	assert.Equal(t, "tesco", reviews[0].Retailer)
	assert.Equal(t, beans.URL, reviews[0].SourceURL)
	require.NotNil(t, reviews[0].InDateRange)
	assert.False(t, *reviews[0].InDateRange)

	assert.Equal(t, "Steel Kettle", reviews[1].ProductName)
	assert.Equal(t, "-boils-fast", reviews[1].UniqueID)
	require.NotNil(t, reviews[1].InDateRange)
	assert.True(t, *reviews[1].InDateRange)
}

func TestRunRepository_SaveRunWithoutReviews(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRunRepository(db)

	run := &Run{URL: "https://shop.example.com/p/1", Host: "shop.example.com", Strategy: "generic"}
	require.NoError(t, repo.SaveRun(ctx, run, nil))

	reviews, err := repo.ListReviews(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestRunRepository_GetRunNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := NewRunRepository(db).GetRun(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
