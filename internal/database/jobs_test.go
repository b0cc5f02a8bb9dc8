package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	jobs := NewJobRepository(db)
	runs := NewRunRepository(db)

	from := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	first := &Job{
		URLs:       []string{"https://www.amazon.com/dp/B001", "https://www.amazon.com/dp/B002"},
		MaxReviews: 10,
		DateFrom:   &from,
	}
	second := &Job{URLs: []string{"https://www.amazon.com/dp/B003"}, MaxReviews: 20}
	require.NoError(t, jobs.CreateJob(ctx, first))
	require.NoError(t, jobs.CreateJob(ctx, second))
	assert.Equal(t, JobStatusPending, first.Status)

	claimed, err := jobs.ClaimNextJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, claimed.ID)
	assert.Equal(t, JobStatusRunning, claimed.Status)
	assert.Equal(t, first.URLs, claimed.URLs)
	require.NotNil(t, claimed.DateFrom)
	assert.True(t, from.Equal(*claimed.DateFrom))
	assert.Nil(t, claimed.DateTo)
	assert.NotNil(t, claimed.StartedAt)

	run := &Run{JobID: &claimed.ID, URL: claimed.URLs[0], Host: "www.amazon.com", Strategy: "amazon"}
	require.NoError(t, runs.SaveRun(ctx, run, sampleReviews))
	require.NoError(t, jobs.RecordProgress(ctx, claimed.ID, run.ReviewCount, ""))
	require.NoError(t, jobs.RecordProgress(ctx, claimed.ID, 0, claimed.URLs[1]))

	inFlight, err := jobs.GetJob(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, inFlight.URLsDone)
	assert.Equal(t, 2, inFlight.ReviewCount)
	assert.Equal(t, []string{claimed.URLs[1]}, inFlight.FailedURLs)

	require.NoError(t, jobs.CompleteJob(ctx, claimed.ID, 2))

	done, err := jobs.GetJob(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusCompleted, done.Status)
	assert.Equal(t, 2, done.ReviewCount)
	assert.NotNil(t, done.CompletedAt)

	claimed, err = jobs.ClaimNextJob(ctx)
	require.NoError(t, err)
	require.NoError(t, jobs.FailJob(ctx, claimed.ID, "blocked by anti-bot protection"))

	failed, err := jobs.GetJob(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, failed.Status)
	require.NotNil(t, failed.Error)
	assert.Empty(t, failed.FailedURLs)

	_, err = jobs.ClaimNextJob(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := jobs.ListJobs(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestJobRepository_GetJobNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := NewJobRepository(db).GetJob(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
