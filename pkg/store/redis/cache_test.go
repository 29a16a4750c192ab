package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preflight/internal/model"
)

func testCacheResult() *model.SavedPrediction {
	return &model.SavedPrediction{
		ID:        "11111111-2222-3333-4444-555555555555",
		JobName:   "daily-etl-pipeline",
		Model:     "claude-3-5-sonnet-20241022",
		Timestamp: time.Date(2025, 6, 1, 2, 5, 0, 0, time.UTC),
		Prediction: &model.PredictionResult{
			Predictions: model.PredictionSet{
				PodScheduling:  &model.CategoryPrediction{Probability: 10, Severity: model.SeverityLow, RootCause: "ok", Recommendations: []string{"none"}},
				EFSMount:       &model.CategoryPrediction{Probability: 10, Severity: model.SeverityLow, RootCause: "ok", Recommendations: []string{"none"}},
				MemoryOOMKill:  &model.CategoryPrediction{Probability: 10, Severity: model.SeverityLow, RootCause: "ok", Recommendations: []string{"none"}},
				IAMPermissions: &model.CategoryPrediction{Probability: 10, Severity: model.SeverityLow, RootCause: "ok", Recommendations: []string{"none"}},
				DataQuality:    &model.CategoryPrediction{Probability: 10, Severity: model.SeverityLow, RootCause: "ok", Recommendations: []string{"none"}},
			},
			OverallAssessment: &model.OverallAssessment{
				ShouldExecute:      true,
				OverallSeverity:    model.SeverityLow,
				OverallProbability: 10,
				Recommendation:     "proceed",
			},
			EstimatedEffort: &model.EffortEstimate{
				Category:       model.EffortSimple,
				StoryPoints:    1,
				EstimatedHours: "1 hour",
			},
		},
	}
}

func TestPredictionCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewPredictionCache(client, time.Hour)
	ctx := context.Background()
	saved := testCacheResult()

	require.NoError(t, cache.SetLatest(ctx, saved))

	got, err := cache.GetLatest(ctx, "daily-etl-pipeline")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, saved.ID, got.ID)
	assert.True(t, saved.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, saved.Prediction, got.Prediction)
}

func TestPredictionCacheMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewPredictionCache(client, time.Hour)

	got, err := cache.GetLatest(context.Background(), "never-predicted")
	require.NoError(t, err)
	assert.Nil(t, got, "cache miss must return nil, nil")
}

func TestPredictionCacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewPredictionCache(client, time.Minute)
	ctx := context.Background()
	require.NoError(t, cache.SetLatest(ctx, testCacheResult()))

	mr.FastForward(2 * time.Minute)

	got, err := cache.GetLatest(ctx, "daily-etl-pipeline")
	require.NoError(t, err)
	assert.Nil(t, got, "expired entry must read as a miss")
}
