package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"preflight/internal/model"
)

const latestKeyPrefix = "prediction:latest:"

// PredictionCache caches the latest prediction per job under
// prediction:latest:<job>. MySQL stays the source of truth; a cache
// miss falls through to it.
type PredictionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPredictionCache creates a prediction cache with the given TTL
func NewPredictionCache(client *redis.Client, ttl time.Duration) *PredictionCache {
	return &PredictionCache{client: client, ttl: ttl}
}

// SetLatest stores the prediction as the latest for its job
func (c *PredictionCache) SetLatest(ctx context.Context, saved *model.SavedPrediction) error {
	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("failed to encode prediction for cache: %w", err)
	}
	if err := c.client.Set(ctx, latestKeyPrefix+saved.JobName, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache prediction: %w", err)
	}
	return nil
}

// GetLatest retrieves the cached latest prediction for a job, or nil on
// a cache miss
func (c *PredictionCache) GetLatest(ctx context.Context, jobName string) (*model.SavedPrediction, error) {
	data, err := c.client.Get(ctx, latestKeyPrefix+jobName).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read prediction cache: %w", err)
	}

	var saved model.SavedPrediction
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("failed to decode cached prediction: %w", err)
	}
	return &saved, nil
}
