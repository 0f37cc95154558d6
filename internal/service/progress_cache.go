package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-classroom-api/internal/dto"
	"github.com/noah-isme/gema-classroom-api/internal/observability"
)

// progressCache stores assignment progress snapshots in redis. A nil client disables caching.
type progressCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func newProgressCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) progressCache {
	return progressCache{client: client, ttl: ttl, logger: logger}
}

func progressCacheKey(assignmentID uint) string {
	return fmt.Sprintf("classroom:assignment:%d:progress", assignmentID)
}

func (c progressCache) get(ctx context.Context, assignmentID uint) (dto.AssignmentProgressResponse, bool) {
	if c.client == nil {
		return dto.AssignmentProgressResponse{}, false
	}

	cached, err := c.client.Get(ctx, progressCacheKey(assignmentID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Uint("assignment_id", assignmentID).Msg("failed to read progress cache")
		}
		observability.ProgressCache().WithLabelValues("miss").Inc()
		return dto.AssignmentProgressResponse{}, false
	}

	var response dto.AssignmentProgressResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		c.logger.Warn().Err(err).Uint("assignment_id", assignmentID).Msg("discarding malformed progress cache entry")
		observability.ProgressCache().WithLabelValues("miss").Inc()
		return dto.AssignmentProgressResponse{}, false
	}

	observability.ProgressCache().WithLabelValues("hit").Inc()
	return response, true
}

func (c progressCache) set(ctx context.Context, response dto.AssignmentProgressResponse) {
	if c.client == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, progressCacheKey(response.AssignmentID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Uint("assignment_id", response.AssignmentID).Msg("failed to store progress cache")
	}
}

func (c progressCache) invalidate(ctx context.Context, assignmentID uint) {
	if c.client == nil {
		return
	}

	if err := c.client.Del(ctx, progressCacheKey(assignmentID)).Err(); err != nil {
		c.logger.Warn().Err(err).Uint("assignment_id", assignmentID).Msg("failed to invalidate progress cache")
	}
}
