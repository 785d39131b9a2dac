package service

import (
	"college_survey_backend/internal/model"
	"college_survey_backend/pkg/logger"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const surveyCacheKeyPrefix = "survey:tree:"

// SurveyCache stores rendered survey trees by college name.
type SurveyCache interface {
	Get(ctx context.Context, collegeName string) (*model.SurveyView, bool)
	Set(ctx context.Context, collegeName string, view *model.SurveyView)
	Invalidate(ctx context.Context, collegeName string)
}

func surveyCacheKey(collegeName string) string {
	return surveyCacheKeyPrefix + strings.ToLower(strings.TrimSpace(collegeName))
}

// NewSurveyCache returns a redis-backed cache, or a no-op cache when rdb is nil.
func NewSurveyCache(rdb *redis.Client, ttl time.Duration) SurveyCache {
	if rdb == nil {
		return noopSurveyCache{}
	}
	return &RedisSurveyCache{Redis: rdb, TTL: ttl}
}

type RedisSurveyCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func (c *RedisSurveyCache) Get(ctx context.Context, collegeName string) (*model.SurveyView, bool) {
	val, err := c.Redis.Get(ctx, surveyCacheKey(collegeName)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Log.Warn("survey cache read failed", zap.Error(err))
		return nil, false
	}
	var view model.SurveyView
	if err := json.Unmarshal([]byte(val), &view); err != nil {
		return nil, false
	}
	return &view, true
}

func (c *RedisSurveyCache) Set(ctx context.Context, collegeName string, view *model.SurveyView) {
	data, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := c.Redis.Set(ctx, surveyCacheKey(collegeName), data, c.TTL).Err(); err != nil {
		logger.Log.Warn("survey cache write failed", zap.Error(err))
	}
}

func (c *RedisSurveyCache) Invalidate(ctx context.Context, collegeName string) {
	if err := c.Redis.Del(ctx, surveyCacheKey(collegeName)).Err(); err != nil {
		logger.Log.Warn("survey cache invalidation failed", zap.Error(err))
	}
}

type noopSurveyCache struct{}

func (noopSurveyCache) Get(context.Context, string) (*model.SurveyView, bool) { return nil, false }
func (noopSurveyCache) Set(context.Context, string, *model.SurveyView)        {}
func (noopSurveyCache) Invalidate(context.Context, string)                    {}
