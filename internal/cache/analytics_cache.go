package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"createform/internal/model"
)

// AnalyticsCache handles Redis operations for computed analytics summaries
type AnalyticsCache interface {
	GetSummary(ctx context.Context, surveyID string) (*model.AnalyticsSummary, error)
	SetSummary(ctx context.Context, summary *model.AnalyticsSummary) error
	Invalidate(ctx context.Context, surveyID string) error
}

type analyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnalyticsCache creates a new analytics cache
func NewAnalyticsCache(client *redis.Client, ttl time.Duration) AnalyticsCache {
	return &analyticsCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *analyticsCache) summaryKey(surveyID string) string {
	return fmt.Sprintf("survey:%s:analytics", surveyID)
}

func (c *analyticsCache) GetSummary(ctx context.Context, surveyID string) (*model.AnalyticsSummary, error) {
	data, err := c.client.Get(ctx, c.summaryKey(surveyID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var summary model.AnalyticsSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *analyticsCache) SetSummary(ctx context.Context, summary *model.AnalyticsSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.summaryKey(summary.SurveyID), data, c.ttl).Err()
}

func (c *analyticsCache) Invalidate(ctx context.Context, surveyID string) error {
	return c.client.Del(ctx, c.summaryKey(surveyID)).Err()
}
