package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"createform/internal/model"
)

// FormCache holds rendered public forms of published surveys
type FormCache interface {
	Get(ctx context.Context, surveyID string) (*model.PublicForm, error)
	Set(ctx context.Context, form *model.PublicForm) error
	Invalidate(ctx context.Context, surveyID string) error
}

type formCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFormCache creates a Redis-backed form cache
func NewFormCache(client *redis.Client, ttl time.Duration) FormCache {
	return &formCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *formCache) key(surveyID string) string {
	return fmt.Sprintf("form:%s", surveyID)
}

func (c *formCache) Get(ctx context.Context, surveyID string) (*model.PublicForm, error) {
	data, err := c.client.Get(ctx, c.key(surveyID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var form model.PublicForm
	if err := json.Unmarshal([]byte(data), &form); err != nil {
		return nil, err
	}
	return &form, nil
}

func (c *formCache) Set(ctx context.Context, form *model.PublicForm) error {
	data, err := json.Marshal(form)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(form.ID), data, c.ttl).Err()
}

func (c *formCache) Invalidate(ctx context.Context, surveyID string) error {
	return c.client.Del(ctx, c.key(surveyID)).Err()
}

// layeredFormCache keeps a short-lived in-process copy in front of another FormCache.
// Invalidation only reaches the local copy of this process; the local TTL bounds staleness elsewhere.
type layeredFormCache struct {
	local  *expirable.LRU[string, *model.PublicForm]
	remote FormCache
}

// NewLayeredFormCache wraps remote with an in-process LRU of the given size and TTL
func NewLayeredFormCache(remote FormCache, size int, ttl time.Duration) FormCache {
	return &layeredFormCache{
		local:  expirable.NewLRU[string, *model.PublicForm](size, nil, ttl),
		remote: remote,
	}
}

func (c *layeredFormCache) Get(ctx context.Context, surveyID string) (*model.PublicForm, error) {
	if form, ok := c.local.Get(surveyID); ok {
		return form, nil
	}
	form, err := c.remote.Get(ctx, surveyID)
	if err != nil || form == nil {
		return form, err
	}
	c.local.Add(surveyID, form)
	return form, nil
}

func (c *layeredFormCache) Set(ctx context.Context, form *model.PublicForm) error {
	if err := c.remote.Set(ctx, form); err != nil {
		return err
	}
	c.local.Add(form.ID, form)
	return nil
}

func (c *layeredFormCache) Invalidate(ctx context.Context, surveyID string) error {
	c.local.Remove(surveyID)
	return c.remote.Invalidate(ctx, surveyID)
}
