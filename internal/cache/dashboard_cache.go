package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"callmood/internal/emotion"
)

// DashboardCache handles Redis operations for transformed dashboards
type DashboardCache interface {
	Get(ctx context.Context, callID string, revision int64) (*emotion.Dashboard, error)
	Set(ctx context.Context, callID string, revision int64, dashboard *emotion.Dashboard) error
	Invalidate(ctx context.Context, callID string) error
}

type dashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDashboardCache creates a new dashboard cache
func NewDashboardCache(client *redis.Client, ttl time.Duration) DashboardCache {
	return &dashboardCache{
		client: client,
		ttl:    ttl,
	}
}

func dashboardKey(callID string, revision int64) string {
	return fmt.Sprintf("dashboard:%s:%d", callID, revision)
}

func dashboardIndexKey(callID string) string {
	return fmt.Sprintf("dashboard:%s:revisions", callID)
}

func (c *dashboardCache) Get(ctx context.Context, callID string, revision int64) (*emotion.Dashboard, error) {
	data, err := c.client.Get(ctx, dashboardKey(callID, revision)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var dashboard emotion.Dashboard
	if err := json.Unmarshal(data, &dashboard); err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (c *dashboardCache) Set(ctx context.Context, callID string, revision int64, dashboard *emotion.Dashboard) error {
	data, err := json.Marshal(dashboard)
	if err != nil {
		return err
	}

	key := dashboardKey(callID, revision)
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, data, c.ttl)
	pipe.SAdd(ctx, dashboardIndexKey(callID), key)
	pipe.Expire(ctx, dashboardIndexKey(callID), c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Invalidate drops every cached revision of a call.
func (c *dashboardCache) Invalidate(ctx context.Context, callID string) error {
	keys, err := c.client.SMembers(ctx, dashboardIndexKey(callID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	keys = append(keys, dashboardIndexKey(callID))
	return c.client.Del(ctx, keys...).Err()
}
