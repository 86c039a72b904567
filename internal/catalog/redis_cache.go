package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/langtest/catengine/internal/model"
)

// cacheTTL bounds how long a catalog row can be served stale after a
// content-management edit. Templates/configs/items are expected to change
// far less often than they're read during a session.
const cacheTTL = 10 * time.Minute

// cachedReader decorates a Reader with a Redis cache-aside layer, grounded
// on the teacher's queue/producer.go use of a shared redis.Client. Cache
// misses and Redis errors both fall through to the underlying Reader —
// the cache is a latency optimization, never a source of truth.
type cachedReader struct {
	next   Reader
	client *redis.Client
}

// NewCachedReader wraps next with a Redis cache-aside decorator.
func NewCachedReader(next Reader, client *redis.Client) Reader {
	return &cachedReader{next: next, client: client}
}

func (c *cachedReader) GetTemplate(ctx context.Context, templateID string) (model.Template, error) {
	var out model.Template
	key := "catalog:template:" + templateID
	if c.getCached(ctx, key, &out) {
		return out, nil
	}
	out, err := c.next.GetTemplate(ctx, templateID)
	if err == nil {
		c.setCached(ctx, key, out)
	}
	return out, err
}

func (c *cachedReader) GetConfigByTemplate(ctx context.Context, templateID string) (model.Config, error) {
	var out model.Config
	key := "catalog:config:" + templateID
	if c.getCached(ctx, key, &out) {
		return out, nil
	}
	out, err := c.next.GetConfigByTemplate(ctx, templateID)
	if err == nil {
		c.setCached(ctx, key, out)
	}
	return out, err
}

func (c *cachedReader) GetItem(ctx context.Context, itemID string) (model.Item, error) {
	var out model.Item
	key := "catalog:item:" + itemID
	if c.getCached(ctx, key, &out) {
		return out, nil
	}
	out, err := c.next.GetItem(ctx, itemID)
	if err == nil {
		c.setCached(ctx, key, out)
	}
	return out, err
}

// ActiveItems is not cached: the selector calls it once per candidate pool
// build, and caching a growing per-template list invites stale-exclusion
// bugs when an item is deactivated mid-campaign.
func (c *cachedReader) ActiveItems(ctx context.Context, templateID string) ([]model.Item, error) {
	return c.next.ActiveItems(ctx, templateID)
}

func (c *cachedReader) getCached(ctx context.Context, key string, dest any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "catalog cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		slog.WarnContext(ctx, "catalog cache decode failed", "key", key, "error", err)
		return false
	}
	return true
}

func (c *cachedReader) setCached(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		slog.WarnContext(ctx, "catalog cache write failed", "key", key, "error", err)
	}
}
