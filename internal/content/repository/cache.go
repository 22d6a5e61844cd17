package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/impactreport/impact/backend/go-services/internal/content"
	"github.com/impactreport/impact/backend/go-services/pkg/logger"
	"github.com/impactreport/impact/backend/go-services/pkg/metrics"
)

// CachedStore is a read-through Redis cache in front of another Store.
// Documents are stored as JSON under "<prefix><collection>:<slug>" with a TTL.
// Reads fill an empty key only (SETNX); writes overwrite the key with the
// document read back after the upsert, so a slow reader holding an older
// snapshot can never replace it. Cache errors are logged and fall through to
// the backing store.
type CachedStore struct {
	next   Store
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCachedStore wraps next. Prefix may be empty.
func NewCachedStore(next Store, client *redis.Client, prefix string, ttl time.Duration) *CachedStore {
	if prefix == "" {
		prefix = "content:"
	}
	return &CachedStore{next: next, client: client, prefix: prefix, ttl: ttl}
}

func (c *CachedStore) key(collection, slug string) string {
	return c.prefix + collection + ":" + slug
}

func (c *CachedStore) FindBySlug(ctx context.Context, collection, slug string) (content.Fields, error) {
	k := c.key(collection, slug)
	b, err := c.client.Get(ctx, k).Bytes()
	switch {
	case err == nil:
		var doc content.Fields
		if jerr := json.Unmarshal(b, &doc); jerr == nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return doc, nil
		}
		_ = c.client.Del(ctx, k).Err()
	case errors.Is(err, redis.Nil):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		logger.Warnf("content cache get %s: %v", k, err)
	}

	doc, err := c.next.FindBySlug(ctx, collection, slug)
	if err != nil || doc == nil {
		return doc, err
	}
	if b, jerr := json.Marshal(doc); jerr == nil {
		if serr := c.client.SetNX(ctx, k, b, c.ttl).Err(); serr != nil {
			logger.Warnf("content cache fill %s: %v", k, serr)
		}
	}
	return doc, nil
}

func (c *CachedStore) UpsertBySlug(ctx context.Context, collection, slug string, fields content.Fields) (content.Fields, error) {
	doc, err := c.next.UpsertBySlug(ctx, collection, slug, fields)
	if err != nil {
		return nil, err
	}
	k := c.key(collection, slug)
	b, jerr := json.Marshal(doc)
	if jerr == nil {
		jerr = c.client.Set(ctx, k, b, c.ttl).Err()
	}
	if jerr != nil {
		// never leave a stale entry behind
		logger.Warnf("content cache refresh %s: %v", k, jerr)
		if derr := c.client.Del(ctx, k).Err(); derr != nil {
			logger.Warnf("content cache invalidate %s: %v", k, derr)
		}
	}
	return doc, nil
}
