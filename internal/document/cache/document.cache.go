package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"naskahpad/internal/document/model"
	"naskahpad/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "doc:"

func key(id string) string {
	return keyPrefix + id
}

// DocumentCache is a read-through copy of document rows kept in Redis.
// Every failure is logged and reported as a miss; Postgres stays the source of truth.
type DocumentCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDocumentCache(client *redis.Client, ttl time.Duration) *DocumentCache {
	return &DocumentCache{client: client, ttl: ttl}
}

func (c *DocumentCache) Get(ctx context.Context, id string) (*model.Document, bool) {
	raw, err := c.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Sugar.Warnf("cache: get %s failed: %v", id, err)
		}
		return nil, false
	}
	var doc model.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		logger.Sugar.Warnf("cache: corrupt entry for %s: %v", id, err)
		return nil, false
	}
	return &doc, true
}

func (c *DocumentCache) Set(ctx context.Context, doc *model.Document) {
	data, err := json.Marshal(doc)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(doc.ID), data, c.ttl).Err(); err != nil {
		logger.Sugar.Warnf("cache: set %s failed: %v", doc.ID, err)
	}
}

func (c *DocumentCache) Invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, key(id)).Err(); err != nil {
		logger.Sugar.Warnf("cache: invalidate %s failed: %v", id, err)
	}
}
