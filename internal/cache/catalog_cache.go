// Package cache keeps short-lived copies of discipline lookups in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "tutoring:catalog:"

// Source is the catalog being cached
type Source interface {
	GetDiscipline(ctx context.Context, id int64) (*model.Discipline, error)
	ResolveRoles(ctx context.Context, userID int64) (model.Membership, error)
}

// CatalogCache is a read-through cache of disciplines over Source. Redis
// failures fall back to the source. Role membership is never cached: it gates
// authorization and is read from the source on every call.
type CatalogCache struct {
	source Source
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCatalogCache(source Source, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CatalogCache {
	return &CatalogCache{
		source: source,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

func disciplineKey(id int64) string {
	return fmt.Sprintf("%sdiscipline:%d", keyPrefix, id)
}

// GetDiscipline returns the cached discipline or loads it from the source
func (c *CatalogCache) GetDiscipline(ctx context.Context, id int64) (*model.Discipline, error) {
	var d model.Discipline
	if c.get(ctx, disciplineKey(id), &d) {
		return &d, nil
	}

	loaded, err := c.source.GetDiscipline(ctx, id)
	if err != nil {
		return nil, err
	}

	c.set(ctx, disciplineKey(id), loaded)
	return loaded, nil
}

// ResolveRoles always reads the source
func (c *CatalogCache) ResolveRoles(ctx context.Context, userID int64) (model.Membership, error) {
	return c.source.ResolveRoles(ctx, userID)
}

func (c *CatalogCache) get(ctx context.Context, key string, dest any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("Catalog cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CatalogCache) set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Catalog cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
