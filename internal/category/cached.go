package category

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/controlefinanceiro/lancamentos/internal/models"
)

// CachedDirectory keeps category names in Redis. Kinds always go to the
// underlying directory since they gate writes.
type CachedDirectory struct {
	next  Directory
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedDirectory(next Directory, rdb *redis.Client, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{next: next, redis: rdb, ttl: ttl}
}

func nameKey(id int64) string {
	return fmt.Sprintf("category:name:%d", id)
}

func (c *CachedDirectory) ResolveName(ctx context.Context, id int64) (string, error) {
	if c.redis == nil {
		return c.next.ResolveName(ctx, id)
	}

	key := nameKey(id)
	name, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		return name, nil
	}
	if err != redis.Nil {
		log.Printf("[CATEGORY] Cache read failed for %s: %v", key, err)
	}

	name, err = c.next.ResolveName(ctx, id)
	if err != nil {
		return "", err
	}

	if err := c.redis.Set(ctx, key, name, c.ttl).Err(); err != nil {
		log.Printf("[CATEGORY] Cache write failed for %s: %v", key, err)
	}
	return name, nil
}

func (c *CachedDirectory) ResolveKind(ctx context.Context, id int64) (models.Kind, error) {
	return c.next.ResolveKind(ctx, id)
}

var _ Directory = (*CachedDirectory)(nil)
