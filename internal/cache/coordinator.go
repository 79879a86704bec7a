package cache

import (
	"context"
	"sort"

	"github.com/jomarvillega/stockroom-backend/pkg/logger"
)

// Deleter is the slice of the redis client the coordinator needs.
type Deleter interface {
	Del(ctx context.Context, keys ...string) error
	CacheKey(parts ...string) string
}

// Coordinator fans out cache evictions after a mutation commits. Evictions
// are best-effort and idempotent: a failed delete is logged and swallowed,
// because every cached entry also carries a short TTL as a staleness
// backstop. A cache hiccup must never fail the write that triggered it.
type Coordinator struct {
	store Deleter
	logg  *logger.Logger
}

// NewCoordinator builds the invalidation coordinator.
func NewCoordinator(store Deleter, logg *logger.Logger) *Coordinator {
	return &Coordinator{store: store, logg: logg}
}

// Invalidate drops every key registered for the given topics.
func (c *Coordinator) Invalidate(ctx context.Context, topics ...Topic) {
	if c == nil || c.store == nil || len(topics) == 0 {
		return
	}

	seen := map[string]struct{}{}
	keys := make([]string, 0, 8)
	for _, topic := range topics {
		for _, key := range KeysFor(topic) {
			namespaced := c.store.CacheKey(key)
			if _, ok := seen[namespaced]; ok {
				continue
			}
			seen[namespaced] = struct{}{}
			keys = append(keys, namespaced)
		}
	}
	if len(keys) == 0 {
		return
	}
	sort.Strings(keys)

	if err := c.store.Del(ctx, keys...); err != nil && c.logg != nil {
		ctx = c.logg.WithField(ctx, "cache_keys", keys)
		c.logg.Warn(ctx, "cache invalidation failed, relying on TTL")
	}
}
