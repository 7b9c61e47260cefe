package filter

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"storefront.GO/core/cache"
	productRepo "storefront.GO/model/repository/product"
)

// FacetCacheTag marks in-process facet entries.
const FacetCacheTag = "catalog_product_facets"

// FacetCache stores facet tallies keyed by base criteria. Misses and write
// failures are not errors. Invalidate runs after every product write.
type FacetCache interface {
	Get(ctx context.Context, key string) (FacetMap, bool)
	Set(ctx context.Context, key string, facets FacetMap)
	Invalidate(ctx context.Context)
}

// facetKey is a stable digest of c.
func facetKey(c productRepo.Criteria) string {
	norm := c
	norm.CategoryIDs = append([]uint(nil), c.CategoryIDs...)
	sort.Slice(norm.CategoryIDs, func(i, j int) bool { return norm.CategoryIDs[i] < norm.CategoryIDs[j] })
	norm.IDs = append([]uint(nil), c.IDs...)
	sort.Slice(norm.IDs, func(i, j int) bool { return norm.IDs[i] < norm.IDs[j] })
	norm.Tags = append([]string(nil), c.Tags...)
	sort.Strings(norm.Tags)
	raw, _ := json.Marshal(norm)
	sum := sha1.Sum(raw)
	return "facets:" + hex.EncodeToString(sum[:])
}

// MemoryFacetCache keeps facets in the process cache.
type MemoryFacetCache struct {
	c   *cache.Cache
	ttl int64
}

// NewMemoryFacetCache caches for ttl seconds.
func NewMemoryFacetCache(c *cache.Cache, ttl int64) *MemoryFacetCache {
	return &MemoryFacetCache{c: c, ttl: ttl}
}

func (m *MemoryFacetCache) Get(_ context.Context, key string) (FacetMap, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	facets, ok := v.(FacetMap)
	return facets, ok
}

func (m *MemoryFacetCache) Set(_ context.Context, key string, facets FacetMap) {
	m.c.Set(key, facets, m.ttl, []string{FacetCacheTag})
}

// Invalidate drops every cached tally.
func (m *MemoryFacetCache) Invalidate(_ context.Context) {
	m.c.DeleteByTag(FacetCacheTag)
}

// facetGenerationKey holds a counter folded into every Redis facet key.
// Bumping it orphans all older entries, which then expire by TTL.
const facetGenerationKey = "facets:generation"

// RedisFacetCache shares facet tallies between instances through Redis.
type RedisFacetCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisFacetCache(client *redis.Client, ttl time.Duration) *RedisFacetCache {
	return &RedisFacetCache{client: client, ttl: ttl}
}

func (r *RedisFacetCache) generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, facetGenerationKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

func (r *RedisFacetCache) versioned(ctx context.Context, key string) (string, bool) {
	gen, err := r.generation(ctx)
	if err != nil {
		logrus.WithError(err).Debug("facet cache generation read failed")
		return "", false
	}
	return fmt.Sprintf("%s:g%d", key, gen), true
}

func (r *RedisFacetCache) Get(ctx context.Context, key string) (FacetMap, bool) {
	vkey, ok := r.versioned(ctx, key)
	if !ok {
		return nil, false
	}
	raw, err := r.client.Get(ctx, vkey).Bytes()
	if err != nil {
		if err != redis.Nil {
			logrus.WithError(err).Debug("facet cache read failed")
		}
		return nil, false
	}
	var facets FacetMap
	if err := json.Unmarshal(raw, &facets); err != nil {
		return nil, false
	}
	return facets, true
}

func (r *RedisFacetCache) Set(ctx context.Context, key string, facets FacetMap) {
	vkey, ok := r.versioned(ctx, key)
	if !ok {
		return
	}
	raw, err := json.Marshal(facets)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, vkey, raw, r.ttl).Err(); err != nil {
		logrus.WithError(err).Debug("facet cache write failed")
	}
}

// Invalidate bumps the generation shared by every instance.
func (r *RedisFacetCache) Invalidate(ctx context.Context) {
	if err := r.client.Incr(ctx, facetGenerationKey).Err(); err != nil {
		logrus.WithError(err).Warn("facet cache invalidation failed")
	}
}
