// Package cache stores the most recent ranking result so repeated
// GET requests do not recompute or re-read anything. Redis is used when
// configured; otherwise an in-process fallback serves the same interface.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/planner-ranker/internal/domain"
)

// ErrMiss is returned when no ranking result has been stored yet.
var ErrMiss = errors.New("cache miss")

const (
	rankingsKey = "planner:rankings:latest"
	defaultTTL  = 24 * time.Hour
)

// RankingsCache stores and retrieves the latest ranking result.
type RankingsCache interface {
	Put(ctx context.Context, result domain.RankingResult) error
	Get(ctx context.Context) (domain.RankingResult, error)
}

// RedisCache keeps the latest result in Redis with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps an existing Redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, ttl: defaultTTL}
}

// Put serializes the result to JSON and stores it.
func (c *RedisCache) Put(ctx context.Context, result domain.RankingResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling rankings: %w", err)
	}
	if err := c.client.Set(ctx, rankingsKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("storing rankings: %w", err)
	}
	return nil
}

// Get returns the stored result, or ErrMiss when none exists.
func (c *RedisCache) Get(ctx context.Context) (domain.RankingResult, error) {
	data, err := c.client.Get(ctx, rankingsKey).Bytes()
	if err == redis.Nil {
		return domain.RankingResult{}, ErrMiss
	}
	if err != nil {
		return domain.RankingResult{}, fmt.Errorf("reading rankings: %w", err)
	}

	var result domain.RankingResult
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.RankingResult{}, fmt.Errorf("unmarshaling rankings: %w", err)
	}
	if result.ByPublisher == nil {
		result.ByPublisher = make(map[string][]domain.RankedEntry)
	}
	return result, nil
}

// MemoryCache is the in-process fallback used when Redis is not configured.
type MemoryCache struct {
	mu     sync.RWMutex
	result *domain.RankingResult
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache { return &MemoryCache{} }

// Put stores a copy of the result.
func (c *MemoryCache) Put(ctx context.Context, result domain.RankingResult) error {
	cp := result
	cp.AllPublishers = append([]domain.RankedEntry(nil), result.AllPublishers...)
	cp.ByPublisher = make(map[string][]domain.RankedEntry, len(result.ByPublisher))
	for pub, entries := range result.ByPublisher {
		cp.ByPublisher[pub] = append([]domain.RankedEntry(nil), entries...)
	}

	c.mu.Lock()
	c.result = &cp
	c.mu.Unlock()
	return nil
}

// Get returns the stored result, or ErrMiss when none exists.
func (c *MemoryCache) Get(ctx context.Context) (domain.RankingResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.result == nil {
		return domain.RankingResult{}, ErrMiss
	}
	return *c.result, nil
}
