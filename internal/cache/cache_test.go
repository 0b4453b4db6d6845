package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/planner-ranker/internal/domain"
)

func sampleResult() domain.RankingResult {
	return domain.RankingResult{
		AllPublishers: []domain.RankedEntry{
			{PlanID: "Plan_1", Publisher: "Publisher_1", FinalRank: 1, AdjustedScore: 6.303, Tag: domain.TagPaid},
		},
		ByPublisher: map[string][]domain.RankedEntry{
			"Publisher_1": {
				{PlanID: "Plan_1", Publisher: "Publisher_1", FinalRank: 1, AdjustedScore: 6.303, Tag: domain.TagPaid},
			},
		},
	}
}

func TestRedisCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewRedisCache(client)
	ctx := context.Background()

	if _, err := c.Get(ctx); !errors.Is(err, ErrMiss) {
		t.Fatalf("empty Get err = %v, want ErrMiss", err)
	}

	if err := c.Put(ctx, sampleResult()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := c.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.AllPublishers) != 1 || got.AllPublishers[0].PlanID != "Plan_1" {
		t.Errorf("AllPublishers = %+v", got.AllPublishers)
	}
	if got.AllPublishers[0].AdjustedScore != 6.303 {
		t.Errorf("AdjustedScore = %v", got.AllPublishers[0].AdjustedScore)
	}
	if len(got.ByPublisher["Publisher_1"]) != 1 {
		t.Errorf("ByPublisher = %+v", got.ByPublisher)
	}
}

func TestRedisCacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewRedisCache(client)
	ctx := context.Background()

	if err := c.Put(ctx, sampleResult()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	mr.FastForward(c.ttl * 2)

	if _, err := c.Get(ctx); !errors.Is(err, ErrMiss) {
		t.Fatalf("expired Get err = %v, want ErrMiss", err)
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if _, err := c.Get(ctx); !errors.Is(err, ErrMiss) {
		t.Fatalf("empty Get err = %v, want ErrMiss", err)
	}

	if err := c.Put(ctx, sampleResult()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := c.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.AllPublishers[0].PlanID != "Plan_1" {
		t.Errorf("AllPublishers = %+v", got.AllPublishers)
	}
}

func TestMemoryCacheCopiesInput(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	res := sampleResult()
	if err := c.Put(ctx, res); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Mutating the caller's slice must not change the cached copy.
	res.AllPublishers[0].PlanID = "mutated"

	got, err := c.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.AllPublishers[0].PlanID != "Plan_1" {
		t.Errorf("cached PlanID = %q, want Plan_1", got.AllPublishers[0].PlanID)
	}
}
