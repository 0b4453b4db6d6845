package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestLocalLockMutualExclusion(t *testing.T) {
	ctx := context.Background()
	l := &LocalLock{}

	ok, err := l.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first Acquire = %v, %v", ok, err)
	}

	ok, err = l.Acquire(ctx)
	if err != nil || ok {
		t.Fatalf("second Acquire = %v, %v, want false", ok, err)
	}

	if err := l.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}

	ok, err = l.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("Acquire after Release = %v, %v", ok, err)
	}
}

func TestRedisLockMutualExclusion(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	a := NewRedisLock(client, "run", time.Minute)
	b := NewRedisLock(client, "run", time.Minute)

	ok, err := a.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("a.Acquire = %v, %v", ok, err)
	}

	ok, err = b.Acquire(ctx)
	if err != nil || ok {
		t.Fatalf("b.Acquire while held = %v, %v, want false", ok, err)
	}

	// b must not be able to free a's lock
	if err := b.Release(ctx); err != nil {
		t.Fatalf("b.Release: %v", err)
	}
	ok, err = b.Acquire(ctx)
	if err != nil || ok {
		t.Fatalf("b.Acquire after foreign release = %v, %v, want false", ok, err)
	}

	if err := a.Release(ctx); err != nil {
		t.Fatalf("a.Release: %v", err)
	}
	ok, err = b.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("b.Acquire after owner release = %v, %v", ok, err)
	}
}

func TestRedisLockExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	a := NewRedisLock(client, "run", time.Second)

	if ok, _ := a.Acquire(ctx); !ok {
		t.Fatal("a.Acquire failed")
	}

	mr.FastForward(2 * time.Second)

	b := NewRedisLock(client, "run", time.Second)
	ok, err := b.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("b.Acquire after expiry = %v, %v", ok, err)
	}
}

func TestNewPicksBackend(t *testing.T) {
	if _, ok := New(nil, "run", time.Minute).(*LocalLock); !ok {
		t.Fatal("New(nil) should return LocalLock")
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	if _, ok := New(client, "run", time.Minute).(*RedisLock); !ok {
		t.Fatal("New(client) should return RedisLock")
	}
}
