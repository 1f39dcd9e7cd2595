package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	sid, err := s.Save(ctx, Identity{Username: "alice", AccessToken: "tok"}, time.Hour)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	id, err := s.Lookup(ctx, sid)
	if err != nil || id.Username != "alice" || id.AccessToken != "tok" {
		t.Fatalf("Lookup() = %+v, %v", id, err)
	}

	if err := s.Revoke(ctx, sid); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := s.Lookup(ctx, sid); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Lookup after revoke = %v, want ErrSessionNotFound", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	sid, _ := s.Save(ctx, Identity{Username: "alice"}, time.Minute)
	now = now.Add(2 * time.Minute)
	if _, err := s.Lookup(ctx, sid); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Lookup after expiry = %v, want ErrSessionNotFound", err)
	}
}

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisStoreSaveLookupRevoke(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sid, err := store.Save(ctx, Identity{Username: "alice", AccessToken: "tok", IssuedAt: issued}, time.Hour)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !mr.Exists("solnotes:session:" + sid) {
		t.Errorf("expected key for sid %s", sid)
	}
	if ttl := mr.TTL("solnotes:session:" + sid); ttl != time.Hour {
		t.Errorf("TTL = %v, want 1h", ttl)
	}

	id, err := store.Lookup(ctx, sid)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if id.Username != "alice" || id.AccessToken != "tok" || !id.IssuedAt.Equal(issued) {
		t.Errorf("Lookup() = %+v", id)
	}

	if err := store.Revoke(ctx, sid); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := store.Lookup(ctx, sid); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Lookup after revoke = %v, want ErrSessionNotFound", err)
	}
}

func TestRedisStoreExpiry(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	sid, err := store.Save(ctx, Identity{Username: "alice"}, time.Minute)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := store.Lookup(ctx, sid); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Lookup after expiry = %v, want ErrSessionNotFound", err)
	}
}

func TestNewRedisStoreBadURL(t *testing.T) {
	if _, err := NewRedisStore("not a url"); err == nil {
		t.Error("expected error for invalid url")
	}
}
