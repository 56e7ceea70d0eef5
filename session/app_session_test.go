package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestAppSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewAppSessionStore(newTestRedis(t), time.Hour)

	if err := store.Create(ctx, "sid1", "user1", "u@x.com"); err != nil {
		t.Fatalf("create: %v", err)
	}

	as, err := store.Get(ctx, "sid1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if as.UserID != "user1" || as.Email != "u@x.com" {
		t.Errorf("session = %+v", as)
	}
	if as.ExpiresAt <= as.IssuedAt {
		t.Errorf("expiry not after issue: %d <= %d", as.ExpiresAt, as.IssuedAt)
	}

	if err := store.Delete(ctx, "sid1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "sid1"); !errors.Is(err, redis.Nil) {
		t.Errorf("get after delete: %v, want redis.Nil", err)
	}
}

func TestRevokeAllForUser(t *testing.T) {
	ctx := context.Background()
	store := NewAppSessionStore(newTestRedis(t), time.Hour)

	for _, sid := range []string{"a", "b", "c"} {
		if err := store.Create(ctx, sid, "user1", "u@x.com"); err != nil {
			t.Fatalf("create %s: %v", sid, err)
		}
	}
	if err := store.Create(ctx, "other", "user2", "o@x.com"); err != nil {
		t.Fatalf("create other: %v", err)
	}

	if err := store.RevokeAllForUser(ctx, "user1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	for _, sid := range []string{"a", "b", "c"} {
		if _, err := store.Get(ctx, sid); !errors.Is(err, redis.Nil) {
			t.Errorf("session %s survived revoke: %v", sid, err)
		}
	}
	// Other users are untouched.
	if _, err := store.Get(ctx, "other"); err != nil {
		t.Errorf("unrelated session revoked: %v", err)
	}
}
