package service

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRefreshTokenStore_Basics(t *testing.T) {
	store := NewMemoryRefreshTokenStore()
	ctx := context.Background()

	ok, err := store.Exists(ctx, "missing")
	if err != nil || ok {
		t.Fatalf("expected missing token false,nil; got %v,%v", ok, err)
	}

	if err := store.Store(ctx, "jti-1", "u1", 50*time.Millisecond); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	ok, err = store.Exists(ctx, "jti-1")
	if err != nil || !ok {
		t.Fatalf("expected token exists, got %v,%v", ok, err)
	}

	time.Sleep(70 * time.Millisecond)
	ok, err = store.Exists(ctx, "jti-1")
	if err != nil || ok {
		t.Fatalf("expected token expired, got %v,%v", ok, err)
	}
}

func TestMemoryRefreshTokenStore_RevokeAndEmptyJTI(t *testing.T) {
	store := NewMemoryRefreshTokenStore()
	ctx := context.Background()
	if err := store.Store(ctx, "", "u1", time.Minute); err != nil {
		t.Fatalf("empty jti store should be no-op, got %v", err)
	}
	if err := store.Store(ctx, "jti-2", "u1", time.Minute); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if err := store.Revoke(ctx, " jti-2 "); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	ok, err := store.Exists(ctx, "jti-2")
	if err != nil || ok {
		t.Fatalf("expected revoked token absent, got %v,%v", ok, err)
	}
}

func TestRedisRefreshTokenStore_Basics(t *testing.T) {
	mr, client := newMiniredisClient(t)
	store := NewRedisRefreshTokenStore(client)
	ctx := context.Background()

	if err := store.Store(ctx, " j1 ", "u1", 0); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if got, _ := mr.Get("auth:refresh:j1"); got != "u1" {
		t.Fatalf("unexpected stored value %q", got)
	}
	if ttl := mr.TTL("auth:refresh:j1"); ttl <= 0 {
		t.Fatalf("expected positive TTL fallback, got %v", ttl)
	}

	ok, err := store.Exists(ctx, " j1 ")
	if err != nil || !ok {
		t.Fatalf("expected exists true,nil; got %v,%v", ok, err)
	}

	if err := store.Revoke(ctx, "j1"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	ok, err = store.Exists(ctx, "j1")
	if err != nil || ok {
		t.Fatalf("expected revoked token absent; got %v,%v", ok, err)
	}
}

func TestRedisRefreshTokenStore_ExpiryAndErrors(t *testing.T) {
	mr, client := newMiniredisClient(t)
	store := NewRedisRefreshTokenStore(client)
	ctx := context.Background()

	if err := store.Store(ctx, "j2", "u1", time.Minute); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if ok, _ := store.Exists(ctx, "j2"); ok {
		t.Fatalf("expected token expired")
	}

	if ok, err := store.Exists(ctx, ""); err != nil || ok {
		t.Fatalf("empty jti exists should be false,nil; got %v,%v", ok, err)
	}

	mr.Close()
	if err := store.Store(ctx, "j3", "u1", time.Minute); err == nil {
		t.Fatalf("expected store error when redis is down")
	}
	if _, err := store.Exists(ctx, "j3"); err == nil {
		t.Fatalf("expected exists error when redis is down")
	}
}

func TestNewRedisRefreshTokenStore_NilClient(t *testing.T) {
	if NewRedisRefreshTokenStore(nil) != nil {
		t.Fatalf("expected nil store without client")
	}
}
