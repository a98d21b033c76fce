package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisKVClient struct {
	lastSetKey string
	lastSetVal interface{}
	lastSetTTL time.Duration
	lastExists []string

	setErr    error
	existsErr error
	existsN   int64
}

func (m *mockRedisKVClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.lastSetKey = key
	m.lastSetVal = value
	m.lastSetTTL = expiration
	cmd := redis.NewStatusCmd(ctx)
	if m.setErr != nil {
		cmd.SetErr(m.setErr)
		return cmd
	}
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedisKVClient) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	m.lastExists = keys
	cmd := redis.NewIntCmd(ctx)
	if m.existsErr != nil {
		cmd.SetErr(m.existsErr)
		return cmd
	}
	cmd.SetVal(m.existsN)
	return cmd
}

func TestMemoryRevocationStore(t *testing.T) {
	store := NewMemoryRevocationStore()

	revoked, err := store.IsRevoked("missing")
	if err != nil || revoked {
		t.Fatalf("expected false,nil; got %v,%v", revoked, err)
	}

	if err := store.Revoke("jti-1", 50*time.Millisecond); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, _ = store.IsRevoked("jti-1")
	if !revoked {
		t.Fatalf("expected jti revoked")
	}

	time.Sleep(70 * time.Millisecond)
	revoked, _ = store.IsRevoked("jti-1")
	if revoked {
		t.Fatalf("expected revocation to expire with the token")
	}

	if err := store.Revoke("jti-2", -time.Second); err != nil {
		t.Fatalf("expected no error for expired ttl, got %v", err)
	}
	if revoked, _ := store.IsRevoked("jti-2"); revoked {
		t.Fatalf("expected already-expired token not stored")
	}
}

func TestRedisRevocationStore(t *testing.T) {
	mock := &mockRedisKVClient{existsN: 1}
	store := &redisRevocationStore{client: mock, prefix: "auth:revoked:"}

	if err := store.Revoke("abc", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if mock.lastSetKey != "auth:revoked:abc" || mock.lastSetTTL != time.Minute {
		t.Fatalf("unexpected set: key=%q ttl=%v", mock.lastSetKey, mock.lastSetTTL)
	}

	revoked, err := store.IsRevoked("abc")
	if err != nil || !revoked {
		t.Fatalf("expected revoked, got %v,%v", revoked, err)
	}
	if len(mock.lastExists) != 1 || mock.lastExists[0] != "auth:revoked:abc" {
		t.Fatalf("unexpected exists keys: %v", mock.lastExists)
	}

	mock.existsErr = errors.New("down")
	if _, err := store.IsRevoked("abc"); err == nil {
		t.Fatalf("expected redis error to propagate")
	}

	mock.setErr = errors.New("down")
	if err := store.Revoke("abc", time.Minute); err == nil {
		t.Fatalf("expected set error to propagate")
	}
}

func TestNewRedisRevocationStore_NilClient(t *testing.T) {
	if s := NewRedisRevocationStore(nil); s != nil {
		t.Fatalf("expected nil store for nil client")
	}
}
