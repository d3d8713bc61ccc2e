package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	for i := 0; i < 3; i++ {
		result, err := limiter.Allow(ctx, "id:abc", 3, now)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !result.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
		if result.Remaining != 3-i-1 {
			t.Fatalf("request %d: remaining = %d, want %d", i, result.Remaining, 3-i-1)
		}
	}

	result, err := limiter.Allow(ctx, "id:abc", 3, now)
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if result.Allowed {
		t.Fatalf("fourth request in window should be denied")
	}

	// Next window resets the counter.
	result, err = limiter.Allow(ctx, "id:abc", 3, now.Add(time.Second))
	if err != nil {
		t.Fatalf("allow next window: %v", err)
	}
	if !result.Allowed {
		t.Fatalf("request in fresh window should be allowed")
	}
}

func TestMemoryLimiter_ZeroLimitDisables(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Unix(1700000000, 0)
	for i := 0; i < 100; i++ {
		result, err := limiter.Allow(context.Background(), "id:abc", 0, now)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !result.Allowed {
			t.Fatalf("zero limit must never deny")
		}
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	if result, _ := limiter.Allow(ctx, "id:a", 1, now); !result.Allowed {
		t.Fatalf("first key should be allowed")
	}
	if result, _ := limiter.Allow(ctx, "id:a", 1, now); result.Allowed {
		t.Fatalf("first key should be exhausted")
	}
	if result, _ := limiter.Allow(ctx, "id:b", 1, now); !result.Allowed {
		t.Fatalf("second key has its own window")
	}
}

func TestKeyForRequest(t *testing.T) {
	withIdentity := KeyForRequest("Alice@Example.com", "10.0.0.1")
	withIdentityLower := KeyForRequest("alice@example.com", "10.0.0.2")
	if withIdentity != withIdentityLower {
		t.Fatalf("identity keys must be case-insensitive and ignore IP")
	}
	if withIdentity == KeyForRequest("bob@example.com", "") {
		t.Fatalf("different identities must get different keys")
	}

	anonymous := KeyForRequest("", "10.0.0.1")
	if anonymous != "ip:10.0.0.1" {
		t.Fatalf("anonymous key = %q, want ip:10.0.0.1", anonymous)
	}
	if KeyForRequest("", "") != "" {
		t.Fatalf("no identity and no IP must yield empty key")
	}
}

func TestManager_UsesMemoryWhenRedisDisabled(t *testing.T) {
	now := time.Unix(1700000000, 0)
	manager := NewManager(func() SettingsConfig {
		return SettingsConfig{Limit: 2}
	}, func() time.Time { return now }, nil)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		result, err := manager.Allow(ctx, "id:key")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !result.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	result, err := manager.Allow(ctx, "id:key")
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if result.Allowed {
		t.Fatalf("third request should be denied")
	}
}
