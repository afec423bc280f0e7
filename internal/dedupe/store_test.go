// ABOUTME: Unit tests for the Redis-backed shared fingerprint store
// ABOUTME: Uses miniredis for isolated testing without external Redis

package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestNewRedisStore(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		cfg     RedisConfig
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: RedisConfig{
				Addr:   mr.Addr(),
				Prefix: "test:",
			},
			wantErr: false,
		},
		{
			name: "invalid address",
			cfg: RedisConfig{
				Addr:   "invalid:99999",
				Prefix: "test:",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, err := NewRedisStore(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("NewRedisStore() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRedisStore() unexpected error: %v", err)
			}
			defer store.Close()

			if err := store.Ping(context.Background()); err != nil {
				t.Errorf("Ping() unexpected error: %v", err)
			}
		})
	}
}

func TestRedisStoreClaim(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	store, err := NewRedisStore(RedisConfig{Addr: mr.Addr(), Prefix: "errsift:"})
	if err != nil {
		t.Fatalf("NewRedisStore() unexpected error: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	first, err := store.Claim(ctx, "db_CONNECTION_connection refused")
	if err != nil {
		t.Fatalf("Claim() unexpected error: %v", err)
	}
	if !first {
		t.Error("Claim() = false on first claim, want true")
	}

	second, err := store.Claim(ctx, "db_CONNECTION_connection refused")
	if err != nil {
		t.Fatalf("Claim() unexpected error: %v", err)
	}
	if second {
		t.Error("Claim() = true on repeat claim, want false")
	}

	// Distinct fingerprints claim independently.
	other, err := store.Claim(ctx, "api_TIMEOUT_request timed out")
	if err != nil {
		t.Fatalf("Claim() unexpected error: %v", err)
	}
	if !other {
		t.Error("Claim() = false for distinct fingerprint, want true")
	}
}

func TestRedisStoreClaimExpires(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	store, err := NewRedisStore(RedisConfig{
		Addr:   mr.Addr(),
		Prefix: "errsift:",
		TTL:    time.Minute,
	})
	if err != nil {
		t.Fatalf("NewRedisStore() unexpected error: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if _, err := store.Claim(ctx, "fp"); err != nil {
		t.Fatalf("Claim() unexpected error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	first, err := store.Claim(ctx, "fp")
	if err != nil {
		t.Fatalf("Claim() unexpected error: %v", err)
	}
	if !first {
		t.Error("Claim() = false after TTL expiry, want true")
	}
}

func TestRedisStoreForget(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	store, err := NewRedisStore(RedisConfig{Addr: mr.Addr(), Prefix: "errsift:"})
	if err != nil {
		t.Fatalf("NewRedisStore() unexpected error: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if _, err := store.Claim(ctx, "fp"); err != nil {
		t.Fatalf("Claim() unexpected error: %v", err)
	}
	if err := store.Forget(ctx, "fp"); err != nil {
		t.Fatalf("Forget() unexpected error: %v", err)
	}

	first, err := store.Claim(ctx, "fp")
	if err != nil {
		t.Fatalf("Claim() unexpected error: %v", err)
	}
	if !first {
		t.Error("Claim() = false after Forget, want true")
	}
}
