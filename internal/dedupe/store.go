// ABOUTME: Shared fingerprint store interface for cross-process dedup
// ABOUTME: Redis-backed implementation using SetNX with TTL and prefixed keys

package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a shared fingerprint set consulted in addition to the local
// cache. First-claim semantics: Claim returns true for exactly one
// caller per fingerprint within the TTL window.
type Store interface {
	// Claim atomically records the fingerprint if absent and reports
	// whether this caller was first.
	Claim(ctx context.Context, fingerprint string) (bool, error)

	// Forget removes the fingerprint so it can be claimed again.
	Forget(ctx context.Context, fingerprint string) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}

// RedisConfig holds shared-store connection settings.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string

	// Password for Redis authentication (optional).
	Password string

	// DB is the Redis database number.
	DB int

	// Prefix is prepended to all keys for multi-tenant isolation.
	// Example: "errsift:" results in keys like "errsift:fp:<hash>".
	Prefix string

	// TTL bounds how long a claimed fingerprint suppresses duplicates.
	TTL time.Duration

	// PoolSize is the number of connections in the pool.
	PoolSize int

	// ReadTimeout for Redis operations.
	ReadTimeout time.Duration

	// WriteTimeout for Redis operations.
	WriteTimeout time.Duration
}

// setDefaults applies default values to unset fields.
func (c *RedisConfig) setDefaults() {
	if c.TTL == 0 {
		c.TTL = time.Hour
	}
	if c.PoolSize == 0 {
		c.PoolSize = 10
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 5 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 5 * time.Second
	}
}

// RedisStore implements Store on Redis. Claims expire after the
// configured TTL so long-lived deployments do not accumulate keys.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a shared store with the given configuration.
// It verifies connectivity by sending a PING command.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	cfg.setDefaults()

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Verify connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ReadTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis %s: %w", cfg.Addr, err)
	}

	return &RedisStore{
		rdb:    rdb,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
	}, nil
}

func (s *RedisStore) key(fingerprint string) string {
	return s.prefix + "fp:" + fingerprint
}

// Claim records the fingerprint via SET NX and reports first-claim.
func (s *RedisStore) Claim(ctx context.Context, fingerprint string) (bool, error) {
	key := s.key(fingerprint)
	first, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claiming fingerprint %s: %w", key, err)
	}
	return first, nil
}

// Forget removes the fingerprint's claim.
func (s *RedisStore) Forget(ctx context.Context, fingerprint string) error {
	key := s.key(fingerprint)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("forgetting fingerprint %s: %w", key, err)
	}
	return nil
}

// Ping verifies connectivity to Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if err := s.rdb.Close(); err != nil {
		return fmt.Errorf("closing redis client: %w", err)
	}
	return nil
}
