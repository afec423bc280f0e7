// ABOUTME: Combines the local FIFO cache with an optional shared store
// ABOUTME: Shared-store failures degrade to local-only decisions via circuit breaker

package dedupe

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sinugotshifhiwa4/errsift/internal/resilience"
)

// Deduper decides whether a fingerprint has been seen before. The
// local cache is always authoritative for this process; the shared
// store, when configured, extends the decision across processes. Any
// shared-store failure degrades to the local decision.
type Deduper struct {
	cache   *Cache
	store   Store
	breaker *resilience.Breaker
	logger  *slog.Logger
}

// Option configures a Deduper.
type Option func(*Deduper)

// WithStore attaches a shared fingerprint store.
func WithStore(store Store) Option {
	return func(d *Deduper) {
		d.store = store
	}
}

// WithLogger sets the logger for degradation events.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Deduper) {
		d.logger = logger
	}
}

// New creates a Deduper with a cache bounded to max fingerprints.
func New(max int, opts ...Option) *Deduper {
	d := &Deduper{
		cache:  NewCache(max),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.store != nil {
		d.breaker = resilience.NewBreaker(resilience.Config{Name: "dedupe-store"})
	}
	return d
}

// IsDuplicate reports whether the fingerprint was seen before,
// recording it as seen either way. A fingerprint new to this process
// but already claimed in the shared store counts as a duplicate.
func (d *Deduper) IsDuplicate(ctx context.Context, fingerprint string) bool {
	localFirst := d.cache.CheckAndAdd(fingerprint)
	if !localFirst {
		return true
	}
	if d.store == nil {
		return false
	}

	var first bool
	err := d.breaker.Do(ctx, func(ctx context.Context) error {
		var claimErr error
		first, claimErr = d.store.Claim(ctx, fingerprint)
		return claimErr
	})
	if err != nil {
		if !errors.Is(err, resilience.ErrOpen) {
			d.logger.Warn("shared dedup store unavailable, using local decision",
				slog.String("error", err.Error()))
		}
		return false
	}
	return !first
}

// Reset clears the local cache. The shared store is left untouched;
// its claims expire by TTL.
func (d *Deduper) Reset() {
	d.cache.Reset()
}

// CacheLen returns the number of locally cached fingerprints.
func (d *Deduper) CacheLen() int {
	return d.cache.Len()
}
