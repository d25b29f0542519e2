// Package engine implements the analysis pipeline: the TTL cache in
// front of the provider chain, the window materializer, and the
// batch/index orchestrator.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/marketlens/ashare/internal/common"
	"github.com/marketlens/ashare/internal/models"
)

const DefaultCacheTTL = 6 * time.Hour

type cacheEntry struct {
	result    *models.AnalysisResult
	createdAt time.Time
}

// flight is one in-progress computation shared by concurrent callers.
type flight struct {
	done   chan struct{}
	result *models.AnalysisResult
	err    error
}

// Cache is a TTL cache with per-key single-flight computation. Concurrent
// callers racing a cold key share one computation; unrelated keys never
// block each other.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]cacheEntry
	inflight map[string]*flight

	ttl    time.Duration
	now    func() time.Time
	logger *common.Logger
	cron   *cron.Cron
}

// CacheOption configures the cache
type CacheOption func(*Cache)

// WithCacheClock overrides the time source
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// WithCacheLogger sets the logger
func WithCacheLogger(logger *common.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// NewCache creates a cache whose entries live for ttl.
func NewCache(ttl time.Duration, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &Cache{
		entries:  make(map[string]cacheEntry),
		inflight: make(map[string]*flight),
		ttl:      ttl,
		now:      time.Now,
		logger:   common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CacheKey derives the cache key for an analysis request: the normalized
// codes plus the window set, order-insensitive on windows. The force
// refresh flag never participates.
func CacheKey(codes []string, windows []models.TimeWindow) string {
	ws := make([]string, len(windows))
	for i, w := range windows {
		ws[i] = string(w)
	}
	sort.Strings(ws)

	h := sha256.Sum256([]byte(strings.Join(codes, ",") + "|" + strings.Join(ws, ",")))
	return hex.EncodeToString(h[:16])
}

// GetOrCompute returns the cached result for key, or computes and stores
// one. With forceRefresh the existing entry is bypassed and atomically
// replaced on success. Concurrent non-refresh callers racing a miss share
// a single compute invocation. The computation itself is detached from
// the initiating caller's cancellation: a caller whose context dies only
// stops waiting, while the shared compute finishes, populates the cache,
// and serves every other waiter.
func (c *Cache) GetOrCompute(ctx context.Context, key string, forceRefresh bool, compute func(context.Context) (*models.AnalysisResult, error)) (*models.AnalysisResult, error) {
	c.mu.Lock()

	if !forceRefresh {
		if entry, ok := c.entries[key]; ok {
			if c.now().Sub(entry.createdAt) < c.ttl {
				c.mu.Unlock()
				c.logger.Debug().Str("key", key).Msg("cache hit")
				return entry.result, nil
			}
			delete(c.entries, key)
		}

		if f, ok := c.inflight[key]; ok {
			c.mu.Unlock()
			select {
			case <-f.done:
				return f.result, f.err
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	f := &flight{done: make(chan struct{})}
	if !forceRefresh {
		c.inflight[key] = f
	}
	c.mu.Unlock()

	go c.runFlight(ctx, key, forceRefresh, f, compute)

	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// runFlight executes one shared computation on a context detached from
// the initiating caller, so cancellation of any single waiter never
// aborts the flight. The provider chain's own per-attempt timeouts bound
// the detached work. The deferred cleanup also covers a panicking
// compute: the flight is always closed and deregistered, so a key can
// never wedge.
func (c *Cache) runFlight(ctx context.Context, key string, forceRefresh bool, f *flight, compute func(context.Context) (*models.AnalysisResult, error)) {
	defer func() {
		if r := recover(); r != nil {
			f.result = nil
			f.err = fmt.Errorf("analysis for key %s panicked: %v", key, r)
			c.logger.Error().Str("key", key).Interface("panic", r).Msg("analysis panicked")
		}
		c.mu.Lock()
		if !forceRefresh {
			delete(c.inflight, key)
		}
		if f.err == nil && f.result != nil {
			c.entries[key] = cacheEntry{result: f.result, createdAt: c.now()}
		}
		c.mu.Unlock()
		close(f.done)
	}()

	f.result, f.err = compute(context.WithoutCancel(ctx))
}

// Clear evicts every entry. Idempotent; in-flight computations finish
// and store their results afterwards.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	c.logger.Debug().Msg("cache cleared")
}

// Status reports occupancy without mutating the cache.
func (c *Cache) Status() models.CacheStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := models.CacheStatus{Entries: len(c.entries)}
	now := c.now()
	first := true
	for _, entry := range c.entries {
		age := now.Sub(entry.createdAt).Seconds()
		if age >= c.ttl.Seconds() {
			status.Expired++
		}
		if first || age > status.OldestAgeSeconds {
			status.OldestAgeSeconds = age
		}
		if first || age < status.NewestAgeSeconds {
			status.NewestAgeSeconds = age
		}
		first = false
	}
	return status
}

// sweep drops expired entries.
func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.createdAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug().Int("removed", removed).Msg("cache sweep evicted expired entries")
	}
}

// StartSweeper begins a periodic background sweep of expired entries.
func (c *Cache) StartSweeper(interval time.Duration) error {
	if c.cron != nil {
		return nil
	}
	c.cron = cron.New()
	if _, err := c.cron.AddFunc(fmt.Sprintf("@every %s", interval), c.sweep); err != nil {
		c.cron = nil
		return fmt.Errorf("failed to schedule cache sweep: %w", err)
	}
	c.cron.Start()
	return nil
}

// StopSweeper stops the background sweep.
func (c *Cache) StopSweeper() {
	if c.cron != nil {
		c.cron.Stop()
		c.cron = nil
	}
}
