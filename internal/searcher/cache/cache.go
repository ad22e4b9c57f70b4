package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher/executor"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/metrics"
	pkgredis "github.com/pollikk/pre-inf1101-p2-v2/pkg/redis"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/resilience"
)

const keyPrefix = "boolsearch:"

// Store is the key-value backend of the cache. *redis.Client implements it;
// Get must return an error satisfying redis.IsNilError for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// QueryCache stores query results keyed by the index fingerprint, the query
// tokens and the limit. The index is frozen while it serves queries, so an
// entry never goes stale within one index generation.
type QueryCache struct {
	store       Store
	ttl         time.Duration
	fingerprint string
	timeout     time.Duration
	breaker     *resilience.CircuitBreaker
	group       singleflight.Group
	metrics     *metrics.Metrics
	logger      *slog.Logger
	hits        atomic.Int64
	misses      atomic.Int64
}

type Option func(*QueryCache)

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *QueryCache) { c.metrics = m }
}

// WithTimeout bounds each store call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *QueryCache) { c.timeout = d }
}

// WithBreaker replaces the default circuit breaker guarding the store.
func WithBreaker(cb *resilience.CircuitBreaker) Option {
	return func(c *QueryCache) { c.breaker = cb }
}

func New(store Store, ttl time.Duration, fingerprint string, opts ...Option) *QueryCache {
	c := &QueryCache{
		store:       store,
		ttl:         ttl,
		fingerprint: fingerprint,
		timeout:     50 * time.Millisecond,
		logger:      slog.Default().With("component", "query-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = resilience.NewCircuitBreaker("query-cache", resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
			OnStateChange: func(_ string, _, to resilience.State) {
				if c.metrics != nil {
					c.metrics.CacheCircuitState.Set(float64(to))
				}
			},
		})
	}
	return c
}

// Get returns the cached result for key. Store failures and undecodable
// entries count as misses.
func (c *QueryCache) Get(ctx context.Context, key string) (*executor.SearchResult, bool) {
	// a timed-out call may still finish later, so the value travels over a
	// channel instead of a captured variable
	got := make(chan string, 1)
	err := c.call(ctx, "cache-get", func(ctx context.Context) error {
		v, err := c.store.Get(ctx, key)
		switch {
		case pkgredis.IsNilError(err):
			got <- ""
		case err != nil:
			return err
		default:
			got <- v
		}
		return nil
	})
	var data string
	if err == nil {
		data = <-got
	}
	if err != nil || data == "" {
		if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}

	var result executor.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	c.logger.Debug("cache hit", "query", result.Query, "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, key string, result *executor.SearchResult) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.call(ctx, "cache-set", func(ctx context.Context) error {
		return c.store.Set(ctx, key, data, c.ttl)
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for the query or runs computeFn,
// collapsing concurrent identical misses into one call. The boolean reports
// a cache hit. Errors from computeFn are returned as is and not cached.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	tokens []string,
	limit int,
	computeFn func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	key := c.Key(tokens, limit)
	if result, ok := c.Get(ctx, key); ok {
		return result, true, nil
	}
	val, err, _ := c.group.Do(key, func() (any, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*executor.SearchResult), false, nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Key derives the store key for a token list and limit.
func (c *QueryCache) Key(tokens []string, limit int) string {
	raw := fmt.Sprintf("%s|%s|limit=%d", c.fingerprint, strings.Join(tokens, "\x1f"), limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

func (c *QueryCache) call(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return c.breaker.Execute(func() error {
		return resilience.WithTimeout(ctx, c.timeout, name, fn)
	})
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}
