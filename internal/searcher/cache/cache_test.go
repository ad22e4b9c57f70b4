package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher/executor"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher/ranker"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/metrics"
	pkgredis "github.com/pollikk/pre-inf1101-p2-v2/pkg/redis"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/resilience"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
	err  error
	sets int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	v, ok := s.data[key]
	if !ok {
		return "", pkgredis.ErrNil
	}
	return v, nil
}

func (s *memStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sets++
	s.data[key] = string(value.([]byte))
	return nil
}

func sample() *executor.SearchResult {
	return &executor.SearchResult{
		Query:     "cat || fish",
		TotalHits: 3,
		Results:   []ranker.ScoredDoc{{DocID: "doc3", Score: 2}},
		Terms:     []string{"cat", "fish"},
	}
}

func TestGetOrComputeCachesResult(t *testing.T) {
	store := newMemStore()
	m := metrics.New(nil)
	c := New(store, time.Minute, "fp1", WithMetrics(m))
	tokens := []string{"cat", "||", "fish"}

	calls := 0
	compute := func() (*executor.SearchResult, error) {
		calls++
		return sample(), nil
	}

	res, hit, err := c.GetOrCompute(context.Background(), tokens, 0, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, sample(), res)

	res, hit, err = c.GetOrCompute(context.Background(), tokens, 0, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, sample(), res)
	assert.Equal(t, 1, calls)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestKeyDependsOnFingerprintTokensAndLimit(t *testing.T) {
	a := New(newMemStore(), time.Minute, "fp1")
	b := New(newMemStore(), time.Minute, "fp2")
	tokens := []string{"cat"}

	assert.Equal(t, a.Key(tokens, 0), a.Key([]string{"cat"}, 0))
	assert.NotEqual(t, a.Key(tokens, 0), b.Key(tokens, 0))
	assert.NotEqual(t, a.Key(tokens, 0), a.Key(tokens, 5))
	assert.NotEqual(t, a.Key([]string{"ab", "c"}, 0), a.Key([]string{"a", "bc"}, 0))
}

func TestComputeErrorsAreNotCached(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, "fp")
	boom := errors.New("malformed")

	_, _, err := c.GetOrCompute(context.Background(), []string{"cat", "&&"}, 0, func() (*executor.SearchResult, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.sets)
}

func TestStoreFailureFallsThrough(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	cb := resilience.NewCircuitBreaker("test", resilience.CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour})
	c := New(store, time.Minute, "fp", WithBreaker(cb))

	for i := 0; i < 3; i++ {
		res, hit, err := c.GetOrCompute(context.Background(), []string{"cat"}, 0, func() (*executor.SearchResult, error) {
			return sample(), nil
		})
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, 3, res.TotalHits)
	}
	assert.Equal(t, resilience.StateOpen, cb.State())
}

type slowStore struct{}

func (slowStore) Get(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (slowStore) Set(context.Context, string, any, time.Duration) error { return nil }

func TestSlowStoreIsBounded(t *testing.T) {
	c := New(slowStore{}, time.Minute, "fp", WithTimeout(5*time.Millisecond))
	start := time.Now()
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestConcurrentMissesCollapse(t *testing.T) {
	c := New(newMemStore(), time.Minute, "fp")
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.GetOrCompute(context.Background(), []string{"dog"}, 0, func() (*executor.SearchResult, error) {
				calls.Add(1)
				<-release
				return sample(), nil
			})
			assert.NoError(t, err)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}
