// Package searcher answers query lines against a frozen index. It is shared
// by the interactive prompt and the HTTP handler.
package searcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pollikk/pre-inf1101-p2-v2/internal/analytics"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/indexer/tokenizer"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher/cache"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher/executor"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher/parser"
	apperrors "github.com/pollikk/pre-inf1101-p2-v2/pkg/errors"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/logger"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/metrics"
)

// ErrNoUsableCharacters is returned for a line that tokenizes to nothing.
var ErrNoUsableCharacters = fmt.Errorf("%w: found no usable characters in the query", apperrors.ErrInvalidInput)

type Response struct {
	Result   *executor.SearchResult
	CacheHit bool
	Latency  time.Duration
}

type Service struct {
	executor *executor.Executor
	cache    *cache.QueryCache
	recorder analytics.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type Option func(*Service)

// WithCache enables result caching. A nil cache leaves caching off.
func WithCache(c *cache.QueryCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithRecorder(r analytics.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(exec *executor.Executor, opts ...Option) *Service {
	s := &Service{
		executor: exec,
		logger:   slog.Default().With("component", "search-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search tokenizes line and answers it. Malformed queries return a
// *parser.SyntaxError; a line with no usable characters returns
// ErrNoUsableCharacters.
func (s *Service) Search(ctx context.Context, line string, limit int) (*Response, error) {
	start := time.Now()
	tokens := tokenizer.Query(line)
	if tokens.Len() == 0 {
		return nil, ErrNoUsableCharacters
	}

	var (
		result *executor.SearchResult
		hit    bool
		err    error
	)
	if s.cache != nil {
		result, hit, err = s.cache.GetOrCompute(ctx, tokens.Slice(), limit, func() (*executor.SearchResult, error) {
			return s.executor.Query(ctx, tokens, limit)
		})
	} else {
		result, err = s.executor.Query(ctx, tokens, limit)
	}
	latency := time.Since(start)

	if err != nil {
		var syntaxErr *parser.SyntaxError
		if !errors.As(err, &syntaxErr) {
			logger.FromContext(ctx).Error("search failed", "query", line, "error", err)
		}
		s.record(ctx, analytics.QueryEvent{Query: line, Failed: true, LatencyMs: ms(latency)})
		return nil, err
	}

	if hit && s.metrics != nil {
		resultType := "hit"
		if result.TotalHits == 0 {
			resultType = "zero_result"
		}
		s.metrics.QueriesTotal.WithLabelValues(resultType).Inc()
		s.metrics.QueryLatency.WithLabelValues("cached").Observe(latency.Seconds())
		s.metrics.QueryResults.Observe(float64(result.TotalHits))
	}

	logger.FromContext(ctx).Info("search completed",
		"query", result.Query,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", hit,
		"latency", latency,
	)
	s.record(ctx, analytics.QueryEvent{
		Query:     result.Query,
		Terms:     result.Terms,
		TotalHits: result.TotalHits,
		Returned:  len(result.Results),
		LatencyMs: ms(latency),
		CacheHit:  hit,
	})
	return &Response{Result: result, CacheHit: hit, Latency: latency}, nil
}

func (s *Service) record(ctx context.Context, event analytics.QueryEvent) {
	if s.recorder == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	event.RequestID = logger.RequestID(ctx)
	s.recorder.Record(event)
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
