package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pollikk/pre-inf1101-p2-v2/internal/indexer"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher/parser"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher/ranker"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/adt"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/logger"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/metrics"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/tracing"
)

type SearchResult struct {
	Query     string             `json:"query"`
	TotalHits int                `json:"total_hits"`
	Results   []ranker.ScoredDoc `json:"results"`
	Terms     []string           `json:"terms"`
}

type Executor struct {
	engine  *indexer.Engine
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Executor)

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

func New(engine *indexer.Engine, opts ...Option) *Executor {
	e := &Executor{
		engine: engine,
		logger: slog.Default().With("component", "query-executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns the documents matched by n as a new set.
func (e *Executor) Evaluate(n parser.Node) (*adt.Set, error) {
	var out *adt.Set
	err := e.engine.View(func(r indexer.Reader) error {
		out = owned(n, evaluate(r, n))
		return nil
	})
	return out, err
}

// Query parses tokens, evaluates the expression and ranks the matches.
// A malformed query returns a *parser.SyntaxError; a query matching nothing
// is not an error. limit caps the returned results (0 means all) but not
// TotalHits. tokens is left as it was.
func (e *Executor) Query(ctx context.Context, tokens *adt.List[string], limit int) (*SearchResult, error) {
	start := time.Now()
	raw := strings.Join(tokens.Slice(), " ")

	ctx, span := tracing.StartSpan(ctx, "query", logger.RequestID(ctx))
	defer func() {
		span.End()
		span.Log()
	}()

	_, parseSpan := tracing.StartChildSpan(ctx, "parse")
	tree, err := parser.Parse(tokens)
	parseSpan.SetAttr("tokens", tokens.Len())
	parseSpan.End()
	if err != nil {
		e.observe("error", 0, start)
		logger.FromContext(ctx).Debug("query rejected", "query", raw, "error", err)
		return nil, err
	}
	terms := parser.Terms(tree)

	result := &SearchResult{Query: raw, Terms: terms}
	err = e.engine.View(func(r indexer.Reader) error {
		_, evalSpan := tracing.StartChildSpan(ctx, "evaluate")
		matches := evaluate(r, tree)
		evalSpan.SetAttr("matches", matches.Len())
		evalSpan.End()

		_, rankSpan := tracing.StartChildSpan(ctx, "rank")
		result.TotalHits = matches.Len()
		result.Results = ranker.Rank(matches, terms, r.MemberTerms, limit)
		rankSpan.End()
		return nil
	})
	if err != nil {
		e.observe("error", 0, start)
		return nil, fmt.Errorf("querying %q: %w", raw, err)
	}

	resultType := "hit"
	if result.TotalHits == 0 {
		resultType = "zero_result"
	}
	e.observe(resultType, result.TotalHits, start)
	logger.FromContext(ctx).Debug("query executed",
		"query", raw,
		"tree", tree.String(),
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"latency", time.Since(start),
	)
	return result, nil
}

func (e *Executor) observe(resultType string, hits int, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.QueriesTotal.WithLabelValues(resultType).Inc()
	e.metrics.QueryLatency.WithLabelValues("uncached").Observe(time.Since(start).Seconds())
	if resultType != "error" {
		e.metrics.QueryResults.Observe(float64(hits))
	}
}

// evaluate walks n bottom-up. Term leaves return the posting view itself;
// every inner node yields a fresh set, so postings are never written.
func evaluate(r indexer.Reader, n parser.Node) adt.SetView {
	switch n := n.(type) {
	case *parser.Term:
		return r.Lookup(n.Value)
	case *parser.And:
		return adt.Intersection(evaluate(r, n.Left), evaluate(r, n.Right))
	case *parser.Or:
		return adt.Union(evaluate(r, n.Left), evaluate(r, n.Right))
	case *parser.AndNot:
		return adt.Difference(evaluate(r, n.Left), evaluate(r, n.Right))
	default:
		panic(fmt.Sprintf("executor: unknown node type %T", n))
	}
}

// owned returns v as a set the caller may keep. A bare term evaluates to the
// posting itself, which is copied.
func owned(n parser.Node, v adt.SetView) *adt.Set {
	if _, leaf := n.(*parser.Term); !leaf {
		if s, ok := v.(*adt.Set); ok {
			return s
		}
	}
	return adt.Union(v, adt.EmptySet())
}
