package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollikk/pre-inf1101-p2-v2/internal/indexer"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/indexer/tokenizer"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher/parser"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher/ranker"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/adt"
	apperrors "github.com/pollikk/pre-inf1101-p2-v2/pkg/errors"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/metrics"
)

func petCorpus(t *testing.T) *indexer.Engine {
	t.Helper()
	e := indexer.New()
	require.NoError(t, e.IndexDocument("doc1", adt.NewList("cat", "dog")))
	require.NoError(t, e.IndexDocument("doc2", adt.NewList("dog", "fish")))
	require.NoError(t, e.IndexDocument("doc3", adt.NewList("cat", "fish")))
	e.Freeze()
	return e
}

func query(t *testing.T, x *Executor, q string) (*SearchResult, error) {
	t.Helper()
	return x.Query(context.Background(), tokenizer.Query(q), 0)
}

func TestRoundTrip(t *testing.T) {
	x := New(petCorpus(t))

	tests := []struct {
		query string
		want  []ranker.ScoredDoc
	}{
		{"cat && dog", []ranker.ScoredDoc{{DocID: "doc1", Score: 2}}},
		{"cat || fish", []ranker.ScoredDoc{
			{DocID: "doc3", Score: 2},
			{DocID: "doc1", Score: 1},
			{DocID: "doc2", Score: 1},
		}},
		{"(cat && dog) &! fish", []ranker.ScoredDoc{{DocID: "doc1", Score: 2}}},
		{"cat && dog &! fish", []ranker.ScoredDoc{{DocID: "doc1", Score: 2}}},
		{"CAT", []ranker.ScoredDoc{{DocID: "doc1", Score: 1}, {DocID: "doc3", Score: 1}}},
		{"zebra", []ranker.ScoredDoc{}},
		{"cat && zebra", []ranker.ScoredDoc{}},
		{"dog || cat || dog", []ranker.ScoredDoc{
			{DocID: "doc1", Score: 2},
			{DocID: "doc2", Score: 1},
			{DocID: "doc3", Score: 1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, err := query(t, x, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Results)
			assert.Equal(t, len(tt.want), res.TotalHits)
		})
	}
}

func TestQueryErrors(t *testing.T) {
	x := New(petCorpus(t))

	res, err := query(t, x, "cat &&")
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "&&")
	var syntaxErr *parser.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))

	res, err = query(t, x, "")
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Equal(t, "empty query", err.Error())
	assert.ErrorIs(t, err, apperrors.ErrMalformedQuery)
}

func TestQueryLimitKeepsTotal(t *testing.T) {
	x := New(petCorpus(t))
	res, err := x.Query(context.Background(), tokenizer.Query("cat || fish"), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalHits)
	assert.Equal(t, []ranker.ScoredDoc{{DocID: "doc3", Score: 2}}, res.Results)
	assert.Equal(t, []string{"cat", "fish"}, res.Terms)
	assert.Equal(t, "cat || fish", res.Query)
}

func TestQueryLeavesTokensUsable(t *testing.T) {
	x := New(petCorpus(t))
	toks := tokenizer.Query("cat || dog")
	_, err := x.Query(context.Background(), toks, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "||", "dog"}, toks.Slice())
}

func evalQuery(t *testing.T, x *Executor, q string) []string {
	t.Helper()
	n, err := parser.Parse(tokenizer.Query(q))
	require.NoError(t, err)
	set, err := x.Evaluate(n)
	require.NoError(t, err)
	return set.Slice()
}

func TestSetAlgebraLaws(t *testing.T) {
	e := indexer.New()
	docs := map[string][]string{
		"d1": {"a", "b"},
		"d2": {"b", "c"},
		"d3": {"a", "c"},
		"d4": {"a", "b", "c"},
		"d5": {"d"},
	}
	for _, name := range []string{"d1", "d2", "d3", "d4", "d5"} {
		require.NoError(t, e.IndexDocument(name, adt.NewList(docs[name]...)))
	}
	e.Freeze()
	x := New(e)

	exprs := []string{"a", "b", "c", "(a || d)", "(b &! c)", "zebra"}
	for _, l := range exprs {
		for _, r := range exprs {
			assert.Equal(t, evalQuery(t, x, l+" && "+r), evalQuery(t, x, r+" && "+l), "and commutes: %s, %s", l, r)
			assert.Equal(t, evalQuery(t, x, l+" || "+r), evalQuery(t, x, r+" || "+l), "or commutes: %s, %s", l, r)
			for _, m := range exprs {
				assert.Equal(t,
					evalQuery(t, x, "("+l+" && "+r+") && "+m),
					evalQuery(t, x, l+" && ("+r+" && "+m+")"))
				assert.Equal(t,
					evalQuery(t, x, "("+l+" || "+r+") || "+m),
					evalQuery(t, x, l+" || ("+r+" || "+m+")"))
			}
		}
	}

	assert.NotEqual(t, evalQuery(t, x, "a &! b"), evalQuery(t, x, "b &! a"))
	assert.Equal(t, []string{"d3"}, evalQuery(t, x, "a &! b"))
	assert.Equal(t, []string{"d2"}, evalQuery(t, x, "b &! a"))
}

func TestEvaluateDoesNotExposePostings(t *testing.T) {
	e := petCorpus(t)
	x := New(e)
	n, err := parser.Parse(tokenizer.Query("cat"))
	require.NoError(t, err)
	set, err := x.Evaluate(n)
	require.NoError(t, err)

	set.Insert("doc9")
	assert.Equal(t, []string{"doc1", "doc3"}, e.Lookup("cat").Slice())
}

func TestQueryAfterClose(t *testing.T) {
	e := petCorpus(t)
	x := New(e)
	require.NoError(t, e.Close())

	_, err := query(t, x, "cat")
	assert.ErrorIs(t, err, apperrors.ErrIndexClosed)
}

func TestQueryMetrics(t *testing.T) {
	m := metrics.New(nil)
	x := New(petCorpus(t), WithMetrics(m))
	_, _ = query(t, x, "cat")
	_, _ = query(t, x, "zebra")
	_, _ = query(t, x, "cat dog")

	body := scrape(m)
	assert.Contains(t, body, `boolsearch_queries_total{result_type="hit"} 1`)
	assert.Contains(t, body, `boolsearch_queries_total{result_type="zero_result"} 1`)
	assert.Contains(t, body, `boolsearch_queries_total{result_type="error"} 1`)
}
