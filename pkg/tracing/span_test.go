package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanTree(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "query", "trace-1")
	_, parse := StartChildSpan(ctx, "parse")
	parse.SetAttr("tokens", 3)
	parse.End()
	_, eval := StartChildSpan(ctx, "evaluate")
	eval.End()
	root.End()

	assert.Same(t, root, SpanFromContext(ctx))
	require.Len(t, root.Children(), 2)
	assert.Equal(t, "trace-1", parse.TraceID)
	assert.Same(t, eval, root.Child("evaluate"))
	assert.Nil(t, root.Child("rank"))
	assert.GreaterOrEqual(t, root.Duration, parse.Duration)

	v, ok := parse.Attr("tokens")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestSetAttrReplaces(t *testing.T) {
	_, s := StartSpan(context.Background(), "q", "t")
	s.SetAttr("matches", 1)
	s.SetAttr("matches", 2)
	v, _ := s.Attr("matches")
	assert.Equal(t, 2, v)
	_, ok := s.Attr("missing")
	assert.False(t, ok)
}

func TestEndIsIdempotent(t *testing.T) {
	_, s := StartSpan(context.Background(), "q", "t")
	s.End()
	d := s.Duration
	s.End()
	assert.Equal(t, d, s.Duration)
}

func TestStartSpanGeneratesTraceID(t *testing.T) {
	_, a := StartSpan(context.Background(), "a", "")
	_, b := StartSpan(context.Background(), "b", "")
	assert.NotEmpty(t, a.TraceID)
	assert.NotEqual(t, a.TraceID, b.TraceID)
}

func TestChildWithoutParent(t *testing.T) {
	ctx, s := StartChildSpan(context.Background(), "orphan")
	assert.Empty(t, s.TraceID)
	assert.Same(t, s, SpanFromContext(ctx))
}

func TestLogWritesOneRecord(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx, root := StartSpan(context.Background(), "query", "trace-9")
	_, rank := StartChildSpan(ctx, "rank")
	rank.SetAttr("returned", 4)
	rank.End()
	root.End()
	root.Log()

	out := buf.String()
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
	assert.Contains(t, out, "trace_id=trace-9")
	assert.Contains(t, out, "rank.returned=4")
}

func TestLogSkippedAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	_, root := StartSpan(context.Background(), "query", "t")
	root.End()
	root.Log()
	assert.Empty(t, buf.String())
}
