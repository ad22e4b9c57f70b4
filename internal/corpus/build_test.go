package corpus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollikk/pre-inf1101-p2-v2/internal/indexer"
	apperrors "github.com/pollikk/pre-inf1101-p2-v2/pkg/errors"
)

type memSource struct {
	names []string
	docs  map[string]string
	fail  map[string]bool
	mu    sync.Mutex
	reads int
}

func (s *memSource) Names(context.Context) ([]string, error) { return s.names, nil }

func (s *memSource) Read(_ context.Context, name string) (string, error) {
	s.mu.Lock()
	s.reads++
	s.mu.Unlock()
	if s.fail[name] {
		return "", errors.New("permission denied")
	}
	return s.docs[name], nil
}

func TestBuildFromFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"doc1.txt": "The cat, the DOG.",
		"doc2.txt": "dog\tfish\n",
		"doc3.txt": "cat fish cat",
		"skip.md":  "bird",
	})

	engine := indexer.New()
	var progress [][2]int
	report, err := Build(context.Background(), engine, &FileSource{Dir: root, Extensions: []string{"txt"}}, BuildOptions{
		Workers:       3,
		ProgressEvery: 2,
		Progress:      func(done, total int) { progress = append(progress, [2]int{done, total}) },
	})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Indexed)
	assert.Zero(t, report.Skipped)
	assert.Zero(t, report.Failed)
	assert.True(t, engine.Frozen())
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, progress)

	docs, terms := engine.Stat()
	assert.Equal(t, 3, docs)
	assert.Equal(t, 4, terms) // the cat dog fish
	assert.Equal(t, 2, engine.Lookup("cat").Len())
	assert.Zero(t, engine.Lookup("bird").Len())
}

func TestBuildKeepsSourceOrderAndCountsFailures(t *testing.T) {
	src := &memSource{
		names: []string{"a", "b", "c", "a", "d"},
		docs:  map[string]string{"a": "x", "b": "y", "c": "z", "d": "x y"},
		fail:  map[string]bool{"c": true},
	}
	engine := indexer.New()
	report, err := Build(context.Background(), engine, src, BuildOptions{Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Indexed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 5, src.reads)
	assert.Equal(t, []string{"a", "d"}, engine.Lookup("x").Slice())
}

func TestBuildNoDocuments(t *testing.T) {
	_, err := Build(context.Background(), indexer.New(), &memSource{}, BuildOptions{})
	assert.ErrorIs(t, err, ErrNoDocuments)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestBuildIntoFrozenEngineFails(t *testing.T) {
	engine := indexer.New()
	engine.Freeze()
	src := &memSource{names: []string{"a"}, docs: map[string]string{"a": "x"}}
	_, err := Build(context.Background(), engine, src, BuildOptions{Workers: 2})
	assert.ErrorIs(t, err, apperrors.ErrIndexFrozen)
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &memSource{names: []string{"a", "b"}, docs: map[string]string{"a": "x", "b": "y"}}
	engine := indexer.New()
	_, err := Build(ctx, engine, src, BuildOptions{Workers: 1})
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, engine.Frozen())
	}
}
