package indexer

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	farmhash "github.com/leemcloughlin/gofarmhash"

	"github.com/pollikk/pre-inf1101-p2-v2/internal/indexer/index"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/adt"
	apperrors "github.com/pollikk/pre-inf1101-p2-v2/pkg/errors"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/metrics"
)

// Reader is the read-only face of the index handed to View callbacks.
type Reader interface {
	Lookup(term string) adt.SetView
	MemberTerms(docID string) adt.SetView
	Stat() (docs, terms int)
}

// Engine is the inverted index. Documents are added one at a time until
// Freeze; afterwards the index only answers reads, which may run
// concurrently.
type Engine struct {
	mu          sync.RWMutex
	postings    *index.PostingStore
	registry    *index.Registry
	frozen      bool
	closed      bool
	fingerprint uint64
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

type Option func(*Engine)

// WithMetrics reports indexing counters and index size gauges to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func New(opts ...Option) *Engine {
	e := &Engine{
		postings:    index.NewPostingStore(),
		registry:    index.NewRegistry(),
		fingerprint: fnvOffset,
		logger:      slog.Default().With("component", "indexer"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IndexDocument adds docID with the given terms. The terms list is drained
// whether or not the document is accepted and must not be reused by the
// caller. Repeated terms count once. A duplicate docID is rejected with
// ErrDuplicateDocument and leaves the earlier document untouched.
func (e *Engine) IndexDocument(docID string, terms *adt.List[string]) error {
	distinct := adt.NewSet()
	if terms != nil {
		for terms.Len() > 0 {
			distinct.Insert(terms.PopFront())
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.closed:
		return e.reject(apperrors.ErrIndexClosed)
	case e.frozen:
		return e.reject(fmt.Errorf("indexing %q: %w", docID, apperrors.ErrIndexFrozen))
	case docID == "":
		return e.reject(fmt.Errorf("indexing document: empty name: %w", apperrors.ErrInvalidInput))
	}

	if !e.registry.Register(docID, distinct) {
		return e.reject(fmt.Errorf("indexing %q: %w", docID, apperrors.ErrDuplicateDocument))
	}
	distinct.Range(func(term string) bool {
		e.postings.Add(term, docID)
		return true
	})
	e.fingerprint = mix(e.fingerprint, docID, distinct.Len())

	if e.metrics != nil {
		e.metrics.DocsIndexedTotal.Inc()
		e.metrics.IndexDocuments.Set(float64(e.registry.Len()))
		e.metrics.IndexTerms.Set(float64(e.postings.Len()))
	}
	e.logger.Debug("document indexed",
		"doc_id", docID,
		"distinct_terms", distinct.Len(),
		"total_terms", e.postings.Len(),
	)
	return nil
}

// reject counts err under its reason label and returns it.
func (e *Engine) reject(err error) error {
	if e.metrics != nil {
		e.metrics.IndexErrorsTotal.WithLabelValues(apperrors.Reason(err)).Inc()
	}
	return err
}

// Freeze ends the indexing phase. It is safe to call more than once.
func (e *Engine) Freeze() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.frozen || e.closed {
		return
	}
	e.frozen = true
	e.logger.Info("index frozen",
		"documents", e.registry.Len(),
		"terms", e.postings.Len(),
	)
}

func (e *Engine) Frozen() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.frozen
}

// Stat returns the number of registered documents and distinct terms.
func (e *Engine) Stat() (docs, terms int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.Len(), e.postings.Len()
}

// Lookup returns the documents containing term. The view is owned by the
// index and is empty for unseen terms.
func (e *Engine) Lookup(term string) adt.SetView {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.postings.Lookup(term)
}

// MemberTerms returns the distinct terms of docID.
func (e *Engine) MemberTerms(docID string) adt.SetView {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.MemberTerms(docID)
}

// View runs fn with the read lock held, so a whole query sees one
// consistent index. It returns ErrIndexClosed once Close has run.
func (e *Engine) View(fn func(r Reader) error) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return apperrors.ErrIndexClosed
	}
	return fn(lockedReader{e})
}

// Fingerprint identifies the indexed content: the document names in
// indexing order and their distinct term counts.
func (e *Engine) Fingerprint() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return strconv.FormatUint(e.fingerprint, 16)
}

// Close releases every posting set, document entry and term set. Later
// calls that need the index report ErrIndexClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.postings.Clear()
	e.registry.Clear()
	e.closed = true
	if e.metrics != nil {
		e.metrics.IndexDocuments.Set(0)
		e.metrics.IndexTerms.Set(0)
	}
	e.logger.Info("index closed")
	return nil
}

// lockedReader reads without locking; it is only handed out by View.
type lockedReader struct{ e *Engine }

func (r lockedReader) Lookup(term string) adt.SetView {
	return r.e.postings.Lookup(term)
}

func (r lockedReader) MemberTerms(docID string) adt.SetView {
	return r.e.registry.MemberTerms(docID)
}

func (r lockedReader) Stat() (docs, terms int) {
	return r.e.registry.Len(), r.e.postings.Len()
}

const (
	fnvOffset = 14695981039346656037
	fnvPrime  = 1099511628211
)

func mix(fp uint64, docID string, terms int) uint64 {
	lo := farmhash.Hash32WithSeed([]byte(docID), uint32(terms))
	hi := farmhash.Hash32WithSeed([]byte(docID), 0x9e3779b9)
	fp ^= uint64(hi)<<32 | uint64(lo)
	return fp * fnvPrime
}
