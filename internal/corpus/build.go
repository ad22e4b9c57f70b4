package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pollikk/pre-inf1101-p2-v2/internal/indexer"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/indexer/tokenizer"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/adt"
	apperrors "github.com/pollikk/pre-inf1101-p2-v2/pkg/errors"
)

// ErrNoDocuments is returned when a source yields nothing to index.
var ErrNoDocuments = fmt.Errorf("%w: found no documents to index", apperrors.ErrInvalidInput)

const defaultProgressEvery = 100

type BuildOptions struct {
	// Workers bounds concurrent reads. Values below 1 mean 1.
	Workers int
	// ProgressEvery sets how often progress is reported. 0 means 100.
	ProgressEvery int
	// Progress, when set, is called with the 1-based position of the
	// document being indexed: for the first, every ProgressEvery-th and
	// the last one.
	Progress func(done, total int)
}

type BuildReport struct {
	Indexed  int
	Skipped  int
	Failed   int
	Duration time.Duration
}

type loaded struct {
	terms *adt.List[string]
	err   error
}

// Build reads every document of src with a pool of workers, indexes them in
// the order src lists them and freezes engine. Unreadable documents are
// counted as failed and duplicates as skipped; neither stops the build.
func Build(ctx context.Context, engine *indexer.Engine, src Source, opts BuildOptions) (*BuildReport, error) {
	start := time.Now()
	log := slog.Default().With("component", "corpus-builder")

	names, err := src.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	if len(names) == 0 {
		return nil, ErrNoDocuments
	}
	workers := max(opts.Workers, 1)
	every := opts.ProgressEvery
	if every <= 0 {
		every = defaultProgressEvery
	}
	log.Info("building index", "documents", len(names), "workers", workers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// one buffered slot per document lets workers finish out of order while
	// the engine still sees discovery order
	slots := make([]chan loaded, len(names))
	for i := range slots {
		slots[i] = make(chan loaded, 1)
	}
	jobs := make(chan int)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := range names {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				text, err := src.Read(gctx, names[i])
				if err != nil {
					slots[i] <- loaded{err: err}
					continue
				}
				slots[i] <- loaded{terms: tokenizer.Document(text)}
			}
			return nil
		})
	}

	report := &BuildReport{}
	buildErr := func() error {
		for i, name := range names {
			var doc loaded
			select {
			case doc = <-slots[i]:
			case <-ctx.Done():
				return ctx.Err()
			}
			n := i + 1
			if opts.Progress != nil && (n == 1 || n%every == 0 || n == len(names)) {
				opts.Progress(n, len(names))
			}
			if n%every == 0 {
				log.Info("indexing progress", "processed", n, "total", len(names))
			}

			if doc.err != nil {
				report.Failed++
				log.Error("failed to process document, ignoring", "document", name, "error", doc.err)
				continue
			}
			err := engine.IndexDocument(name, doc.terms)
			switch {
			case err == nil:
				report.Indexed++
			case errors.Is(err, apperrors.ErrDuplicateDocument), errors.Is(err, apperrors.ErrInvalidInput):
				report.Skipped++
				log.Warn("document skipped", "document", name, "error", err)
			default:
				return fmt.Errorf("indexing %q: %w", name, err)
			}
		}
		return nil
	}()
	cancel()
	g.Wait()
	if buildErr != nil {
		return nil, buildErr
	}

	engine.Freeze()
	report.Duration = time.Since(start)
	docs, terms := engine.Stat()
	log.Info("index built",
		"indexed", report.Indexed,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"documents", docs,
		"terms", terms,
		"duration", report.Duration,
	)
	return report, nil
}
