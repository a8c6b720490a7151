// Package ingest streams every document of a library through a tokenizer
// into one shared word counter.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kerem-kaynak/wordfreq/pkg/tokenizer"
)

// Document identifies one text to ingest.
type Document struct {
	ID    int
	Title string
	URL   string
}

// Library lists documents and opens their byte streams.
type Library interface {
	// Documents calls fn for every document until fn returns an error.
	Documents(ctx context.Context, fn func(Document) error) error
	// Open returns the body of doc. The caller closes it.
	Open(ctx context.Context, doc Document) (io.ReadCloser, error)
}

// Stats summarizes a run.
type Stats struct {
	Documents int // fully parsed
	Aborted   int // stream failed mid-document
	Failed    int // could not be opened
	Words     int // words counted, including those of aborted documents
}

// nodeCounter is implemented by counters that can report their size.
type nodeCounter interface {
	NodeCount() int
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithLogger sets the logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(in *Ingester) { in.logger = logger }
}

// WithWorkers sets how many documents are processed at once. Values above
// one require a counter that is safe for concurrent use, such as
// trie.Locked.
func WithWorkers(n int) Option {
	return func(in *Ingester) {
		if n > 0 {
			in.workers = n
		}
	}
}

// WithChunkSize sets the read size used for document bodies.
func WithChunkSize(size int) Option {
	return func(in *Ingester) { in.chunkSize = size }
}

// WithHaltOnAbort stops the run at the first document that fails instead
// of skipping it.
func WithHaltOnAbort(halt bool) Option {
	return func(in *Ingester) { in.haltOnAbort = halt }
}

// Ingester feeds documents from a Library into a Counter.
type Ingester struct {
	lib         Library
	tok         *tokenizer.Tokenizer
	counter     tokenizer.Counter
	logger      *slog.Logger
	workers     int
	chunkSize   int
	haltOnAbort bool

	mu    sync.Mutex
	stats Stats
}

// New creates an ingester.
func New(lib Library, tok *tokenizer.Tokenizer, counter tokenizer.Counter, opts ...Option) *Ingester {
	in := &Ingester{
		lib:       lib,
		tok:       tok,
		counter:   counter,
		logger:    slog.Default(),
		workers:   1,
		chunkSize: tokenizer.DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run ingests every document of the library. Documents whose stream fails
// are logged and skipped unless WithHaltOnAbort is set.
func (in *Ingester) Run(ctx context.Context) (Stats, error) {
	in.mu.Lock()
	in.stats = Stats{}
	in.mu.Unlock()

	logger := in.logger.With("run_id", uuid.NewString())
	logger.Info("ingest started", "workers", in.workers)

	var err error
	if in.workers == 1 {
		scanner := tokenizer.NewStreamScanner(in.tok)
		err = in.lib.Documents(ctx, func(doc Document) error {
			return in.process(ctx, logger, scanner, doc)
		})
	} else {
		err = in.runConcurrent(ctx, logger)
	}

	stats := in.Stats()
	logger.Info("ingest finished",
		"documents", stats.Documents,
		"aborted", stats.Aborted,
		"failed", stats.Failed,
		"words", stats.Words,
	)
	return stats, err
}

func (in *Ingester) runConcurrent(ctx context.Context, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.workers)

	scanners := sync.Pool{New: func() any {
		return tokenizer.NewStreamScanner(in.tok)
	}}

	listErr := in.lib.Documents(gctx, func(doc Document) error {
		g.Go(func() error {
			scanner := scanners.Get().(*tokenizer.StreamScanner)
			defer scanners.Put(scanner)
			return in.process(gctx, logger, scanner, doc)
		})
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return listErr
}

// Stats returns the counters of the current or last run.
func (in *Ingester) Stats() Stats {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.stats
}

// tally counts the words passed to a Counter for one document.
type tally struct {
	tokenizer.Counter
	words int
}

func (t *tally) Increment(word string) uint64 {
	t.words++
	return t.Counter.Increment(word)
}

func (in *Ingester) process(ctx context.Context, logger *slog.Logger, scanner *tokenizer.StreamScanner, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger = logger.With("document_id", doc.ID, "title", doc.Title)

	body, err := in.lib.Open(ctx, doc)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		in.update(func(s *Stats) { s.Failed++ })
		logger.Warn("document open failed", "url", doc.URL, "error", err)
		if in.haltOnAbort {
			return fmt.Errorf("open %q: %w", doc.Title, err)
		}
		return nil
	}
	defer body.Close()

	t := &tally{Counter: in.counter}
	runErr := in.stream(ctx, scanner, body, t)
	in.update(func(s *Stats) { s.Words += t.words })

	switch {
	case runErr == nil:
		in.update(func(s *Stats) { s.Documents++ })
		attrs := []any{"words", t.words}
		if nc, ok := in.counter.(nodeCounter); ok {
			attrs = append(attrs, "node_count", nc.NodeCount())
		}
		logger.Info("document parsed", attrs...)
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(runErr, tokenizer.ErrStreamAborted):
		in.update(func(s *Stats) { s.Aborted++ })
		logger.Warn("document aborted", "words", t.words, "error", runErr)
		if in.haltOnAbort {
			return fmt.Errorf("ingest %q: %w", doc.Title, runErr)
		}
		return nil
	default:
		return runErr
	}
}

// stream reads body ahead in its own goroutine while scanner consumes it.
func (in *Ingester) stream(ctx context.Context, scanner *tokenizer.StreamScanner, body io.Reader, counter tokenizer.Counter) error {
	g, gctx := errgroup.WithContext(ctx)
	src := tokenizer.StreamChunks(gctx, g, body, in.chunkSize)

	var runErr error
	g.Go(func() error {
		runErr = scanner.Run(gctx, src, counter)
		return runErr
	})
	waitErr := g.Wait()

	if runErr != nil {
		return runErr
	}
	return waitErr
}

func (in *Ingester) update(fn func(*Stats)) {
	in.mu.Lock()
	defer in.mu.Unlock()
	fn(&in.stats)
}
