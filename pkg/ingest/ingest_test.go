package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/kerem-kaynak/wordfreq/pkg/tokenizer"
	"github.com/kerem-kaynak/wordfreq/pkg/trie"
)

// memLibrary serves documents from memory. Documents without a body fail
// to open; those listed in broken fail after their text is read.
type memLibrary struct {
	docs   []Document
	bodies map[int]string
	broken map[int]error

	mu     sync.Mutex
	opened []int
}

func (l *memLibrary) Documents(ctx context.Context, fn func(Document) error) error {
	for _, doc := range l.docs {
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}

func (l *memLibrary) Open(ctx context.Context, doc Document) (io.ReadCloser, error) {
	l.mu.Lock()
	l.opened = append(l.opened, doc.ID)
	l.mu.Unlock()

	body, ok := l.bodies[doc.ID]
	if !ok {
		return nil, errors.New("not found")
	}
	var r io.Reader = strings.NewReader(body)
	if err, ok := l.broken[doc.ID]; ok {
		r = io.MultiReader(r, iotest.ErrReader(err))
	}
	return io.NopCloser(r), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTokenizer(t *testing.T) *tokenizer.Tokenizer {
	t.Helper()
	tok, err := tokenizer.NewTokenizer(tokenizer.Config{})
	if err != nil {
		t.Fatalf("Failed to create tokenizer: %v", err)
	}
	t.Cleanup(func() { tok.Close() })
	return tok
}

func TestIngester_Run(t *testing.T) {
	lib := &memLibrary{
		docs: []Document{{ID: 1, Title: "One"}, {ID: 2, Title: "Two"}},
		bodies: map[int]string{
			1: "The cat sat on the mat.",
			2: "the END",
		},
	}
	counts := trie.New()

	in := New(lib, newTokenizer(t), counts, WithLogger(quietLogger()), WithChunkSize(4))
	stats, err := in.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if stats.Documents != 2 || stats.Words != 8 {
		t.Errorf("stats = %+v, want 2 documents and 8 words", stats)
	}
	if got, _ := counts.Lookup("the"); got != 3 {
		t.Errorf("Lookup(%q) = %d, want 3", "the", got)
	}
	if got, _ := counts.Lookup("end"); got != 1 {
		t.Errorf("Lookup(%q) = %d, want 1", "end", got)
	}
	if got := counts.NodeCount(); got != 6 {
		t.Errorf("NodeCount() = %d, want 6", got)
	}
}

func TestIngester_SkipsAbortedDocument(t *testing.T) {
	lib := &memLibrary{
		docs: []Document{{ID: 1, Title: "Broken"}, {ID: 2, Title: "Missing"}, {ID: 3, Title: "Fine"}},
		bodies: map[int]string{
			1: "kept words half",
			3: "fine",
		},
		broken: map[int]error{1: io.ErrUnexpectedEOF},
	}
	counts := trie.New()

	in := New(lib, newTokenizer(t), counts, WithLogger(quietLogger()))
	stats, err := in.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want := Stats{Documents: 1, Aborted: 1, Failed: 1, Words: 3}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	// Counts from the aborted document stay, the partial word does not.
	if _, ok := counts.Lookup("kept"); !ok {
		t.Error("words before the abort should be counted")
	}
	if _, ok := counts.Lookup("half"); ok {
		t.Error("partial word after the abort should not be counted")
	}
}

func TestIngester_HaltOnAbort(t *testing.T) {
	lib := &memLibrary{
		docs:   []Document{{ID: 1, Title: "Broken"}, {ID: 2, Title: "Never"}},
		bodies: map[int]string{1: "words", 2: "never read"},
		broken: map[int]error{1: io.ErrClosedPipe},
	}

	in := New(lib, newTokenizer(t), trie.New(), WithLogger(quietLogger()), WithHaltOnAbort(true))
	_, err := in.Run(context.Background())
	if !errors.Is(err, tokenizer.ErrStreamAborted) || !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("Run error = %v, want ErrStreamAborted wrapping io.ErrClosedPipe", err)
	}
	if len(lib.opened) != 1 {
		t.Errorf("opened %v, want only the first document", lib.opened)
	}
}

func TestIngester_Concurrent(t *testing.T) {
	lib := &memLibrary{bodies: make(map[int]string)}
	for i := 1; i <= 20; i++ {
		lib.docs = append(lib.docs, Document{ID: i})
		lib.bodies[i] = strings.Repeat("alpha beta gamma ", 100)
	}
	counts := trie.NewLocked(trie.New())

	in := New(lib, newTokenizer(t), counts,
		WithLogger(quietLogger()), WithWorkers(4), WithChunkSize(64))
	stats, err := in.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if stats.Documents != 20 || stats.Words != 6000 {
		t.Errorf("stats = %+v, want 20 documents and 6000 words", stats)
	}
	if got, _ := counts.Lookup("beta"); got != 2000 {
		t.Errorf("Lookup(%q) = %d, want 2000", "beta", got)
	}
}

func TestIngester_Canceled(t *testing.T) {
	lib := &memLibrary{
		docs:   []Document{{ID: 1}},
		bodies: map[int]string{1: "text"},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := New(lib, newTokenizer(t), trie.New(), WithLogger(quietLogger()))
	if _, err := in.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
}
