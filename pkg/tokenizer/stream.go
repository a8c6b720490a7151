package tokenizer

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrStreamAborted is returned when a chunk source fails before its
	// final chunk. Words counted before the failure are kept.
	ErrStreamAborted = errors.New("stream aborted")

	// ErrUnexpectedConsumption is the panic value (wrapped) raised when a
	// scan reports a consumed position that contradicts the scanned bytes.
	ErrUnexpectedConsumption = errors.New("unexpected consumption")
)

// maxRetainedTail is the capacity above which the tail buffer is dropped
// rather than reused once a document is done.
const maxRetainedTail = 64 << 10

// Chunk is one unit of bytes delivered by a ChunkSource.
type Chunk struct {
	// Data is only valid until the next call to Next.
	Data []byte
	// Final marks the last chunk of the stream.
	Final bool
}

// ChunkSource delivers the bytes of one document in order.
type ChunkSource interface {
	Next(ctx context.Context) (Chunk, error)
}

// Counter records one occurrence of a word and returns its new count.
type Counter interface {
	Increment(word string) uint64
}

// State is the position of a StreamScanner in its per-document cycle.
type State int

const (
	AwaitingChunk State = iota
	Scanning
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingChunk:
		return "awaiting-chunk"
	case Scanning:
		return "scanning"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StreamScanner drives a Tokenizer across the chunks of a stream, carrying
// the unconsumed tail of one chunk into the next so no word is split.
// A StreamScanner processes one stream at a time and is not safe for
// concurrent use; it may be reused for consecutive documents.
type StreamScanner struct {
	tok   *Tokenizer
	scan  func(buf []byte, emit func(string)) int
	tail  []byte
	state State
}

// NewStreamScanner creates a scanner that tokenizes with tok.
func NewStreamScanner(tok *Tokenizer) *StreamScanner {
	return &StreamScanner{tok: tok, scan: tok.Scan, state: Done}
}

// State returns the current state.
func (s *StreamScanner) State() State {
	return s.state
}

// Run consumes src until its final chunk, incrementing counter for every
// word. An error from src aborts the document with ErrStreamAborted.
func (s *StreamScanner) Run(ctx context.Context, src ChunkSource, counter Counter) error {
	s.reset()
	defer s.release()

	emit := func(word string) {
		counter.Increment(word)
	}

	for {
		chunk, err := src.Next(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStreamAborted, err)
		}

		s.state = Scanning
		s.feed(chunk.Data, emit)

		if chunk.Final {
			if len(s.tail) > 0 {
				s.tok.Final(s.tail, emit)
			}
			return nil
		}
		s.state = AwaitingChunk
	}
}

func (s *StreamScanner) reset() {
	s.tail = s.tail[:0]
	s.state = AwaitingChunk
}

func (s *StreamScanner) release() {
	s.state = Done
	if cap(s.tail) > maxRetainedTail {
		s.tail = nil
		return
	}
	s.tail = s.tail[:0]
}

// feed scans data after the retained tail. Only the part of data up to its
// first delimiter is copied behind the tail; the rest is scanned in place.
func (s *StreamScanner) feed(data []byte, emit func(string)) {
	if len(s.tail) > 0 {
		i := IndexDelimiter(data)
		if i < 0 {
			s.tail = append(s.tail, data...)
			return
		}
		s.tail = append(s.tail, data[:i+1]...)
		if n := s.checkedScan(s.tail, emit); n != len(s.tail) {
			panic(fmt.Errorf("%w: stitched tail consumed %d of %d bytes",
				ErrUnexpectedConsumption, n, len(s.tail)))
		}
		s.tail = s.tail[:0]
		data = data[i+1:]
	}

	n := s.checkedScan(data, emit)
	s.tail = append(s.tail, data[n:]...)
}

// checkedScan scans buf and verifies that the consumed position ends on a
// delimiter and that nothing after it is a delimiter.
func (s *StreamScanner) checkedScan(buf []byte, emit func(string)) int {
	n := s.scan(buf, emit)
	switch {
	case n < 0 || n > len(buf):
		panic(fmt.Errorf("%w: position %d outside buffer of %d bytes",
			ErrUnexpectedConsumption, n, len(buf)))
	case n > 0 && !IsDelimiter(buf[n-1]):
		panic(fmt.Errorf("%w: position %d does not follow a delimiter",
			ErrUnexpectedConsumption, n))
	case IndexDelimiter(buf[n:]) >= 0:
		panic(fmt.Errorf("%w: delimiter left after position %d",
			ErrUnexpectedConsumption, n))
	}
	return n
}
