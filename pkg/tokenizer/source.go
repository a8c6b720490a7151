package tokenizer

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"
)

// DefaultChunkSize is the read size used when a source is given size <= 0.
const DefaultChunkSize = 32 << 10

// ReaderSource reads chunks synchronously into one reused buffer.
type ReaderSource struct {
	r   io.Reader
	buf []byte
}

// NewReaderSource returns a ChunkSource reading r in chunks of size bytes.
func NewReaderSource(r io.Reader, size int) *ReaderSource {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &ReaderSource{r: r, buf: make([]byte, size)}
}

// Next returns the next chunk. io.EOF ends the stream with a final chunk.
func (s *ReaderSource) Next(ctx context.Context) (Chunk, error) {
	if err := ctx.Err(); err != nil {
		return Chunk{}, err
	}
	n, err := s.r.Read(s.buf)
	switch {
	case errors.Is(err, io.EOF):
		return Chunk{Data: s.buf[:n], Final: true}, nil
	case err != nil:
		return Chunk{}, err
	}
	return Chunk{Data: s.buf[:n]}, nil
}

// streamItem is a produced chunk or the read error that ended production.
type streamItem struct {
	chunk Chunk
	err   error
}

// streamDepth is how many produced items may wait for the consumer.
const streamDepth = 4

// chanSource receives chunks produced by a goroutine in an errgroup.
type chanSource struct {
	ch <-chan streamItem
}

// StreamChunks starts a producer in g that reads r ahead of the consumer
// and returns a ChunkSource over the produced chunks. A read error is
// handed to the consumer after every chunk read before it; the producer
// fails the group only when the consumer can no longer receive it.
//
// The producer cycles through streamDepth+2 buffers: one being filled, up
// to streamDepth queued and the one the consumer holds until its next call
// to Next.
func StreamChunks(ctx context.Context, g *errgroup.Group, r io.Reader, size int) ChunkSource {
	if size <= 0 {
		size = DefaultChunkSize
	}
	out := make(chan streamItem, streamDepth)

	g.Go(func() error {
		defer close(out)

		var ring [streamDepth + 2][]byte
		for i := 0; ; {
			if ring[i] == nil {
				ring[i] = make([]byte, size)
			}
			buf := ring[i]

			n, err := r.Read(buf)
			final := errors.Is(err, io.EOF)
			if err != nil && !final {
				if n > 0 {
					select {
					case out <- streamItem{chunk: Chunk{Data: buf[:n]}}:
					case <-ctx.Done():
						return ctx.Err()
					}
				}
				select {
				case out <- streamItem{err: err}:
					return nil
				case <-ctx.Done():
					return err
				}
			}
			if n == 0 && !final {
				continue
			}

			select {
			case out <- streamItem{chunk: Chunk{Data: buf[:n], Final: final}}:
			case <-ctx.Done():
				return ctx.Err()
			}
			if final {
				return nil
			}
			i = (i + 1) % len(ring)
		}
	})

	return &chanSource{ch: out}
}

// Next returns the next produced item. Items already queued are delivered
// even when ctx is done, so a read error is never masked by cancellation.
// A channel closed before the final chunk means the producer stopped early.
func (s *chanSource) Next(ctx context.Context) (Chunk, error) {
	select {
	case item, ok := <-s.ch:
		return s.item(ctx, item, ok)
	default:
	}

	select {
	case item, ok := <-s.ch:
		return s.item(ctx, item, ok)
	case <-ctx.Done():
		return Chunk{}, ctx.Err()
	}
}

func (s *chanSource) item(ctx context.Context, item streamItem, ok bool) (Chunk, error) {
	if !ok {
		if err := ctx.Err(); err != nil {
			return Chunk{}, err
		}
		return Chunk{}, io.ErrUnexpectedEOF
	}
	return item.chunk, item.err
}

// SliceSource delivers a fixed list of chunks, the last one marked final.
type SliceSource struct {
	chunks [][]byte
	next   int
}

// NewSliceSource returns a ChunkSource over chunks.
func NewSliceSource(chunks ...[]byte) *SliceSource {
	return &SliceSource{chunks: chunks}
}

// Next returns the next chunk.
func (s *SliceSource) Next(ctx context.Context) (Chunk, error) {
	if err := ctx.Err(); err != nil {
		return Chunk{}, err
	}
	if s.next >= len(s.chunks) {
		return Chunk{Final: true}, nil
	}
	data := s.chunks[s.next]
	s.next++
	return Chunk{Data: data, Final: s.next == len(s.chunks)}, nil
}
