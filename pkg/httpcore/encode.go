package httpcore

import (
	"io"
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// LengthEncoder streams a fixed-length body verbatim, decrementing a
// remaining-byte counter. Empty chunks are ignored. Finished
// requires both counter==0 and an Eof having been observed — a short
// handler body that stops before the declared length never reports done.
type LengthEncoder struct {
	remaining uint64
	eofSeen   bool
}

// NewLengthEncoder returns an encoder for a body of exactly n bytes.
func NewLengthEncoder(n uint64) *LengthEncoder {
	return &LengthEncoder{remaining: n}
}

// WriteChunk writes data verbatim to w and decrements the remaining count.
func (e *LengthEncoder) WriteChunk(w io.Writer, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if uint64(len(data)) > e.remaining {
		e.remaining = 0
	} else {
		e.remaining -= uint64(len(data))
	}
	return nil
}

// WriteEof marks the encoder as having observed end-of-stream.
func (e *LengthEncoder) WriteEof() {
	e.eofSeen = true
}

// Finished reports whether the full declared length has been written and
// Eof observed.
func (e *LengthEncoder) Finished() bool {
	return e.eofSeen && e.remaining == 0
}

// ChunkedEncoder emits RFC 7230 §4.1 chunk framing: each non-empty chunk as
// "{hex-size}\r\n" + bytes + "\r\n", and the terminating "0\r\n\r\n" on Eof.
// Empty chunks before Eof are elided; once finished, further
// writes are silently dropped so a caller that double-calls WriteEof can't
// corrupt the stream.
type ChunkedEncoder struct {
	finished bool
}

// NewChunkedEncoder returns a fresh chunked-body encoder.
func NewChunkedEncoder() *ChunkedEncoder {
	return &ChunkedEncoder{}
}

// WriteChunk frames and writes one chunk of data. A zero-length chunk is a
// no-op, not a terminator — only WriteEof emits the terminating chunk.
func (e *ChunkedEncoder) WriteChunk(w io.Writer, data []byte) error {
	if e.finished || len(data) == 0 {
		return nil
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.B = strconv.AppendUint(buf.B[:0], uint64(len(data)), 16)
	buf.B = append(buf.B, '\r', '\n')
	if _, err := w.Write(buf.B); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := w.Write(crlfBytes)
	return err
}

// WriteEof writes the terminating zero-chunk and marks the encoder
// finished. Safe to call more than once.
func (e *ChunkedEncoder) WriteEof(w io.Writer) error {
	if e.finished {
		return nil
	}
	e.finished = true
	_, err := w.Write([]byte("0\r\n\r\n"))
	return err
}

// Finished reports whether the terminating chunk has been written.
func (e *ChunkedEncoder) Finished() bool {
	return e.finished
}
