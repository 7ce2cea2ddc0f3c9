package httpcore

import (
	"io"

	"github.com/valyala/bytebufferpool"
)

type responseEncoderMode uint8

const (
	responseAwaitingHeader responseEncoderMode = iota
	responseStreamingPayload
)

// ResponseEncoder is dual to RequestDecoder: it multiplexes the header
// encoder and the two body sub-encoders over one underlying writer,
// enforcing that a header always precedes payload items and that exactly
// one payload encoder is live at a time.
type ResponseEncoder struct {
	mode     responseEncoderMode
	bodyKind PayloadSizeKind

	header  *HeaderEncoder
	chunked *ChunkedEncoder
	length  *LengthEncoder
}

// NewResponseEncoder returns an encoder awaiting its first response header.
func NewResponseEncoder() *ResponseEncoder {
	return &ResponseEncoder{header: NewHeaderEncoder()}
}

// EncodeHeader writes the status line and headers for head, selecting the
// payload sub-encoder from size. Returns a SendError if a payload encoder
// is already installed — calling this twice without an intervening Eof is a
// programmer error on the caller's part, not a protocol condition.
func (e *ResponseEncoder) EncodeHeader(w io.Writer, head *ResponseHead, size PayloadSize) error {
	if e.mode == responseStreamingPayload {
		return newSendInvalidBody("header written while a payload encoder is still active")
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := e.header.Encode(buf, head, size); err != nil {
		return err
	}
	if _, err := w.Write(buf.B); err != nil {
		return newSendIO(err)
	}

	e.bodyKind = size.Kind
	switch size.Kind {
	case SizeChunked:
		e.chunked = NewChunkedEncoder()
		e.mode = responseStreamingPayload
	case SizeLength:
		e.length = NewLengthEncoder(size.Length)
		e.mode = responseStreamingPayload
	case SizeEmpty:
		// no payload encoder needed; an Empty response has no Payload items
		// to accept, so the encoder stays in header-awaiting mode.
	}
	return nil
}

// EncodePayload writes one payload item through the active sub-encoder.
// Returns a SendError if no payload encoder is installed. When the
// sub-encoder reports finished, it is dropped and the encoder returns to
// header-awaiting mode.
func (e *ResponseEncoder) EncodePayload(w io.Writer, item PayloadItem) error {
	switch e.bodyKind {
	case SizeChunked:
		if e.chunked == nil {
			return newSendInvalidBody("payload item with no active body encoder")
		}
		var err error
		if item.IsEof() {
			err = e.chunked.WriteEof(w)
		} else {
			err = e.chunked.WriteChunk(w, item.Chunk)
		}
		if err != nil {
			return newSendIO(err)
		}
		if e.chunked.Finished() {
			e.chunked = nil
			e.mode = responseAwaitingHeader
		}
		return nil

	case SizeLength:
		if e.length == nil {
			return newSendInvalidBody("payload item with no active body encoder")
		}
		if item.IsEof() {
			e.length.WriteEof()
		} else if err := e.length.WriteChunk(w, item.Chunk); err != nil {
			return newSendIO(err)
		}
		if e.length.Finished() {
			e.length = nil
			e.mode = responseAwaitingHeader
		}
		return nil

	default:
		return newSendInvalidBody("payload item with no active body encoder")
	}
}
