package httpcore

// chunkedState is the 12-state chunked-transfer-encoding state machine
// (RFC 7230 §4.1).
type chunkedState uint8

const (
	stateSize chunkedState = iota
	stateSizeLws
	stateExtension
	stateSizeLf
	stateBody
	stateBodyCr
	stateBodyLf
	stateTrailer
	stateTrailerLf
	stateEndCr
	stateEndLf
	stateEnd
)

// ChunkedDecoder is a pausable byte-at-a-time decoder for RFC 7230 §4.1
// chunked transfer encoding. It never blocks: Decode consumes as much of
// the supplied buffer as it can and reports whether it produced an item or
// needs more input appended by the caller. A decoder is restart-safe — the
// same byte stream split across any sequence of Decode calls produces the
// same sequence of items.
type ChunkedDecoder struct {
	state     chunkedState
	remaining uint64
}

// NewChunkedDecoder returns a decoder ready to read the first chunk.
func NewChunkedDecoder() *ChunkedDecoder {
	return &ChunkedDecoder{state: stateSize}
}

// Reset returns the decoder to its initial state for reuse on a new body.
func (d *ChunkedDecoder) Reset() {
	d.state = stateSize
	d.remaining = 0
}

// Decode consumes a prefix of buf, advancing internal state. It returns the
// number of bytes consumed, the item produced (if any), whether an item was
// produced at all, and an error if the input violates the grammar. When ok
// is false and err is nil, the caller must append more bytes to buf and
// call Decode again.
func (d *ChunkedDecoder) Decode(buf []byte) (consumed int, item PayloadItem, ok bool, err error) {
	pos := 0
	for {
		switch d.state {
		case stateSize:
			if pos >= len(buf) {
				return pos, PayloadItem{}, false, nil
			}
			b := buf[pos]
			pos++
			switch {
			case isHexDigit(b):
				next, overflowed := checkedHexAccumulate(d.remaining, b)
				if overflowed {
					return pos, PayloadItem{}, false, newInvalidBody("invalid overflow chunked length")
				}
				d.remaining = next
			case b == ' ' || b == '\t':
				d.state = stateSizeLws
			case b == ';':
				d.state = stateExtension
			case b == '\r':
				d.state = stateSizeLf
			default:
				return pos, PayloadItem{}, false, newInvalidBody("invalid chunk size")
			}

		case stateSizeLws:
			if pos >= len(buf) {
				return pos, PayloadItem{}, false, nil
			}
			b := buf[pos]
			pos++
			switch b {
			case '\r':
				d.state = stateSizeLf
			case ';':
				d.state = stateExtension
			case ' ', '\t':
				// stay in SizeLws
			default:
				return pos, PayloadItem{}, false, newInvalidBody("invalid chunk size linear whitespace")
			}

		case stateExtension:
			if pos >= len(buf) {
				return pos, PayloadItem{}, false, nil
			}
			b := buf[pos]
			pos++
			switch b {
			case '\r':
				d.state = stateSizeLf
			case '\n':
				// Reject a bare LF inside an extension - some peers omit
				// the CR, and letting that slide would desynchronize the
				// frame boundary silently.
				return pos, PayloadItem{}, false, newInvalidBody("invalid chunk extension contains newline")
			default:
				// no supported chunk extensions; consume and discard
			}

		case stateSizeLf:
			if pos >= len(buf) {
				return pos, PayloadItem{}, false, nil
			}
			b := buf[pos]
			pos++
			if b != '\n' {
				return pos, PayloadItem{}, false, newInvalidBody("invalid chunk size LF")
			}
			if d.remaining == 0 {
				d.state = stateEndCr
			} else {
				d.state = stateBody
			}

		case stateBody:
			if pos >= len(buf) {
				return pos, PayloadItem{}, false, nil
			}
			if d.remaining == 0 {
				d.state = stateBodyCr
				continue
			}
			avail := uint64(len(buf) - pos)
			var take uint64
			if d.remaining < avail {
				take = d.remaining
			} else {
				take = avail
			}
			chunk := buf[pos : pos+int(take)]
			pos += int(take)
			d.remaining -= take
			if d.remaining == 0 {
				d.state = stateBodyCr
			}
			return pos, PayloadItem{Kind: ItemChunk, Chunk: chunk}, true, nil

		case stateBodyCr:
			if pos >= len(buf) {
				return pos, PayloadItem{}, false, nil
			}
			b := buf[pos]
			pos++
			if b != '\r' {
				return pos, PayloadItem{}, false, newInvalidBody("invalid chunk body CR")
			}
			d.state = stateBodyLf

		case stateBodyLf:
			if pos >= len(buf) {
				return pos, PayloadItem{}, false, nil
			}
			b := buf[pos]
			pos++
			if b != '\n' {
				return pos, PayloadItem{}, false, newInvalidBody("invalid chunk body LF")
			}
			d.state = stateSize

		case stateTrailer:
			if pos >= len(buf) {
				return pos, PayloadItem{}, false, nil
			}
			b := buf[pos]
			pos++
			if b == '\r' {
				d.state = stateTrailerLf
			}
			// any other byte: stay in Trailer, discarding trailer content

		case stateTrailerLf:
			if pos >= len(buf) {
				return pos, PayloadItem{}, false, nil
			}
			b := buf[pos]
			pos++
			if b != '\n' {
				return pos, PayloadItem{}, false, newInvalidBody("invalid trailer end LF")
			}
			d.state = stateEndCr

		case stateEndCr:
			if pos >= len(buf) {
				return pos, PayloadItem{}, false, nil
			}
			b := buf[pos]
			pos++
			if b == '\r' {
				d.state = stateEndLf
			} else {
				// Tolerant entry (see DESIGN.md Open Question decisions):
				// any non-CR byte here begins a trailer field directly.
				d.state = stateTrailer
			}

		case stateEndLf:
			if pos >= len(buf) {
				return pos, PayloadItem{}, false, nil
			}
			b := buf[pos]
			pos++
			if b != '\n' {
				return pos, PayloadItem{}, false, newInvalidBody("invalid chunk end LF")
			}
			d.state = stateEnd
			return pos, eofItem, true, nil

		case stateEnd:
			return pos, eofItem, true, nil
		}
	}
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexValue(b byte) uint64 {
	switch {
	case b >= '0' && b <= '9':
		return uint64(b - '0')
	case b >= 'a' && b <= 'f':
		return uint64(b-'a') + 10
	default:
		return uint64(b-'A') + 10
	}
}

// checkedHexAccumulate computes remaining*16 + digit(b) with overflow
// detection on a 64-bit counter, guarding against a maliciously huge
// chunk size.
func checkedHexAccumulate(remaining uint64, b byte) (result uint64, overflowed bool) {
	const maxUint64 = ^uint64(0)
	if remaining > maxUint64/16 {
		return 0, true
	}
	scaled := remaining * 16
	digit := hexValue(b)
	if scaled > maxUint64-digit {
		return 0, true
	}
	return scaled + digit, false
}
