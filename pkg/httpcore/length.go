package httpcore

// LengthDecoder slices a fixed-size body out of a growable byte buffer,
// tracking the remaining byte count.
type LengthDecoder struct {
	remaining uint64
}

// NewLengthDecoder returns a decoder expecting exactly n body bytes.
func NewLengthDecoder(n uint64) *LengthDecoder {
	return &LengthDecoder{remaining: n}
}

// Reset reinitializes the decoder for a new body of n bytes.
func (d *LengthDecoder) Reset(n uint64) {
	d.remaining = n
}

// Decode slices min(remaining, len(buf)) bytes as one chunk. When remaining
// reaches zero it emits Eof. An empty buffer with remaining > 0 reports
// need-more-input (ok == false). No validation beyond byte
// counting is performed — the bytes are opaque to this decoder.
func (d *LengthDecoder) Decode(buf []byte) (consumed int, item PayloadItem, ok bool) {
	if d.remaining == 0 {
		return 0, eofItem, true
	}
	if len(buf) == 0 {
		return 0, PayloadItem{}, false
	}
	avail := uint64(len(buf))
	var take uint64
	if d.remaining < avail {
		take = d.remaining
	} else {
		take = avail
	}
	d.remaining -= take
	return int(take), PayloadItem{Kind: ItemChunk, Chunk: buf[:take]}, true
}
