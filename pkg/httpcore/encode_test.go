package httpcore

import (
	"bytes"
	"testing"
)

// decodeAllChunked runs a ChunkedDecoder over wire until Eof, returning the
// concatenation of every emitted chunk.
func decodeAllChunked(t *testing.T, wire []byte) []byte {
	t.Helper()
	dec := NewChunkedDecoder()
	var out []byte
	buf := wire
	for {
		consumed, item, ok, err := dec.Decode(buf)
		if err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if !ok {
			t.Fatalf("decoder wanted more input with %d bytes left: %q", len(buf), buf)
		}
		buf = buf[consumed:]
		if item.IsEof() {
			return out
		}
		out = append(out, item.Chunk...)
	}
}

func TestChunkedEncoder_DecoderRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		chunks [][]byte
	}{
		{"single", [][]byte{[]byte("hello")}},
		{"multiple", [][]byte{[]byte("he"), []byte("llo"), []byte(", world")}},
		{"empty chunks elided", [][]byte{[]byte("a"), nil, []byte("b"), {}}},
		{"no chunks at all", nil},
		{"binary", [][]byte{{0x00, 0xff, 0x0d, 0x0a}, {0x7f}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var wire bytes.Buffer
			enc := NewChunkedEncoder()
			var want []byte
			for _, c := range tt.chunks {
				if err := enc.WriteChunk(&wire, c); err != nil {
					t.Fatalf("WriteChunk: %v", err)
				}
				want = append(want, c...)
			}
			if err := enc.WriteEof(&wire); err != nil {
				t.Fatalf("WriteEof: %v", err)
			}
			if !enc.Finished() {
				t.Fatal("encoder not finished after WriteEof")
			}

			got := decodeAllChunked(t, wire.Bytes())
			if !bytes.Equal(got, want) {
				t.Errorf("round trip mismatch: got %q, want %q", got, want)
			}
		})
	}
}

func TestChunkedEncoder_WireFormat(t *testing.T) {
	var wire bytes.Buffer
	enc := NewChunkedEncoder()
	enc.WriteChunk(&wire, []byte("he"))
	enc.WriteChunk(&wire, []byte("llo"))
	enc.WriteEof(&wire)

	want := "2\r\nhe\r\n3\r\nllo\r\n0\r\n\r\n"
	if wire.String() != want {
		t.Errorf("got %q, want %q", wire.String(), want)
	}
}

func TestChunkedEncoder_DropsInputAfterEof(t *testing.T) {
	var wire bytes.Buffer
	enc := NewChunkedEncoder()
	enc.WriteEof(&wire)
	before := wire.Len()

	if err := enc.WriteChunk(&wire, []byte("late")); err != nil {
		t.Fatalf("WriteChunk after Eof: %v", err)
	}
	if err := enc.WriteEof(&wire); err != nil {
		t.Fatalf("second WriteEof: %v", err)
	}
	if wire.Len() != before {
		t.Errorf("writes after Eof reached the wire: %q", wire.Bytes()[before:])
	}
}

func TestLengthEncoder_DecoderRoundTrip(t *testing.T) {
	payload := []byte("the quick brown fox jumps over the lazy dog")

	var wire bytes.Buffer
	enc := NewLengthEncoder(uint64(len(payload)))
	if err := enc.WriteChunk(&wire, payload[:10]); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	if err := enc.WriteChunk(&wire, nil); err != nil {
		t.Fatalf("WriteChunk empty: %v", err)
	}
	if err := enc.WriteChunk(&wire, payload[10:]); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	enc.WriteEof()
	if !enc.Finished() {
		t.Fatal("encoder not finished after full length and Eof")
	}

	dec := NewLengthDecoder(uint64(len(payload)))
	var got []byte
	buf := wire.Bytes()
	for {
		consumed, item, ok := dec.Decode(buf)
		if !ok {
			t.Fatal("decoder wanted more input on a complete buffer")
		}
		buf = buf[consumed:]
		if item.IsEof() {
			break
		}
		got = append(got, item.Chunk...)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("round trip mismatch: got %q, want %q", got, payload)
	}
}
