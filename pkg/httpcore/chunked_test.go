package httpcore

import (
	"bytes"
	"testing"
)

// decodeAllChunks feeds the whole input to a fresh decoder in one Decode
// call per iteration, collecting every chunk until Eof.
func decodeAllChunks(t *testing.T, input []byte) []byte {
	t.Helper()
	d := NewChunkedDecoder()
	var out []byte
	buf := input
	for {
		consumed, item, ok, err := d.Decode(buf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatalf("decoder ran out of input before Eof")
		}
		buf = buf[consumed:]
		if item.IsEof() {
			return out
		}
		out = append(out, item.Chunk...)
	}
}

func TestChunkedDecoder_Simple(t *testing.T) {
	input := []byte("4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n")
	got := decodeAllChunks(t, input)
	if string(got) != "Wikipedia" {
		t.Errorf("got %q, want %q", got, "Wikipedia")
	}
}

func TestChunkedDecoder_ExtensionsDiscarded(t *testing.T) {
	input := []byte("4;name=value\r\nWiki\r\n5;foo=bar\r\npedia\r\n0\r\n\r\n")
	got := decodeAllChunks(t, input)
	if string(got) != "Wikipedia" {
		t.Errorf("got %q, want %q", got, "Wikipedia")
	}
}

func TestChunkedDecoder_EmptyBody(t *testing.T) {
	got := decodeAllChunks(t, []byte("0\r\n\r\n"))
	if len(got) != 0 {
		t.Errorf("got %q, want empty", got)
	}
}

func TestChunkedDecoder_TrailerTolerant(t *testing.T) {
	// A trailer field with no leading CR before it (see DESIGN.md Open
	// Question decisions: EndCr is tolerant of this).
	input := []byte("4\r\nWiki\r\n0\r\nX-Trailer: value\r\n\r\n")
	got := decodeAllChunks(t, input)
	if string(got) != "Wiki" {
		t.Errorf("got %q, want %q", got, "Wiki")
	}
}

// TestChunkedDecoder_RestartSafe verifies splitting the same input across
// any sequence of Decode calls yields the same chunks, one byte at a time
// being the hardest case.
func TestChunkedDecoder_RestartSafe(t *testing.T) {
	input := []byte("4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n")
	d := NewChunkedDecoder()
	var out []byte
	pending := []byte{}
	for _, b := range input {
		pending = append(pending, b)
		for {
			consumed, item, ok, err := d.Decode(pending)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			pending = pending[consumed:]
			if !ok {
				break
			}
			if item.IsEof() {
				if string(out) != "Wikipedia" {
					t.Errorf("got %q, want %q", out, "Wikipedia")
				}
				return
			}
			out = append(out, item.Chunk...)
		}
	}
	t.Fatalf("decoder never reached Eof")
}

func TestChunkedDecoder_InvalidSize(t *testing.T) {
	d := NewChunkedDecoder()
	_, _, _, err := d.Decode([]byte("zz\r\n"))
	if err == nil {
		t.Fatalf("expected an error for a non-hex chunk size")
	}
}

func TestChunkedDecoder_BareLfInExtensionRejected(t *testing.T) {
	d := NewChunkedDecoder()
	_, _, _, err := d.Decode([]byte("4;ext\nWiki\r\n"))
	if err == nil {
		t.Fatalf("expected an error for a bare LF inside a chunk extension")
	}
}

func TestChunkedDecoder_SizeOverflow(t *testing.T) {
	d := NewChunkedDecoder()
	huge := bytes.Repeat([]byte("f"), 20)
	_, _, _, err := d.Decode(huge)
	if err == nil {
		t.Fatalf("expected an overflow error for an oversized chunk length")
	}
}

func TestChunkedDecoder_Reset(t *testing.T) {
	d := NewChunkedDecoder()
	_, _, ok, err := d.Decode([]byte("4\r\nWiki\r\n0\r\n\r\n"))
	if err != nil || !ok {
		t.Fatalf("unexpected result from first decode: ok=%v err=%v", ok, err)
	}
	d.Reset()
	var got []byte
	buf := []byte("3\r\nfoo\r\n0\r\n\r\n")
	for {
		consumed, item, ok, err := d.Decode(buf)
		if err != nil || !ok {
			t.Fatalf("decode after reset: ok=%v err=%v", ok, err)
		}
		buf = buf[consumed:]
		if item.IsEof() {
			break
		}
		got = append(got, item.Chunk...)
	}
	if string(got) != "foo" {
		t.Errorf("got %q after reset, want %q", got, "foo")
	}
}
