package httpcore

import (
	"bytes"
	"strings"
	"testing"
)

func TestResponseEncoder_LengthRoundTrip(t *testing.T) {
	e := NewResponseEncoder()
	var buf bytes.Buffer

	head := ResponseHead{Status: 200}
	if err := e.EncodeHeader(&buf, &head, PayloadSize{Kind: SizeLength, Length: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.EncodePayload(&buf, PayloadItem{Kind: ItemChunk, Chunk: []byte("hello")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.EncodePayload(&buf, eofItem); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("unexpected status line: %q", out)
	}
	if !strings.Contains(out, "Content-Length: 5\r\n") {
		t.Errorf("expected Content-Length: 5, got %q", out)
	}
	if !strings.HasSuffix(out, "hello") {
		t.Errorf("expected body to be written verbatim, got %q", out)
	}
}

func TestResponseEncoder_ChunkedRoundTrip(t *testing.T) {
	e := NewResponseEncoder()
	var buf bytes.Buffer

	head := ResponseHead{Status: 200}
	if err := e.EncodeHeader(&buf, &head, PayloadSize{Kind: SizeChunked}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.EncodePayload(&buf, PayloadItem{Kind: ItemChunk, Chunk: []byte("Wiki")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.EncodePayload(&buf, eofItem); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Transfer-Encoding: chunked\r\n") {
		t.Errorf("expected chunked framing header, got %q", out)
	}
	if !strings.Contains(out, "4\r\nWiki\r\n0\r\n\r\n") {
		t.Errorf("expected chunk framing in body, got %q", out)
	}
}

func TestResponseEncoder_EmptyBodyNeedsNoPayloadCalls(t *testing.T) {
	e := NewResponseEncoder()
	var buf bytes.Buffer
	head := ResponseHead{Status: 204}
	if err := e.EncodeHeader(&buf, &head, PayloadSize{Kind: SizeEmpty}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "204 No Content") {
		t.Errorf("unexpected status line, got %q", out)
	}
	if !strings.Contains(out, "Content-Length: 0\r\n") {
		t.Errorf("expected Content-Length: 0 for an empty body, got %q", out)
	}
}

func TestResponseEncoder_RejectsHeaderDuringActivePayload(t *testing.T) {
	e := NewResponseEncoder()
	var buf bytes.Buffer
	head := ResponseHead{Status: 200}
	e.EncodeHeader(&buf, &head, PayloadSize{Kind: SizeChunked})

	err := e.EncodeHeader(&buf, &head, PayloadSize{Kind: SizeEmpty})
	if err == nil {
		t.Fatalf("expected an error writing a header while a payload encoder is still active")
	}
}

func TestResponseEncoder_RejectsUnsupportedVersion(t *testing.T) {
	e := NewResponseEncoder()
	var buf bytes.Buffer
	head := ResponseHead{Status: 200, VersionMaj: 1, VersionMin: 0}

	err := e.EncodeHeader(&buf, &head, PayloadSize{Kind: SizeEmpty})
	if err == nil {
		t.Fatalf("expected an error encoding a response head declaring HTTP/1.0")
	}
	se, ok := err.(*SendError)
	if !ok || se.Kind != SendUnsupportedVersion {
		t.Fatalf("expected a SendUnsupportedVersion SendError, got %#v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected nothing written to the buffer on rejection, got %q", buf.String())
	}
	if e.mode != responseAwaitingHeader {
		t.Errorf("expected encoder to remain in header-awaiting mode after rejection")
	}
}

func TestHeaderEncoder_UnknownStatusFallsBackToBuiltLine(t *testing.T) {
	line := statusLine(299)
	if string(line) != "299 Unknown" {
		t.Errorf("got %q, want %q", line, "299 Unknown")
	}
}
