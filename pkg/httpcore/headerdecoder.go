package httpcore

import "bytes"

// HeaderDecoder parses the request line and header block of an HTTP/1.1 (or
// 1.0) request from a growable buffer. It is stateless between calls: every
// invocation re-scans from the start of buf for the terminating blank line,
// since the caller only calls it while in header-awaiting mode and never
// hands it partial progress to resume from.
type HeaderDecoder struct{}

// NewHeaderDecoder returns a header decoder. It carries no state of its own.
func NewHeaderDecoder() *HeaderDecoder { return &HeaderDecoder{} }

// Decode scans buf for a complete header block. ok==false, err==nil means
// the header block is not yet fully buffered — the caller must read more
// bytes and retry, failing fast if len(buf) would exceed
// MaxHeaderBlockSize. On success, consumed is the
// number of bytes of buf occupied by the request line and headers,
// including the terminating blank line.
func (d *HeaderDecoder) Decode(buf []byte) (consumed int, header RequestHeader, size PayloadSize, ok bool, err error) {
	idx := bytes.Index(buf, []byte("\r\n\r\n"))
	if idx < 0 {
		if len(buf) > MaxHeaderBlockSize {
			return 0, RequestHeader{}, PayloadSize{}, false, newTooLargeHeader(len(buf), MaxHeaderBlockSize)
		}
		return 0, RequestHeader{}, PayloadSize{}, false, nil
	}

	headerEnd := idx + 4
	if headerEnd > MaxHeaderBlockSize {
		return 0, RequestHeader{}, PayloadSize{}, false, newTooLargeHeader(headerEnd, MaxHeaderBlockSize)
	}

	// One allocation per request for the whole header block: every
	// name/value/path/query slice below references this copy, not the
	// caller's scratch buffer, so it survives the caller reusing or
	// growing that buffer for the body.
	block := append([]byte(nil), buf[:headerEnd]...)

	lineEnd := bytes.Index(block, crlfBytes)
	if lineEnd < 0 {
		return 0, RequestHeader{}, PayloadSize{}, false, newInvalidHeader("missing request line terminator")
	}
	requestLine := block[:lineEnd]

	h, perr := parseRequestLine(requestLine)
	if perr != nil {
		return 0, RequestHeader{}, PayloadSize{}, false, perr
	}

	rest := block[lineEnd+2 : headerEnd-2] // exclude request line CRLF and final blank CRLF
	if perr := parseHeaderFields(rest, &h.Headers); perr != nil {
		return 0, RequestHeader{}, PayloadSize{}, false, perr
	}

	strategy, perr := bodyStrategy(h.MethodID, &h.Headers)
	if perr != nil {
		return 0, RequestHeader{}, PayloadSize{}, false, perr
	}

	return headerEnd, h, strategy, true, nil
}

func parseRequestLine(line []byte) (RequestHeader, *ParseError) {
	firstSpace := bytes.IndexByte(line, ' ')
	if firstSpace < 0 {
		return RequestHeader{}, newInvalidMethod()
	}
	methodBytes := line[:firstSpace]
	methodID := ParseMethodID(methodBytes)
	if !IsValidMethodID(methodID) {
		return RequestHeader{}, newInvalidMethod()
	}

	rest := line[firstSpace+1:]
	lastSpace := bytes.LastIndexByte(rest, ' ')
	if lastSpace < 0 {
		return RequestHeader{}, newInvalidURI()
	}
	uri := rest[:lastSpace]
	proto := rest[lastSpace+1:]

	if len(uri) == 0 || (uri[0] != '/' && uri[0] != '*') {
		return RequestHeader{}, newInvalidURI()
	}
	path := uri
	var query []byte
	if q := bytes.IndexByte(uri, '?'); q >= 0 {
		path = uri[:q]
		query = uri[q+1:]
	}

	maj, min, verr := parseVersion(proto)
	if verr != nil {
		return RequestHeader{}, verr
	}

	return RequestHeader{
		MethodID:   methodID,
		Path:       path,
		Query:      query,
		VersionMaj: maj,
		VersionMin: min,
	}, nil
}

func parseVersion(proto []byte) (maj, min int, err *ParseError) {
	if bytes.Equal(proto, http11Bytes) {
		return 1, 1, nil
	}
	if bytes.Equal(proto, http10Bytes) {
		return 1, 0, nil
	}
	if len(proto) == len(http11Bytes) && bytes.HasPrefix(proto, http11Bytes[:7]) &&
		proto[7] >= '0' && proto[7] <= '9' {
		return 0, 0, newInvalidVersion(int(proto[7] - '0'))
	}
	return 0, 0, newInvalidVersion(-1)
}

func parseHeaderFields(block []byte, headers *Header) *ParseError {
	count := 0
	for len(block) > 0 {
		lineEnd := bytes.Index(block, crlfBytes)
		var line []byte
		if lineEnd < 0 {
			line = block
			block = nil
		} else {
			line = block[:lineEnd]
			block = block[lineEnd+2:]
		}

		if len(line) == 0 {
			continue
		}

		colon := bytes.IndexByte(line, ':')
		if colon <= 0 {
			return newInvalidHeader("missing colon in header field")
		}
		name := line[:colon]
		if name[len(name)-1] == ' ' || name[len(name)-1] == '\t' {
			return newInvalidHeader("whitespace before colon in header name")
		}
		value := bytes.TrimSpace(line[colon+1:])

		count++
		if count > MaxHeaders {
			return newTooManyHeaders(MaxHeaders)
		}
		headers.addRaw(name, value)
	}
	return nil
}

// bodyStrategy selects how the request body is framed (RFC 7230 §3.3):
// method class takes precedence, then Transfer-Encoding, then
// Content-Length.
func bodyStrategy(methodID uint8, headers *Header) (PayloadSize, *ParseError) {
	if isNoBodyMethodClass(methodID) {
		return PayloadSize{Kind: SizeEmpty}, nil
	}

	te := headers.Get(headerTransferEncoding)
	cl := headers.Get(headerContentLength)

	if te != nil && cl != nil {
		return PayloadSize{}, newInvalidContentLength("both Content-Length and Transfer-Encoding present")
	}

	if te != nil {
		if isChunkedEncoding(te) {
			return PayloadSize{Kind: SizeChunked}, nil
		}
		return PayloadSize{Kind: SizeEmpty}, nil
	}

	if cl != nil {
		n, ok := parseUint(cl)
		if !ok {
			return PayloadSize{}, newInvalidContentLength("not a valid non-negative integer")
		}
		if n == 0 {
			return PayloadSize{Kind: SizeEmpty}, nil
		}
		return PayloadSize{Kind: SizeLength, Length: n}, nil
	}

	return PayloadSize{Kind: SizeEmpty}, nil
}

// isChunkedEncoding reports whether the trimmed last comma-separated token
// of a Transfer-Encoding value is "chunked". RFC 7230 transfer-coding
// names are case-insensitive tokens, so the match is case-insensitive
// (see DESIGN.md).
func isChunkedEncoding(te []byte) bool {
	last := te
	if idx := bytes.LastIndexByte(te, ','); idx >= 0 {
		last = te[idx+1:]
	}
	last = bytes.TrimSpace(last)
	return bytesEqualCaseInsensitive(last, valueChunked)
}

func parseUint(b []byte) (uint64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	var n uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		d := uint64(c - '0')
		if n > (^uint64(0)-d)/10 {
			return 0, false
		}
		n = n*10 + d
	}
	return n, true
}
