package httpcore

import (
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// HeaderEncoder serializes a ResponseHead: start line plus headers, with
// framing-header injection based on the response's PayloadSize. Responses
// are always advertised as HTTP/1.1 regardless of the request's version; a
// ResponseHead that explicitly names a version other than 1.1 is rejected
// rather than silently ignored.
type HeaderEncoder struct{}

// NewHeaderEncoder returns a header encoder. It carries no state.
func NewHeaderEncoder() *HeaderEncoder { return &HeaderEncoder{} }

// Encode writes the status line and headers for head into buf, injecting
// or overwriting the framing header (Content-Length or
// Transfer-Encoding: chunked) according to size. Returns a SendError of kind
// SendUnsupportedVersion if head declares a version other than HTTP/1.1;
// leaving VersionMaj/VersionMin at their zero value means "unspecified" and
// always encodes as HTTP/1.1.
func (e *HeaderEncoder) Encode(buf *bytebufferpool.ByteBuffer, head *ResponseHead, size PayloadSize) error {
	if versionSpecified(head) && !(head.VersionMaj == ProtoHTTP11Major && head.VersionMin == ProtoHTTP11Minor) {
		return newSendUnsupportedVersion(formatVersion(head.VersionMaj, head.VersionMin))
	}

	buf.B = append(buf.B, http11Bytes...)
	buf.B = append(buf.B, ' ')
	buf.B = append(buf.B, statusLine(head.Status)...)
	buf.B = append(buf.B, crlfBytes...)

	head.Headers.Del(headerContentLength)
	head.Headers.Del(headerTransferEncoding)

	switch size.Kind {
	case SizeLength:
		buf.B = append(buf.B, headerContentLength...)
		buf.B = append(buf.B, colonSpace...)
		buf.B = strconv.AppendUint(buf.B, size.Length, 10)
		buf.B = append(buf.B, crlfBytes...)
	case SizeChunked:
		buf.B = append(buf.B, headerTransferEncoding...)
		buf.B = append(buf.B, colonSpace...)
		buf.B = append(buf.B, valueChunked...)
		buf.B = append(buf.B, crlfBytes...)
	case SizeEmpty:
		buf.B = append(buf.B, headerContentLength...)
		buf.B = append(buf.B, colonSpace...)
		buf.B = append(buf.B, '0')
		buf.B = append(buf.B, crlfBytes...)
	}

	head.Headers.VisitAll(func(name, value []byte) bool {
		buf.B = append(buf.B, name...)
		buf.B = append(buf.B, colonSpace...)
		buf.B = append(buf.B, value...)
		buf.B = append(buf.B, crlfBytes...)
		return true
	})

	buf.B = append(buf.B, crlfBytes...)
	return nil
}

// versionSpecified reports whether head's handler-set version fields are
// anything other than the zero-value "unspecified" sentinel.
func versionSpecified(head *ResponseHead) bool {
	return head.VersionMaj != 0 || head.VersionMin != 0
}

func formatVersion(maj, min int) string {
	return strconv.Itoa(maj) + "." + strconv.Itoa(min)
}

// statusLine returns "{code} {reason}" for code, without the leading
// "HTTP/1.1 " prefix or trailing CRLF, falling back to buildStatusLine for
// codes outside the pre-compiled table.
func statusLine(code int) []byte {
	if line, ok := statusLineTable[code]; ok {
		return line
	}
	return buildStatusLine(code)
}

func buildStatusLine(code int) []byte {
	reason, ok := statusText[code]
	if !ok {
		reason = "Unknown"
	}
	out := strconv.AppendInt(nil, int64(code), 10)
	out = append(out, ' ')
	out = append(out, reason...)
	return out
}
