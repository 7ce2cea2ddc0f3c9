// Package httpcore implements the streaming wire codec and per-connection
// state machine at the core of an HTTP/1.1 server runtime.
package httpcore

// HTTP Method IDs for O(1) switching. These numeric IDs enable fast method
// identification without string comparisons.
const (
	MethodUnknown uint8 = 0
	MethodGET     uint8 = 1
	MethodPOST    uint8 = 2
	MethodPUT     uint8 = 3
	MethodDELETE  uint8 = 4
	MethodPATCH   uint8 = 5
	MethodHEAD    uint8 = 6
	MethodOPTIONS uint8 = 7
	MethodCONNECT uint8 = 8
	MethodTRACE   uint8 = 9
)

// HTTP Methods - byte slices for parsing (zero allocations).
var (
	methodGETBytes     = []byte("GET")
	methodPOSTBytes    = []byte("POST")
	methodPUTBytes     = []byte("PUT")
	methodDELETEBytes  = []byte("DELETE")
	methodPATCHBytes   = []byte("PATCH")
	methodHEADBytes    = []byte("HEAD")
	methodOPTIONSBytes = []byte("OPTIONS")
	methodCONNECTBytes = []byte("CONNECT")
	methodTRACEBytes   = []byte("TRACE")
)

// HTTP Methods - strings for comparison and reporting.
const (
	methodGETString     = "GET"
	methodPOSTString    = "POST"
	methodPUTString     = "PUT"
	methodDELETEString  = "DELETE"
	methodPATCHString   = "PATCH"
	methodHEADString    = "HEAD"
	methodOPTIONSString = "OPTIONS"
	methodCONNECTString = "CONNECT"
	methodTRACEString   = "TRACE"
)

// Pre-compiled "{code} {reason}" status lines, without the "HTTP/1.1 "
// prefix or trailing CRLF, covering the codes produced by the
// core itself and the common handler-facing codes. Rare codes fall back to
// buildStatusLine in headerencoder.go.
var statusLineTable = map[int][]byte{
	100: []byte("100 Continue"),
	101: []byte("101 Switching Protocols"),
	200: []byte("200 OK"),
	201: []byte("201 Created"),
	202: []byte("202 Accepted"),
	204: []byte("204 No Content"),
	206: []byte("206 Partial Content"),
	301: []byte("301 Moved Permanently"),
	302: []byte("302 Found"),
	303: []byte("303 See Other"),
	304: []byte("304 Not Modified"),
	307: []byte("307 Temporary Redirect"),
	308: []byte("308 Permanent Redirect"),
	400: []byte("400 Bad Request"),
	401: []byte("401 Unauthorized"),
	403: []byte("403 Forbidden"),
	404: []byte("404 Not Found"),
	405: []byte("405 Method Not Allowed"),
	408: []byte("408 Request Timeout"),
	409: []byte("409 Conflict"),
	411: []byte("411 Length Required"),
	413: []byte("413 Payload Too Large"),
	414: []byte("414 URI Too Long"),
	415: []byte("415 Unsupported Media Type"),
	429: []byte("429 Too Many Requests"),
	500: []byte("500 Internal Server Error"),
	501: []byte("501 Not Implemented"),
	502: []byte("502 Bad Gateway"),
	503: []byte("503 Service Unavailable"),
	504: []byte("504 Gateway Timeout"),
}

// statusText holds the canonical RFC 7231 §6 reason phrase for codes not in
// statusLineTable, used by buildStatusLine.
var statusText = map[int]string{
	102: "Processing",
	203: "Non-Authoritative Information",
	205: "Reset Content",
	300: "Multiple Choices",
	305: "Use Proxy",
	402: "Payment Required",
	406: "Not Acceptable",
	407: "Proxy Authentication Required",
	410: "Gone",
	412: "Precondition Failed",
	416: "Range Not Satisfiable",
	417: "Expectation Failed",
	418: "I'm a Teapot",
	422: "Unprocessable Entity",
	423: "Locked",
	428: "Precondition Required",
	431: "Request Header Fields Too Large",
	451: "Unavailable For Legal Reasons",
	505: "HTTP Version Not Supported",
}

// Common header name byte slices, used by the decoder/encoder to avoid
// repeated string allocation on the hot path.
var (
	headerContentLength    = []byte("Content-Length")
	headerContentType      = []byte("Content-Type")
	headerConnection       = []byte("Connection")
	headerTransferEncoding = []byte("Transfer-Encoding")
	headerHost             = []byte("Host")
	headerExpect           = []byte("Expect")
)

var (
	valueChunked   = []byte("chunked")
	valueKeepAlive = []byte("keep-alive")
	valueClose     = []byte("close")
)

// Protocol constants.
var (
	http11Bytes = []byte("HTTP/1.1")
	http10Bytes = []byte("HTTP/1.0")
	crlfBytes   = []byte("\r\n")
	colonSpace  = []byte(": ")
)

// HTTP/1.1 protocol version; the core always responds as 1.1 regardless of
// what version the request declared.
const (
	ProtoHTTP11Major = 1
	ProtoHTTP11Minor = 1
)

// Header and request limits.
const (
	// MaxHeaders is the maximum number of headers a single request may carry.
	MaxHeaders = 64

	// MaxHeaderBlockSize is the maximum total size, in bytes, of the
	// request line plus header block (up to and including the blank line).
	MaxHeaderBlockSize = 8192

	// InitialReadBufferSize is the starting capacity of a connection's read
	// buffer; it grows as needed up to MaxHeaderBlockSize for header parsing.
	InitialReadBufferSize = 8192

	// InitialWriteBufferSize is the starting capacity of a connection's
	// response write buffer.
	InitialWriteBufferSize = 4096
)
