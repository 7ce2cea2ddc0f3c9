package httpcore

// PayloadSizeKind tags the PayloadSize union.
type PayloadSizeKind uint8

const (
	SizeEmpty PayloadSizeKind = iota
	SizeLength
	SizeChunked
)

// PayloadSize is the tagged union {Empty, Length(u64), Chunked}: how a body
// (request or response) is framed on the wire.
type PayloadSize struct {
	Kind   PayloadSizeKind
	Length uint64 // valid when Kind == SizeLength
}

// IsEmpty reports whether this size carries no body bytes at all.
func (p PayloadSize) IsEmpty() bool { return p.Kind == SizeEmpty }

// SizeFromHint derives a PayloadSize from a response body's exact-size
// hint: an exact 0 means no body, an exact n>0 means fixed-length, and an
// unknown exact size forces chunked encoding.
func SizeFromHint(exact uint64, known bool) PayloadSize {
	if !known {
		return PayloadSize{Kind: SizeChunked}
	}
	if exact == 0 {
		return PayloadSize{Kind: SizeEmpty}
	}
	return PayloadSize{Kind: SizeLength, Length: exact}
}

// PayloadItemKind tags the PayloadItem union.
type PayloadItemKind uint8

const (
	ItemChunk PayloadItemKind = iota
	ItemEof
)

// PayloadItem is the tagged union {Chunk(bytes), Eof}. A finite body stream
// always ends with exactly one Eof item.
type PayloadItem struct {
	Kind  PayloadItemKind
	Chunk []byte
}

// IsEof reports whether this item is the terminating Eof marker.
func (p PayloadItem) IsEof() bool { return p.Kind == ItemEof }

// Len returns the number of bytes carried by a Chunk item, 0 for Eof.
func (p PayloadItem) Len() int {
	if p.Kind == ItemChunk {
		return len(p.Chunk)
	}
	return 0
}

var eofItem = PayloadItem{Kind: ItemEof}

// MessageKind tags the Message union produced by the request decoder and
// consumed by the response encoder.
type MessageKind uint8

const (
	MsgHeader MessageKind = iota
	MsgPayload
)

// Message is the tagged union {Header(H), Payload(PayloadItem)}. The
// request decoder (component F) and response encoder (component G) both
// speak this vocabulary on their respective sides of the wire.
type Message struct {
	Kind    MessageKind
	Header  RequestHeader
	Size    PayloadSize
	Payload PayloadItem
}
