package httpcore

// requestDecoderMode tracks which half of one request the multiplexer is
// currently decoding.
type requestDecoderMode uint8

const (
	modeAwaitingHeader requestDecoderMode = iota
	modeDecodingBody
)

// RequestDecoder multiplexes the header decoder and the two body
// sub-decoders into a single Message stream. Across one request it emits
// exactly one Header, then zero or more Payload(Chunk), then one
// Payload(Eof), before returning to header mode.
type RequestDecoder struct {
	mode     requestDecoderMode
	bodyKind PayloadSizeKind

	header  *HeaderDecoder
	chunked *ChunkedDecoder
	length  *LengthDecoder
}

// NewRequestDecoder returns a decoder awaiting the first request header.
func NewRequestDecoder() *RequestDecoder {
	return &RequestDecoder{
		mode:    modeAwaitingHeader,
		header:  NewHeaderDecoder(),
		chunked: NewChunkedDecoder(),
		length:  NewLengthDecoder(0),
	}
}

// Decode advances the multiplexer, returning the next Message it can
// produce from buf. ok==false, err==nil means need-more-input.
func (d *RequestDecoder) Decode(buf []byte) (consumed int, msg Message, ok bool, err error) {
	if d.mode == modeDecodingBody {
		return d.decodeBody(buf)
	}
	return d.decodeHeader(buf)
}

func (d *RequestDecoder) decodeHeader(buf []byte) (int, Message, bool, error) {
	consumed, header, size, ok, err := d.header.Decode(buf)
	if err != nil {
		return 0, Message{}, false, err
	}
	if !ok {
		return 0, Message{}, false, nil
	}

	d.mode = modeDecodingBody
	d.bodyKind = size.Kind
	switch size.Kind {
	case SizeChunked:
		d.chunked.Reset()
	case SizeLength:
		d.length.Reset(size.Length)
	}

	return consumed, Message{Kind: MsgHeader, Header: header, Size: size}, true, nil
}

func (d *RequestDecoder) decodeBody(buf []byte) (int, Message, bool, error) {
	switch d.bodyKind {
	case SizeEmpty:
		d.mode = modeAwaitingHeader
		return 0, Message{Kind: MsgPayload, Payload: eofItem}, true, nil

	case SizeChunked:
		consumed, item, ok, err := d.chunked.Decode(buf)
		if err != nil {
			return 0, Message{}, false, err
		}
		if !ok {
			return 0, Message{}, false, nil
		}
		if item.IsEof() {
			d.mode = modeAwaitingHeader
		}
		return consumed, Message{Kind: MsgPayload, Payload: item}, true, nil

	case SizeLength:
		consumed, item, ok := d.length.Decode(buf)
		if !ok {
			return 0, Message{}, false, nil
		}
		if item.IsEof() {
			d.mode = modeAwaitingHeader
		}
		return consumed, Message{Kind: MsgPayload, Payload: item}, true, nil

	default:
		return 0, Message{}, false, newInvalidBody("no active body decoder")
	}
}
