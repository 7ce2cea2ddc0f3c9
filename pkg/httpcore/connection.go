package httpcore

import (
	"context"
	"io"
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ConnectionState represents the state of an HTTP connection.
type ConnectionState int32

const (
	StateNew ConnectionState = iota
	StateActive
	StateIdle
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateActive:
		return "active"
	case StateIdle:
		return "idle"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ConnectionConfig holds per-connection tunables.
type ConnectionConfig struct {
	// KeepAliveTimeout is the read/write deadline applied before each
	// request. Zero disables the deadline.
	KeepAliveTimeout time.Duration

	// MaxRequests caps the number of requests served on one connection
	// before it closes. Zero means unlimited.
	MaxRequests int

	// ReadBufferSize / WriteBufferSize default to InitialReadBufferSize /
	// InitialWriteBufferSize when zero. The connection's bufio pair comes
	// from a shared pool at those initial sizes; other values here do not
	// change the buffer sizes.
	ReadBufferSize  int
	WriteBufferSize int

	// Logger receives connection lifecycle, 100-continue, and body-drain
	// events. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultConnectionConfig returns the default connection configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		KeepAliveTimeout: 60 * time.Second,
		MaxRequests:      0,
		ReadBufferSize:   InitialReadBufferSize,
		WriteBufferSize:  InitialWriteBufferSize,
		Logger:           defaultLogger(),
	}
}

// Connection drives one accepted net.Conn through its full request/response
// lifecycle. Requests are processed strictly sequentially, no pipelining.
type Connection struct {
	state    atomic.Int32
	lastUse  atomic.Int64
	requests atomic.Int64

	conn    net.Conn
	reader  *connReader
	writer  *writerHandle
	enc     *ResponseEncoder
	handler Handler
	cfg     ConnectionConfig
	logger  *zap.Logger
}

// NewConnection builds a Connection ready to Serve requests from conn,
// dispatching each to handler.
func NewConnection(conn net.Conn, handler Handler, cfg ConnectionConfig) *Connection {
	if cfg.Logger == nil {
		cfg.Logger = defaultLogger()
	}
	if cfg.ReadBufferSize == 0 {
		cfg.ReadBufferSize = InitialReadBufferSize
	}
	if cfg.WriteBufferSize == 0 {
		cfg.WriteBufferSize = InitialWriteBufferSize
	}

	c := &Connection{
		conn:    conn,
		reader:  newConnReader(getReader(conn)),
		writer:  newWriterHandle(getWriter(conn)),
		enc:     NewResponseEncoder(),
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger,
	}
	c.state.Store(int32(StateNew))
	c.lastUse.Store(time.Now().UnixNano())
	return c
}

// State returns the current connection state.
func (c *Connection) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

func (c *Connection) setState(s ConnectionState) {
	c.state.Store(int32(s))
	c.lastUse.Store(time.Now().UnixNano())
}

// RemoteAddr returns the remote network address.
func (c *Connection) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// RequestCount returns the number of requests completed on this connection.
func (c *Connection) RequestCount() int { return int(c.requests.Load()) }

// Serve runs the connection's read -> dispatch -> stream -> write loop
// until the peer closes, a fatal error occurs, or the context is canceled.
// It always releases pooled buffers on return.
func (c *Connection) Serve(ctx context.Context) error {
	defer c.cleanup()
	c.setState(StateActive)

	for {
		if c.cfg.MaxRequests > 0 && c.requests.Load() >= int64(c.cfg.MaxRequests) {
			return nil
		}
		if c.cfg.KeepAliveTimeout > 0 {
			_ = c.conn.SetDeadline(time.Now().Add(c.cfg.KeepAliveTimeout))
		}

		msg, err := c.reader.nextMessage(ctx)
		if err != nil {
			return c.handleReadError(err)
		}

		switch msg.Kind {
		case MsgHeader:
			lastRequest := c.cfg.MaxRequests > 0 && c.requests.Load()+1 >= int64(c.cfg.MaxRequests)
			if err := c.doProcess(ctx, msg.Header, msg.Size, lastRequest); err != nil {
				return err
			}
			c.requests.Add(1)
			c.setState(StateIdle)

		case MsgPayload:
			if msg.Payload.IsEof() {
				continue // stray trailing Eof after a no-body request
			}
			c.logger.Error("body frame received while awaiting a header")
			c.writeMinimalError(400)
			return fromParseError(newInvalidBody("need header while receive body"))
		}
	}
}

// handleReadError classifies an error from nextMessage: a clean EOF or an
// I/O error terminates the connection silently; a parse error gets a 400
// before the connection closes.
func (c *Connection) handleReadError(err error) error {
	if err == io.EOF {
		c.logger.Info("connection closed, no more requests")
		return nil
	}
	if isIOParseError(err) {
		c.logger.Info("connection io error", zap.Error(err))
		return nil
	}
	if pe, ok := err.(*ParseError); ok {
		c.logger.Error("request parse error", zap.Error(pe))
		c.writeMinimalError(400)
		return fromParseError(pe)
	}
	return err
}

// doProcess runs the per-request sequence: Expect handling, body channel
// setup, concurrent handler/producer execution, unconditional drain, then
// response emission.
func (c *Connection) doProcess(ctx context.Context, header RequestHeader, size PayloadSize, lastRequest bool) error {
	if expect := header.Headers.Get(headerExpect); expect != nil && isExactlyContinue(expect) {
		if err := c.writer.writeAndFlush([]byte("HTTP/1.1 100 Continue\r\n\r\n")); err != nil {
			return fromSendError(newSendIO(err))
		}
		c.logger.Info("sent 100-continue interim response")
	}

	req := &Request{Header: header}

	var resp *Response
	var handlerErr error

	if size.Kind == SizeEmpty {
		req.Body = emptyBody{}
		resp, handlerErr = c.handler.Serve(ctx, req)
	} else {
		consumer, producer := newBodyChannel(c.reader, c.logger)
		req.Body = consumer

		// handlerDone fires the instant the handler goroutine returns, even
		// if it never drained the body to Eof. See bodyProducer.run's doc
		// comment: gctx alone cannot signal this.
		handlerDone := make(chan struct{})
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			defer close(handlerDone)
			resp, handlerErr = c.handler.Serve(gctx, req)
			return nil
		})
		g.Go(func() error {
			return producer.run(gctx, handlerDone)
		})
		bodyErr := g.Wait()

		if drainErr := producer.skipBody(ctx); bodyErr == nil {
			bodyErr = drainErr
		}

		if bodyErr != nil {
			return c.handleBodyError(bodyErr)
		}
	}

	if lastRequest && handlerErr == nil && resp != nil {
		_ = resp.Head.Headers.Set(headerConnection, valueClose)
	}

	return c.sendResult(resp, handlerErr)
}

// handleBodyError classifies an error surfaced while streaming or draining a
// request body. An I/O-class error (the peer went away mid-body) terminates
// the connection silently, mirroring the header-read I/O case in
// handleReadError. Any other parse error — malformed chunk syntax, a stray
// header arriving where a body frame was expected — gets a 400 response
// before the connection closes, the same recovery a malformed header block
// gets in handleReadError.
func (c *Connection) handleBodyError(err error) error {
	pe := asParseError(err)
	if pe.Kind == ErrParseIO {
		c.logger.Info("connection io error during body streaming", zap.Error(pe))
		return nil
	}
	c.logger.Error("request body parse error", zap.Error(pe))
	c.writeMinimalError(400)
	return fromParseError(pe)
}

func (c *Connection) sendResult(resp *Response, handlerErr error) error {
	if handlerErr != nil {
		c.logger.Error("handler returned an error", zap.Error(handlerErr))
		return c.doSendResponse(buildErrorResponse(500))
	}
	if resp == nil {
		c.logger.Error("handler returned neither a response nor an error")
		return c.doSendResponse(buildErrorResponse(500))
	}
	return c.doSendResponse(resp)
}

func (c *Connection) doSendResponse(resp *Response) error {
	head := resp.Head.ToResponseHead()
	if err := c.enc.EncodeHeader(c.writer, &head, resp.Size); err != nil {
		return fromSendError(err.(*SendError))
	}

	if resp.Size.IsEmpty() {
		if err := c.writer.flush(); err != nil {
			return fromSendError(newSendIO(err))
		}
		return nil
	}

	ctx := context.Background()
	for {
		item, err := resp.Body.NextFrame(ctx)
		if err != nil {
			return fromSendError(newSendInvalidBody(err.Error()))
		}
		if err := c.enc.EncodePayload(c.writer, item); err != nil {
			return fromSendError(err.(*SendError))
		}
		if item.IsEof() {
			break
		}
	}

	if err := c.writer.flush(); err != nil {
		return fromSendError(newSendIO(err))
	}
	return nil
}

func buildErrorResponse(status int) *Response {
	return &Response{
		Head: RespHeadBuilder{Status: status},
		Body: emptyBody{},
		Size: PayloadSize{Kind: SizeEmpty},
	}
}

// writeMinimalError writes the wire-minimal bodyless error response used
// for parse-class failures, bypassing the regular encoder since the
// request decoder's state at this point may not be in header mode.
func (c *Connection) writeMinimalError(status int) {
	var line string
	switch status {
	case 400:
		line = "HTTP/1.1 400 Bad Request\r\nContent-Length: 0\r\n\r\n"
	default:
		line = "HTTP/1.1 500 Internal Server Error\r\nContent-Length: 0\r\n\r\n"
	}
	_ = c.writer.writeAndFlush([]byte(line))
}

// isExactlyContinue reports whether an Expect header's trimmed value is
// "100-continue", matched case-insensitively. RFC 7231 §5.1.1 defines only
// that exact expectation, so a prefix probe would accept junk like
// "100-continue-ish" (see DESIGN.md).
func isExactlyContinue(value []byte) bool {
	trimmed := trimOWS(value)
	return bytesEqualCaseInsensitive(trimmed, []byte("100-continue"))
}

func trimOWS(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}

// Close closes the underlying connection.
func (c *Connection) Close() error {
	c.setState(StateClosed)
	return c.conn.Close()
}

func (c *Connection) cleanup() {
	c.setState(StateClosed)
	putReader(c.reader.br)
	putWriter(c.writer.bw)
}
