package httpcore

import (
	"context"

	"go.uber.org/zap"
)

// messageSource is the connection driver's framed reader as seen by the
// body producer: pull one Message, blocking until it is available.
type messageSource interface {
	nextMessage(ctx context.Context) (Message, error)
}

// frameReply is what the producer sends back in answer to one frame
// request.
type frameReply struct {
	item PayloadItem
	err  error
}

// bodyConsumer is the handler-facing half of the body streaming channel.
// Each NextFrame call asks the producer for exactly one frame over a
// channel-of-reply-channels handoff (see DESIGN.md), so the producer never
// reads ahead of what the consumer has asked for.
type bodyConsumer struct {
	requests chan chan frameReply
}

// NextFrame implements BodySource.
func (c *bodyConsumer) NextFrame(ctx context.Context) (PayloadItem, error) {
	reply := make(chan frameReply, 1)
	select {
	case c.requests <- reply:
	case <-ctx.Done():
		return PayloadItem{}, ctx.Err()
	}

	select {
	case r := <-reply:
		return r.item, r.err
	case <-ctx.Done():
		return PayloadItem{}, ctx.Err()
	}
}

// bodyProducer is the connection driver's half of the body streaming
// channel: it borrows the framed reader for exactly the duration of one
// request and answers the consumer's frame requests by pulling Message
// items from it.
type bodyProducer struct {
	requests chan chan frameReply
	source   messageSource
	logger   *zap.Logger
	eof      bool
}

// newBodyChannel constructs one request's body channel: a consumer to hand
// to the handler and a producer the driver runs concurrently with it.
func newBodyChannel(source messageSource, logger *zap.Logger) (*bodyConsumer, *bodyProducer) {
	ch := make(chan chan frameReply)
	return &bodyConsumer{requests: ch}, &bodyProducer{requests: ch, source: source, logger: logger}
}

// run answers frame requests until Eof is observed, the handler returns
// without asking for another frame, or an error occurs.
//
// handlerDone is closed by the caller the instant the handler goroutine
// returns, independent of ctx/gctx. This is load-bearing: a handler that
// abandons the body (reads nothing, or stops before Eof) must still leave
// the connection healthy for the next request. A Go channel has no "all
// senders gone" signal, and errgroup's derived context is only canceled
// when a Go'd function returns an error or Wait itself returns — never
// just because the handler goroutine finished cleanly. Without
// handlerDone, a handler that never calls NextFrame again leaves run()
// parked forever on p.requests, so doProcess's g.Wait() never returns and
// skipBody is never reached.
func (p *bodyProducer) run(ctx context.Context, handlerDone <-chan struct{}) error {
	for {
		var reply chan frameReply
		select {
		case reply = <-p.requests:
		case <-handlerDone:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}

		msg, err := p.source.nextMessage(ctx)
		if err != nil {
			reply <- frameReply{err: err}
			return err
		}

		if msg.Kind != MsgPayload {
			err := newInvalidBody("received header while receiving body")
			reply <- frameReply{err: err}
			return err
		}

		item := msg.Payload
		reply <- frameReply{item: item}
		if item.IsEof() {
			p.eof = true
			return nil
		}
	}
}

// skipBody drains any unread body bytes after the handler has returned,
// guaranteeing the next header read on this connection never sees stale
// body bytes (the keep-alive correctness invariant). A no-op
// if Eof was already observed by run.
func (p *bodyProducer) skipBody(ctx context.Context) error {
	if p.eof {
		return nil
	}

	var size int
	for {
		msg, err := p.source.nextMessage(ctx)
		if err != nil {
			return err
		}
		if msg.Kind != MsgPayload {
			return newInvalidBody("received header while draining body")
		}
		item := msg.Payload
		if item.IsEof() {
			p.eof = true
			break
		}
		size += item.Len()
	}

	if size > 0 && p.logger != nil {
		p.logger.Info("skip request body", zap.Int("size", size))
	}
	return nil
}

// asParseError coerces any error from the message source into a
// *ParseError, wrapping unrecognized errors as an I/O cause.
func asParseError(err error) *ParseError {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*ParseError); ok {
		return pe
	}
	return newParseIO(err)
}
