package natsio

import (
	"errors"
	"fmt"
	"io"

	"github.com/kartikbazzad/natsio/natslog"
	"github.com/kartikbazzad/natsio/natsmetrics"
	"github.com/kartikbazzad/natsio/wire"
)

// controlBuffer sizes the channel that every non-Msg frame (INFO, PING,
// PONG, +OK, -ERR) lands on. It is small because the client's control loop
// is expected to drain it promptly; Msg frames never pass through it.
const controlBuffer = 32

// multiplexer owns the single reader goroutine for a connection. It is the
// only thing in this module that ever calls Decode, so frame order as seen
// on the wire is preserved exactly as frame order delivered to sinks.
//
// Routing a Msg never spawns a goroutine per message: doing so (the way a
// naive broadcast broker would) loses the per-subscription delivery order
// a subscriber is entitled to, since goroutine scheduling gives no FIFO
// guarantee across concurrent sends into the same channel from multiple
// goroutines. Instead the reader goroutine itself performs a non-blocking
// send into the subscription's own channel, so the order two messages on
// the same sid were decoded in is the order they arrive.
type multiplexer struct {
	dec     *wire.Decoder
	reg     *registry
	log     *natslog.Logger
	metrics *natsmetrics.Metrics

	control chan wire.Op
	closed  chan struct{}
}

func newMultiplexer(r io.Reader, reg *registry, log *natslog.Logger) *multiplexer {
	return &multiplexer{
		dec:     wire.NewDecoder(r),
		reg:     reg,
		log:     log,
		control: make(chan wire.Op, controlBuffer),
		closed:  make(chan struct{}),
	}
}

// withMetrics attaches an optional metrics sink; a nil metrics is a no-op,
// so callers that never call this still get correct delivery behavior.
func (m *multiplexer) withMetrics(metrics *natsmetrics.Metrics) *multiplexer {
	m.metrics = metrics
	return m
}

// Control returns the channel every decoded frame that is not a Msg is
// published on. It is closed when the read loop exits.
func (m *multiplexer) Control() <-chan wire.Op { return m.control }

// SetMaxPayload forwards the server-negotiated payload bound to the
// decoder, normally called once after the INFO handshake.
func (m *multiplexer) SetMaxPayload(n int) { m.dec.SetMaxPayload(n) }

// Closed reports when the read loop has exited, via a channel a select can
// wait on alongside other work.
func (m *multiplexer) Closed() <-chan struct{} { return m.closed }

// run is the connection's single reader goroutine. It returns when the
// underlying connection is closed or a frame fails to decode; either way
// every registered subscription's channel is closed so blocked readers
// unblock with a clean "no more messages" rather than hanging forever.
func (m *multiplexer) run() {
	defer func() {
		close(m.control)
		m.reg.closeAll()
		close(m.closed)
	}()
	for {
		op, err := m.dec.Decode()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				m.log.Warn("multiplexer: decode error, closing: %v", err)
			}
			return
		}
		if msg, ok := op.(wire.Msg); ok {
			m.deliver(msg)
			continue
		}
		select {
		case m.control <- op:
		default:
			m.log.WithField("frame", fmt.Sprintf("%T", op)).Warn("multiplexer: control channel full, dropping frame")
		}
	}
}

func (m *multiplexer) deliver(msg wire.Msg) {
	ch, ok := m.reg.lookup(msg.Sid)
	if !ok {
		// Delivery for an sid we no longer know about: the unsubscribe raced
		// the server's in-flight message. Dropping it silently is correct;
		// there is no subscriber left to complain to.
		return
	}
	select {
	case ch <- &Message{Subject: msg.Subject, Sid: msg.Sid, ReplyTo: msg.ReplyTo, Data: msg.Payload}:
		m.metrics.ObserveDelivery(len(msg.Payload))
	default:
		m.log.WithField("sid", msg.Sid).WithField("subject", msg.Subject).
			Warn("multiplexer: subscription buffer full, dropping message")
	}
}
