// Package natsio is a minimal asynchronous client for the NATS text wire
// protocol: connect, publish, subscribe, unsubscribe, and request/reply,
// with no built-in reconnect or retry logic. Callers that want resilience
// layer it on top; see natspool for optional concurrent message handling
// and natsmetrics for optional instrumentation.
package natsio

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kartikbazzad/natsio/natslog"
	"github.com/kartikbazzad/natsio/natsmetrics"
	"github.com/kartikbazzad/natsio/wire"
	"github.com/kartikbazzad/natsio/xerrors"
)

// State is the client's connection lifecycle stage.
type State int

const (
	Disconnected State = iota
	Connecting
	AwaitingInfo
	Connected
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case AwaitingInfo:
		return "awaiting_info"
	case Connected:
		return "connected"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Client is a connected NATS session. Create one with Connect; it is safe
// for concurrent use by multiple goroutines.
type Client struct {
	conn    net.Conn
	send    *sender
	mux     *multiplexer
	reg     *registry
	log     *natslog.Logger
	metrics *natsmetrics.Metrics

	mu    sync.Mutex
	state State

	serverInfo wire.Info

	// wg supervises the reader (multiplexer) and control-loop goroutines so
	// Close can wait for both to observe the connection teardown before
	// returning, instead of racing the caller's next action against them.
	wg errgroup.Group
}

// Connect dials ClusterURI, performs the CONNECT/INFO handshake, and
// returns a ready-to-use Client. The context governs only the dial and
// handshake; once Connected, cancelling it has no effect on the
// connection's lifetime; callers that want a deadline on individual
// operations pass a context to Request, the only primitive that blocks.
func Connect(ctx context.Context, opts ConnectOptions) (*Client, error) {
	if opts.ClusterURI == "" {
		return nil, xerrors.ErrURIInvalid
	}
	if _, _, err := net.SplitHostPort(opts.ClusterURI); err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrURIInvalid, err)
	}

	log := opts.Logger
	if log == nil {
		log = natslog.Default()
	}

	c := &Client{
		reg:     newRegistry(),
		log:     log,
		metrics: opts.Metrics,
		state:   Connecting,
	}

	conn, err := dial(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", xerrors.ErrConnectFailed, err)
	}
	c.conn = conn

	c.mux = newMultiplexer(conn, c.reg, log).withMetrics(opts.Metrics)
	c.wg.Go(func() error { c.mux.run(); return nil })

	c.setState(AwaitingInfo)
	info, ok := <-c.mux.Control()
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("%w: connection closed before INFO", xerrors.ErrConnectFailed)
	}
	serverInfo, ok := info.(wire.Info)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("%w: expected INFO, got %T", xerrors.ErrConnectFailed, info)
	}
	c.serverInfo = serverInfo
	c.mux.SetMaxPayload(serverInfo.MaxPayload())

	c.send = newSender(conn, opts.SenderQueueDepth, log)
	if err := c.send.Send(wire.Connect{Options: opts.connectWireOptions()}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", xerrors.ErrConnectFailed, err)
	}

	c.setState(Connected)
	c.wg.Go(func() error { c.runControlLoop(); return nil })
	return c, nil
}

func dial(ctx context.Context, opts ConnectOptions) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", opts.ClusterURI)
	if err != nil {
		return nil, err
	}
	if !opts.TLS {
		return conn, nil
	}
	host, _, err := net.SplitHostPort(opts.ClusterURI)
	if err != nil || host == "" {
		conn.Close()
		return nil, xerrors.ErrTLSHostMissing
	}
	tlsConn := tls.Client(conn, &tls.Config{ServerName: host})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// runControlLoop drains every non-Msg frame for the lifetime of the
// connection. It never writes a PONG in reply to a server PING: this
// client treats keepalive as the caller's concern, not the core's, so a
// PING is just another observable frame here.
func (c *Client) runControlLoop() {
	for op := range c.mux.Control() {
		switch v := op.(type) {
		case wire.Info:
			c.mu.Lock()
			c.serverInfo = v
			c.mu.Unlock()
			c.mux.SetMaxPayload(v.MaxPayload())
		case wire.Err:
			c.log.Warn("server error: %s", v.Text)
		case wire.Ping, wire.Pong, wire.OK:
			// Observed, not acted on; see doc comment above.
		default:
			c.log.Debug("unhandled control frame: %T", v)
		}
	}
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// State reports the client's current lifecycle stage.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Publish sends a message. It returns once the frame is enqueued on the
// outbound queue, not once the server has acknowledged it: there is no
// acknowledgement for PUB in this protocol.
func (c *Client) Publish(cmd PubCmd) error {
	if !validSubject(cmd.Subject) {
		return xerrors.ErrInvalidSubject
	}
	err := c.send.Send(wire.Pub{Subject: cmd.Subject, ReplyTo: cmd.ReplyTo, Payload: cmd.Data})
	if err != nil {
		if errors.Is(err, xerrors.ErrBackpressure) {
			c.metrics.ObserveBackpressureDrop()
		}
		return err
	}
	c.metrics.ObservePublish(len(cmd.Data))
	return nil
}

// Subscribe registers interest in cmd.Subject and returns a Subscription
// whose Messages channel receives deliveries until Unsubscribe is called
// or the connection is lost.
func (c *Client) Subscribe(cmd SubCmd) (*Subscription, error) {
	if !validSubject(cmd.Subject) {
		return nil, xerrors.ErrInvalidSubject
	}
	depth := cmd.BufferDepth
	if depth <= 0 {
		depth = DefaultSubscriptionBuffer
	}
	sid := newSid()
	ch := make(chan *Message, depth)
	c.reg.register(sid, ch)

	if err := c.send.Send(wire.Sub{Subject: cmd.Subject, QueueGroup: cmd.QueueGroup, Sid: sid}); err != nil {
		c.reg.remove(sid)
		return nil, err
	}
	c.metrics.SetActiveSubscriptions(c.reg.len())
	return &Subscription{sid: sid, subject: cmd.Subject, ch: ch, client: c}, nil
}

// Unsubscribe cancels interest registered under cmd.Sid. The local
// registration is removed immediately; the server-side unsubscribe is
// fire-and-forget like every other outbound frame.
func (c *Client) Unsubscribe(cmd UnsubCmd) error {
	err := c.send.Send(wire.Unsub{Sid: cmd.Sid, MaxMsgs: cmd.MaxMsgs, HasLimit: cmd.MaxMsgs > 0})
	c.reg.remove(cmd.Sid)
	c.metrics.SetActiveSubscriptions(c.reg.len())
	return err
}

// Request publishes payload to subject with a freshly generated reply
// inbox, then waits for either a reply or ctx to be done. Timeout and
// cancellation are entirely the caller's responsibility via ctx; the
// client itself never imposes one.
//
// The inbox subscription is registered, then immediately unsubscribed with
// max_msgs=1, before the request is published: the broker auto-removes its
// interest record after delivering the one reply, so a client that dies
// before the reply arrives never leaves a dangling subscription behind.
func (c *Client) Request(ctx context.Context, subject string, payload []byte) (*Message, error) {
	inbox := "_INBOX." + newSid()
	sub, err := c.Subscribe(SubCmd{Subject: inbox, BufferDepth: 1})
	if err != nil {
		return nil, err
	}

	if err := c.send.Send(wire.Unsub{Sid: sub.sid, MaxMsgs: 1, HasLimit: true}); err != nil {
		c.reg.remove(sub.sid)
		return nil, err
	}

	if err := c.Publish(PubCmd{Subject: subject, ReplyTo: inbox, Data: payload}); err != nil {
		c.reg.remove(sub.sid)
		return nil, err
	}

	// The wire-side UNSUB(max_msgs=1) was already enqueued above; only the
	// local registry entry remains to be cleaned up here, on either path.
	defer c.reg.remove(sub.sid)

	select {
	case msg, ok := <-sub.Messages():
		if !ok {
			return nil, xerrors.ErrBrokenChain
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close tears down the connection. It waits for the sender's writer
// goroutine to flush whatever was already queued before closing the
// socket out from under it, then waits for the reader and control-loop
// goroutines to observe the close. Outstanding subscriptions' channels are
// closed by the multiplexer once it does.
func (c *Client) Close() error {
	c.setState(Closing)
	c.send.close()
	c.send.wait()
	err := c.conn.Close()
	c.wg.Wait()
	c.setState(Closed)
	return err
}

// validSubject reports whether subject is non-empty and free of whitespace.
// A subject containing a tab, space, or CR/LF would otherwise be written
// straight into a SUB/PUB header by wire.Encode, letting its content shift
// or forge adjacent header fields.
func validSubject(subject string) bool {
	return subject != "" && strings.IndexAny(subject, " \t\r\n") < 0
}

// newSid generates a compact opaque identifier for a subscription or reply
// inbox: the hex digits of a fresh UUIDv4 with dashes stripped, truncated
// to 16 characters. Collisions are not checked for: a UUIDv4 collision is
// astronomically unlikely over any session's lifetime, and the wire
// protocol has no mechanism to report one if it happened.
func newSid() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return raw[:16]
}
