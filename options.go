package natsio

import (
	"github.com/kartikbazzad/natsio/natslog"
	"github.com/kartikbazzad/natsio/natsmetrics"
	"github.com/kartikbazzad/natsio/wire"
)

// Message is a message delivered off a subscription or received as the
// reply to a Request. ReplyTo is empty unless the publisher set one.
type Message struct {
	Subject string
	Sid     string
	ReplyTo string
	Data    []byte
}

// PubCmd describes a publish request.
type PubCmd struct {
	Subject string
	ReplyTo string
	Data    []byte
}

// SubCmd describes a subscribe request. QueueGroup is optional; when set,
// delivery of any one message on Subject is load-balanced across every
// client sharing the group rather than fanned out to all of them.
type SubCmd struct {
	Subject    string
	QueueGroup string

	// BufferDepth sizes the channel Subscription.Messages() reads from. A
	// value <= 0 uses DefaultSubscriptionBuffer.
	BufferDepth int
}

// UnsubCmd describes an unsubscribe request. MaxMsgs, when > 0, lets the
// subscription drain up to that many more deliveries before the server
// tears it down; zero means unsubscribe immediately.
type UnsubCmd struct {
	Sid     string
	MaxMsgs int
}

// ConnectOptions configures how Connect dials and authenticates against a
// cluster member.
type ConnectOptions struct {
	// ClusterURI is a host:port pair, e.g. "127.0.0.1:4222".
	ClusterURI string

	// TLS, when true, upgrades the dialed TCP connection with a TLS client
	// handshake using the host portion of ClusterURI as the server name.
	TLS bool

	Name      string
	User      string
	Pass      string
	AuthToken string

	// SenderQueueDepth bounds the outbound queue; Publish/Subscribe/Unsubscribe
	// return ErrBackpressure once it is full rather than block. Zero uses
	// DefaultSenderQueueDepth.
	SenderQueueDepth int

	Logger *natslog.Logger

	// Metrics, when non-nil, receives counts of publishes, deliveries, and
	// backpressure drops. A nil value (the default) disables instrumentation.
	Metrics *natsmetrics.Metrics
}

func (o ConnectOptions) connectWireOptions() wire.ConnectOptions {
	return wire.ConnectOptions{
		Verbose:     false,
		Pedantic:    false,
		TLSRequired: o.TLS,
		Name:        o.Name,
		Lang:        "go",
		Version:     ClientVersion,
		Protocol:    1,
		User:        o.User,
		Pass:        o.Pass,
		AuthToken:   o.AuthToken,
		Echo:        true,
	}
}

// ClientVersion is reported to the server in every CONNECT frame.
const ClientVersion = "0.1.0"

const (
	// DefaultSenderQueueDepth is used when ConnectOptions.SenderQueueDepth <= 0.
	DefaultSenderQueueDepth = 256
	// DefaultSubscriptionBuffer is used when SubCmd.BufferDepth <= 0.
	DefaultSubscriptionBuffer = 64
)
