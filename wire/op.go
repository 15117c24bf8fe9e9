// Package wire implements the frame codec: translating between the NATS
// text wire protocol and typed Op values. It is the only package in this
// module that knows the byte-level shape of a frame; everything above it
// (the sender, the multiplexer, the client façade) deals exclusively in Op.
package wire

import "encoding/json"

// Op is the closed set of protocol frames the core understands. It is
// implemented only by the types in this file: there is no extension point,
// and callers switch on the concrete type rather than probing an open
// interface hierarchy.
type Op interface {
	opVerb() string
}

// ConnectOptions is the payload of a CONNECT frame. Field order here is
// exactly the canonical JSON form this client emits: encoding/json marshals
// struct fields in declaration order.
type ConnectOptions struct {
	Verbose      bool   `json:"verbose"`
	Pedantic     bool   `json:"pedantic"`
	TLSRequired  bool   `json:"tls_required"`
	Name         string `json:"name,omitempty"`
	Lang         string `json:"lang"`
	Version      string `json:"version"`
	Protocol     int    `json:"protocol"`
	User         string `json:"user,omitempty"`
	Pass         string `json:"pass,omitempty"`
	AuthToken    string `json:"auth_token,omitempty"`
	UserJWT      string `json:"jwt,omitempty"`
	NKeySig      string `json:"sig,omitempty"`
	Headers      bool   `json:"headers,omitempty"`
	Echo         bool   `json:"echo,omitempty"`
}

// Connect is the client -> server handshake frame.
type Connect struct {
	Options ConnectOptions
}

func (Connect) opVerb() string { return "CONNECT" }

// Pub is an application message emission.
type Pub struct {
	Subject string
	ReplyTo string // empty means absent
	Payload []byte
}

func (Pub) opVerb() string { return "PUB" }

// Sub registers interest in a subject.
type Sub struct {
	Subject    string
	QueueGroup string // empty means absent
	Sid        string
}

func (Sub) opVerb() string { return "SUB" }

// Unsub cancels interest, optionally after MaxMsgs more deliveries.
type Unsub struct {
	Sid      string
	MaxMsgs  int
	HasLimit bool
}

func (Unsub) opVerb() string { return "UNSUB" }

// Msg is a server-delivered message.
type Msg struct {
	Subject string
	Sid     string
	ReplyTo string // empty means absent
	Payload []byte
}

func (Msg) opVerb() string { return "MSG" }

// Ping is a keepalive frame sent by either side.
type Ping struct{}

func (Ping) opVerb() string { return "PING" }

// Pong answers a Ping.
type Pong struct{}

func (Pong) opVerb() string { return "PONG" }

// Info is the server's initial announcement (and any subsequent update).
type Info struct {
	Raw json.RawMessage
}

func (Info) opVerb() string { return "INFO" }

// MaxPayload extracts the server-advertised max_payload field, returning 0
// if Raw is empty, unparseable, or omits the field. A caller getting 0
// should leave the decoder's existing bound (DefaultMaxPayload) in place
// rather than treat 0 as "unlimited".
func (i Info) MaxPayload() int {
	var v struct {
		MaxPayload int `json:"max_payload"`
	}
	if err := json.Unmarshal(i.Raw, &v); err != nil {
		return 0
	}
	return v.MaxPayload
}

// OK is a positive acknowledgement.
type OK struct{}

func (OK) opVerb() string { return "+OK" }

// Err is a negative acknowledgement carrying server-supplied text.
type Err struct {
	Text string
}

func (Err) opVerb() string { return "-ERR" }
