package wire

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kartikbazzad/natsio/xerrors"
)

const crlf = "\r\n"

// Encode renders op as the exact bytes this client puts on the wire. The
// field delimiter is always a single tab, matching §4.1's "the encoder
// emits tab deterministically."
func Encode(op Op) ([]byte, error) {
	var buf bytes.Buffer
	switch v := op.(type) {
	case Connect:
		js, err := json.Marshal(v.Options)
		if err != nil {
			return nil, fmt.Errorf("wire: encode CONNECT options: %w", err)
		}
		buf.WriteString("CONNECT\t")
		buf.Write(js)
		buf.WriteString(crlf)

	case Pub:
		buf.WriteString("PUB\t")
		buf.WriteString(v.Subject)
		if v.ReplyTo != "" {
			buf.WriteByte('\t')
			buf.WriteString(v.ReplyTo)
		}
		fmt.Fprintf(&buf, "\t%d", len(v.Payload))
		buf.WriteString(crlf)
		buf.Write(v.Payload)
		buf.WriteString(crlf)

	case Sub:
		buf.WriteString("SUB\t")
		buf.WriteString(v.Subject)
		if v.QueueGroup != "" {
			buf.WriteByte('\t')
			buf.WriteString(v.QueueGroup)
		}
		buf.WriteByte('\t')
		buf.WriteString(v.Sid)
		buf.WriteString(crlf)

	case Unsub:
		buf.WriteString("UNSUB\t")
		buf.WriteString(v.Sid)
		if v.HasLimit {
			fmt.Fprintf(&buf, "\t%d", v.MaxMsgs)
		}
		buf.WriteString(crlf)

	case Msg:
		buf.WriteString("MSG\t")
		buf.WriteString(v.Subject)
		buf.WriteByte('\t')
		buf.WriteString(v.Sid)
		if v.ReplyTo != "" {
			buf.WriteByte('\t')
			buf.WriteString(v.ReplyTo)
		}
		fmt.Fprintf(&buf, "\t%d", len(v.Payload))
		buf.WriteString(crlf)
		buf.Write(v.Payload)
		buf.WriteString(crlf)

	case Ping:
		buf.WriteString("PING" + crlf)

	case Pong:
		buf.WriteString("PONG" + crlf)

	case Info:
		buf.WriteString("INFO\t")
		buf.Write(v.Raw)
		buf.WriteString(crlf)

	case OK:
		buf.WriteString("+OK" + crlf)

	case Err:
		buf.WriteString("-ERR\t")
		buf.WriteString(v.Text)
		buf.WriteString(crlf)

	default:
		return nil, fmt.Errorf("wire: encode: %w: unknown op type %T", xerrors.ErrMalformed, op)
	}
	return buf.Bytes(), nil
}

// DefaultMaxPayload bounds a single PUB/MSG payload when the decoder has not
// been told a server-negotiated limit via SetMaxPayload. It matches the
// NATS server's own historical default max_payload of 1MiB, so an
// unconfigured decoder still refuses to allocate an unbounded buffer for a
// malformed or hostile length field.
const DefaultMaxPayload = 1024 * 1024

// Decoder incrementally parses Op values off a byte stream. It never
// consumes bytes that do not belong to a complete frame: the underlying
// bufio.Reader blocks for more input rather than returning a partial
// result, which is this codec's rendering of "signal need-more-bytes
// without consuming any" for a blocking Go reader.
type Decoder struct {
	r          *bufio.Reader
	maxPayload int
}

// NewDecoder wraps r for incremental frame decoding.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, 64*1024), maxPayload: DefaultMaxPayload}
}

// SetMaxPayload updates the bound readPayload enforces, normally called
// once the server's INFO frame has been decoded and its own max_payload is
// known. A non-positive value is ignored, leaving the previous bound (or
// DefaultMaxPayload) in effect.
func (d *Decoder) SetMaxPayload(n int) {
	if n > 0 {
		d.maxPayload = n
	}
}

// Decode reads and returns exactly one Op. It returns io.EOF (or a wrapped
// io.EOF) when the stream ends cleanly between frames.
func (d *Decoder) Decode() (Op, error) {
	line, err := d.readLine()
	if err != nil {
		return nil, err
	}
	verb, args := splitVerb(line)
	switch strings.ToUpper(verb) {
	case "CONNECT":
		var opts ConnectOptions
		if err := json.Unmarshal([]byte(args), &opts); err != nil {
			return nil, fmt.Errorf("wire: decode CONNECT: %w", xerrors.ErrMalformed)
		}
		return Connect{Options: opts}, nil

	case "INFO":
		return Info{Raw: json.RawMessage(append([]byte(nil), args...))}, nil

	case "+OK":
		return OK{}, nil

	case "-ERR":
		return Err{Text: unquote(args)}, nil

	case "PING":
		return Ping{}, nil

	case "PONG":
		return Pong{}, nil

	case "SUB":
		fields := fields(args)
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("wire: decode SUB: %w", xerrors.ErrMalformed)
		}
		sub := Sub{Subject: fields[0], Sid: fields[len(fields)-1]}
		if len(fields) == 3 {
			sub.QueueGroup = fields[1]
		}
		return sub, nil

	case "UNSUB":
		fields := fields(args)
		if len(fields) < 1 || len(fields) > 2 {
			return nil, fmt.Errorf("wire: decode UNSUB: %w", xerrors.ErrMalformed)
		}
		unsub := Unsub{Sid: fields[0]}
		if len(fields) == 2 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("wire: decode UNSUB max_msgs: %w", xerrors.ErrInvalidLength)
			}
			unsub.MaxMsgs, unsub.HasLimit = n, true
		}
		return unsub, nil

	case "PUB":
		fields := fields(args)
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("wire: decode PUB: %w", xerrors.ErrMalformed)
		}
		payload, err := d.readPayload(fields[len(fields)-1])
		if err != nil {
			return nil, err
		}
		pub := Pub{Subject: fields[0], Payload: payload}
		if len(fields) == 3 {
			pub.ReplyTo = fields[1]
		}
		return pub, nil

	case "MSG":
		fields := fields(args)
		if len(fields) < 3 || len(fields) > 4 {
			return nil, fmt.Errorf("wire: decode MSG: %w", xerrors.ErrMalformed)
		}
		payload, err := d.readPayload(fields[len(fields)-1])
		if err != nil {
			return nil, err
		}
		msg := Msg{Subject: fields[0], Sid: fields[1], Payload: payload}
		if len(fields) == 4 {
			msg.ReplyTo = fields[2]
		}
		return msg, nil

	default:
		return nil, fmt.Errorf("wire: decode: %w: unknown verb %q", xerrors.ErrMalformed, verb)
	}
}

// readLine reads one header line and strips its trailing CRLF. The codec
// never searches for CRLF inside a payload body, only here, in the
// header, where the protocol guarantees no payload bytes are present yet.
func (d *Decoder) readLine() (string, error) {
	raw, err := d.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(raw, crlf) {
		return "", fmt.Errorf("wire: decode header: %w", xerrors.ErrBodyTerminatorMissing)
	}
	return raw[:len(raw)-2], nil
}

// readPayload reads exactly the declared number of bytes plus a trailing
// CRLF: a payload of declared length N is followed by exactly N bytes then
// CRLF, and length governs. The codec never searches the body for CRLF.
func (d *Decoder) readPayload(lenField string) ([]byte, error) {
	n, err := strconv.Atoi(lenField)
	if err != nil || n < 0 || n > d.maxPayload {
		return nil, fmt.Errorf("wire: decode payload length %q: %w", lenField, xerrors.ErrInvalidLength)
	}
	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(d.r, payload); err != nil {
			return nil, err
		}
	}
	var term [2]byte
	if _, err := io.ReadFull(d.r, term[:]); err != nil {
		return nil, err
	}
	if term != [2]byte{'\r', '\n'} {
		return nil, fmt.Errorf("wire: decode payload terminator: %w", xerrors.ErrBodyTerminatorMissing)
	}
	return payload, nil
}

// splitVerb separates the verb token from the remainder of a header line.
// The remainder is returned untrimmed of internal content (needed for
// CONNECT/INFO's JSON blob, which may itself contain whitespace) but with
// its leading separator stripped.
func splitVerb(line string) (verb, rest string) {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	rest = strings.TrimLeft(line[i+1:], " \t")
	return line[:i], rest
}

// fields splits a positional argument list on runs of space/tab. Whitespace
// runs in headers are collapsed for parsing, but this only ever applies to
// SUB/UNSUB/PUB/MSG headers, never to the JSON blob of CONNECT/INFO, which
// splitVerb already carved off whole.
func fields(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '\t' })
}

// unquote strips a pair of surrounding single or double quotes from a -ERR
// message, as nats-server emits (e.g. -ERR 'Unknown Protocol Operation').
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
