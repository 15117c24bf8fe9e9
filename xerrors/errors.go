// Package xerrors defines the sentinel errors returned by the rest of the
// module. Codec and connection failures are fatal to the frame they touch;
// callers are expected to compare with errors.Is rather than match strings.
package xerrors

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectFailed is returned when the TCP dial or TLS handshake to the
	// cluster endpoint fails. The underlying network error is wrapped with %w.
	ErrConnectFailed = errors.New("natsio: connect failed")

	// ErrTLSHostMissing is returned when TLS is required but the cluster URI
	// has no resolvable host part to use as the TLS server name.
	ErrTLSHostMissing = errors.New("natsio: tls required but cluster uri has no host")

	// ErrURIInvalid is returned when the cluster URI does not parse as host:port.
	ErrURIInvalid = errors.New("natsio: cluster uri is not a valid host:port")

	// ErrMalformed is returned by the decoder when a frame's verb is unknown
	// or its header does not parse.
	ErrMalformed = errors.New("natsio: malformed frame")

	// ErrInvalidLength is returned when a PUB/MSG header's declared payload
	// length does not parse as a non-negative integer.
	ErrInvalidLength = errors.New("natsio: invalid payload length")

	// ErrBodyTerminatorMissing is returned when a payload-bearing frame's
	// body is not followed by CRLF.
	ErrBodyTerminatorMissing = errors.New("natsio: payload not terminated by CRLF")

	// ErrInvalidSubject is returned when a subject is empty or contains
	// whitespace.
	ErrInvalidSubject = errors.New("natsio: subject must be non-empty and contain no whitespace")

	// ErrInvalidInbox names an inbox subject that fails subject validation.
	// No function in this module returns it: Request subscribes to its inbox
	// through Subscribe, which reports a bad subject as ErrInvalidSubject.
	ErrInvalidInbox = errors.New("natsio: invalid inbox subject")

	// ErrBrokenChain is returned by any primitive when the sender's writer
	// goroutine has terminated, the multiplexer has closed, or a
	// subscription's sink was closed before it produced the message a caller
	// was waiting on.
	ErrBrokenChain = errors.New("natsio: connection chain broken")

	// ErrBackpressure is returned by the outbound sender's Send when the
	// bounded outbound queue is at capacity.
	ErrBackpressure = errors.New("natsio: outbound queue is full")

	// ErrServerError is the sentinel underlying every ServerError value, so
	// callers can test for the category with errors.Is without parsing text.
	ErrServerError = errors.New("natsio: server reported an error")
)

// serverError wraps the text of a -ERR frame observed on the control channel.
type serverError struct {
	text string
}

func (e *serverError) Error() string { return fmt.Sprintf("natsio: server error: %s", e.text) }

func (e *serverError) Unwrap() error { return ErrServerError }

// ServerErrorText returns the text of a -ERR frame as a Go error that
// satisfies errors.Is(err, ErrServerError).
func ServerErrorText(text string) error {
	return &serverError{text: text}
}
