package natsio

import (
	"fmt"
	"io"
	"sync"

	"github.com/kartikbazzad/natsio/natslog"
	"github.com/kartikbazzad/natsio/wire"
	"github.com/kartikbazzad/natsio/xerrors"
)

// sender serializes every outbound frame through a single writer goroutine,
// so PUB/SUB/UNSUB/PING frames from many callers never interleave on the
// wire mid-frame. Producers never touch the connection directly; they only
// ever hand an Op to Send.
type sender struct {
	log   *natslog.Logger
	queue chan wire.Op
	done  chan struct{}

	mu        sync.Mutex // guards queue against a concurrent close()
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

func newSender(w io.Writer, depth int, log *natslog.Logger) *sender {
	if depth <= 0 {
		depth = DefaultSenderQueueDepth
	}
	s := &sender{
		log:   log,
		queue: make(chan wire.Op, depth),
		done:  make(chan struct{}),
	}
	go s.run(w)
	return s
}

// Send enqueues op for transmission. It returns ErrBackpressure immediately
// if the queue is full, and ErrBrokenChain if the writer goroutine has
// already exited. Callers receive the outcome of this specific enqueue
// attempt, not a guarantee the frame reached the server.
//
// Send and close share a mutex around the queue send/close so a Send in
// flight can never race close()'s close(s.queue): one of the two always
// completes before the other starts, so a send on an already-closed
// channel (which panics, unlike a receive) can't happen.
func (s *sender) Send(op wire.Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.closeErrOrDefault()
	}
	select {
	case <-s.done:
		return s.closeErrOrDefault()
	default:
	}
	select {
	case s.queue <- op:
		return nil
	default:
		return xerrors.ErrBackpressure
	}
}

func (s *sender) closeErrOrDefault() error {
	if s.closeErr != nil {
		return s.closeErr
	}
	return xerrors.ErrBrokenChain
}

func (s *sender) run(w io.Writer) {
	defer close(s.done)
	for op := range s.queue {
		raw, err := wire.Encode(op)
		if err != nil {
			s.log.Error("sender: encode %s: %v", op, err)
			continue
		}
		if _, err := w.Write(raw); err != nil {
			s.log.Warn("sender: write failed, closing chain: %v", err)
			s.closeErr = fmt.Errorf("%w: %v", xerrors.ErrBrokenChain, err)
			return
		}
	}
}

// close stops accepting new frames. Frames already queued are still
// flushed before the writer goroutine exits; callers that need to observe
// that flush complete should wait on done after calling close.
func (s *sender) close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.queue)
		s.mu.Unlock()
	})
}

// wait blocks until the writer goroutine has exited, i.e. until every
// frame queued before close was either written or failed to write.
func (s *sender) wait() {
	<-s.done
}
