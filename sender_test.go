package natsio

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kartikbazzad/natsio/natslog"
	"github.com/kartikbazzad/natsio/wire"
	"github.com/kartikbazzad/natsio/xerrors"
)

func sleepShort() { time.Sleep(time.Millisecond) }

func discardLogger() *natslog.Logger {
	return natslog.New(&bytes.Buffer{}, natslog.LevelError, "[test]")
}

func TestSenderWritesEncodedFrames(t *testing.T) {
	var buf safeBuffer
	s := newSender(&buf, 4, discardLogger())
	defer s.close()

	if err := s.Send(wire.Ping{}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := s.Send(wire.Pub{Subject: "x", Payload: []byte("y")}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	waitUntil(t, func() bool { return strings.Count(buf.String(), "\r\n") >= 3 })
	out := buf.String()
	if !strings.HasPrefix(out, "PING\r\n") {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "PUB\tx\t1\r\ny\r\n") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestSenderBackpressure(t *testing.T) {
	var blocked blockingWriter
	blocked.release = make(chan struct{})
	s := newSender(&blocked, 1, discardLogger())
	defer func() {
		close(blocked.release)
		s.close()
	}()

	// Fill the one queue slot with a frame the writer goroutine will block
	// on forever (until release), then saturate Send.
	if err := s.Send(wire.Ping{}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	waitUntil(t, blocked.started)

	var full bool
	for i := 0; i < 10; i++ {
		if err := s.Send(wire.Pong{}); errors.Is(err, xerrors.ErrBackpressure) {
			full = true
			break
		}
	}
	if !full {
		t.Fatal("expected ErrBackpressure once the queue saturates")
	}
}

func TestSenderBrokenChainAfterWriteError(t *testing.T) {
	s := newSender(failingWriter{}, 4, discardLogger())
	if err := s.Send(wire.Ping{}); err != nil {
		t.Fatalf("first Send: %v", err)
	}
	waitUntil(t, func() bool {
		err := s.Send(wire.Ping{})
		return errors.Is(err, xerrors.ErrBrokenChain)
	})
}

// TestSenderConcurrentSendAndClose exercises Send racing close under the
// race detector: every Send must either succeed, or observe the sender as
// closed/broken, and close must never panic on a send to a closed channel.
func TestSenderConcurrentSendAndClose(t *testing.T) {
	var buf safeBuffer
	s := newSender(&buf, 16, discardLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = s.Send(wire.Ping{})
		}
	}()

	s.close()
	wg.Wait()
	s.wait()
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type blockingWriter struct {
	mu      sync.Mutex
	release chan struct{}
	begun   bool
}

func (w *blockingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	w.begun = true
	w.mu.Unlock()
	<-w.release
	return len(p), nil
}

func (w *blockingWriter) started() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.begun
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("boom")
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if cond() {
			return
		}
		sleepShort()
	}
	t.Fatal("timed out waiting for condition")
}
