package natsio

import (
	"bytes"
	"testing"

	"github.com/kartikbazzad/natsio/wire"
)

func encodeAll(t *testing.T, ops ...wire.Op) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, op := range ops {
		raw, err := wire.Encode(op)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		buf.Write(raw)
	}
	return buf.Bytes()
}

func TestMultiplexerDeliversToRegisteredSubscription(t *testing.T) {
	reg := newRegistry()
	ch := make(chan *Message, 4)
	reg.register("1", ch)

	raw := encodeAll(t,
		wire.Msg{Subject: "orders.new", Sid: "1", Payload: []byte("a")},
		wire.Msg{Subject: "orders.new", Sid: "1", Payload: []byte("b")},
	)
	mux := newMultiplexer(bytes.NewReader(raw), reg, discardLogger())
	go mux.run()
	<-mux.Closed()

	first := <-ch
	second := <-ch
	if string(first.Data) != "a" || string(second.Data) != "b" {
		t.Fatalf("got %q then %q, want a then b (order preserved)", first.Data, second.Data)
	}
}

func TestMultiplexerDropsUnknownSidSilently(t *testing.T) {
	reg := newRegistry()
	raw := encodeAll(t, wire.Msg{Subject: "x", Sid: "999", Payload: []byte("z")})
	mux := newMultiplexer(bytes.NewReader(raw), reg, discardLogger())
	go mux.run()
	<-mux.Closed()
	// No subscription registered for sid 999: run must finish cleanly
	// without panicking or blocking.
}

func TestMultiplexerRoutesControlFrames(t *testing.T) {
	reg := newRegistry()
	raw := encodeAll(t, wire.Ping{}, wire.OK{}, wire.Err{Text: "nope"})
	mux := newMultiplexer(bytes.NewReader(raw), reg, discardLogger())
	go mux.run()

	var got []wire.Op
	for op := range mux.Control() {
		got = append(got, op)
	}
	<-mux.Closed()

	if len(got) != 3 {
		t.Fatalf("got %d control frames, want 3: %+v", len(got), got)
	}
	if _, ok := got[0].(wire.Ping); !ok {
		t.Fatalf("frame 0 = %T, want Ping", got[0])
	}
	if _, ok := got[1].(wire.OK); !ok {
		t.Fatalf("frame 1 = %T, want OK", got[1])
	}
	e, ok := got[2].(wire.Err)
	if !ok || e.Text != "nope" {
		t.Fatalf("frame 2 = %+v, want Err{nope}", got[2])
	}
}

func TestMultiplexerClosesSubscriptionsOnEOF(t *testing.T) {
	reg := newRegistry()
	ch := make(chan *Message, 1)
	reg.register("1", ch)

	mux := newMultiplexer(bytes.NewReader(nil), reg, discardLogger())
	go mux.run()
	<-mux.Closed()

	if _, open := <-ch; open {
		t.Fatal("expected subscription channel to be closed when the reader hits EOF")
	}
}
