// Package natspool offers an optional goroutine pool for applications that
// want to process Subscription deliveries concurrently without spawning an
// unbounded number of goroutines. The core client never uses this package
// itself: routing inside the multiplexer stays single-goroutine to
// preserve per-subscription order, but a handler that does its own heavy
// lifting per message can hand work off to a Pool instead of blocking the
// delivery channel.
package natspool

import (
	"github.com/panjf2000/ants/v2"

	"github.com/kartikbazzad/natsio/natslog"
)

// Pool bounds the number of goroutines used to run message handlers
// concurrently.
type Pool struct {
	ants *ants.Pool
	log  *natslog.Logger
}

// defaultPoolSize is used when New is called with size <= 0.
const defaultPoolSize = 256

// New creates a pool with at most size concurrent workers.
func New(size int, log *natslog.Logger) (*Pool, error) {
	if log == nil {
		log = natslog.Default()
	}
	opts := []ants.Option{
		ants.WithPanicHandler(func(v interface{}) {
			log.Error("natspool: worker panic: %v", v)
		}),
	}
	if size <= 0 {
		size = defaultPoolSize
	}
	p, err := ants.NewPool(size, opts...)
	if err != nil {
		return nil, err
	}
	return &Pool{ants: p, log: log}, nil
}

// Submit schedules fn to run on a pooled goroutine. The pool is created in
// blocking mode, so when every worker is busy Submit blocks until one frees
// up. It returns an error if the pool has already been released.
func (p *Pool) Submit(fn func()) error {
	return p.ants.Submit(fn)
}

// Running reports the number of workers currently executing a submitted
// function.
func (p *Pool) Running() int { return p.ants.Running() }

// Release closes the pool and frees its idle workers. It does not wait for
// functions that are already running to finish.
func (p *Pool) Release() { p.ants.Release() }
