// Package dispatch implements the bounded background event queue that
// decouples the channel's read goroutine from slower notification
// consumers (diff engine, troubles decoder, change monitor).
//
// Grounded on original_source/satel_integra_api/base.py (IntegraDispatcher):
// a single worker goroutine drains a queue and invokes a process function,
// logging lifecycle transitions and swallowing per-item processing panics
// so one bad event can't kill the dispatcher.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

var instanceCount int64

// Dispatcher runs process on every item Put onto it, from a single
// goroutine, in submission order.
type Dispatcher struct {
	name    string
	process func(context.Context, any)

	queue  chan any
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

// New starts a Dispatcher with the given queue capacity (items submitted
// beyond capacity block the caller, same backpressure the channel's own
// write path already relies on elsewhere).
func New(capacity int, process func(context.Context, any)) *Dispatcher {
	id := atomic.AddInt64(&instanceCount, 1) - 1
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		name:    fmt.Sprintf("event-queue-task-%d", id),
		process: process,
		queue:   make(chan any, capacity),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go d.run(ctx)
	return d
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.done)
	log.WithField("dispatcher", d.name).Debug("task start")
	for {
		select {
		case <-ctx.Done():
			log.WithField("dispatcher", d.name).Debug("task finished (cancelled)")
			return
		case item, ok := <-d.queue:
			if !ok {
				log.WithField("dispatcher", d.name).Debug("task finished")
				return
			}
			d.processOne(ctx, item)
		}
	}
}

func (d *Dispatcher) processOne(ctx context.Context, item any) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("dispatcher", d.name).Errorf("task process exception, %v", r)
		}
	}()
	d.process(ctx, item)
}

// Put enqueues item for processing. It is a no-op once the dispatcher has
// been shut down.
func (d *Dispatcher) Put(item any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		log.WithField("dispatcher", d.name).Error("queue not found, discarding")
		return
	}
	d.queue <- item
}

// Shutdown cancels the worker goroutine and waits for it to exit.
// Items still queued are discarded rather than processed.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	<-d.done
}
