package tokens

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultDebounce is the settle delay applied to width samples when no
// explicit delay is configured.
const DefaultDebounce = 100 * time.Millisecond

// Invalidator is notified before breakpoint listeners run.
type Invalidator interface {
	InvalidateAll()
}

// InvalidatorFunc adapts a function to Invalidator.
type InvalidatorFunc func()

// InvalidateAll implements Invalidator.
func (f InvalidatorFunc) InvalidateAll() {
	if f != nil {
		f()
	}
}

// BreakpointChange describes a settled crossing between breakpoints.
type BreakpointChange struct {
	Previous Breakpoint `json:"previous"`
	Current  Breakpoint `json:"current"`
	Width    int        `json:"width"`
}

// BreakpointListener receives settled breakpoint changes.
type BreakpointListener func(BreakpointChange)

// ObserverOption configures an Observer.
type ObserverOption func(*Observer)

// WithDebounce sets the settle delay. Zero settles every sample synchronously.
func WithDebounce(delay time.Duration) ObserverOption {
	return func(o *Observer) {
		if delay < 0 {
			delay = 0
		}
		o.delay = delay
	}
}

// WithInitialWidth seeds the width the observer reports before any sample.
func WithInitialWidth(width int) ObserverOption {
	return func(o *Observer) {
		o.width = width
	}
}

// WithInvalidator registers the cache invalidated ahead of each notification.
func WithInvalidator(invalidator Invalidator) ObserverOption {
	return func(o *Observer) {
		o.invalidator = invalidator
	}
}

type observerListener struct {
	id uuid.UUID
	fn BreakpointListener
}

// Observer tracks viewport width samples and publishes breakpoint crossings
// once a sample settles. The viewport source is external: callers feed it
// through Sample.
type Observer struct {
	breakpoints *Breakpoints
	delay       time.Duration
	invalidator Invalidator
	afterFunc   func(time.Duration, func()) *time.Timer

	mu        sync.Mutex
	width     int
	active    Breakpoint
	pending   *pendingSample
	seq       uint64
	closed    bool
	listeners []observerListener
	queue     []BreakpointChange
	draining  bool
}

type pendingSample struct {
	seq   uint64
	width int
	timer *time.Timer
}

// NewObserver constructs an observer over breakpoints.
func NewObserver(breakpoints *Breakpoints, opts ...ObserverOption) *Observer {
	o := &Observer{
		breakpoints: breakpoints,
		delay:       DefaultDebounce,
		afterFunc:   time.AfterFunc,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	o.active = breakpoints.Active(o.width)
	return o
}

// Sample records a width reading. With a debounce delay the reading settles
// after the delay unless a later sample supersedes it.
func (o *Observer) Sample(width int) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.seq++
	seq := o.seq
	if o.pending != nil && o.pending.timer != nil {
		o.pending.timer.Stop()
	}
	if o.delay == 0 {
		o.pending = nil
		o.mu.Unlock()
		o.settle(seq, width)
		return
	}
	pending := &pendingSample{seq: seq, width: width}
	pending.timer = o.afterFunc(o.delay, func() { o.settle(seq, width) })
	o.pending = pending
	o.mu.Unlock()
}

// Flush settles a pending sample immediately. It reports whether a sample
// was pending.
func (o *Observer) Flush() bool {
	o.mu.Lock()
	pending := o.pending
	if pending == nil || o.closed {
		o.mu.Unlock()
		return false
	}
	if pending.timer != nil {
		pending.timer.Stop()
	}
	o.mu.Unlock()
	o.settle(pending.seq, pending.width)
	return true
}

// settle applies a sample if no later sample superseded it and queues the
// resulting breakpoint change. The first settler drains the queue; a settle
// triggered from inside a listener only enqueues, so its change is delivered
// after the current one.
func (o *Observer) settle(seq uint64, width int) {
	o.mu.Lock()
	if o.closed || seq != o.seq {
		o.mu.Unlock()
		return
	}
	if o.pending != nil && o.pending.seq == seq {
		o.pending = nil
	}
	o.width = width
	previous := o.active
	current := o.breakpoints.Active(width)
	if current.Name == previous.Name {
		o.mu.Unlock()
		return
	}
	o.active = current
	o.queue = append(o.queue, BreakpointChange{Previous: previous, Current: current, Width: width})
	if o.draining {
		o.mu.Unlock()
		return
	}
	o.draining = true
	o.mu.Unlock()

	o.drain()
}

// drain delivers queued changes one at a time. Each change invalidates
// before any listener sees it.
func (o *Observer) drain() {
	for {
		o.mu.Lock()
		if o.closed || len(o.queue) == 0 {
			o.queue = nil
			o.draining = false
			o.mu.Unlock()
			return
		}
		change := o.queue[0]
		o.queue = o.queue[1:]
		listeners := make([]observerListener, len(o.listeners))
		copy(listeners, o.listeners)
		invalidator := o.invalidator
		o.mu.Unlock()

		if invalidator != nil {
			invalidator.InvalidateAll()
		}
		for _, listener := range listeners {
			listener.fn(change)
		}
	}
}

// CurrentWidth returns the last settled width.
func (o *Observer) CurrentWidth() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.width
}

// Active returns the breakpoint for the last settled width.
func (o *Observer) Active() Breakpoint {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

// OnBreakpointChange subscribes listener. Listeners run in subscription
// order and may call Sample or Flush. The returned function unsubscribes and
// is safe to call twice.
func (o *Observer) OnBreakpointChange(listener BreakpointListener) func() {
	if listener == nil {
		return func() {}
	}
	id := uuid.New()
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return func() {}
	}
	o.listeners = append(o.listeners, observerListener{id: id, fn: listener})
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, l := range o.listeners {
			if l.id == id {
				o.listeners = append(o.listeners[:i:i], o.listeners[i+1:]...)
				return
			}
		}
	}
}

// Listeners reports the number of active subscriptions.
func (o *Observer) Listeners() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.listeners)
}

// Close stops pending samples and drops every listener.
func (o *Observer) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	if o.pending != nil && o.pending.timer != nil {
		o.pending.timer.Stop()
	}
	o.pending = nil
	o.listeners = nil
	o.queue = nil
}
