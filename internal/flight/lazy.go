package flight

import (
	"context"
	"sync"
)

// State is the lifecycle position of a Lazy.
type State int

const (
	// StateUnstarted means no computation is running and none has completed.
	StateUnstarted State = iota
	// StateInFlight means a computation is running with at least one waiter.
	StateInFlight
	// StateCompleted means a value or a sticky error is cached.
	StateCompleted
)

// String returns a lowercase name for the state.
func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateInFlight:
		return "in_flight"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Func is a memoizable computation.
type Func[T any] func(ctx context.Context) (T, error)

// call is one run of the computation. A Lazy may abandon a call (every waiter
// cancelled) and start a new one later.
type call[T any] struct {
	done    chan struct{}
	cancel  context.CancelFunc
	waiters int

	// value and err are written before done is closed.
	value T
	err   error
}

// Lazy is a lazily started, result-memoizing computation shared by all
// concurrent callers.
//
// Thread-safety: all methods are safe for concurrent use.
type Lazy[T any] struct {
	fn Func[T]

	mu       sync.Mutex
	inflight *call[T] // nil unless StateInFlight
	result   *call[T] // non-nil once StateCompleted
	starts   int
}

// NewLazy creates an unstarted Lazy for fn.
func NewLazy[T any](fn Func[T]) *Lazy[T] {
	return &Lazy[T]{fn: fn}
}

// Get returns the memoized result, starting the computation if no run is in
// flight. Concurrent callers attach to the same run.
//
// If ctx is done before the run completes, Get detaches and returns ctx.Err().
// The run itself is cancelled only when its last waiter detaches.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.mu.Lock()
	if r := l.result; r != nil {
		l.mu.Unlock()
		return r.value, r.err
	}
	if err := ctx.Err(); err != nil {
		l.mu.Unlock()
		var zero T
		return zero, err
	}

	c := l.inflight
	if c == nil {
		c = l.start(ctx)
	}
	c.waiters++
	l.mu.Unlock()

	select {
	case <-c.done:
		l.mu.Lock()
		c.waiters--
		l.mu.Unlock()
		return c.value, c.err

	case <-ctx.Done():
		l.detach(c)
		var zero T
		return zero, ctx.Err()
	}
}

// Peek returns the value only if a run already completed successfully.
// Never blocks and never starts a computation.
func (l *Lazy[T]) Peek() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if r := l.result; r != nil && r.err == nil {
		return r.value, true
	}
	var zero T
	return zero, false
}

// State returns the current lifecycle state.
func (l *Lazy[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.result != nil:
		return StateCompleted
	case l.inflight != nil:
		return StateInFlight
	default:
		return StateUnstarted
	}
}

// Waiters returns how many callers are attached to the in-flight run.
// Used for testing and introspection.
func (l *Lazy[T]) Waiters() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inflight == nil {
		return 0
	}
	return l.inflight.waiters
}

// Starts returns how many times the computation has been started.
// Used for testing and introspection.
func (l *Lazy[T]) Starts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.starts
}

// start launches a new run. Caller must hold l.mu.
//
// The run context keeps the first caller's values (trace spans, loggers) but
// not its cancellation; only detach can cancel it.
func (l *Lazy[T]) start(ctx context.Context) *call[T] {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := &call[T]{
		done:   make(chan struct{}),
		cancel: cancel,
	}
	l.inflight = c
	l.starts++

	go l.run(runCtx, c)
	return c
}

func (l *Lazy[T]) run(ctx context.Context, c *call[T]) {
	value, err := l.invoke(ctx)
	// Only detach cancels ctx. A cancellation error from fn while ctx is
	// live is fn's own failure and stays sticky.
	abandoned := ctx.Err() != nil
	c.cancel()

	l.mu.Lock()
	defer l.mu.Unlock()

	c.value, c.err = value, err
	if l.inflight == c {
		l.inflight = nil
		if !abandoned {
			l.result = c
		}
	}
	// An abandoned call has no waiters left; closing done only releases
	// any goroutine racing between its own cancellation and detach.
	close(c.done)
}

// invoke runs fn, converting a panic into a *PanicError.
func (l *Lazy[T]) invoke(ctx context.Context) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return l.fn(ctx)
}

// detach removes one waiter from c and abandons the run when none remain.
func (l *Lazy[T]) detach(c *call[T]) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c.waiters--
	if c.waiters == 0 && l.inflight == c {
		l.inflight = nil
		c.cancel()
	}
}
