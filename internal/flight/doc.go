// Package flight provides single-flight memoization for expensive,
// context-aware computations.
//
// # Lazy
//
// A Lazy[T] runs its computation at most once per successful completion and
// shares the outcome with every concurrent caller. States:
//
//	Unstarted -> InFlight -> Completed(value) | Completed(error)
//
// # Cancellation Policy
//
// Waiters are reference counted. The computation runs under a context that
// no single caller owns; it is cancelled only when every attached waiter has
// given up. The entry then returns to Unstarted and the next caller starts a
// fresh computation. A caller that gives up returns its own ctx.Err() and is
// never handed a result completed after it detached.
//
// # Failure Policy
//
// Failures are sticky. An error returned while the run context is live is
// cached, and every later Get returns the identical error, even when it
// wraps context.Canceled or context.DeadlineExceeded from the computation's
// own deadlines. Only a run abandoned by its last waiter is discarded.
//
// # Table
//
// Table[K, V] maps keys to Lazy entries. Its mutex covers only the
// lookup-or-insert step, never the computation.
package flight
