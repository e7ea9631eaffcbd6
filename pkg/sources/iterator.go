// Package sources implements the source drivers this module's core
// exists to demonstrate: a synchronously-pulled iterator with fused
// fast/slow request paths, a single-shot timer delay, a periodic
// timer interval, and a dual-input WithLatestFrom combiner.
//
// Grounded on original_source/FluxIterable.java, FluxInterval.java,
// MonoDelay.java, and the wider spec §4.
package sources

import (
	"sync/atomic"

	"github.com/reactivego/streams/pkg/reactive"
)

// Iterator is the synchronous, pull-based value source consumed by
// FromIterator. HasNext and Next may both fail; a failure terminates
// the subscription with OnError.
type Iterator[T any] interface {
	HasNext() (bool, error)
	Next() (T, error)
}

// FromSlice returns a Publisher that emits the elements of values in
// order, then completes. Each Subscribe call gets an independent
// cursor.
func FromSlice[T any](values []T) reactive.Publisher[T] {
	return FromIterator(func() (Iterator[T], error) {
		return &sliceIterator[T]{values: values}, nil
	})
}

type sliceIterator[T any] struct {
	values []T
	i      int
}

func (it *sliceIterator[T]) HasNext() (bool, error) { return it.i < len(it.values), nil }
func (it *sliceIterator[T]) Next() (T, error) {
	v := it.values[it.i]
	it.i++
	return v, nil
}

// FromIterator returns a Publisher backed by an Iterator obtained
// fresh (via newIterator) for each Subscribe call, implementing the
// wiring in spec §4.3: exceptions constructing or probing the
// iterator are reported as OnError, an immediately-exhausted iterator
// completes without ever producing a Subscription, and otherwise the
// Subscriber receives an IteratorSubscription.
func FromIterator[T any](newIterator func() (Iterator[T], error)) reactive.Publisher[T] {
	return reactive.PublisherFunc[T](func(s reactive.Subscriber[T]) {
		it, err := newIterator()
		if err != nil {
			s.OnError(err)
			return
		}

		hasNext, err := it.HasNext()
		if err != nil {
			reactive.ThrowIfFatal(err)
			s.OnError(reactive.NewUserError(err))
			return
		}
		if !hasNext {
			s.OnComplete()
			return
		}

		sub := &IteratorSubscription[T]{actual: s, it: it}
		s.OnSubscribe(sub)
	})
}

// IteratorSubscription is the Synchronous Subscription variant from
// spec §9's tagged-variant re-architecture: it drives an Iterator
// with the fast/slow emission paths of spec §4.3, and additionally
// implements reactive.QueueSubscription so a downstream operator that
// recognizes the fusion capability can pull synchronously instead.
type IteratorSubscription[T any] struct {
	actual     reactive.Subscriber[T]
	it         Iterator[T]
	demand     reactive.Demand
	cancelled  atomic.Bool
	terminated atomic.Bool
	started    atomic.Bool
	look       reactive.Lookahead[T]
}

var (
	_ reactive.Subscription           = (*IteratorSubscription[int])(nil)
	_ reactive.QueueSubscription[int] = (*IteratorSubscription[int])(nil)
)

// Request implements reactive.Subscription.
func (s *IteratorSubscription[T]) Request(n int64) {
	s.started.Store(true)
	if !reactive.Validate(n) {
		s.terminate(reactive.ErrNonPositiveRequest)
		return
	}
	if s.cancelled.Load() || s.terminated.Load() {
		return
	}
	prev := s.demand.Add(n)
	if prev != 0 {
		// Another goroutine already holds the emission lease; it will
		// observe the bumped counter when it re-reads requested.
		return
	}
	if n == reactive.Unbounded {
		s.fastPath()
	} else {
		s.slowPath(n)
	}
}

// Cancel implements reactive.Subscription. Idempotent.
func (s *IteratorSubscription[T]) Cancel() {
	s.cancelled.Store(true)
}

func (s *IteratorSubscription[T]) terminate(err error) {
	if s.terminated.Swap(true) {
		return
	}
	s.actual.OnError(err)
}

func (s *IteratorSubscription[T]) complete() {
	if s.terminated.Swap(true) {
		return
	}
	s.actual.OnComplete()
}

// fastPath is entered when the first Request is Unbounded: it never
// consults the demand counter again, looping until exhaustion,
// cancellation, or an iterator error.
func (s *IteratorSubscription[T]) fastPath() {
	for {
		if s.cancelled.Load() {
			return
		}

		v, err := s.it.Next()
		if err != nil {
			reactive.ThrowIfFatal(err)
			s.terminate(reactive.NewUserError(err))
			return
		}
		if s.cancelled.Load() {
			return
		}
		if reactive.IsNilValue(v) {
			s.terminate(reactive.ErrNullValue)
			return
		}

		s.actual.OnNext(v)
		if s.cancelled.Load() {
			return
		}

		hasNext, err := s.it.HasNext()
		if err != nil {
			reactive.ThrowIfFatal(err)
			s.terminate(reactive.NewUserError(err))
			return
		}
		if s.cancelled.Load() {
			return
		}
		if !hasNext {
			s.complete()
			return
		}
	}
}

// slowPath drives the iterator against a finite request budget n,
// re-reading the demand counter after each full drain to pick up
// concurrent Request calls without losing wakeups.
func (s *IteratorSubscription[T]) slowPath(n int64) {
	var emitted int64

	for {
		for emitted != n {
			v, err := s.it.Next()
			if err != nil {
				reactive.ThrowIfFatal(err)
				s.terminate(reactive.NewUserError(err))
				return
			}
			if s.cancelled.Load() {
				return
			}
			if reactive.IsNilValue(v) {
				s.terminate(reactive.ErrNullValue)
				return
			}

			s.actual.OnNext(v)
			if s.cancelled.Load() {
				return
			}

			hasNext, err := s.it.HasNext()
			if err != nil {
				reactive.ThrowIfFatal(err)
				s.terminate(reactive.NewUserError(err))
				return
			}
			if s.cancelled.Load() {
				return
			}
			if !hasNext {
				s.complete()
				return
			}

			emitted++
		}

		n = s.demand.Load()
		if n == emitted {
			n = s.demand.Produced(emitted)
			if n == 0 {
				return
			}
			emitted = 0
		}
	}
}

// IsEmpty implements reactive.QueueSubscription.
func (s *IteratorSubscription[T]) IsEmpty() (bool, error) {
	return s.look.IsEmpty(s.it.HasNext)
}

// Peek implements reactive.QueueSubscription.
func (s *IteratorSubscription[T]) Peek() (T, bool, error) {
	return s.look.Peek(s.it.HasNext, s.it.Next)
}

// Poll implements reactive.QueueSubscription.
func (s *IteratorSubscription[T]) Poll() (T, bool, error) {
	return s.look.Poll(s.it.HasNext, s.it.Next)
}

// Drop implements reactive.QueueSubscription.
func (s *IteratorSubscription[T]) Drop() { s.look.Drop() }

// Clear implements reactive.QueueSubscription. The iterator owns all
// its state; there is nothing extra to reset here.
func (s *IteratorSubscription[T]) Clear() {}

// Size implements reactive.QueueSubscription.
func (s *IteratorSubscription[T]) Size() int { return s.look.Size() }

// IsCancelled reports whether Cancel has been observed, for
// introspection (pkg/introspect's Cancellable capability).
func (s *IteratorSubscription[T]) IsCancelled() bool { return s.cancelled.Load() }

// RequestedFromDownstream reports the current demand counter value,
// for introspection (pkg/introspect's Requestable capability).
func (s *IteratorSubscription[T]) RequestedFromDownstream() int64 { return s.demand.Load() }

// IsTerminated reports whether a terminal signal has been delivered,
// for introspection (pkg/introspect's Completable capability).
func (s *IteratorSubscription[T]) IsTerminated() bool { return s.terminated.Load() }

// IsStarted reports whether Request has ever been called.
func (s *IteratorSubscription[T]) IsStarted() bool { return s.started.Load() }
