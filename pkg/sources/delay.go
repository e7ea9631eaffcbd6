package sources

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/reactivego/streams/pkg/reactive"
	"github.com/reactivego/streams/pkg/timer"
)

// FromDelay returns a Publisher that emits the single value 0 once
// delay has elapsed on t, then completes, per spec §4.4.
//
// The reference policy governs demand: the value is delivered on
// timer fire regardless of accumulated demand, but if no demand has
// ever been requested by fire time, delivery is refused with a
// protocol error instead of buffering the value indefinitely.
func FromDelay(t timer.Timer, delay time.Duration) reactive.Publisher[int64] {
	return reactive.PublisherFunc[int64](func(s reactive.Subscriber[int64]) {
		sub := &delaySubscription{actual: s, delay: delay}
		s.OnSubscribe(sub)
		sub.cancel = t.Schedule(delay, sub.fire)
	})
}

type delaySubscription struct {
	actual reactive.Subscriber[int64]

	delay time.Duration

	mu         sync.Mutex
	cancel     timer.CancelFunc
	requested  bool
	cancelled  atomic.Bool
	terminated atomic.Bool
}

var _ reactive.Subscription = (*delaySubscription)(nil)

// Request implements reactive.Subscription. Any positive request
// satisfies the single value forever; the delay driver does not
// accumulate a counter beyond "has this ever been requested".
func (s *delaySubscription) Request(n int64) {
	if !reactive.Validate(n) {
		s.terminate(reactive.ErrNonPositiveRequest)
		return
	}
	s.mu.Lock()
	s.requested = true
	s.mu.Unlock()
}

// Cancel implements reactive.Subscription. De-registers the timer
// task; if the task has already fired, the racing fire callback
// observes cancellation and suppresses delivery.
func (s *delaySubscription) Cancel() {
	s.cancelled.Store(true)
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *delaySubscription) fire() {
	if s.cancelled.Load() {
		return
	}
	s.mu.Lock()
	requested := s.requested
	s.mu.Unlock()

	if !requested {
		s.terminate(reactive.NewProtocolError("timer delay fired with no outstanding demand"))
		return
	}
	if s.terminated.Swap(true) {
		return
	}
	s.actual.OnNext(0)
	if s.cancelled.Load() {
		return
	}
	s.actual.OnComplete()
}

func (s *delaySubscription) terminate(err error) {
	if s.terminated.Swap(true) {
		return
	}
	s.actual.OnError(err)
}

// IsCancelled reports whether Cancel has been observed.
func (s *delaySubscription) IsCancelled() bool { return s.cancelled.Load() }

// IsStarted reports whether Request has ever been called.
func (s *delaySubscription) IsStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requested
}

// IsTerminated reports whether a terminal signal has been delivered.
func (s *delaySubscription) IsTerminated() bool { return s.terminated.Load() }

// Period reports the configured delay in nanoseconds, for
// introspection (pkg/introspect's Timeable capability). Mirrors
// FluxInterval/MonoDelay's Timeable.period(), which reports the
// scheduling delay rather than a recurrence period for a one-shot
// source.
func (s *delaySubscription) Period() int64 { return s.delay.Nanoseconds() }
