package sources

import (
	"sync/atomic"
	"time"

	"github.com/reactivego/streams/pkg/reactive"
	"github.com/reactivego/streams/pkg/timer"
)

// FromInterval returns a Publisher that emits an increasing counter,
// starting at 0, on every tick of a periodic schedule registered
// against t, per spec §4.5. initialDelay < 0 means "same as period".
//
// The interval source cannot buffer: a tick that fires with no
// outstanding demand terminates the subscription with
// reactive.ErrMissingBackpressure rather than blocking or dropping
// silently.
func FromInterval(t timer.Timer, initialDelay, period time.Duration) reactive.Publisher[int64] {
	return reactive.PublisherFunc[int64](func(s reactive.Subscriber[int64]) {
		sub := &intervalSubscription{actual: s, period: period}
		s.OnSubscribe(sub)
		sub.cancel = t.ScheduleAtFixedRate(initialDelay, period, sub.tick)
	})
}

type intervalSubscription struct {
	actual reactive.Subscriber[int64]

	period     time.Duration
	demand     reactive.Demand
	counter    int64
	cancel     timer.CancelFunc
	terminated atomic.Bool
	cancelled  atomic.Bool
	started    atomic.Bool
}

var _ reactive.Subscription = (*intervalSubscription)(nil)

// Request implements reactive.Subscription.
func (s *intervalSubscription) Request(n int64) {
	s.started.Store(true)
	if !reactive.Validate(n) {
		s.terminate(reactive.ErrNonPositiveRequest)
		return
	}
	s.demand.Add(n)
}

// Cancel implements reactive.Subscription. Stops further ticks; the
// interval source never completes on its own.
func (s *intervalSubscription) Cancel() {
	if s.cancelled.Swap(true) {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
}

// tick fires on the timer's goroutine, serially with respect to
// itself (ScheduleAtFixedRate never overlaps two firings), so reading
// the demand counter and then consuming it here races only against
// Request's monotonic Add, never against another tick.
func (s *intervalSubscription) tick() {
	if s.cancelled.Load() || s.terminated.Load() {
		return
	}
	if s.demand.Load() == 0 {
		s.terminate(reactive.ErrMissingBackpressure)
		return
	}
	s.demand.Produced(1)

	v := s.counter
	s.counter++
	s.actual.OnNext(v)
}

func (s *intervalSubscription) terminate(err error) {
	if s.terminated.Swap(true) {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.actual.OnError(err)
}

// IsCancelled reports whether Cancel has been observed.
func (s *intervalSubscription) IsCancelled() bool { return s.cancelled.Load() }

// IsStarted reports whether Request has ever been called.
func (s *intervalSubscription) IsStarted() bool { return s.started.Load() }

// IsTerminated reports whether a terminal signal has been delivered.
func (s *intervalSubscription) IsTerminated() bool { return s.terminated.Load() }

// RequestedFromDownstream reports the current demand counter value.
func (s *intervalSubscription) RequestedFromDownstream() int64 { return s.demand.Load() }

// Period reports the tick period in nanoseconds, for introspection
// (pkg/introspect's Timeable capability).
func (s *intervalSubscription) Period() int64 { return s.period.Nanoseconds() }
