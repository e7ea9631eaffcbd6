package sources

import (
	"sync/atomic"

	"github.com/reactivego/streams/pkg/reactive"
)

// WithLatestFrom combines each value from p with the most recently
// seen value from o via combine, per spec §4.6. Values from p arrive
// before o has produced anything are dropped; the driver requests one
// extra element from p to compensate for each drop so the subscriber
// never stalls waiting on demand it already spent on a dropped value.
//
// Completion of o never completes the combined stream; completion of
// p does. An error from either input cancels the other and propagates
// downstream.
func WithLatestFrom[P, O, R any](p reactive.Publisher[P], o reactive.Publisher[O], combine func(P, O) (R, error)) reactive.Publisher[R] {
	return reactive.PublisherFunc[R](func(s reactive.Subscriber[R]) {
		c := &combinerSubscription[P, O, R]{
			actual:  s,
			combine: combine,
		}
		s.OnSubscribe(c)

		o.Subscribe(&otherSubscriber[P, O, R]{c: c})
		p.Subscribe(&primarySubscriber[P, O, R]{c: c})
	})
}

type latestSlot[O any] struct {
	value O
	ok    bool
}

// combinerSubscription is the output Subscription seen by the
// downstream subscriber. Requests flow only to the primary source;
// the other source is always requested unbounded.
type combinerSubscription[P, O, R any] struct {
	actual  reactive.Subscriber[R]
	combine func(P, O) (R, error)

	latest atomic.Pointer[latestSlot[O]]

	pSub reactive.Subscription
	oSub reactive.Subscription

	demand     reactive.Demand
	terminated atomic.Bool
	cancelled  atomic.Bool
	started    atomic.Bool
}

var _ reactive.Subscription = (*combinerSubscription[int, int, int])(nil)

func (c *combinerSubscription[P, O, R]) Request(n int64) {
	c.started.Store(true)
	if c.cancelled.Load() {
		return
	}
	if !reactive.Validate(n) {
		c.terminate(reactive.ErrNonPositiveRequest)
		return
	}
	c.demand.Add(n)
	if c.pSub != nil {
		c.pSub.Request(n)
	}
}

func (c *combinerSubscription[P, O, R]) Cancel() {
	if c.cancelled.Swap(true) {
		return
	}
	if c.pSub != nil {
		c.pSub.Cancel()
	}
	if c.oSub != nil {
		c.oSub.Cancel()
	}
}

func (c *combinerSubscription[P, O, R]) terminate(err error) {
	if c.terminated.Swap(true) {
		return
	}
	if c.pSub != nil {
		c.pSub.Cancel()
	}
	if c.oSub != nil {
		c.oSub.Cancel()
	}
	if c.cancelled.Load() {
		return
	}
	c.actual.OnError(err)
}

func (c *combinerSubscription[P, O, R]) complete() {
	if c.terminated.Swap(true) {
		return
	}
	if c.oSub != nil {
		c.oSub.Cancel()
	}
	if c.cancelled.Load() {
		return
	}
	c.actual.OnComplete()
}

// IsCancelled reports whether Cancel has been observed, for
// introspection (pkg/introspect's Cancellable capability).
func (c *combinerSubscription[P, O, R]) IsCancelled() bool { return c.cancelled.Load() }

// IsStarted reports whether Request has ever been called, for
// introspection (pkg/introspect's Completable capability).
func (c *combinerSubscription[P, O, R]) IsStarted() bool {
	return c.started.Load()
}

// IsTerminated reports whether a terminal signal has been delivered,
// for introspection (pkg/introspect's Completable capability).
func (c *combinerSubscription[P, O, R]) IsTerminated() bool { return c.terminated.Load() }

// RequestedFromDownstream reports the current demand counter value,
// for introspection (pkg/introspect's Requestable capability).
func (c *combinerSubscription[P, O, R]) RequestedFromDownstream() int64 { return c.demand.Load() }

// Upstreams exposes the primary and other subscriptions as a fan-in
// point, for introspection (pkg/introspect's MultiUpstream capability).
func (c *combinerSubscription[P, O, R]) Upstreams() []any {
	ups := make([]any, 0, 2)
	if c.pSub != nil {
		ups = append(ups, c.pSub)
	}
	if c.oSub != nil {
		ups = append(ups, c.oSub)
	}
	return ups
}

// onPrimaryNext handles a value from p: it reads the latest o value,
// drops p's value (and tops up demand by one to preserve liveness) if
// o has produced nothing yet, otherwise combines and delivers.
func (c *combinerSubscription[P, O, R]) onPrimaryNext(v P) {
	if c.terminated.Load() || c.cancelled.Load() {
		return
	}
	slot := c.latest.Load()
	if slot == nil || !slot.ok {
		if c.pSub != nil {
			c.pSub.Request(1)
		}
		return
	}

	r, err := c.combine(v, slot.value)
	if err != nil {
		reactive.ThrowIfFatal(err)
		c.terminate(reactive.NewUserError(err))
		return
	}
	if reactive.IsNilValue(r) {
		c.terminate(reactive.ErrNullValue)
		return
	}
	c.actual.OnNext(r)
}

func (c *combinerSubscription[P, O, R]) onOtherNext(v O) {
	c.latest.Store(&latestSlot[O]{value: v, ok: true})
}

// primarySubscriber adapts p's signals onto the combiner.
type primarySubscriber[P, O, R any] struct {
	c *combinerSubscription[P, O, R]
}

func (a *primarySubscriber[P, O, R]) OnSubscribe(sub reactive.Subscription) {
	a.c.pSub = sub
	if a.c.cancelled.Load() {
		sub.Cancel()
		return
	}
	if n := a.c.demand.Load(); n > 0 {
		sub.Request(n)
	}
}
func (a *primarySubscriber[P, O, R]) OnNext(v P)        { a.c.onPrimaryNext(v) }
func (a *primarySubscriber[P, O, R]) OnError(err error) { a.c.terminate(err) }
func (a *primarySubscriber[P, O, R]) OnComplete()       { a.c.complete() }

// otherSubscriber adapts o's signals onto the combiner.
type otherSubscriber[P, O, R any] struct {
	c *combinerSubscription[P, O, R]
}

func (a *otherSubscriber[P, O, R]) OnSubscribe(sub reactive.Subscription) {
	a.c.oSub = sub
	if a.c.cancelled.Load() {
		sub.Cancel()
		return
	}
	sub.Request(reactive.Unbounded)
}
func (a *otherSubscriber[P, O, R]) OnNext(v O)        { a.c.onOtherNext(v) }
func (a *otherSubscriber[P, O, R]) OnError(err error) { a.c.terminate(err) }
func (a *otherSubscriber[P, O, R]) OnComplete()       {}
