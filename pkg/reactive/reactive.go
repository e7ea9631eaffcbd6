// Package reactive defines the Reactive Streams signalling contract:
// Publisher, Subscriber and Subscription, plus the demand accounting
// and error classification the rest of this module builds on.
//
// This is based on the io.reactivestreams / Project Reactor contract:
// a Publisher emits next/complete/error signals to a Subscriber under
// demand explicitly requested through a Subscription.
package reactive

// Publisher is a provider of a potentially unbounded number of
// sequenced values, publishing them according to the demand received
// from its Subscriber.
//
// A Publisher can serve multiple Subscribers, each subscription
// independent of the others.
type Publisher[T any] interface {
	// Subscribe is a factory method: it can be called multiple times,
	// each time starting a new, independent Subscription.
	Subscribe(s Subscriber[T])
}

// Subscriber receives a call to OnSubscribe at most once after being
// passed to Publisher.Subscribe; a source that terminates at subscribe
// time (an empty or failing iterator) signals OnComplete or OnError
// without it. The Subscription it receives is the only way to request
// further signals or to cancel.
type Subscriber[T any] interface {
	// OnSubscribe is called at most once, before any other signal.
	OnSubscribe(s Subscription)
	// OnNext delivers one value. Never called more times than the
	// cumulative amount requested, and never after a terminal signal.
	OnNext(v T)
	// OnError is a terminal signal. No further signals follow.
	OnError(err error)
	// OnComplete is a terminal signal. No further signals follow.
	OnComplete()
}

// Subscription represents the one-to-one lifecycle of a Subscriber
// subscribing to a Publisher: it carries the control capability
// (Request, Cancel) back to the driver that holds the emission
// capability (OnNext, OnError, OnComplete).
type Subscription interface {
	// Request authorizes the Publisher to send up to n more values.
	// n <= 0 is a protocol violation: the driver reports it via
	// OnError and terminates instead of panicking.
	Request(n int64)
	// Cancel requests the Publisher stop sending signals. Idempotent.
	// Cancellation is observed at the next signal boundary, not
	// necessarily synchronously.
	Cancel()
}

// PublisherFunc adapts a plain function to a Publisher.
type PublisherFunc[T any] func(s Subscriber[T])

// Subscribe implements Publisher.
func (f PublisherFunc[T]) Subscribe(s Subscriber[T]) { f(s) }
