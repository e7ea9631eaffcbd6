// Package introspect implements the capability-probing graph walker
// from spec §4.8: given any live node in a pipeline, it produces a
// serializable graph of nodes and directed edges by type-asserting
// each object against a family of small, optional interfaces rather
// than requiring every component to carry graph-walking machinery.
//
// Grounded on original_source/ReactiveStateUtils.java's
// Receiver/MultiReceiver/Producer/MultiProducer/Loopback probes.
package introspect

// Upstream is implemented by a node with exactly one predecessor.
type Upstream interface {
	Upstream() any
}

// MultiUpstream is implemented by a node with more than one
// predecessor (a fan-in point).
type MultiUpstream interface {
	Upstreams() []any
}

// Downstream is implemented by a node with exactly one successor.
type Downstream interface {
	Downstream() any
}

// MultiDownstream is implemented by a node with more than one
// successor (a fan-out point).
type MultiDownstream interface {
	Downstreams() []any
}

// LoopBack is implemented by a node that declares an input and/or an
// output node reached outside the normal upstream/downstream chain
// (a feedback loop).
type LoopBack interface {
	ConnectedInput() any
	ConnectedOutput() any
}

// Introspectable carries a display name and the trace-only flag that
// controls whether a node is shown when trace mode is off.
type Introspectable interface {
	Name() string
	TraceOnly() bool
}

// Identifiable lets a node supply its own stable graph identifier.
// Nodes that don't implement it are identified by pointer identity.
type Identifiable interface {
	IntrospectID() string
}

// Backpressurable exposes queueing metrics.
type Backpressurable interface {
	Capacity() int64
	Buffered() int64
}

// Cancellable exposes cancellation state.
type Cancellable interface {
	IsCancelled() bool
}

// Completable exposes subscription lifecycle state.
type Completable interface {
	IsStarted() bool
	IsTerminated() bool
}

// Prefetchable exposes upstream request-ahead bookkeeping.
type Prefetchable interface {
	UpstreamLimit() int64
	ExpectedFromUpstream() int64
}

// Requestable exposes the live downstream demand counter.
type Requestable interface {
	RequestedFromDownstream() int64
}

// Timeable exposes a node's scheduling period, in nanoseconds.
type Timeable interface {
	Period() int64
}

// Failed exposes a node's terminal error, if it has failed.
type Failed interface {
	FailedState() error
}

func hasUpstream(o any) (any, bool) {
	u, ok := o.(Upstream)
	if !ok {
		return nil, false
	}
	up := u.Upstream()
	return up, up != nil
}

func hasUpstreams(o any) ([]any, bool) {
	u, ok := o.(MultiUpstream)
	if !ok {
		return nil, false
	}
	return u.Upstreams(), true
}

func hasDownstream(o any) (any, bool) {
	d, ok := o.(Downstream)
	if !ok {
		return nil, false
	}
	down := d.Downstream()
	return down, down != nil
}

func hasDownstreams(o any) ([]any, bool) {
	d, ok := o.(MultiDownstream)
	if !ok {
		return nil, false
	}
	return d.Downstreams(), true
}

func hasFeedbackLoop(o any) (LoopBack, bool) {
	l, ok := o.(LoopBack)
	return l, ok
}

func isTraceOnly(o any) bool {
	if i, ok := o.(Introspectable); ok {
		return i.TraceOnly()
	}
	return false
}
