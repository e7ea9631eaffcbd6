package reactive

// QueueSubscription is the fusion protocol from spec §4.7: an
// optional synchronous, queue-like surface a Subscription may expose
// so that a downstream operator which recognizes the capability can
// bypass OnNext signalling entirely and pull values directly.
//
// A downstream operator that elects fusion must revert to the
// standard OnNext/OnError/OnComplete path the moment IsEmpty,
// Peek or Poll return an error or a false/absent result that
// indicates termination.
type QueueSubscription[T any] interface {
	Subscription

	// IsEmpty reports whether a value is currently available without
	// consuming it. It may probe the underlying iterator as a side
	// effect (moving from CALL_HAS_NEXT to a latched lookahead state).
	IsEmpty() (bool, error)
	// Peek returns the latched lookahead value without consuming it,
	// producing it from the iterator first if it was only latent.
	// ok is false when the source is empty.
	Peek() (v T, ok bool, err error)
	// Poll behaves like Peek but consumes the value, advancing the
	// lookahead state so the next call re-probes the iterator.
	Poll() (v T, ok bool, err error)
	// Drop discards the latched value without ever handing it to the
	// caller, advancing the lookahead state exactly as Poll does.
	Drop()
	// Clear resets any pending lookahead. A source that owns no
	// buffering state beyond the single-slot lookahead may implement
	// this as a no-op.
	Clear()
	// Size returns 1 if a value is latched or probably available, 0
	// otherwise. It is not a true count of remaining elements.
	Size() int
}

// FusionState is the four-state lookahead machine from
// FluxIterable.IterableSubscription in the reference implementation.
type FusionState int

const (
	// StateHasNextNoValue: hasNext returned true, but the value has
	// not yet been pulled from the iterator. The states start at 1 so
	// that the zero value of FusionState means "never probed".
	StateHasNextNoValue FusionState = iota + 1
	// StateHasNextHasValue: a value is latched in Lookahead.current.
	StateHasNextHasValue
	// StateNoNext: the iterator is exhausted.
	StateNoNext
	// StateCallHasNext: the previous value was consumed or dropped;
	// the next IsEmpty call must re-probe hasNext.
	StateCallHasNext
)

// Lookahead is the reusable one-slot fusion state machine that a
// synchronous, iterator-backed source driver embeds to implement
// QueueSubscription. HasNext and Next are supplied by the embedder
// since they may need to report iterator errors.
type Lookahead[T any] struct {
	State   FusionState
	Current T
}

// IsEmpty implements the state transition described in spec §4.7: the
// first call from StateCallHasNext (or the initial zero value, which
// is none of the named states) probes hasNext and transitions
// accordingly.
func (l *Lookahead[T]) IsEmpty(hasNext func() (bool, error)) (bool, error) {
	switch l.State {
	case StateNoNext:
		return true, nil
	case StateHasNextHasValue, StateHasNextNoValue:
		return false, nil
	default: // StateCallHasNext, or zero value
		ok, err := hasNext()
		if err != nil {
			return true, err
		}
		if ok {
			l.State = StateHasNextNoValue
			return false, nil
		}
		l.State = StateNoNext
		return true, nil
	}
}

// Peek returns the latched value, pulling it from next() if the
// lookahead was only latent (StateHasNextNoValue).
func (l *Lookahead[T]) Peek(hasNext func() (bool, error), next func() (T, error)) (v T, ok bool, err error) {
	empty, err := l.IsEmpty(hasNext)
	if err != nil {
		var zero T
		return zero, false, err
	}
	if empty {
		var zero T
		return zero, false, nil
	}
	if l.State == StateHasNextNoValue {
		c, err := next()
		if err != nil {
			var zero T
			return zero, false, err
		}
		if IsNilValue(c) {
			var zero T
			return zero, false, ErrNullValue
		}
		l.Current = c
		l.State = StateHasNextHasValue
	}
	return l.Current, true, nil
}

// Poll behaves like Peek but consumes the value and advances the
// state to StateCallHasNext so the next IsEmpty re-probes.
func (l *Lookahead[T]) Poll(hasNext func() (bool, error), next func() (T, error)) (v T, ok bool, err error) {
	v, ok, err = l.Peek(hasNext, next)
	if err != nil || !ok {
		return v, ok, err
	}
	var zero T
	l.Current = zero
	l.State = StateCallHasNext
	return v, true, nil
}

// Drop discards the latched value without returning it.
func (l *Lookahead[T]) Drop() {
	var zero T
	l.Current = zero
	l.State = StateCallHasNext
}

// Size returns 1 if a value is latched or probably available, else 0.
func (l *Lookahead[T]) Size() int {
	if l.State == StateNoNext {
		return 0
	}
	return 1
}
