package reactive

import (
	"math"
	"sync/atomic"
)

// Unbounded is the saturation sentinel: once the demand counter
// reaches this value it is sticky, and the caller of Request is
// expected to switch to a fast, unbudgeted emission path.
const Unbounded = int64(math.MaxInt64)

// Demand is a lock-free saturating accumulator shared between the
// driver's emission loop and the subscriber's calls to
// Subscription.Request. It is the "reentrancy pattern" from spec
// §4.1: the first caller to observe the counter transition from zero
// to positive acquires the emission lease; later concurrent
// requesters only bump the counter and return.
type Demand struct {
	n atomic.Int64
}

// Validate reports whether n is a legal request amount. n <= 0 is a
// protocol violation.
func Validate(n int64) bool {
	return n > 0
}

// Add atomically adds n to the counter, saturating at Unbounded, and
// returns the value the counter held before the addition. Once the
// counter reaches Unbounded it stays there: further additions are
// no-ops with respect to the stored value.
func (d *Demand) Add(n int64) int64 {
	for {
		prev := d.n.Load()
		if prev == Unbounded {
			return Unbounded
		}
		next := prev + n
		if next < prev || next == Unbounded {
			// overflow, or landed exactly on the sentinel: saturate.
			next = Unbounded
		}
		if d.n.CompareAndSwap(prev, next) {
			return prev
		}
	}
}

// Produced atomically subtracts e from the counter and returns the
// value after subtraction, unless the counter is Unbounded, in which
// case it is a no-op that returns Unbounded.
func (d *Demand) Produced(e int64) int64 {
	for {
		prev := d.n.Load()
		if prev == Unbounded {
			return Unbounded
		}
		next := prev - e
		if next < 0 {
			next = 0
		}
		if d.n.CompareAndSwap(prev, next) {
			return next
		}
	}
}

// Load returns the current value of the counter without mutating it.
func (d *Demand) Load() int64 {
	return d.n.Load()
}
