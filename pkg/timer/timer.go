// Package timer defines the minimal external scheduling collaborator
// consumed by the timer-driven source drivers in pkg/sources (spec
// §6). It intentionally knows nothing about Publisher/Subscriber:
// it can only schedule and cancel callbacks. Backpressure, demand
// accounting and the subscription lifecycle live in the drivers that
// consume this interface, not here.
package timer

import "time"

// CancelFunc de-registers a previously scheduled task. Idempotent.
type CancelFunc func()

// Timer is the scheduling primitive spec §1 calls out as an external
// collaborator whose implementation ("timer-wheel or otherwise") is
// out of scope for the core — only its interface is specified here.
type Timer interface {
	// Schedule runs task once after delay elapses on some goroutine.
	// The returned CancelFunc de-registers the task; calling it after
	// the task has already fired is a no-op.
	Schedule(delay time.Duration, task func()) CancelFunc

	// ScheduleAtFixedRate runs task repeatedly, first after
	// initialDelay (or after period, if initialDelay is negative, per
	// spec §4.5's "delay < 0 means delay equals period"), then every
	// period thereafter. The returned CancelFunc stops future firings.
	ScheduleAtFixedRate(initialDelay, period time.Duration, task func()) CancelFunc
}
