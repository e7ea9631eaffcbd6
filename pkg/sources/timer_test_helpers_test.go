package sources_test

import (
	"time"

	"github.com/reactivego/streams/pkg/timer"
)

// fakeTimer is a manually-driven timer.Timer double: Schedule and
// ScheduleAtFixedRate record the task instead of running it against a
// real clock, so tests can fire ticks deterministically.
type fakeTimer struct {
	once   func()
	fixed  func()
	cancel bool
}

var _ timer.Timer = (*fakeTimer)(nil)

func (f *fakeTimer) Schedule(delay time.Duration, task func()) timer.CancelFunc {
	f.once = task
	return func() { f.cancel = true }
}

func (f *fakeTimer) ScheduleAtFixedRate(initialDelay, period time.Duration, task func()) timer.CancelFunc {
	f.fixed = task
	return func() { f.cancel = true }
}

// fire runs the single-shot task registered via Schedule, as if the
// delay had just elapsed.
func (f *fakeTimer) fire() { f.once() }

// tick runs the periodic task registered via ScheduleAtFixedRate, as
// if one period had just elapsed.
func (f *fakeTimer) tick() { f.fixed() }
