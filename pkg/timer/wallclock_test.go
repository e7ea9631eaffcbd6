package timer_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactivego/streams/pkg/timer"
)

func TestWallClockScheduleFires(t *testing.T) {
	tm := timer.NewWallClock()
	fired := make(chan struct{}, 1)

	tm.Schedule(10*time.Millisecond, func() {
		fired <- struct{}{}
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for scheduled task")
	}
}

func TestWallClockScheduleCancel(t *testing.T) {
	tm := timer.NewWallClock()
	var fired atomic.Bool

	cancel := tm.Schedule(50*time.Millisecond, func() {
		fired.Store(true)
	})
	cancel()

	time.Sleep(100 * time.Millisecond)
	assert.False(t, fired.Load(), "expected cancelled task not to fire")
}

func TestWallClockScheduleAtFixedRateTicks(t *testing.T) {
	tm := timer.NewWallClock()
	ticks := make(chan struct{}, 8)

	cancel := tm.ScheduleAtFixedRate(5*time.Millisecond, 5*time.Millisecond, func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})
	defer cancel()

	for i := 0; i < 3; i++ {
		select {
		case <-ticks:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for tick %d", i)
		}
	}
}

func TestWallClockScheduleAtFixedRateNegativeInitialDelayUsesPeriod(t *testing.T) {
	tm := timer.NewWallClock()
	start := time.Now()
	fired := make(chan time.Time, 1)

	cancel := tm.ScheduleAtFixedRate(-1, 30*time.Millisecond, func() {
		select {
		case fired <- time.Now():
		default:
		}
	})
	defer cancel()

	select {
	case at := <-fired:
		require.WithinDuration(t, start.Add(30*time.Millisecond), at, 100*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first tick")
	}
}

func TestWallClockScheduleAtFixedRateCancelStopsFutureTicks(t *testing.T) {
	tm := timer.NewWallClock()
	var count atomic.Int64

	cancel := tm.ScheduleAtFixedRate(5*time.Millisecond, 5*time.Millisecond, func() {
		count.Add(1)
	})

	time.Sleep(20 * time.Millisecond)
	cancel()
	after := count.Load()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, count.Load(), "expected no further ticks after cancel")
}
