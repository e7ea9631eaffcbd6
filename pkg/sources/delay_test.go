package sources_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactivego/streams/pkg/introspect"
	"github.com/reactivego/streams/pkg/reactive"
	"github.com/reactivego/streams/pkg/sources"
)

func TestDelayDeliversOnFire(t *testing.T) {
	ft := &fakeTimer{}
	rec := &recorder[int64]{}
	sources.FromDelay(ft, 10*time.Millisecond).Subscribe(rec)

	require.NotNil(t, rec.subscription)
	rec.subscription.Request(1)

	ft.fire()

	assert.Equal(t, []int64{0}, rec.values)
	assert.True(t, rec.completed)
}

func TestDelayFiresWithoutDemandIsProtocolError(t *testing.T) {
	ft := &fakeTimer{}
	rec := &recorder[int64]{}
	sources.FromDelay(ft, 10*time.Millisecond).Subscribe(rec)
	require.NotNil(t, rec.subscription)

	ft.fire()

	assert.True(t, reactive.IsProtocolError(rec.err))
	assert.Empty(t, rec.values)
}

func TestDelayCancelSuppressesDelivery(t *testing.T) {
	ft := &fakeTimer{}
	rec := &recorder[int64]{}
	sources.FromDelay(ft, 10*time.Millisecond).Subscribe(rec)
	require.NotNil(t, rec.subscription)

	rec.subscription.Request(1)
	rec.subscription.Cancel()
	assert.True(t, ft.cancel)

	// The task may still fire in a race with cancellation; delivery
	// must be suppressed regardless.
	ft.fire()

	assert.Empty(t, rec.values)
	assert.False(t, rec.completed)
	assert.NoError(t, rec.err)
}

func TestDelayIsStartedReflectsRequest(t *testing.T) {
	ft := &fakeTimer{}
	rec := &recorder[int64]{}
	sources.FromDelay(ft, 10*time.Millisecond).Subscribe(rec)
	require.NotNil(t, rec.subscription)

	completable, ok := rec.subscription.(introspect.Completable)
	require.True(t, ok, "delaySubscription must satisfy introspect.Completable")
	assert.False(t, completable.IsStarted())

	rec.subscription.Request(1)
	assert.True(t, completable.IsStarted())
}

func TestDelayExposesPeriod(t *testing.T) {
	ft := &fakeTimer{}
	rec := &recorder[int64]{}
	sources.FromDelay(ft, 10*time.Millisecond).Subscribe(rec)
	require.NotNil(t, rec.subscription)

	timeable, ok := rec.subscription.(introspect.Timeable)
	require.True(t, ok, "delaySubscription must satisfy introspect.Timeable")
	assert.Equal(t, (10 * time.Millisecond).Nanoseconds(), timeable.Period())
}
