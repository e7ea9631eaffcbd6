package reactive_test

import (
	"errors"
	"testing"

	"github.com/reactivego/streams/pkg/reactive"
)

func TestIsProtocolError(t *testing.T) {
	if !reactive.IsProtocolError(reactive.ErrNonPositiveRequest) {
		t.Error("expected ErrNonPositiveRequest to be a ProtocolError")
	}
	if reactive.IsProtocolError(errors.New("plain")) {
		t.Error("expected a plain error not to classify as ProtocolError")
	}
}

func TestUserErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := reactive.NewUserError(cause)

	if !errors.Is(err, cause) {
		t.Error("expected UserError to unwrap to its cause")
	}
}

func TestFatalPropagation(t *testing.T) {
	err := &reactive.Fatal{Cause: errors.New("out of memory")}
	if !reactive.IsFatal(err) {
		t.Error("expected Fatal to be classified as fatal")
	}
	if reactive.IsFatal(reactive.ErrNullValue) {
		t.Error("expected a ProtocolError not to classify as fatal")
	}
}

func TestThrowIfFatalPanicsOnlyForFatal(t *testing.T) {
	fatal := &reactive.Fatal{Cause: errors.New("out of memory")}

	defer func() {
		if recover() == nil {
			t.Error("expected ThrowIfFatal to panic on a Fatal error")
		}
	}()

	reactive.ThrowIfFatal(reactive.ErrNullValue)
	reactive.ThrowIfFatal(fatal)
	t.Error("unreachable: ThrowIfFatal should have panicked")
}
