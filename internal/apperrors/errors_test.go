package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(NotFound("ride")); got != KindNotFound {
		t.Errorf("KindOf(NotFound) = %s, want not_found", got)
	}
	if got := KindOf(errors.New("plain")); got != KindInternal {
		t.Errorf("KindOf(plain error) = %s, want internal", got)
	}
	if got := KindOf(nil); got != KindInternal {
		t.Errorf("KindOf(nil) = %s, want internal", got)
	}

	wrapped := fmt.Errorf("handler: %w", Conflict("ride is no longer pending"))
	if !IsKind(wrapped, KindConflict) {
		t.Error("IsKind failed to see through a wrapping error")
	}
}

func TestInvalidTransitionMessage(t *testing.T) {
	err := InvalidTransition("completed", "cancel")
	want := "cannot cancel a ride in completed state"
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindInternal, "saving ride", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	if err.Error() != "saving ride: connection reset" {
		t.Errorf("message = %q", err.Error())
	}
}
