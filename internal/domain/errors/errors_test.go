package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestKindSentinels(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind error
	}{
		{"user not found", UserNotFound(1), ErrNotFound},
		{"product not found", ProductNotFound(1), ErrNotFound},
		{"order not found", OrderNotFound(1), ErrNotFound},
		{"out of stock", OutOfStock(1), ErrConflict},
		{"already claimed", AlreadyClaimed(1), ErrConflict},
		{"invalid transition", InvalidTransition("CONFIRMED", "DONE"), ErrConflict},
		{"not pending", OrderNotPending(1), ErrConflict},
		{"forbidden", Forbidden("no"), ErrForbidden},
		{"validation", Validation("bad"), ErrValidation},
		{"external", ExternalFailure("down", stdErrors.New("io")), ErrExternal},
		{"unverified", Unverified(nil), ErrUnverified},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !stdErrors.Is(tc.err, tc.kind) {
				t.Fatalf("expected %v to match kind %v", tc.err, tc.kind)
			}
			wrapped := fmt.Errorf("layer: %w", tc.err)
			if !stdErrors.Is(wrapped, tc.kind) {
				t.Fatalf("expected wrapped error to match kind")
			}
		})
	}
}

func TestCodeSentinels(t *testing.T) {
	if !stdErrors.Is(OutOfStock(7), ErrOutOfStock) {
		t.Fatal("expected out of stock to match code sentinel")
	}
	if stdErrors.Is(AlreadyClaimed(7), ErrOutOfStock) {
		t.Fatal("did not expect already claimed to match out of stock")
	}
	if !stdErrors.Is(InvalidTransition("A", "B"), ErrInvalidTransition) {
		t.Fatal("expected invalid transition code match")
	}
	if stdErrors.Is(ErrConflict, ErrOutOfStock) {
		t.Fatal("kind sentinel must not match a code sentinel")
	}
}

func TestKindOfAndUnwrap(t *testing.T) {
	cause := stdErrors.New("timeout")
	err := fmt.Errorf("checkout: %w", ExternalFailure("processor unreachable", cause))

	if KindOf(err) != KindExternal {
		t.Fatalf("expected external kind, got %q", KindOf(err))
	}
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected cause to be reachable")
	}
	if KindOf(stdErrors.New("plain")) != "" {
		t.Fatal("expected empty kind for untyped error")
	}
	typed, ok := As(err)
	if !ok || typed.Code != "EXTERNAL_FAILURE" {
		t.Fatalf("unexpected typed error %+v", typed)
	}
}
