//go:build unit

package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindDispatch(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind Kind
	}{
		{"conflict", Conflict("slug taken"), KindConflict},
		{"not found", NotFound("no such topic"), KindNotFound},
		{"auth", Auth("UNAUTHENTICATED"), KindAuth},
		{"verification", Verification("challenge failed"), KindVerification},
		{"storage", Storage(errors.New("connection reset")), KindStorage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !Is(tc.err, tc.kind) {
				t.Errorf("expected kind %v for %v", tc.kind, tc.err)
			}
		})
	}
}

func TestKindDispatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("creating topic: %w", Conflict("slug taken"))
	if !Is(err, KindConflict) {
		t.Errorf("expected conflict kind to survive wrapping, got %v", err)
	}
	if Is(errors.New("plain"), KindConflict) {
		t.Error("plain error must not match any kind")
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("driver: bad connection")
	err := Storagef(cause, "inserting topic")
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
	if got := err.Error(); got != "storage: inserting topic: driver: bad connection" {
		t.Errorf("unexpected error text: %q", got)
	}
}
