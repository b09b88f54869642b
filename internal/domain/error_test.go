//go:build !integration

package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestBackendError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	unavailable := &BackendError{Kind: ErrBackendUnavailable, Err: cause}
	if !errors.Is(unavailable, ErrBackendUnavailable) {
		t.Error("expected Is(ErrBackendUnavailable)")
	}
	if errors.Is(unavailable, ErrBackendRejected) {
		t.Error("unavailable must not match ErrBackendRejected")
	}
	if !errors.Is(unavailable, cause) {
		t.Error("expected the cause to be unwrapped")
	}

	rejected := fmt.Errorf("register: %w", &BackendError{Kind: ErrBackendRejected, StatusCode: 409})
	if !errors.Is(rejected, ErrBackendRejected) {
		t.Error("expected wrapped Is(ErrBackendRejected)")
	}
	var be *BackendError
	if !errors.As(rejected, &be) || be.StatusCode != 409 {
		t.Fatalf("errors.As failed: %v", rejected)
	}
	if got := be.Error(); got != "registration backend rejected request: status 409" {
		t.Errorf("Error() = %q", got)
	}
}
