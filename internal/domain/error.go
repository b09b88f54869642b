package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingUserID is returned when /start arrives without a user id.
	ErrMissingUserID = errors.New("missing user id")

	// ErrBackendUnavailable covers transport failures: DNS, refused
	// connections, timeouts and canceled contexts.
	ErrBackendUnavailable = errors.New("registration backend unavailable")

	// ErrBackendRejected means the backend answered with a non-2xx status.
	ErrBackendRejected = errors.New("registration backend rejected request")
)

// BackendError is the failure half of a registration call. Kind is one of
// ErrBackendUnavailable or ErrBackendRejected; StatusCode is 0 when no
// response was received.
type BackendError struct {
	Kind       error
	StatusCode int
	Err        error
}

func (e *BackendError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%v: status %d: %v", e.Kind, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%v: status %d", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

// Is lets errors.Is match the sentinel kind.
func (e *BackendError) Is(target error) bool { return target == e.Kind }

func (e *BackendError) Unwrap() error { return e.Err }
