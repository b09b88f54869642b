package adapter

import (
	"context"
	"time"

	"telegram-registration-bridge/internal/domain/model"
)

// RegistrationResult describes a successful (2xx) backend call.
type RegistrationResult struct {
	StatusCode int
	Duration   time.Duration
}

// RegistrationBackend is the port to the service that maps user ids to chats.
// Failures are returned as *domain.BackendError.
type RegistrationBackend interface {
	Register(ctx context.Context, p model.RegistrationPayload) (RegistrationResult, error)
}
