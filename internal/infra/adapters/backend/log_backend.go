package backend

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-registration-bridge/internal/domain"
	"telegram-registration-bridge/internal/domain/model"
	"telegram-registration-bridge/internal/domain/ports/adapter"
	"telegram-registration-bridge/internal/infra/logging"
)

var _ adapter.RegistrationBackend = (*LogBackend)(nil)

// LogBackend stands in for the backend in dev mode when no URL is configured.
// It logs the payload and reports success.
type LogBackend struct {
	log *zerolog.Logger
}

func NewLogBackend(logger *zerolog.Logger) *LogBackend {
	return &LogBackend{log: logger}
}

func (b *LogBackend) Register(ctx context.Context, p model.RegistrationPayload) (adapter.RegistrationResult, error) {
	if err := ctx.Err(); err != nil {
		return adapter.RegistrationResult{}, &domain.BackendError{Kind: domain.ErrBackendUnavailable, Err: err}
	}
	logging.With(ctx, b.log).Info().
		Str("uuid", p.UUID).
		Str("payload_chat_id", p.ChatID).
		Msg("[dev-backend] registration accepted")
	return adapter.RegistrationResult{StatusCode: 200}, nil
}
