package usecase

import (
	"context"
	"errors"
	"strings"

	"telegram-registration-bridge/internal/domain"
	"telegram-registration-bridge/internal/domain/model"
	"telegram-registration-bridge/internal/domain/ports/adapter"
	"telegram-registration-bridge/internal/infra/i18n"
	"telegram-registration-bridge/internal/infra/logging"
	"telegram-registration-bridge/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ RegistrationUseCase = (*registrationUC)(nil)

// RegistrationUseCase links a Telegram chat to a user id on the backend.
type RegistrationUseCase interface {
	// Start handles "/start <user_id>". It returns the reply to send, or nil
	// when nothing should be sent.
	Start(ctx context.Context, cmd adapter.Command) (*adapter.Reply, error)
}

type RegistrationOptions struct {
	GreetOnSuccess bool
	Dev            bool // log user ids unredacted
}

type registrationUC struct {
	backend    adapter.RegistrationBackend
	translator *i18n.Translator
	opts       RegistrationOptions
	log        *zerolog.Logger
}

func NewRegistrationUseCase(backend adapter.RegistrationBackend, translator *i18n.Translator, opts RegistrationOptions, logger *zerolog.Logger) *registrationUC {
	return &registrationUC{
		backend:    backend,
		translator: translator,
		opts:       opts,
		log:        logger,
	}
}

func (u *registrationUC) Start(ctx context.Context, cmd adapter.Command) (*adapter.Reply, error) {
	defer logging.TraceDuration(u.log, "RegistrationUC.Start")()
	l := logging.With(ctx, u.log)

	var userID string
	if len(cmd.Args) > 0 {
		userID = cmd.Args[0]
	}
	payload, err := model.NewRegistrationPayload(userID, cmd.ChatID)
	if err != nil {
		metrics.IncRegistration("missing_user_id")
		l.Debug().Err(err).Msg("start without user id")
		return &adapter.Reply{Text: u.translator.T(i18n.KeyMissingUserID)}, nil
	}

	l.Info().
		Str("uuid", logging.Redact(payload.UUID, u.opts.Dev)).
		Str("payload_chat_id", payload.ChatID).
		Msg("received registration payload")

	res, err := u.backend.Register(ctx, payload)
	if err != nil {
		metrics.IncRegistration("failed")
		ev := l.Error().Err(err)
		var be *domain.BackendError
		if errors.As(err, &be) && be.StatusCode != 0 {
			ev = ev.Int("status_code", be.StatusCode)
		}
		ev.Msg("backend registration failed")
		return &adapter.Reply{Text: u.translator.T(i18n.KeyRegistrationFailed)}, nil
	}

	metrics.IncRegistration("registered")
	l.Debug().Int("status_code", res.StatusCode).Dur("duration", res.Duration).Msg("registration accepted")

	if !u.opts.GreetOnSuccess {
		return nil, nil
	}
	return &adapter.Reply{Text: u.translator.T(i18n.KeyRegistered, displayName(cmd))}, nil
}

func displayName(cmd adapter.Command) string {
	if n := strings.TrimSpace(cmd.FirstName); n != "" {
		return n
	}
	if n := strings.TrimSpace(cmd.Username); n != "" {
		return n
	}
	return "there"
}
