package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/ulid/v2"

	"telegram-registration-bridge/internal/domain/ports/adapter"
	"telegram-registration-bridge/internal/infra/logging"
	"telegram-registration-bridge/internal/infra/metrics"
)

// handleUpdate dispatches one update. Anything that is not a registered
// command addressed to this bot is ignored.
func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	message := update.Message
	if message == nil || message.Chat == nil || !message.IsCommand() {
		return nil
	}
	if !r.addressedToUs(message) {
		return nil
	}

	name := strings.ToLower(message.Command())
	h, ok := r.handler(name)
	if !ok {
		metrics.IncTelegramCommand("unknown")
		return nil
	}
	metrics.IncTelegramCommand("/" + name)

	ctx = logging.WithTraceID(ctx, ulid.Make().String())
	ctx = logging.WithChatID(ctx, message.Chat.ID)
	cmd := adapter.Command{
		Name:   name,
		Args:   strings.Fields(message.CommandArguments()),
		ChatID: message.Chat.ID,
	}
	if from := message.From; from != nil {
		ctx = logging.WithTgID(ctx, from.ID)
		cmd.UserID = from.ID
		cmd.Username = from.UserName
		cmd.FirstName = from.FirstName
	}

	reply, err := h(ctx, cmd)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Str("command", name).Msg("command handler failed")
		return err
	}
	if reply == nil {
		return nil
	}
	if err := r.SendMessage(ctx, message.Chat.ID, reply.Text); err != nil {
		metrics.IncTelegramReply("error")
		logging.With(ctx, r.log).Error().Err(err).Str("command", name).Msg("failed to send reply")
		return err
	}
	metrics.IncTelegramReply("sent")
	return nil
}

// addressedToUs reports whether a command is for this bot. In groups a
// command may carry an @botname suffix naming another bot.
func (r *RealTelegramBotAdapter) addressedToUs(message *tgbotapi.Message) bool {
	withAt := message.CommandWithAt()
	i := strings.Index(withAt, "@")
	if i == -1 {
		return true
	}
	return strings.EqualFold(withAt[i+1:], r.self.UserName)
}
