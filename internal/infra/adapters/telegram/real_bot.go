package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-registration-bridge/internal/config"
	"telegram-registration-bridge/internal/domain/ports/adapter"
	"telegram-registration-bridge/internal/infra/worker"
)

var _ adapter.CommandRegistrar = (*RealTelegramBotAdapter)(nil)

// pollRetryDelay is the pause after a failed getUpdates call.
var pollRetryDelay = 3 * time.Second

// botClient is the part of *tgbotapi.BotAPI the adapter uses.
type botClient interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// RealTelegramBotAdapter long-polls Telegram and dispatches commands to
// registered handlers on a worker pool.
type RealTelegramBotAdapter struct {
	bot         botClient
	self        tgbotapi.User
	pool        *worker.Pool
	pollTimeout time.Duration
	log         *zerolog.Logger

	mu       sync.RWMutex
	handlers map[string]adapter.CommandHandler

	offsetMu sync.Mutex
	offset   int
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, pool *worker.Pool, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if pool == nil {
		return nil, errors.New("worker pool is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	bot.Debug = cfg.Debug
	return newRealTelegramBotAdapter(bot, bot.Self, cfg.PollTimeout, pool, logger), nil
}

func newRealTelegramBotAdapter(bot botClient, self tgbotapi.User, pollTimeout time.Duration, pool *worker.Pool, logger *zerolog.Logger) *RealTelegramBotAdapter {
	if pollTimeout <= 0 {
		pollTimeout = 60 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &RealTelegramBotAdapter{
		bot:         bot,
		self:        self,
		pool:        pool,
		pollTimeout: pollTimeout,
		log:         logger,
		handlers:    make(map[string]adapter.CommandHandler),
	}
}

// BotID is the numeric id of the bot account.
func (r *RealTelegramBotAdapter) BotID() int64 { return r.self.ID }

// Username is the bot's @username without the @.
func (r *RealTelegramBotAdapter) Username() string { return r.self.UserName }

// Handle registers h for /name, case-insensitively. Registering the same
// name twice replaces the handler.
func (r *RealTelegramBotAdapter) Handle(name string, h adapter.CommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[strings.ToLower(name)] = h
}

func (r *RealTelegramBotAdapter) handler(name string) (adapter.CommandHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// StartPolling fetches updates until ctx is done and submits each one to
// the worker pool. It can be called again after it returns; polling resumes
// after the last update that was handed to the pool.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batches := make(chan []tgbotapi.Update)
	go r.fetch(ctx, r.nextOffset(), batches)

	r.log.Info().Str("bot", r.self.UserName).Dur("poll_timeout", r.pollTimeout).Msg("telegram polling started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("telegram polling stopped")
			return ctx.Err()
		case batch := <-batches:
			for _, up := range batch {
				up := up
				if err := r.pool.Submit(ctx, func(ctx context.Context) error {
					return r.handleUpdate(ctx, up)
				}); err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					return fmt.Errorf("submit update %d: %w", up.UpdateID, err)
				}
				r.setOffset(up.UpdateID + 1)
			}
		}
	}
}

// fetch long-polls getUpdates. Its offset runs ahead of the committed one so
// the next request does not wait for the pool.
func (r *RealTelegramBotAdapter) fetch(ctx context.Context, offset int, out chan<- []tgbotapi.Update) {
	for ctx.Err() == nil {
		u := tgbotapi.NewUpdate(offset)
		u.Timeout = int(r.pollTimeout / time.Second)

		updates, err := r.bot.GetUpdates(u)
		if err != nil {
			ev := r.log.Warn().Err(err)
			var tgErr *tgbotapi.Error
			if errors.As(err, &tgErr) && tgErr.Code == 409 {
				ev = ev.Str("hint", "another process is polling with this token")
			}
			ev.Msg("telegram getUpdates failed, retrying")
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollRetryDelay):
			}
			continue
		}
		if len(updates) == 0 {
			continue
		}
		select {
		case out <- updates:
		case <-ctx.Done():
			return
		}
		offset = updates[len(updates)-1].UpdateID + 1
	}
}

func (r *RealTelegramBotAdapter) nextOffset() int {
	r.offsetMu.Lock()
	defer r.offsetMu.Unlock()
	return r.offset
}

func (r *RealTelegramBotAdapter) setOffset(o int) {
	r.offsetMu.Lock()
	defer r.offsetMu.Unlock()
	if o > r.offset {
		r.offset = o
	}
}

// SendMessage sends plain text to chatID.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}
