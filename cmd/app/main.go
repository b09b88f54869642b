// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"telegram-registration-bridge/internal/config"
	"telegram-registration-bridge/internal/domain/ports/adapter"
	"telegram-registration-bridge/internal/infra/adapters/backend"
	tele "telegram-registration-bridge/internal/infra/adapters/telegram"
	httpapi "telegram-registration-bridge/internal/infra/http"
	"telegram-registration-bridge/internal/infra/i18n"
	"telegram-registration-bridge/internal/infra/logging"
	"telegram-registration-bridge/internal/infra/metrics"
	red "telegram-registration-bridge/internal/infra/redis"
	"telegram-registration-bridge/internal/infra/worker"
	"telegram-registration-bridge/internal/usecase"
)

// set with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: console logs, unredacted ids, log-only backend when backend.url is empty")
	flag.Parse()

	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// a missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		boot.Fatal().Err(err).Str("config", *cfgPath).Msg("config")
	}

	// ---- Logging & metrics ----
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] enabled")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Replies ----
	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Locale)
	if err != nil {
		logger.Fatal().Err(err).Str("locale", cfg.Bot.Locale).Msg("i18n")
	}

	// ---- Backend ----
	var reg adapter.RegistrationBackend
	if cfg.Backend.URL == "" {
		logger.Warn().Msg("backend.url not set; registrations are only logged")
		reg = backend.NewLogBackend(logger)
	} else {
		httpBackend, err := backend.NewHTTPBackend(cfg.Backend.URL, cfg.Backend.Timeout, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("backend")
		}
		logger.Info().Str("url", cfg.Backend.URL).Dur("timeout", cfg.Backend.Timeout).Msg("backend configured")
		reg = httpBackend
	}

	registrationUC := usecase.NewRegistrationUseCase(reg, translator, usecase.RegistrationOptions{
		GreetOnSuccess: cfg.Registration.GreetOnSuccess,
		Dev:            cfg.Runtime.Dev,
	}, logger)

	// ---- Telegram ----
	// Workers get their own context: after a shutdown signal stops polling,
	// pool.Stop still runs every queued update before workCtx is canceled.
	workCtx, cancelWork := context.WithCancel(context.Background())
	defer cancelWork()
	pool := worker.NewPool(cfg.Bot.Workers, logger)
	pool.Start(workCtx)

	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, pool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	var commands adapter.CommandRegistrar = botAdapter
	commands.Handle("start", registrationUC.Start)

	// ---- Admin HTTP server ----
	var admin *httpapi.Server
	if cfg.Admin.Port > 0 {
		admin = httpapi.NewServer(cfg.Admin, logger)
		go func() {
			if err := admin.Start(); err != nil {
				logger.Error().Err(err).Msg("admin http server error")
			}
		}()
	}

	// ---- Poller lease ----
	poll := botAdapter.StartPolling
	var redisClient *red.Client
	if cfg.Redis.URL != "" {
		redisClient, err = red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		locker := red.NewLocker(redisClient)
		key := red.PollerLeaseKey(botAdapter.BotID())
		poll = func(ctx context.Context) error {
			return red.RunWithLease(ctx, locker, key, cfg.Redis.LeaseTTL, logger, botAdapter.StartPolling)
		}
	}

	logger.Info().Str("bot", botAdapter.Username()).Int("workers", cfg.Bot.Workers).Str("version", version).Msg("bot started")
	if err := poll(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("polling stopped")
	}

	// ---- Graceful shutdown ----
	logger.Info().Msg("shutdown requested")
	pool.Stop()
	cancelWork()
	if admin != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpapi.ShutdownTimeout)
		if err := admin.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("admin http shutdown")
		}
		cancel()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	logger.Info().Msg("bye")
}
