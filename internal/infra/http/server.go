package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"telegram-registration-bridge/internal/config"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// ShutdownTimeout bounds how long in-flight admin requests get on shutdown.
const ShutdownTimeout = 5 * time.Second

// Server exposes /health and /metrics for the process.
type Server struct {
	log    *zerolog.Logger
	router chi.Router
	server *http.Server
}

func NewServer(cfg config.AdminConfig, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(logger), Recover(logger))
	r.Get("/health", handleHealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return &Server{
		log:    logger,
		router: r,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler { return s.router }

// Start blocks serving until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("admin http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}
