// File: internal/infra/adapters/backend/http_backend.go
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-registration-bridge/internal/domain"
	"telegram-registration-bridge/internal/domain/model"
	"telegram-registration-bridge/internal/domain/ports/adapter"
	"telegram-registration-bridge/internal/infra/logging"
	"telegram-registration-bridge/internal/infra/metrics"
)

var _ adapter.RegistrationBackend = (*HTTPBackend)(nil)

const maxErrorBody = 512

// HTTPBackend POSTs registration payloads as JSON to a fixed endpoint.
// It never retries; every failure is reported as *domain.BackendError.
type HTTPBackend struct {
	endpoint string
	client   *http.Client
	log      *zerolog.Logger
}

// NewHTTPBackend validates endpoint and builds a client with an explicit timeout.
func NewHTTPBackend(endpoint string, timeout time.Duration, logger *zerolog.Logger) (*HTTPBackend, error) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q: want absolute http(s) url", endpoint)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &HTTPBackend{
		endpoint: u.String(),
		client:   newHTTPClient(timeout),
		log:      logger,
	}, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// Register sends p to the backend once. A 2xx status is success; any other
// status or transport error is returned as a *domain.BackendError.
func (b *HTTPBackend) Register(ctx context.Context, p model.RegistrationPayload) (adapter.RegistrationResult, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return adapter.RegistrationResult{}, fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return adapter.RegistrationResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	requestID := logging.TraceID(ctx)
	if requestID == "" {
		requestID = ulid.Make().String()
	}
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := b.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		metrics.ObserveBackendRequest("unavailable", elapsed)
		return adapter.RegistrationResult{}, &domain.BackendError{Kind: domain.ErrBackendUnavailable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveBackendRequest("rejected", elapsed)
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_, _ = io.Copy(io.Discard, resp.Body)
		be := &domain.BackendError{Kind: domain.ErrBackendRejected, StatusCode: resp.StatusCode}
		if s := strings.TrimSpace(string(snippet)); s != "" {
			be.Err = errors.New(s)
		}
		return adapter.RegistrationResult{}, be
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	metrics.ObserveBackendRequest("ok", elapsed)
	logging.With(ctx, b.log).Debug().
		Int("status_code", resp.StatusCode).
		Dur("duration", elapsed).
		Str("request_id", requestID).
		Msg("backend registration accepted")
	return adapter.RegistrationResult{StatusCode: resp.StatusCode, Duration: elapsed}, nil
}
