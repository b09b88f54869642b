//go:build !integration

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-registration-bridge/internal/domain"
	"telegram-registration-bridge/internal/domain/model"
	"telegram-registration-bridge/internal/infra/logging"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func TestHTTPBackend_Register(t *testing.T) {
	payload := model.RegistrationPayload{UUID: "u-42", ChatID: "555"}

	t.Run("posts json and accepts 201", func(t *testing.T) {
		var gotBody, gotContentType, gotMethod, gotRequestID string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			gotBody = string(b)
			gotContentType = r.Header.Get("Content-Type")
			gotMethod = r.Method
			gotRequestID = r.Header.Get("X-Request-ID")
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		b, err := NewHTTPBackend(srv.URL+"/api/telegram", time.Second, newTestLogger())
		if err != nil {
			t.Fatalf("NewHTTPBackend: %v", err)
		}
		res, err := b.Register(context.Background(), payload)
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if res.StatusCode != http.StatusCreated {
			t.Errorf("status = %d", res.StatusCode)
		}
		if gotMethod != http.MethodPost {
			t.Errorf("method = %s", gotMethod)
		}
		if gotContentType != "application/json" {
			t.Errorf("content-type = %q", gotContentType)
		}
		if gotBody != `{"uuid":"u-42","chatId":"555"}` {
			t.Errorf("body = %s", gotBody)
		}
		if gotRequestID == "" {
			t.Error("expected a generated X-Request-ID")
		}
	})

	t.Run("forwards the trace id as request id", func(t *testing.T) {
		var gotRequestID string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotRequestID = r.Header.Get("X-Request-ID")
		}))
		defer srv.Close()

		b, _ := NewHTTPBackend(srv.URL, time.Second, newTestLogger())
		ctx := logging.WithTraceID(context.Background(), "01J0TRACE")
		if _, err := b.Register(ctx, payload); err != nil {
			t.Fatalf("Register: %v", err)
		}
		if gotRequestID != "01J0TRACE" {
			t.Errorf("X-Request-ID = %q", gotRequestID)
		}
	})

	t.Run("non-2xx is rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "unknown uuid"})
		}))
		defer srv.Close()

		b, _ := NewHTTPBackend(srv.URL, time.Second, newTestLogger())
		_, err := b.Register(context.Background(), payload)
		if !errors.Is(err, domain.ErrBackendRejected) {
			t.Fatalf("expected ErrBackendRejected, got %v", err)
		}
		var be *domain.BackendError
		if !errors.As(err, &be) || be.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected BackendError with 400, got %#v", err)
		}
		if be.Err == nil {
			t.Error("expected the response body to be kept")
		}
	})

	t.Run("server error is rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		b, _ := NewHTTPBackend(srv.URL, time.Second, newTestLogger())
		if _, err := b.Register(context.Background(), payload); !errors.Is(err, domain.ErrBackendRejected) {
			t.Fatalf("expected ErrBackendRejected, got %v", err)
		}
	})

	t.Run("connection refused is unavailable", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		addr := ln.Addr().String()
		ln.Close()

		b, _ := NewHTTPBackend("http://"+addr+"/register", time.Second, newTestLogger())
		_, err = b.Register(context.Background(), payload)
		if !errors.Is(err, domain.ErrBackendUnavailable) {
			t.Fatalf("expected ErrBackendUnavailable, got %v", err)
		}
	})

	t.Run("timeout is unavailable", func(t *testing.T) {
		var hits atomic.Int32
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		b, _ := NewHTTPBackend(srv.URL, 50*time.Millisecond, newTestLogger())
		_, err := b.Register(context.Background(), payload)
		if !errors.Is(err, domain.ErrBackendUnavailable) {
			t.Fatalf("expected ErrBackendUnavailable, got %v", err)
		}
		if hits.Load() != 1 {
			t.Errorf("expected exactly one attempt, got %d", hits.Load())
		}
	})
}

func TestNewHTTPBackend_RejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "ftp://host/x", "http://"} {
		if _, err := NewHTTPBackend(raw, time.Second, nil); err == nil {
			t.Errorf("NewHTTPBackend(%q) should fail", raw)
		}
	}
}

func TestLogBackend(t *testing.T) {
	b := NewLogBackend(newTestLogger())
	res, err := b.Register(context.Background(), model.RegistrationPayload{UUID: "u", ChatID: "1"})
	if err != nil || res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected result %+v, %v", res, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.Register(ctx, model.RegistrationPayload{UUID: "u", ChatID: "1"}); !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable on canceled ctx, got %v", err)
	}
}
