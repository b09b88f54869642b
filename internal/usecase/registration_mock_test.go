//go:build !integration

package usecase_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"

	"telegram-registration-bridge/internal/domain/model"
	"telegram-registration-bridge/internal/domain/ports/adapter"
	"telegram-registration-bridge/internal/infra/i18n"
)

// --- Mock RegistrationBackend ---

var _ adapter.RegistrationBackend = (*mockBackend)(nil)

type mockBackend struct {
	mu           sync.Mutex
	calls        []model.RegistrationPayload
	Result       adapter.RegistrationResult
	Err          error
	RegisterFunc func(ctx context.Context, p model.RegistrationPayload) (adapter.RegistrationResult, error)
}

func (m *mockBackend) Register(ctx context.Context, p model.RegistrationPayload) (adapter.RegistrationResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, p)
	m.mu.Unlock()
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, p)
	}
	return m.Result, m.Err
}

func (m *mockBackend) Calls() []model.RegistrationPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.RegistrationPayload(nil), m.calls...)
}

// --- Logger capturing JSON lines ---

type logCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *logCapture) lines(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(c.buf.Bytes()))
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("bad log line %q: %v", sc.Text(), err)
		}
		out = append(out, m)
	}
	return out
}

func (c *logCapture) count(t *testing.T, level string) int {
	n := 0
	for _, l := range c.lines(t) {
		if l["level"] == level {
			n++
		}
	}
	return n
}

func newCapturingLogger() (*zerolog.Logger, *logCapture) {
	c := &logCapture{}
	logger := zerolog.New(c).Level(zerolog.DebugLevel)
	return &logger, c
}

// --- Translator ---

func newTestTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	return tr
}

// fsTranslator builds a translator from an in-memory locale.
func fsTranslator(t *testing.T, yaml string) *i18n.Translator {
	t.Helper()
	fsys := fstest.MapFS{"locales/test.yaml": {Data: []byte(yaml)}}
	tr, err := i18n.NewTranslator(fsys, "test")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	return tr
}
