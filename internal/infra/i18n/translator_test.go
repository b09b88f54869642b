//go:build !integration

package i18n

import (
	"testing"
	"testing/fstest"
)

func TestTranslator(t *testing.T) {
	translator, err := newTranslatorFromBytes([]byte("greeting: سلام\nwelcome_user: سلام %s"))
	if err != nil {
		t.Fatalf("newTranslatorFromBytes failed: %v", err)
	}

	t.Run("should translate a simple key", func(t *testing.T) {
		if got, want := translator.T("greeting"), "سلام"; got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})

	t.Run("should return key if not found", func(t *testing.T) {
		if got, want := translator.T("nonexistent_key"), "nonexistent_key"; got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})

	t.Run("should format arguments correctly", func(t *testing.T) {
		if got, want := translator.T("welcome_user", "Ali"), "سلام Ali"; got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})
}

func TestEmbeddedEnglishLocale(t *testing.T) {
	tr, err := NewTranslator(LocalesFS, "en")
	if err != nil {
		t.Fatalf("NewTranslator(en): %v", err)
	}
	cases := map[string]string{
		KeyMissingUserID:      "Missing user ID. Please use the correct link.",
		KeyRegistrationFailed: "Something went wrong while registering. Please try again.",
	}
	for key, want := range cases {
		if got := tr.T(key); got != want {
			t.Errorf("T(%q) = %q, want %q", key, got, want)
		}
	}
	if got, want := tr.T(KeyRegistered, "Sara"), "Hello Sara, you’ve been registered ✅"; got != want {
		t.Errorf("T(registered) = %q, want %q", got, want)
	}
}

func TestNewTranslatorErrors(t *testing.T) {
	if _, err := NewTranslator(LocalesFS, "xx"); err == nil {
		t.Error("expected error for missing locale")
	}
	fsys := fstest.MapFS{"locales/bad.yaml": {Data: []byte("[not a map")}}
	if _, err := NewTranslator(fsys, "bad"); err == nil {
		t.Error("expected parse error")
	}
}
