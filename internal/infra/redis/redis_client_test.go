//go:build !integration

package redis

import (
	"testing"

	"telegram-registration-bridge/internal/config"
)

func TestClientOptions(t *testing.T) {
	opts, err := clientOptions(&config.RedisConfig{URL: "localhost:6379", Password: "pw", DB: 2})
	if err != nil {
		t.Fatal(err)
	}
	if opts.Addr != "localhost:6379" || opts.Password != "pw" || opts.DB != 2 {
		t.Errorf("unexpected options %+v", opts)
	}

	opts, err = clientOptions(&config.RedisConfig{URL: "redis://:secret@cache:6380/3"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.Addr != "cache:6380" || opts.Password != "secret" || opts.DB != 3 {
		t.Errorf("unexpected options from url %+v", opts)
	}

	if _, err := clientOptions(&config.RedisConfig{URL: "redis://cache:6380/notadb"}); err == nil {
		t.Error("expected an error for a bad db number")
	}
}
