// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token       string        `yaml:"token" validate:"required"`
	Workers     int           `yaml:"workers" validate:"gte=1"` // update workers
	PollTimeout time.Duration `yaml:"poll_timeout" validate:"gte=1s"`
	Locale      string        `yaml:"locale"`
	Debug       bool          `yaml:"debug"` // tgbotapi request logging
}

type BackendConfig struct {
	URL     string        `yaml:"url" validate:"omitempty,http_url"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

type RegistrationConfig struct {
	// GreetOnSuccess sends the greeting after a 2xx from the backend.
	// Off by default: successful registrations are silent.
	GreetOnSuccess bool `yaml:"greet_on_success"`
}

type LogConfig struct {
	Level    string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format   string `yaml:"format" validate:"oneof=json console"`
	Sampling bool   `yaml:"sampling"`
}

type AdminConfig struct {
	Port int `yaml:"port" validate:"gte=0,lte=65535"` // 0 disables the admin server
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty disables the poller lease
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LeaseTTL time.Duration `yaml:"lease_ttl"`
}

type Config struct {
	Bot          BotConfig          `yaml:"bot"`
	Backend      BackendConfig      `yaml:"backend"`
	Registration RegistrationConfig `yaml:"registration"`
	Log          LogConfig          `yaml:"log"`
	Admin        AdminConfig        `yaml:"admin"`
	Redis        RedisConfig        `yaml:"redis"`

	Runtime RuntimeConfig `yaml:"-"`
}

// envOverrides are the variables the deployment sets directly.
// Unset variables leave the YAML value alone.
type envOverrides struct {
	BotToken       *string        `envconfig:"BOT_TOKEN"`
	BackendURL     *string        `envconfig:"BACKEND_URL"`
	BackendTimeout *time.Duration `envconfig:"BACKEND_TIMEOUT"`
	LogLevel       *string        `envconfig:"LOG_LEVEL"`
	LogFormat      *string        `envconfig:"LOG_FORMAT"`
	AdminPort      *int           `envconfig:"ADMIN_PORT"`
	RedisURL       *string        `envconfig:"REDIS_URL"`
	RedisPassword  *string        `envconfig:"REDIS_PASSWORD"`
}

var ErrBackendURLRequired = errors.New("backend.url is required")

const defaultAdminPort = 9090

// LoadConfig reads the YAML file at path (a missing file is not an error),
// applies environment overrides and defaults, then validates the result.
func LoadConfig(path string, dev bool) (*Config, error) {
	// preset so an explicit "port: 0" in the file still disables the server
	cfg := Config{Admin: AdminConfig{Port: defaultAdminPort}}
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("env config: %w", err)
	}
	if env.BotToken != nil {
		cfg.Bot.Token = *env.BotToken
	}
	if env.BackendURL != nil {
		cfg.Backend.URL = *env.BackendURL
	}
	if env.BackendTimeout != nil {
		cfg.Backend.Timeout = *env.BackendTimeout
	}
	if env.LogLevel != nil {
		cfg.Log.Level = *env.LogLevel
	}
	if env.LogFormat != nil {
		cfg.Log.Format = *env.LogFormat
	}
	if env.AdminPort != nil {
		cfg.Admin.Port = *env.AdminPort
	}
	if env.RedisURL != nil {
		cfg.Redis.URL = *env.RedisURL
	}
	if env.RedisPassword != nil {
		cfg.Redis.Password = *env.RedisPassword
	}
	return nil
}

func applyDefaults(cfg *Config) {
	cfg.Bot.Token = strings.TrimSpace(cfg.Bot.Token)
	cfg.Backend.URL = strings.TrimSpace(cfg.Backend.URL)

	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.PollTimeout <= 0 {
		cfg.Bot.PollTimeout = 60 * time.Second
	}
	if cfg.Bot.Locale == "" {
		cfg.Bot.Locale = "en"
	}
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	cfg.Redis.LeaseTTL = normalizeTTL(cfg.Redis.LeaseTTL)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their YAML path (bot.token) instead of Go names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the loaded configuration. A missing bot token is always
// fatal; a missing backend URL is tolerated only in dev mode.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return describe(verrs[0])
		}
		return fmt.Errorf("validate config: %w", err)
	}
	if c.Backend.URL == "" && !c.Runtime.Dev {
		return ErrBackendURLRequired
	}
	return nil
}

func describe(fe validator.FieldError) error {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "http_url":
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", field, fe.Value())
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	default:
		return fmt.Errorf("%s is invalid (%s=%s)", field, fe.Tag(), fe.Param())
	}
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}
