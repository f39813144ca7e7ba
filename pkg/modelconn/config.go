package modelconn

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied by New when the corresponding Config field is zero.
const (
	DefaultModel       = "default_model"
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
	DefaultTimeout     = 30 * time.Second
)

// Auth holds authentication settings for a model API.
type Auth struct {
	Key    string // API key value.
	Header string // Header name (default: "Authorization").
	Scheme string // Scheme prefix (default: "Bearer" when Header is "Authorization").
}

// Endpoints holds the request paths appended to Config.BaseURL, one per
// operation. The zero value means "use the defaults" (/generate,
// /chat/completions, /models, /health); a partially filled struct is used
// as-is, so a preset can deliberately leave a path empty.
type Endpoints struct {
	Generate string
	Chat     string
	Models   string
	Health   string
}

// defaultEndpoints is applied when Endpoints is entirely zero.
var defaultEndpoints = Endpoints{
	Generate: "/generate",
	Chat:     "/chat/completions",
	Models:   "/models",
	Health:   "/health",
}

// Config holds connector settings. It is validated once by New and never
// mutated afterwards; per-call overrides go through Options instead.
type Config struct {
	BaseURL     string            // API base URL (no trailing slash).
	Auth        Auth              // Authentication settings.
	Model       string            // Model identifier sent in request bodies.
	MaxTokens   int               // Default maximum tokens per response.
	Temperature float64           // Default sampling temperature.
	Timeout     time.Duration     // Per-request timeout.
	Endpoints   Endpoints         // Request paths per operation.
	Headers     map[string]string // Extra headers applied to every request.
	HTTPClient  *http.Client      // Optional client; New builds one from Timeout when nil.
}

// withDefaults returns a copy of c with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Endpoints == (Endpoints{}) {
		c.Endpoints = defaultEndpoints
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}

// Validate checks that required fields are present. It is called by New
// after defaults are applied.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return &ConfigError{Field: "BaseURL", Reason: "must not be empty"}
	}
	if c.Auth.Key == "" {
		return &ConfigError{Field: "Auth.Key", Reason: "must not be empty"}
	}
	if c.Timeout < 0 {
		return &ConfigError{Field: "Timeout", Reason: "must be positive"}
	}
	return nil
}

// FromEnv builds a Config from environment variables, loading a local .env
// file first if one exists:
//
//	MODEL_API_KEY  — API key (required by New)
//	MODEL_API_URL  — base URL (required by New)
//	MODEL_NAME     — model identifier
//	MAX_TOKENS     — default max tokens
//	TEMPERATURE    — default sampling temperature
//	TIMEOUT        — request timeout in seconds
//
// Unset variables leave the corresponding field zero so New applies its
// defaults. A variable that is set but unparseable is a ConfigError.
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("modelconn: load .env: %w", err)
	}

	cfg := Config{
		BaseURL: os.Getenv("MODEL_API_URL"),
		Auth:    Auth{Key: os.Getenv("MODEL_API_KEY")},
		Model:   os.Getenv("MODEL_NAME"),
	}

	if v := os.Getenv("MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, &ConfigError{Field: "MAX_TOKENS", Reason: fmt.Sprintf("invalid integer %q", v)}
		}
		cfg.MaxTokens = n
	}

	if v := os.Getenv("TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, &ConfigError{Field: "TEMPERATURE", Reason: fmt.Sprintf("invalid number %q", v)}
		}
		cfg.Temperature = f
	}

	if v := os.Getenv("TIMEOUT"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return Config{}, &ConfigError{Field: "TIMEOUT", Reason: fmt.Sprintf("invalid timeout %q", v)}
		}
		cfg.Timeout = time.Duration(secs) * time.Second
	}

	return cfg, nil
}
