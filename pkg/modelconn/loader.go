package modelconn

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the top-level structure of a connector config file.
type FileConfig struct {
	Connectors []ConnectorConfig `yaml:"connectors"`
}

// ConnectorConfig describes one named connector entry in a config file.
// Preset fills vendor defaults first; explicit fields override them.
type ConnectorConfig struct {
	Name        string  `yaml:"name"`
	Preset      string  `yaml:"preset"`
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"` //nolint:gosec // configuration field, not a hardcoded secret
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	Timeout     string  `yaml:"timeout"` // Duration string, e.g. "30s", "500ms".
}

// LoadConfig reads a YAML file and returns a FileConfig.
// Environment variables referenced as ${VAR} or $VAR in the YAML are
// expanded before parsing. This allows API keys to be kept in environment
// variables (e.g. loaded from a .env file) rather than committed in the
// config.
func LoadConfig(path string) (FileConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return FileConfig{}, fmt.Errorf("modelconn: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var fc FileConfig
	if err := yaml.Unmarshal([]byte(expanded), &fc); err != nil {
		return FileConfig{}, fmt.Errorf("modelconn: parse config: %w", err)
	}

	return fc, nil
}

// Validate checks that the file is internally consistent.
func (fc FileConfig) Validate() error {
	if len(fc.Connectors) == 0 {
		return &ConfigError{Field: "connectors", Reason: "at least one connector is required"}
	}

	names := make(map[string]struct{}, len(fc.Connectors))
	for _, cc := range fc.Connectors {
		if cc.Name == "" {
			return &ConfigError{Field: "connectors", Reason: "connector name is required"}
		}
		if _, dup := names[cc.Name]; dup {
			return &ConfigError{Field: "connectors", Reason: fmt.Sprintf("duplicate connector name %q", cc.Name)}
		}
		names[cc.Name] = struct{}{}
	}

	return nil
}

// Connector returns the entry with the given name.
func (fc FileConfig) Connector(name string) (ConnectorConfig, bool) {
	for _, cc := range fc.Connectors {
		if cc.Name == name {
			return cc, true
		}
	}
	return ConnectorConfig{}, false
}

// Config resolves the entry into a connector Config. The preset, when
// named, supplies vendor defaults; explicit fields override them.
func (cc ConnectorConfig) Config() (Config, error) {
	var cfg Config

	if cc.Preset != "" {
		p, ok := LookupPreset(cc.Preset)
		if !ok {
			return Config{}, &ConfigError{Field: "preset", Reason: fmt.Sprintf("unknown preset %q", cc.Preset)}
		}
		cfg = p.Config(cc.APIKey, cc.Model)
	} else {
		cfg = Config{Auth: Auth{Key: cc.APIKey}, Model: cc.Model}
	}

	if cc.BaseURL != "" {
		cfg.BaseURL = cc.BaseURL
	}
	cfg.MaxTokens = cc.MaxTokens
	cfg.Temperature = cc.Temperature

	if cc.Timeout != "" {
		d, err := time.ParseDuration(cc.Timeout)
		if err != nil || d <= 0 {
			return Config{}, &ConfigError{Field: "timeout", Reason: fmt.Sprintf("invalid duration %q", cc.Timeout)}
		}
		cfg.Timeout = d
	}

	return cfg, nil
}
