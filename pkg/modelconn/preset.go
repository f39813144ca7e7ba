package modelconn

import "fmt"

// Preset is a named bundle of configuration defaults for a known API
// vendor: base URL, endpoint paths, and auth header conventions.
type Preset struct {
	Name       string
	BaseURL    string
	AuthHeader string // Empty means the standard Authorization header.
	AuthScheme string
	Endpoints  Endpoints
	Headers    map[string]string
}

var presets = map[string]Preset{
	"openai": {
		Name:    "openai",
		BaseURL: "https://api.openai.com/v1",
		Endpoints: Endpoints{
			Generate: "/completions",
			Chat:     "/chat/completions",
			Models:   "/models",
			Health:   "/models",
		},
	},
	"anthropic": {
		Name:       "anthropic",
		BaseURL:    "https://api.anthropic.com/v1",
		AuthHeader: "x-api-key",
		Headers: map[string]string{
			"anthropic-version": "2023-06-01",
		},
		Endpoints: Endpoints{
			Chat:   "/messages",
			Models: "/models",
			Health: "/models",
		},
	},
	"huggingface": {
		Name:    "huggingface",
		BaseURL: "https://api-inference.huggingface.co/models",
	},
}

// LookupPreset returns the preset registered under name.
func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// PresetNames returns the names of all registered presets.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}

// Config builds a connector Config from the preset with the given
// credentials. The result still goes through New for validation.
func (p Preset) Config(apiKey, model string) Config {
	return Config{
		BaseURL: p.BaseURL,
		Auth: Auth{
			Key:    apiKey,
			Header: p.AuthHeader,
			Scheme: p.AuthScheme,
		},
		Model:     model,
		Endpoints: p.Endpoints,
		Headers:   p.Headers,
	}
}

// NewFromPreset creates a Connector from a registered preset name. An
// unknown name is a ConfigError.
func NewFromPreset(name, apiKey, model string) (*Connector, error) {
	p, ok := LookupPreset(name)
	if !ok {
		return nil, &ConfigError{Field: "preset", Reason: fmt.Sprintf("unknown preset %q", name)}
	}
	return New(p.Config(apiKey, model))
}
