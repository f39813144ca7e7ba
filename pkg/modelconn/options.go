package modelconn

// Options overrides configuration defaults for a single call. A zero field
// means "use the config value": Model empty, MaxTokens zero, Temperature
// nil. Temperature is a pointer because zero is a meaningful override.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature *float64
	// Extra is merged into the request body for provider-specific
	// parameters. Named fields always take precedence over Extra keys.
	Extra map[string]any
}

// Float returns a pointer to f, for setting Options.Temperature inline.
func Float(f float64) *float64 { return &f }
