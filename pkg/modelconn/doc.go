// Package modelconn normalizes calls to ML-model HTTP APIs behind a single
// configuration-driven connector.
//
// It contains:
//   - [Config] and [FromEnv] — validated, immutable connector configuration
//   - [Connector] — GenerateText, ChatCompletion, Models, and TestConnection against an OpenAI-like wire contract
//   - [Preset] — named configuration bundles for known API vendors
//   - [LoadConfig] — YAML config files holding named connector entries, with ${VAR} expansion
//
// Failures are reported as three distinguishable kinds: [ConfigError] before
// any network I/O, [TransportError] for network-layer failures (including
// timeouts), and [APIError] for error responses from the remote API.
package modelconn
