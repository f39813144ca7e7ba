package moodle

import (
	"errors"
	"fmt"
	"net"
)

// ConfigError reports missing or invalid client setup. It is always
// returned before any network I/O happens.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("moodle: config: %s: %s", e.Field, e.Reason)
}

// TransportError wraps a network-layer failure: connection refused, DNS
// resolution, or timeout. The underlying error is available via Unwrap.
type TransportError struct {
	Function string // Web service function being called.
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("moodle: %s: %v", e.Function, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a timeout, including expiry of
// the configured request timeout.
func (e *TransportError) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// RemoteError reports an error returned by Moodle: either an exception
// payload in the response body, or a non-2xx HTTP status.
type RemoteError struct {
	Exception  string // Moodle exception class, e.g. "moodle_exception".
	Code       string // Moodle error code, e.g. "invalidtoken".
	Message    string
	DebugInfo  string // Only present when the site has debugging enabled.
	StatusCode int    // HTTP status of the response.
}

func (e *RemoteError) Error() string {
	code := e.Code
	if code == "" {
		code = fmt.Sprintf("http_%d", e.StatusCode)
	}
	msg := fmt.Sprintf("moodle: %s: %s", code, e.Message)
	if e.DebugInfo != "" {
		msg += " | debug: " + e.DebugInfo
	}
	return msg
}
