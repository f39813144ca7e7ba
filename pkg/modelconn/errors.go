package modelconn

import (
	"errors"
	"fmt"
	"net"
)

// ConfigError reports missing or invalid configuration. It is always
// returned before any network I/O happens.
type ConfigError struct {
	Field  string // Configuration field or environment variable name.
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("modelconn: config: %s: %s", e.Field, e.Reason)
}

// TransportError wraps a network-layer failure: connection refused, DNS
// resolution, or timeout. The underlying error is available via Unwrap.
type TransportError struct {
	Op  string // Operation that failed, e.g. "generate".
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("modelconn: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a timeout, including expiry of
// the configured request timeout.
func (e *TransportError) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// APIError reports an error response from the remote API: either a non-2xx
// HTTP status, or an error object embedded in an otherwise successful
// response body.
type APIError struct {
	StatusCode int    // HTTP status, 200 for embedded error objects.
	Code       string // Remote error code, when the body carries one.
	Message    string // Remote error message, when the body carries one.
	Body       string // Raw response body for non-2xx statuses.
}

func (e *APIError) Error() string {
	if e.Message != "" {
		if e.Code != "" {
			return fmt.Sprintf("modelconn: api error %d: %s: %s", e.StatusCode, e.Code, e.Message)
		}
		return fmt.Sprintf("modelconn: api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("modelconn: api error %d: %s", e.StatusCode, e.Body)
}
