package moodle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	serverPath = "/webservice/rest/server.php"
	restFormat = "json"

	// DefaultTimeout bounds each web service call when no override is given.
	DefaultTimeout = 15 * time.Second
)

// Option configures a Client at construction time.
type Option func(*Client)

// WithTimeout sets the per-request timeout. It has no effect when
// WithHTTPClient is also given.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient sets the HTTP client used for requests. The caller is
// responsible for its timeout settings.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// Client calls Moodle web service functions over the REST protocol with
// token authentication. Each call is a single stateless request/response
// round trip, so a Client is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	client  *http.Client
}

// New creates a Client for the Moodle site at baseURL. Trailing slashes
// are trimmed; an empty baseURL or token is a ConfigError.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, &ConfigError{Field: "baseURL", Reason: "must not be empty"}
	}
	if token == "" {
		return nil, &ConfigError{Field: "token", Reason: "must not be empty"}
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout <= 0 {
		return nil, &ConfigError{Field: "timeout", Reason: "must be positive"}
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}

	return c, nil
}

// FromEnv creates a Client from environment variables, loading a local
// .env file first if one exists:
//
//	MOODLE_BASE_URL — site base URL (required)
//	MOODLE_TOKEN    — web service token (required)
//	MOODLE_TIMEOUT  — request timeout as a duration string, e.g. "15s"
//
// Options given here are applied after the environment.
func FromEnv(opts ...Option) (*Client, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("moodle: load .env: %w", err)
	}

	var envOpts []Option
	if v := os.Getenv("MOODLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, &ConfigError{Field: "MOODLE_TIMEOUT", Reason: fmt.Sprintf("invalid duration %q", v)}
		}
		envOpts = append(envOpts, WithTimeout(d))
	}

	return New(os.Getenv("MOODLE_BASE_URL"), os.Getenv("MOODLE_TOKEN"), append(envOpts, opts...)...)
}

// Call invokes a Moodle web service function and returns the parsed JSON
// result unchanged (objects decode to map[string]any, arrays to []any).
// params may be nil or any nesting of string-keyed maps, slices, and
// scalars; it is flattened into Moodle's bracket notation.
func (c *Client) Call(ctx context.Context, function string, params any) (any, error) {
	if function == "" {
		return nil, &ConfigError{Field: "function", Reason: "must not be empty"}
	}

	form := url.Values{}
	form.Set("wstoken", c.token)
	form.Set("wsfunction", function)
	form.Set("moodlewsrestformat", restFormat)

	if params != nil {
		if err := encodeParams(params, form); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+serverPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("moodle: %s: build request: %w", function, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Function: function, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Function: function, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, remoteError(resp.StatusCode, body)
	}

	// Moodle always returns JSON when moodlewsrestformat=json is set.
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("moodle: %s: decode response: %w", function, err)
	}

	// Errors come back as a JSON object with an "exception" key.
	if obj, ok := data.(map[string]any); ok {
		if exc, _ := obj["exception"].(string); exc != "" {
			return nil, exceptionError(resp.StatusCode, exc, obj)
		}
	}

	return data, nil
}

// GetSiteInfo calls core_webservice_get_site_info and returns the site
// info object.
func (c *Client) GetSiteInfo(ctx context.Context) (map[string]any, error) {
	result, err := c.Call(ctx, "core_webservice_get_site_info", nil)
	if err != nil {
		return nil, err
	}

	info, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("moodle: get_site_info: unexpected response type %T", result)
	}
	return info, nil
}

// GetUsersByField calls core_user_get_users_by_field and returns the
// matching users. field is one of "id", "idnumber", "username", or "email".
func (c *Client) GetUsersByField(ctx context.Context, field string, values []string) ([]any, error) {
	result, err := c.Call(ctx, "core_user_get_users_by_field", map[string]any{
		"field":  field,
		"values": values,
	})
	if err != nil {
		return nil, err
	}

	users, ok := result.([]any)
	if !ok {
		return nil, fmt.Errorf("moodle: get_users_by_field: unexpected response type %T", result)
	}
	return users, nil
}

// remoteError builds a RemoteError for a non-2xx response. Moodle may
// still include an exception payload in the body; use it when present.
func remoteError(status int, body []byte) *RemoteError {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err == nil {
		if exc, _ := obj["exception"].(string); exc != "" {
			return exceptionError(status, exc, obj)
		}
	}
	return &RemoteError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}

// exceptionError builds a RemoteError from a Moodle exception payload.
func exceptionError(status int, exception string, obj map[string]any) *RemoteError {
	e := &RemoteError{
		Exception:  exception,
		Code:       "unknown_error",
		Message:    "An error occurred",
		StatusCode: status,
	}
	if v, _ := obj["errorcode"].(string); v != "" {
		e.Code = v
	}
	if v, _ := obj["message"].(string); v != "" {
		e.Message = v
	}
	if v, _ := obj["debuginfo"].(string); v != "" {
		e.DebugInfo = v
	}
	return e
}
