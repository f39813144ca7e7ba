package modelconn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Generator is the interface implemented by Connector: single-shot text
// generation against an OpenAI-like API.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, opts *Options) (string, error)
	ChatCompletion(ctx context.Context, messages []Message, opts *Options) (string, error)
}

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelInfo describes one entry of the remote model catalog.
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

var _ Generator = (*Connector)(nil)

// Connector issues one HTTP request per operation against a model API.
// Construct it with New; the configuration is read-only afterwards, so a
// single Connector is safe for concurrent use.
type Connector struct {
	cfg    Config
	client *http.Client
}

// New creates a Connector. Zero Config fields get defaults applied, then
// required fields are checked; a missing BaseURL or Auth.Key is a
// ConfigError before any network I/O.
func New(cfg Config) (*Connector, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Connector{cfg: cfg, client: client}, nil
}

// Config returns a copy of the connector's configuration.
func (c *Connector) Config() Config { return c.cfg }

// TestConnection issues a minimal request against the health endpoint and
// reports whether it succeeded. Every failure, transport or HTTP, comes
// back as false; it never returns an error.
func (c *Connector) TestConnection(ctx context.Context) bool {
	req, err := c.newRequest(ctx, http.MethodGet, c.cfg.Endpoints.Health, nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// GenerateText sends prompt to the generation endpoint and returns the
// text of the first choice.
func (c *Connector) GenerateText(ctx context.Context, prompt string, opts *Options) (string, error) {
	body := c.requestBody(opts)
	body["prompt"] = prompt

	var resp completionResponse
	if err := c.postJSON(ctx, "generate", c.cfg.Endpoints.Generate, body, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", embeddedError(resp.Error)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("modelconn: generate: empty choices in response")
	}

	return resp.Choices[0].Text, nil
}

// ChatCompletion sends the conversation to the chat endpoint and returns
// the content of the first choice's message.
func (c *Connector) ChatCompletion(ctx context.Context, messages []Message, opts *Options) (string, error) {
	body := c.requestBody(opts)
	body["messages"] = messages

	var resp completionResponse
	if err := c.postJSON(ctx, "chat", c.cfg.Endpoints.Chat, body, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", embeddedError(resp.Error)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("modelconn: chat: empty choices in response")
	}
	if resp.Choices[0].Message == nil {
		return "", fmt.Errorf("modelconn: chat: choice has no message")
	}

	return resp.Choices[0].Message.Content, nil
}

// Models returns the remote model catalog.
func (c *Connector) Models(ctx context.Context) ([]ModelInfo, error) {
	var resp modelsResponse
	if err := c.getJSON(ctx, "models", c.cfg.Endpoints.Models, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, embeddedError(resp.Error)
	}

	return resp.Data, nil
}

// requestBody builds the JSON body from configuration defaults overridden
// by per-call options. Named fields always win over Options.Extra.
func (c *Connector) requestBody(opts *Options) map[string]any {
	model := c.cfg.Model
	maxTokens := c.cfg.MaxTokens
	temperature := c.cfg.Temperature

	body := map[string]any{}
	if opts != nil {
		for k, v := range opts.Extra {
			body[k] = v
		}
		if opts.Model != "" {
			model = opts.Model
		}
		if opts.MaxTokens > 0 {
			maxTokens = opts.MaxTokens
		}
		if opts.Temperature != nil {
			temperature = *opts.Temperature
		}
	}

	body["model"] = model
	body["max_tokens"] = maxTokens
	body["temperature"] = temperature

	return body
}

// newRequest builds an *http.Request with the base URL, auth, and custom
// headers already applied.
func (c *Connector) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := c.cfg.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	// Apply auth.
	if c.cfg.Auth.Key != "" {
		header := c.cfg.Auth.Header
		if header == "" {
			header = "Authorization"
		}

		value := c.cfg.Auth.Key
		if header == "Authorization" {
			scheme := c.cfg.Auth.Scheme
			if scheme == "" {
				scheme = "Bearer"
			}

			value = scheme + " " + value
		} else if c.cfg.Auth.Scheme != "" {
			value = c.cfg.Auth.Scheme + " " + value
		}

		req.Header.Set(header, value)
	}

	// Apply custom headers.
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// postJSON marshals payload, POSTs it to path, checks the status, and
// unmarshals the response body into dest.
func (c *Connector) postJSON(ctx context.Context, op, path string, payload any, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("modelconn: %s: marshal payload: %w", op, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("modelconn: %s: build request: %w", op, err)
	}

	req.Header.Set("Content-Type", "application/json")

	return c.doJSON(op, req, dest)
}

// getJSON issues a GET to path and unmarshals the response body into dest.
func (c *Connector) getJSON(ctx context.Context, op, path string, dest any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return fmt.Errorf("modelconn: %s: build request: %w", op, err)
	}

	return c.doJSON(op, req, dest)
}

// doJSON sends the request, converts failures into the package's error
// kinds, and decodes the body into dest.
func (c *Connector) doJSON(op string, req *http.Request, dest any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return statusError(resp.StatusCode, respBody)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("modelconn: %s: decode response: %w", op, err)
	}

	return nil
}

// --- response types ---

type apiErrorPayload struct {
	Code    string `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type completionResponse struct {
	Choices []choice         `json:"choices"`
	Error   *apiErrorPayload `json:"error"`
}

type choice struct {
	Text    string   `json:"text"`
	Message *Message `json:"message"`
}

type modelsResponse struct {
	Data  []ModelInfo      `json:"data"`
	Error *apiErrorPayload `json:"error"`
}

// statusError builds an APIError for a non-2xx response, pulling the
// remote code and message out of the body when it carries an error object.
func statusError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: string(body)}

	var envelope struct {
		Error *apiErrorPayload `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		apiErr.Code = envelope.Error.Code
		if apiErr.Code == "" {
			apiErr.Code = envelope.Error.Type
		}
		apiErr.Message = envelope.Error.Message
	}

	return apiErr
}

// embeddedError builds an APIError for an error object carried in a 2xx
// response body.
func embeddedError(p *apiErrorPayload) *APIError {
	code := p.Code
	if code == "" {
		code = p.Type
	}
	return &APIError{StatusCode: http.StatusOK, Code: code, Message: p.Message}
}
