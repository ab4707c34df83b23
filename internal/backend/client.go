// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the assistant service client.
type ClientError struct {
	Type    ErrorType
	Message string
	Status  int // HTTP status for ErrTypeStatus
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches any ClientError of the same type, so errors.Is(err, ErrTimeout)
// holds regardless of the underlying cause.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeCanceled
	ErrTypeStatus
	ErrTypeInvalidResponse
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeCanceled:
		return "canceled"
	case ErrTypeStatus:
		return "status"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking.
var (
	ErrUnreachable     = &ClientError{Type: ErrTypeConnection, Message: "could not reach assistant service"}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrCanceled        = &ClientError{Type: ErrTypeCanceled, Message: "request canceled"}
	ErrStatus          = &ClientError{Type: ErrTypeStatus, Message: "unexpected status"}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// DefaultBaseURL is used when neither config nor environment names a service.
const DefaultBaseURL = "http://localhost:8000"

// DefaultTimeout bounds every request.
const DefaultTimeout = 60 * time.Second

// ClientConfig holds configuration options for the assistant client.
type ClientConfig struct {
	// BaseURL is the service root (default: http://localhost:8000)
	BaseURL string

	// Timeout for each request (default: 60s). The model call behind /chat
	// can take a while, so this is generous.
	Timeout time.Duration

	// UserAgent is sent on every request when set.
	UserAgent string

	// Logger receives one debug entry per request. Nil disables logging.
	Logger *zap.Logger

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the assistant service. It is safe for concurrent use.
//
// Example:
//
//	client := backend.NewClient(nil)
//	modes, err := client.Modes(ctx)
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client, filling zero config values with defaults.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config:     &cfg,
		httpClient: httpClient,
		logger:     logger.Named("backend"),
	}
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// Chat sends the full transcript and returns the assistant's reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Messages == nil {
		req.Messages = []ChatMessage{}
	}
	var wire chatWire
	if err := c.do(ctx, "chat", http.MethodPost, "/chat", nil, req, &wire); err != nil {
		return nil, err
	}
	if wire.Reply == nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "chat response has no reply"}
	}
	return &ChatResponse{Reply: *wire.Reply, Mode: wire.Mode, Model: wire.Model, Raw: wire.Raw}, nil
}

// ExplainCode asks for a structured, line-by-line analysis of code.
func (c *Client) ExplainCode(ctx context.Context, code, language string) (*ExplainResponse, error) {
	q := url.Values{}
	q.Set("code", code)
	if language != "" {
		q.Set("language", language)
	}
	var result ExplainResponse
	if err := c.do(ctx, "explain code", http.MethodPost, "/explain_code_json", q, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// CONFIGURATION OPERATIONS
// =============================================================================

// Modes lists the modes the service accepts.
func (c *Client) Modes(ctx context.Context) ([]string, error) {
	var result ModesResponse
	if err := c.do(ctx, "fetch modes", http.MethodGet, "/modes", nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Modes, nil
}

// SetMode changes the service's global default mode.
func (c *Client) SetMode(ctx context.Context, mode string) (*SetModeResponse, error) {
	q := url.Values{}
	q.Set("mode", mode)
	var result SetModeResponse
	if err := c.do(ctx, "set mode", http.MethodPost, "/set_mode", q, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetModel changes the service's model and/or temperature. Empty model and
// nil temperature leave the respective setting unchanged.
func (c *Client) SetModel(ctx context.Context, model string, temperature *float64) (*SetModelResponse, error) {
	q := url.Values{}
	if model != "" {
		q.Set("model", model)
	}
	if temperature != nil {
		q.Set("temperature", strconv.FormatFloat(*temperature, 'f', -1, 64))
	}
	var result SetModelResponse
	if err := c.do(ctx, "set model", http.MethodPost, "/set_model", q, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Conversation fetches the service-side memory for a session ID.
func (c *Client) Conversation(ctx context.Context, id string) (*ConversationResponse, error) {
	var result ConversationResponse
	path := "/conversation/" + url.PathEscape(id)
	if err := c.do(ctx, "fetch conversation", http.MethodGet, path, nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteConversation clears the service-side memory for a session ID.
func (c *Client) DeleteConversation(ctx context.Context, id string) (*MessageResponse, error) {
	var result MessageResponse
	path := "/conversation/" + url.PathEscape(id)
	if err := c.do(ctx, "delete conversation", http.MethodDelete, path, nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping calls GET /home to check the service is up.
func (c *Client) Ping(ctx context.Context) (*HomeResponse, error) {
	var result HomeResponse
	if err := c.do(ctx, "ping", http.MethodGet, "/home", nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do sends one request and decodes a JSON response into out. op names the
// operation in error messages.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	endpoint := c.config.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		cerr := classifyTransportError(ctx, err)
		c.logger.Debug("request failed",
			zap.String("op", op),
			zap.String("type", cerr.Type.String()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return cerr
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isTimeout(ctx, err) {
			return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
		}
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

func classifyTransportError(ctx context.Context, err error) *ClientError {
	switch {
	case isTimeout(ctx, err):
		return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return &ClientError{Type: ErrTypeCanceled, Message: ErrCanceled.Message, Cause: err}
	default:
		return &ClientError{Type: ErrTypeConnection, Message: ErrUnreachable.Message, Cause: err}
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// statusError builds an ErrTypeStatus error, preferring the service's own
// detail text over the bare status line.
func statusError(op string, resp *http.Response) *ClientError {
	cerr := &ClientError{
		Type:    ErrTypeStatus,
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("%s failed: %s", op, resp.Status),
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return cerr
	}
	var body errorResponse
	if err := json.Unmarshal(data, &body); err == nil {
		if detail := body.text(); detail != "" {
			cerr.Message = detail
		}
	}
	return cerr
}
