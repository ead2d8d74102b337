// Package openrouter implements a chat-completion client for OpenRouter and
// other OpenAI-compatible endpoints.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/longkey1/llmchat/internal/llmchat"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "meta-llama/llama-3.3-70b-instruct:free"
	DefaultTimeout = 30 * time.Second

	maxResponseSize = 10 << 20
)

// ErrMalformedResponse is returned when a successful response lacks the reply text.
var ErrMalformedResponse = llmchat.ErrMalformedResponse

// APIError is a non-2xx answer from the endpoint.
type APIError struct {
	StatusCode int
	Status     string
	Code       string
	Message    string // error.message from the body, if present
	Body       string // raw body
}

var _ llmchat.StatusError = (*APIError)(nil)

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s", e.StatusCode, e.DisplayMessage())
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// DisplayMessage prefers the structured message, then the raw body, then the status line.
func (e *APIError) DisplayMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		return body
	}
	if e.Status != "" {
		return e.Status
	}
	return http.StatusText(e.StatusCode)
}

// ChatRequest represents the request body for the chat completions endpoint
type ChatRequest struct {
	Model    string            `json:"model"`
	Messages []llmchat.Message `json:"messages"`
}

// ChatResponse represents the response from the chat completions endpoint
type ChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *errorBody `json:"error,omitempty"`
}

// errorResponse is the body of a failed request
type errorResponse struct {
	Error *errorBody `json:"error"`
}

type errorBody struct {
	Code    any    `json:"code"`
	Message string `json:"message"`
}

// modelsResponse represents the response from the models endpoint
type modelsResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		ContextLength int    `json:"context_length"`
	} `json:"data"`
}

// Config defines the configuration interface for the client
type Config interface {
	GetModel() string
	GetBaseURL() (string, error)
	GetToken() (string, error)
	GetTimeout() time.Duration
}

// Client implements llmchat.Completer over HTTP
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	siteURL    string
	siteName   string
}

var _ llmchat.Completer = (*Client)(nil)

// NewClient creates a new client instance
func NewClient(config Config) *Client {
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.GetTimeout()},
		logger:     slog.Default(),
	}
}

// WithHTTPClient replaces the HTTP client. Its Timeout is the request deadline.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithLogger sets the logger used for request diagnostics.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithAttribution sets the HTTP-Referer and X-Title headers OpenRouter uses
// to attribute traffic.
func (c *Client) WithAttribution(siteURL, siteName string) *Client {
	c.siteURL = siteURL
	c.siteName = siteName
	return c
}

// Complete sends messages to the chat completions endpoint and returns the
// first choice's content. It never retries.
func (c *Client) Complete(ctx context.Context, messages []llmchat.Message) (string, error) {
	reqBody := ChatRequest{
		Model:    c.config.GetModel(),
		Messages: messages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	body, resp, err := c.do(ctx, http.MethodPost, "/chat/completions", jsonData)
	if err != nil {
		return "", err
	}

	var result ChatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformedResponse, strings.TrimSpace(string(body)))
	}

	// OpenRouter reports some upstream failures inside a 200 response
	if len(result.Choices) == 0 && result.Error != nil {
		return "", newAPIError(resp, body, result.Error)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("%w: %s", ErrMalformedResponse, strings.TrimSpace(string(body)))
	}

	return *result.Choices[0].Message.Content, nil
}

// ListModels returns the models offered by the endpoint, sorted by ID
func (c *Client) ListModels(ctx context.Context) ([]llmchat.ModelInfo, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, err
	}

	var result modelsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	current := c.config.GetModel()
	models := make([]llmchat.ModelInfo, 0, len(result.Data))
	for _, m := range result.Data {
		models = append(models, llmchat.ModelInfo{
			ID:          m.ID,
			Name:        m.Name,
			ContextSize: m.ContextLength,
			IsDefault:   m.ID == current,
		})
	}

	sort.Slice(models, func(i, j int) bool {
		return models[i].ID < models[j].ID
	})
	return models, nil
}

// do performs one request and returns the body of a 2xx response
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, *http.Response, error) {
	token, err := c.config.GetToken()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get token: %w", err)
	}

	baseURL, err := c.config.GetBaseURL()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get base URL: %w", err)
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.siteURL != "" {
		req.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.siteName != "" {
		req.Header.Set("X-Title", c.siteName)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "request failed", "method", method, "path", path, "duration", time.Since(start), "error", err)
		return nil, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp, fmt.Errorf("error reading response: %w", err)
	}

	c.logger.DebugContext(ctx, "request finished", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		_ = json.Unmarshal(body, &errResp)
		return nil, resp, newAPIError(resp, body, errResp.Error)
	}

	return body, resp, nil
}

func newAPIError(resp *http.Response, body []byte, e *errorBody) *APIError {
	apiErr := &APIError{Body: string(body)}
	if resp != nil {
		apiErr.StatusCode = resp.StatusCode
		apiErr.Status = resp.Status
	}
	if e != nil {
		apiErr.Message = e.Message
		if e.Code != nil {
			apiErr.Code = fmt.Sprint(e.Code)
		}
		if code, ok := e.Code.(float64); ok && code >= 400 && apiErr.StatusCode < 400 {
			apiErr.StatusCode = int(code)
		}
	}
	return apiErr
}
