// Package textgen is a small client for OpenAI-compatible chat completion endpoints (Groq by default).
package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// APIKeyEnv is the environment variable holding the bearer token.
const APIKeyEnv = "GROQ_API_KEY"

var (
	// ErrMissingAPIKey is a configuration error: no credential is set in the environment.
	ErrMissingAPIKey = fmt.Errorf("missing %s in environment variables", APIKeyEnv)

	// ErrEmptyCompletion means the response had no choices[0].message.content.
	ErrEmptyCompletion = errors.New("completion response has no content")
)

// StatusError is returned for non-2xx answers.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat completion error %d: %s", e.StatusCode, e.Body)
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request body sent to the completion endpoint. Model is filled in
// by the client when empty.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client posts chat completion requests
type Client struct {
	endpoint   string
	model      string
	httpClient *http.Client
	lookupKey  func() string
}

// NewClient creates a client for endpoint using model for requests that do not name one.
// The API key is read from the environment on every call.
func NewClient(endpoint, model string) *Client {
	return &Client{
		endpoint:   endpoint,
		model:      model,
		httpClient: &http.Client{},
		lookupKey:  func() string { return os.Getenv(APIKeyEnv) },
	}
}

// WithHTTPClient replaces the underlying http client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.httpClient = httpClient
	return c
}

// WithKeyLookup replaces the credential lookup (used by tests).
func (c *Client) WithKeyLookup(lookup func() string) *Client {
	c.lookupKey = lookup
	return c
}

// Complete sends req and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, req ChatRequest) (string, error) {
	apiKey := strings.TrimSpace(c.lookupKey())
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if req.Model == "" {
		req.Model = c.model
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return parsed.Choices[0].Message.Content, nil
}
