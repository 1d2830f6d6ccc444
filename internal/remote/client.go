package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrEmptyPayload is returned when the endpoint answers without any text field.
var ErrEmptyPayload = errors.New("remote: response has no message, content or response field")

// Request is the body sent to the chatbot endpoint.
type Request struct {
	Message string `json:"message"`
}

// Response is the body accepted from the chatbot endpoint. The first
// non-empty of Message, Content and Response is used.
type Response struct {
	Message  string `json:"message,omitempty"`
	Content  string `json:"content,omitempty"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Text returns the reply carried by the payload.
func (r Response) Text() string {
	switch {
	case r.Message != "":
		return r.Message
	case r.Content != "":
		return r.Content
	default:
		return r.Response
	}
}

// Client calls a remote chatbot endpoint over HTTP.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Respond(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(Request{Message: message})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call chatbot endpoint: %w", err)
	}
	defer func(b io.ReadCloser) {
		_ = b.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chatbot endpoint returned %s", resp.Status)
	}

	var out Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("chatbot endpoint error: %s", out.Error)
	}
	text := out.Text()
	if text == "" {
		return "", ErrEmptyPayload
	}
	return text, nil
}
