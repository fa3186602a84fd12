package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TokenSource supplies the current bearer credential. An empty string
// sends the request unauthenticated.
type TokenSource interface {
	AccessToken() string
}

// Config holds common client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a thin JSON client for the dashboard API. Every request
// carries a bearer token from the token source (when one is held) and a
// request id for log correlation.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
}

// New creates a client backed by a plain HTTP client.
func New(cfg Config, tokens TokenSource) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return NewWithHTTPClient(cfg, tokens, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient creates a client with a caller-supplied HTTP client,
// e.g. the caching variant for read-mostly listing endpoints.
func NewWithHTTPClient(cfg Config, tokens TokenSource, httpClient *http.Client) *Client {
	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		http:   httpClient,
		tokens: tokens,
	}
}

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body. out may be nil when the
// response body does not matter.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp)
	}

	// 204 is a successful empty result.
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// StatusError is a non-2xx response. Detail carries the server's message;
// Fields carries per-field validation messages when the body has them.
type StatusError struct {
	Status int
	Detail string
	Fields map[string][]string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Detail)
}

// FirstFieldError returns the first field-level validation message, or ""
// when the response carried none. Fields are visited in name order so the
// result is deterministic.
func (e *StatusError) FirstFieldError() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if msgs := e.Fields[name]; len(msgs) > 0 {
			return fmt.Sprintf("%s: %s", name, msgs[0])
		}
	}
	return ""
}

// IsUnauthorized reports whether err is an authorization failure that a
// token renewal might fix.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) &&
		(se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden)
}

// newStatusError shapes a non-2xx response. The body is parsed as JSON
// first; when that fails, the raw text becomes the error detail.
func newStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	se := &StatusError{
		Status: resp.StatusCode,
		Detail: strings.TrimSpace(string(body)),
	}
	if se.Detail == "" {
		se.Detail = resp.Status
	}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return se
	}

	if detail, ok := parsed["detail"].(string); ok {
		se.Detail = detail
	}

	for field, value := range parsed {
		if field == "detail" {
			continue
		}
		var msgs []string
		switch v := value.(type) {
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					msgs = append(msgs, s)
				}
			}
		case string:
			msgs = []string{v}
		}
		if len(msgs) > 0 {
			if se.Fields == nil {
				se.Fields = make(map[string][]string)
			}
			se.Fields[field] = msgs
		}
	}

	return se
}
