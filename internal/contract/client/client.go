// Package client is the HTTP client the contract scenarios use to talk to the service under test.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultTimeout  = 10 * time.Second
	jsonContentType = "application/json"
	formContentType = "application/x-www-form-urlencoded"
)

// Logger receives one line per request. framework.Logger satisfies it.
type Logger interface {
	Printf(message string, args ...interface{})
}

// Client issues JSON and form requests against a base URL
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets where request traces go
func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client rooted at baseURL, e.g. "http://localhost:8000/api/v1"
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Response is a fully read HTTP response
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// JSON parses the body for path lookups, e.g. resp.JSON().Get("0.id")
func (r *Response) JSON() gjson.Result {
	return gjson.ParseBytes(r.Body)
}

// Decode unmarshals the body into v
func (r *Response) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding %d response %q: %w", r.Status, truncate(r.Body), err)
	}
	return nil
}

// Get sends a GET with the given query parameters
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// Post sends body as JSON
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

// Put sends body as JSON
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, nil, body)
}

// Patch sends body as JSON
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, nil, body)
}

// PostForm sends form as an application/x-www-form-urlencoded body
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (*Response, error) {
	return c.send(ctx, http.MethodPost, c.resolve(path, nil), formContentType, []byte(form.Encode()))
}

// PatchForm sends form as an application/x-www-form-urlencoded body
func (c *Client) PatchForm(ctx context.Context, path string, form url.Values) (*Response, error) {
	return c.send(ctx, http.MethodPatch, c.resolve(path, nil), formContentType, []byte(form.Encode()))
}

// Delete sends a DELETE
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do sends a request. A nil body sends no body; anything else is marshalled as JSON.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body interface{}) (*Response, error) {
	target := c.resolve(path, query)
	if body == nil {
		return c.send(ctx, method, target, "", nil)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding %s %s body: %w", method, target, err)
	}
	return c.send(ctx, method, target, jsonContentType, payload)
}

// send issues the request; an empty contentType sends no body
func (c *Client) send(ctx context.Context, method, target, contentType string, payload []byte) (*Response, error) {
	var reader io.Reader
	if contentType != "" {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, target, err)
	}
	req.Header.Set("Accept", jsonContentType)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s %s response: %w", method, target, err)
	}

	if c.logger != nil {
		c.logger.Printf("%s %s -> %d (%s) %s", method, target, resp.StatusCode, time.Since(started).Round(time.Millisecond), truncate(data))
	}

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = u.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func truncate(body []byte) string {
	const limit = 300
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
