// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package pipeline is the shared HTTP client every call to the service goes
// through. Each request passes an ordered list of pre-send hooks (credential
// injection, request ids) and every outcome, success or failure, passes an
// ordered list of post-receive hooks (logging, credential rejection handling)
// before the caller sees it.
//
// The pipeline never retries. A failed call is returned exactly once, after
// all post-receive hooks have completed.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "insightst/cli/internal/errors"
)

// maxBodyBytes caps how much of a response body is buffered.
const maxBodyBytes = 1 << 20

// PreSend mutates an outgoing request. Returning an error aborts the call
// before anything is sent.
type PreSend func(req *http.Request) error

// PostReceive observes a completed exchange. Hooks run for successes and
// failures alike and must not retain the exchange.
type PostReceive func(ex *Exchange)

// Exchange is one request and its outcome.
type Exchange struct {
	Request *http.Request
	// Response is nil when the call failed before a status was received.
	Response *Response
	// Err is nil only for 2xx responses.
	Err error
}

// StatusCode returns the response status, or 0 when none was received.
func (ex *Exchange) StatusCode() int {
	if ex.Response == nil {
		return 0
	}
	return ex.Response.StatusCode
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// StatusError is returned for any non-2xx response. The body is kept so
// callers can decode the service's failure detail.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Client sends requests through the hook chain.
type Client struct {
	baseURL string
	http    *http.Client
	timeout *time.Duration
	log     zerolog.Logger

	mu   sync.RWMutex
	pre  []PreSend
	post []PostReceive
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sends through a copy of hc. A nil hc keeps the default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			cp := *hc
			c.http = &cp
		}
	}
}

// WithTimeout bounds every call, whatever the option order. Zero leaves the
// client without a timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = &d }
}

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a Client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout != nil {
		c.http.Timeout = *c.timeout
	}
	return c
}

// BaseURL returns the root all request paths are resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// OnPreSend appends pre-send hooks. Hooks run in registration order.
func (c *Client) OnPreSend(hooks ...PreSend) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pre = append(c.pre, hooks...)
}

// OnPostReceive appends post-receive hooks. Hooks run in registration order.
func (c *Client) OnPostReceive(hooks ...PostReceive) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.post = append(c.post, hooks...)
}

func (c *Client) hooks() ([]PreSend, []PostReceive) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pre, c.post
}

// URL resolves a service path against the base URL.
func (c *Client) URL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// NewRequest builds a request for path with an optional JSON body.
func (c *Client) NewRequest(ctx context.Context, method, path string, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Send runs req through the hook chain. The returned error is a *StatusError
// for non-2xx responses and a transport-kind error when no usable response
// was received.
func (c *Client) Send(req *http.Request) (*Response, error) {
	pre, post := c.hooks()
	for _, h := range pre {
		if err := h(req); err != nil {
			return nil, err
		}
	}

	ex := &Exchange{Request: req}
	ex.Response, ex.Err = c.roundTrip(req)

	for _, h := range post {
		h(ex)
	}
	return ex.Response, ex.Err
}

func (c *Client) roundTrip(req *http.Request) (*Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Transport, "could not reach the service", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Transport, "could not read the response", err)
	}

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &StatusError{
			StatusCode: resp.StatusCode,
			Method:     req.Method,
			Path:       req.URL.Path,
			Body:       body,
		}
	}
	return out, nil
}

// Do sends a JSON request and decodes a JSON response into out (when non-nil).
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	req, err := c.NewRequest(ctx, method, path, in)
	if err != nil {
		return err
	}
	resp, err := c.Send(req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return apperrors.Wrap(apperrors.Transport, "malformed response", err)
	}
	return nil
}
