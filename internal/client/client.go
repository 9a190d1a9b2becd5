// Package client is a typed HTTP client for the MentorHood REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/mentorhood/mentorhood/pkg/logger"
)

// APIError is returned for any non-2xx reply.
type APIError struct {
	Status int
	Code   string
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api error: %d %s", e.Status, e.Detail)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Client struct {
	baseURL string
	http    *http.Client
	token   func() string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource sets where bearer tokens come from; an empty token sends
// no Authorization header.
func WithTokenSource(fn func() string) Option {
	return func(c *Client) { c.token = fn }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		token:   func() string { return "" },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type call struct {
	method  string
	path    string
	query   interface{}
	body    interface{}
	headers map[string]string
}

func (c *Client) do(ctx context.Context, in call, out interface{}) error {
	url := c.baseURL + in.path
	if in.query != nil {
		v, err := query.Values(in.query)
		if err != nil {
			return fmt.Errorf("encode query: %w", err)
		}
		if enc := v.Encode(); enc != "" {
			url += "?" + enc
		}
	}

	var bodyReader io.Reader
	if in.body != nil {
		payload, err := json.Marshal(in.body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, in.method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if requestID, ok := ctx.Value(logger.RequestIDKey).(string); ok {
		req.Header.Set("X-Request-ID", requestID)
	}
	for k, v := range in.headers {
		req.Header.Set(k, v)
	}

	logger.DebugContext(ctx, "API request", "method", in.method, "url", url)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", in.method, in.path, err)
	}
	return nil
}

// decodeError understands both {error, code, details} and {detail} bodies.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Error   string `json:"error"`
		Code    string `json:"code"`
		Details string `json:"details"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Code = body.Code
		switch {
		case body.Detail != "":
			apiErr.Detail = body.Detail
		case body.Details != "":
			apiErr.Detail = body.Error + ": " + body.Details
		default:
			apiErr.Detail = body.Error
		}
	} else {
		apiErr.Detail = strings.TrimSpace(string(raw))
	}
	return apiErr
}
