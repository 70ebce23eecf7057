// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package rest implements source.Source against a hosted PostgREST-style
// backend. Requests carry the project key both as an apikey header and as
// a bearer token, and are throttled client-side.
package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/ratelimit"
	"resty.dev/v3"

	"libris/internal/source"
)

// Config describes how to reach the backend.
type Config struct {
	BaseURL string        // project URL, without the /rest/v1 suffix
	Key     string        // anon or service key
	RPS     int           // requests per second; 0 disables throttling
	Timeout time.Duration // per request; 0 means 15s
	Retries int
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("backend %d (%s): %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("backend %d: %s", e.Status, msg)
}

// foreignKeyViolation is the Postgres error code surfaced when a delete
// would orphan rows.
const foreignKeyViolation = "23503"

// Client talks to the backend.
type Client struct {
	http *resty.Client
	rl   ratelimit.Limiter
}

var _ source.Source = (*Client)(nil)

// New returns a client for cfg.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("rest: base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	hc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/rest/v1").
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "libris")
	if cfg.Key != "" {
		hc.SetHeader("apikey", cfg.Key).
			SetAuthToken(cfg.Key)
	}

	rl := ratelimit.NewUnlimited()
	if cfg.RPS > 0 {
		rl = ratelimit.New(cfg.RPS)
	}

	return &Client{http: hc, rl: rl}, nil
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	return c.http.Close()
}

// throttle waits for a rate-limit slot. A request whose context is already
// done neither takes a slot nor goes out after waiting for one.
func (c *Client) throttle(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.rl.Take()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// request returns a request bound to ctx. Callers throttle first.
func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetError(&APIError{})
}

// check turns a failed transport call or a non-2xx response into an error.
func check(resp *resty.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !resp.IsError() {
		return nil
	}

	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr == nil {
		apiErr = &APIError{Message: strings.TrimSpace(resp.String())}
	}
	apiErr.Status = resp.StatusCode()
	if apiErr.Code == foreignKeyViolation {
		return fmt.Errorf("%s: %w: %w", op, source.ErrInUse, apiErr)
	}
	return fmt.Errorf("%s: %w", op, apiErr)
}

// eq renders a PostgREST equality filter.
func eq(v int64) string {
	return fmt.Sprintf("eq.%d", v)
}
