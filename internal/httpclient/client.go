// Package httpclient provides a bounded HTTP client for outbound calls
// to remote collaborators.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

var ErrResponseTooLarge = errors.New("response body too large")

// Options bounds outbound request behavior.
type Options struct {
	// TimeoutMS is the overall request timeout in milliseconds.
	TimeoutMS int

	// ConnectTimeoutMS is the connection timeout in milliseconds.
	ConnectTimeoutMS int

	// MaxResponseBytes is the maximum response body size.
	MaxResponseBytes int64
}

func (o Options) withDefaults() Options {
	if o.TimeoutMS <= 0 {
		o.TimeoutMS = 10000
	}
	if o.ConnectTimeoutMS <= 0 {
		o.ConnectTimeoutMS = 2000
	}
	if o.MaxResponseBytes <= 0 {
		o.MaxResponseBytes = 1 << 20
	}
	return o
}

// Client is an HTTP client with bounded timeouts and response sizes.
// Redirects are not followed: collaborators answer at fixed endpoints.
type Client struct {
	opts       Options
	httpClient *http.Client
}

// New creates a bounded client. The client ignores proxy environment
// variables.
func New(opts Options) *Client {
	opts = opts.withDefaults()

	dialer := &net.Dialer{
		Timeout: time.Duration(opts.ConnectTimeoutMS) * time.Millisecond,
	}

	transport := &http.Transport{
		Proxy:           nil,
		DialContext:     dialer.DialContext,
		MaxIdleConns:    10,
		IdleConnTimeout: 30 * time.Second,
	}

	return &Client{
		opts: opts,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(opts.TimeoutMS) * time.Millisecond,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Do executes the request and returns the status code and the body,
// bounded by MaxResponseBytes.
func (c *Client) Do(ctx context.Context, req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, c.opts.MaxResponseBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(body)) > c.opts.MaxResponseBytes {
		return resp.StatusCode, nil, ErrResponseTooLarge
	}
	return resp.StatusCode, body, nil
}
