// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package rpc is a JSON-RPC 2.0 client for Substrate nodes over a single
// WebSocket or HTTP connection.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ChainSafe/subclient/internal/log"
	"github.com/ChainSafe/subclient/pkg/errkind"
	"github.com/prometheus/client_golang/prometheus"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "rpc"))

const defaultTimeout = 30 * time.Second

type transport interface {
	call(ctx context.Context, method string, params []any, subscription *Subscription) (json.RawMessage, error)
	subscribe(ctx context.Context, method, unsubscribeMethod string, params []any) (*Subscription, error)
	close() error
	supportsSubscriptions() bool
}

// Option is a functional option for the client.
type Option func(s *settings)

type settings struct {
	timeout    time.Duration
	readLimit  int64
	registerer prometheus.Registerer
}

// Timeout sets the default deadline of calls made with a context without
// deadline. It defaults to 30 seconds.
func Timeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.timeout = timeout
	}
}

// ReadLimit sets the maximum size of a websocket message. Metadata blobs
// exceed the default of the websocket library.
func ReadLimit(limit int64) Option {
	return func(s *settings) {
		s.readLimit = limit
	}
}

// Metrics registers the client collectors on the registerer.
func Metrics(registerer prometheus.Registerer) Option {
	return func(s *settings) {
		s.registerer = registerer
	}
}

// Client is a JSON-RPC client. It is safe for concurrent use.
type Client struct {
	endpoint  string
	transport transport
	timeout   time.Duration
	metrics   *metrics
}

// Dial connects to a ws://, wss://, http:// or https:// endpoint.
func Dial(ctx context.Context, endpoint string, options ...Option) (*Client, error) {
	s := settings{timeout: defaultTimeout}
	for _, option := range options {
		option(&s)
	}

	m, err := newMetrics(s.registerer)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedScheme, err)
	}

	var t transport
	switch u.Scheme {
	case "ws", "wss":
		t, err = dialWebsocket(ctx, endpoint, s.readLimit)
		if err != nil {
			return nil, err
		}
	case "http", "https":
		t = newHTTPTransport(endpoint)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	logger.Debugf("connected to %s", endpoint)
	return &Client{
		endpoint:  endpoint,
		transport: t,
		timeout:   s.timeout,
		metrics:   m,
	}, nil
}

// Endpoint returns the endpoint the client is connected to.
func (c *Client) Endpoint() string { return c.endpoint }

// SupportsSubscriptions returns false for HTTP endpoints.
func (c *Client) SupportsSubscriptions() bool { return c.transport.supportsSubscriptions() }

// Close closes the connection. Pending calls and subscriptions fail with ErrClosed.
func (c *Client) Close() error {
	return c.transport.close()
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Call calls method with params and decodes the result into result,
// which may be nil to discard it. Node errors are returned as *Error.
func (c *Client) Call(ctx context.Context, result any, method string, params ...any) (err error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	end := c.metrics.begin(method)
	defer func() { end(err) }()

	if params == nil {
		params = []any{}
	}
	raw, err := c.transport.call(ctx, method, params, nil)
	if err != nil {
		return contextError(method, err)
	}
	if result == nil {
		return nil
	}
	err = json.Unmarshal(raw, result)
	if err != nil {
		return fmt.Errorf("%w: %s result: %w", ErrInvalidResponse, method, err)
	}
	return nil
}

// Subscribe starts a subscription. The subscription outlives ctx, which
// only bounds the subscribe request.
func (c *Client) Subscribe(ctx context.Context, method, unsubscribeMethod string,
	params ...any) (sub *Subscription, err error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	end := c.metrics.begin(method)
	defer func() { end(err) }()

	if params == nil {
		params = []any{}
	}
	sub, err = c.transport.subscribe(ctx, method, unsubscribeMethod, params)
	if err != nil {
		return nil, contextError(method, err)
	}
	return sub, nil
}

func contextError(method string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %w", errkind.ErrTimeout, method, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", method, err)
	}
	if _, isRPCError := AsError(err); isRPCError {
		return fmt.Errorf("%s: %w", method, err)
	}
	return err
}
