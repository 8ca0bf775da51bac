package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// RPCClient talks to a ledger node's HTTP API. Every route is a POST of a
// JSON object to baseURL+route answered by a JSON object. Failed requests
// are retried with exponential backoff.
type RPCClient struct {
	baseURL     string
	client      *http.Client
	maxAttempts int
	backoff     time.Duration
	log         zerolog.Logger
}

// Option configures an RPCClient.
type Option func(*RPCClient)

// WithLogger sets the client's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *RPCClient) { c.log = l }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *RPCClient) { c.client = h }
}

// rpcError is the error body returned by the node.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// NewRPCClient creates a client for cfg. Zero fields in cfg take the
// package defaults.
func NewRPCClient(cfg RPCConfig, opts ...Option) *RPCClient {
	cfg.applyDefaults()
	base := cfg.URL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	c := &RPCClient{
		baseURL:     base,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		log:         zerolog.Nop(),
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call posts req to route and decodes the answer into result.
//
// Connection failures, non-2xx statuses and error bodies are retried up to
// the configured number of attempts; the last error is returned wrapped in
// ErrConnectionFailed or ErrRPCError. A body that cannot be decoded fails
// immediately with ErrInvalidResponse.
func (c *RPCClient) Call(ctx context.Context, route string, req, result interface{}) error {
	if req == nil {
		req = struct{}{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("network: marshal request: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.backoff
	policy.Multiplier = BackoffMultiplier
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxAttempts-1)), ctx)

	attempt := 0
	op := func() error {
		attempt++
		return c.do(ctx, route, body, result)
	}
	notify := func(err error, wait time.Duration) {
		c.log.Debug().Err(err).Str("route", route).Int("attempt", attempt).
			Dur("wait", wait).Msg("retrying ledger request")
	}
	if err := backoff.RetryNotify(op, retry, notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %s: %w", ErrConnectionFailed, route, ctxErr)
		}
		return fmt.Errorf("%s: %w", route, err)
	}
	return nil
}

func (c *RPCClient) do(ctx context.Context, route string, body []byte, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+route, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("network: create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrConnectionFailed, err)
	}

	var rerr rpcError
	_ = json.Unmarshal(respBody, &rerr)
	if rerr.Code != 0 || rerr.Error != "" {
		msg := rerr.Error
		if msg == "" {
			msg = rerr.Message
		}
		return fmt.Errorf("%w %d: %s", ErrRPCError, rerr.Code, msg)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d: %s", ErrConnectionFailed, resp.StatusCode, truncate(respBody, 1024))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return backoff.Permanent(fmt.Errorf("%w: decode response: %w", ErrInvalidResponse, err))
		}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
