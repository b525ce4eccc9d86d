// Package reachability probes whether a URL is fetchable before it is
// shortened.
package reachability

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout = 5 * time.Second

	// Probing only needs to observe that a response stream arrives, not
	// consume it; drain a bounded prefix so the connection can be reused.
	maxDrainBytes = 4 << 10
)

// Checker issues a bounded network fetch to decide whether a URL is
// reachable. Receiving a response of any status counts as reachable; only
// transport-level failures (dial errors, TLS failures, timeouts) count
// against the URL. HTTP status codes are deliberately not interpreted.
type Checker struct {
	client  *http.Client
	timeout time.Duration
}

type Option func(*Checker)

// WithTimeout bounds each probe. On expiry the probe fails like any other
// transport error.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		c.timeout = d
	}
}

// WithClient replaces the underlying HTTP client.
func WithClient(client *http.Client) Option {
	return func(c *Checker) {
		c.client = client
	}
}

func New(opts ...Option) *Checker {
	c := &Checker{
		client:  http.DefaultClient,
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Check probes the URL. A nil return means a response was receivable.
func (c *Checker) Check(ctx context.Context, rawURL string) error {
	const op = "reachability.Checker.Check"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to build probe request: %w", op, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: url is not fetchable: %w", op, err)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	return nil
}
