package client

import (
	"context"
	"fmt"
	"time"
)

// Ready reports whether the service answers /readyz with a 2xx.
func (c *Client) Ready(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.rest.R().SetContext(ctx).Get(c.url("/readyz"))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("not ready: %d %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// WaitReady polls Ready until it succeeds or timeout elapses.
func (c *Client) WaitReady(ctx context.Context, timeout, interval time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last error
	for {
		if last = c.Ready(ctx); last == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("readiness timeout after %v: %w", timeout, last)
		case <-ticker.C:
		}
	}
}
