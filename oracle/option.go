package oracle

import (
	"log/slog"
	"net/http"
	"time"
)

type Option func(*Client)

// WithHTTPClient sets http client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRetryDelay sets the wait between failed attempts
func WithRetryDelay(delay time.Duration) Option {
	return func(c *Client) {
		if delay > 0 {
			c.RetryDelay = delay
		}
	}
}

// WithSleeper sets sleeper
func WithSleeper(sleeper Sleeper) Option {
	return func(c *Client) {
		c.sleep = sleeper
	}
}

// WithLogger sets logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}
