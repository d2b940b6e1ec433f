// Package oracle discovers the host's public address from an echo service that
// answers a GET request with text containing the caller's IP.
package oracle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/viant/postip/internal/fault"
)

const (
	// DefaultURL answers with the caller's address as plain text.
	DefaultURL = "http://ipecho.net/plain"
	// DefaultRetryDelay separates attempts while the service is unreachable.
	DefaultRetryDelay = 10 * time.Minute
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Client queries the address oracle.
type Client struct {
	URL        string
	RetryDelay time.Duration
	httpClient *http.Client
	sleep      Sleeper
	logger     *slog.Logger
}

// Discover blocks until the oracle answers, retrying transport failures and
// error statuses indefinitely. A response without any address is a fatal
// contract violation.
func (c *Client) Discover(ctx context.Context) (string, error) {
	for {
		c.logger.Debug("fetching address", "url", c.URL)
		body, err := c.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			c.logger.Error("could not fetch address, retrying", "url", c.URL, "retryIn", c.RetryDelay, "error", err)
			if err = c.sleep(ctx, c.RetryDelay); err != nil {
				return "", err
			}
			continue
		}
		c.logger.Debug("oracle responded", "url", c.URL, "body", body)
		address, ok := Extract(body)
		if !ok {
			return "", fault.Contract(fmt.Sprintf("response from %v holds neither an IPv4 nor an IPv6 address", c.URL))
		}
		return address, nil
	}
}

func (c *Client) fetch(ctx context.Context) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return "", err
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %v", response.Status)
	}
	return string(data), nil
}

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// New creates a client for URL (DefaultURL when empty).
func New(URL string, options ...Option) *Client {
	if URL == "" {
		URL = DefaultURL
	}
	ret := &Client{
		URL:        URL,
		RetryDelay: DefaultRetryDelay,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		sleep:      Sleep,
		logger:     slog.Default(),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}
