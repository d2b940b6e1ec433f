// Package flow provides authorization flows usable where the default scy
// browser flow is not: DeviceFlow lets a headless host be authorized from
// another device (RFC 8628).
package flow

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/viant/scy/auth/flow"
	"golang.org/x/oauth2"
)

// Kind names a selectable flow.
const (
	KindBrowser = "browser"
	KindDevice  = "device"
)

// DeviceFlow prints a verification URL and user code, then polls the token
// endpoint until the user approves on another device.
type DeviceFlow struct {
	writer io.Writer
}

func (d *DeviceFlow) Token(ctx context.Context, config *oauth2.Config, options ...flow.Option) (*oauth2.Token, error) {
	if config.Endpoint.DeviceAuthURL == "" {
		return nil, fmt.Errorf("device authorization endpoint is not configured")
	}
	response, err := config.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start device authorization: %w", err)
	}
	verificationURI := response.VerificationURIComplete
	if verificationURI == "" {
		verificationURI = response.VerificationURI
	}
	_, _ = fmt.Fprintf(d.writer, "To authorize, visit %v and enter code: %v\n", verificationURI, response.UserCode)
	token, err := config.DeviceAccessToken(ctx, response)
	if err != nil {
		return nil, fmt.Errorf("failed to get device token: %w", err)
	}
	return token, nil
}

// New returns the flow for kind; unknown kinds fall back to the browser flow.
func New(kind string) flow.AuthFlow {
	if kind == KindDevice {
		return NewDeviceFlow(nil)
	}
	return flow.NewBrowserFlow()
}

// NewDeviceFlow creates a device flow printing instructions to writer (stderr when nil).
func NewDeviceFlow(writer io.Writer) *DeviceFlow {
	if writer == nil {
		writer = os.Stderr
	}
	return &DeviceFlow{writer: writer}
}
