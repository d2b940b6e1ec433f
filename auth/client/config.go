// Package client loads the OAuth2 client application credentials used for the
// interactive authorization flow.
//
// Credentials come from a Google client-secrets JSON file, from the standard
// output of a configured command (e.g. a password manager) or from a
// scy-encrypted oauth2 config file. Missing or malformed credentials are fatal
// configuration errors.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/postip/internal/fault"
	"github.com/viant/scy/auth/authorizer"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// ConsoleURL is where Google client credentials are issued.
	ConsoleURL = "https://console.cloud.google.com/apis/credentials"
	// DeviceAuthURL is Google's device authorization endpoint.
	DeviceAuthURL = "https://oauth2.googleapis.com/device/code"
)

// Runner runs a shell command returning its output and exit code.
type Runner func(ctx context.Context, command string) (string, int, error)

// Loader resolves client configs.
type Loader struct {
	fs  afs.Service
	run Runner
}

// FromFile reads a Google client-secrets file.
func (l *Loader) FromFile(ctx context.Context, URL string, scopes []string) (*oauth2.Config, error) {
	exists, err := l.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fault.WrapConfig(err, fmt.Sprintf("could not access credentials file %v", URL))
	}
	if !exists {
		return nil, fault.Config(fmt.Sprintf("could not find a credentials file at %v, get one at %v", URL, ConsoleURL))
	}
	data, err := l.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fault.WrapConfig(err, fmt.Sprintf("could not read credentials file %v", URL))
	}
	return Parse(data, scopes)
}

// FromCommand runs command and parses its output as a client-secrets document.
func (l *Loader) FromCommand(ctx context.Context, command string, scopes []string) (*oauth2.Config, error) {
	if l.run == nil {
		return nil, fault.Config("no command runner configured")
	}
	output, code, err := l.run(ctx, command)
	if err != nil {
		return nil, fault.WrapConfig(err, fmt.Sprintf("credentials command %q failed", command))
	}
	if code != 0 {
		return nil, fault.Config(fmt.Sprintf("credentials command %q exited with status %v", command, code))
	}
	return Parse([]byte(strings.TrimSpace(output)), scopes)
}

// FromEncrypted loads a scy-encrypted oauth2 config, decrypted with key.
func (l *Loader) FromEncrypted(ctx context.Context, URL, key string, scopes []string) (*oauth2.Config, error) {
	configURL := URL
	if key != "" {
		configURL += "|" + key
	}
	oauthConfig := &authorizer.OAuthConfig{ConfigURL: configURL}
	if err := authorizer.New().EnsureConfig(ctx, oauthConfig); err != nil {
		return nil, fault.WrapConfig(err, fmt.Sprintf("could not load encrypted credentials %v", URL))
	}
	if oauthConfig.Config == nil || oauthConfig.Config.ClientID == "" {
		return nil, fault.Config(fmt.Sprintf("encrypted credentials %v hold no client", URL))
	}
	ret := *oauthConfig.Config
	ret.Scopes = scopes
	return withDeviceEndpoint(&ret), nil
}

// Parse decodes a Google client-secrets document ("installed" or "web").
func Parse(data []byte, scopes []string) (*oauth2.Config, error) {
	if !json.Valid(data) {
		return nil, fault.Config("the given credentials are not valid JSON")
	}
	config, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fault.WrapConfig(err, "the given credentials are valid JSON, but not in the expected layout")
	}
	return withDeviceEndpoint(config), nil
}

func withDeviceEndpoint(config *oauth2.Config) *oauth2.Config {
	if config.Endpoint.DeviceAuthURL == "" && config.Endpoint.TokenURL == google.Endpoint.TokenURL {
		config.Endpoint.DeviceAuthURL = DeviceAuthURL
	}
	return config
}

// New creates a loader; run executes credential commands.
func New(fs afs.Service, run Runner) *Loader {
	if fs == nil {
		fs = afs.New()
	}
	return &Loader{fs: fs, run: run}
}
