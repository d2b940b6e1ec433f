// Package cache persists the last address successfully published to the remote store.
package cache

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// Address is a file holding the last synced address.
type Address struct {
	URL string
	fs  afs.Service
}

// Load returns the cached address; ok is false when nothing was cached yet.
func (a *Address) Load(ctx context.Context) (address string, ok bool, err error) {
	exists, err := a.fs.Exists(ctx, a.URL)
	if err != nil {
		return "", false, fmt.Errorf("failed to check %v: %w", a.URL, err)
	}
	if !exists {
		return "", false, nil
	}
	data, err := a.fs.DownloadWithURL(ctx, a.URL)
	if err != nil {
		return "", false, fmt.Errorf("failed to read %v: %w", a.URL, err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

// Save replaces the cached address, writing a sibling temp file first. The
// cache is a local file.
func (a *Address) Save(ctx context.Context, address string) error {
	tmp := a.URL + ".tmp"
	if err := a.fs.Upload(ctx, tmp, 0o600, strings.NewReader(address)); err != nil {
		return fmt.Errorf("failed to write %v: %w", tmp, err)
	}
	// afs Move would nest tmp inside a directory named after the destination
	if err := os.Rename(url.Path(tmp), url.Path(a.URL)); err != nil {
		return fmt.Errorf("failed to replace %v: %w", a.URL, err)
	}
	return nil
}

// NewAddress creates an address cache at URL.
func NewAddress(URL string, fs afs.Service) *Address {
	if fs == nil {
		fs = afs.New()
	}
	return &Address{URL: URL, fs: fs}
}
