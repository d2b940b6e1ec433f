// Package scope loads the OAuth2 permission scopes the agent requests.
package scope

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/viant/afs"
)

var pattern = regexp.MustCompile(`^https?://www.googleapis.com/`)

// Set is an ordered, immutable list of scope URIs.
type Set []string

// String returns space separated scopes, as used in OAuth2 requests.
func (s Set) String() string {
	return strings.Join(s, " ")
}

// Equal reports whether both sets hold the same scopes regardless of order.
func (s Set) Equal(other []string) bool {
	if len(s) != len(other) {
		return false
	}
	left := append([]string{}, s...)
	right := append([]string{}, other...)
	sort.Strings(left)
	sort.Strings(right)
	for i := range left {
		if left[i] != right[i] {
			return false
		}
	}
	return true
}

// Valid reports whether scope is a Google API scope URI.
func Valid(scope string) bool {
	return pattern.MatchString(scope)
}

// Load reads scopes from URL, one per line. Blank lines and lines starting with
// '#' are ignored; invalid entries are logged and skipped.
func Load(ctx context.Context, fs afs.Service, URL string, logger *slog.Logger) (Set, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read scopes %v: %w", URL, err)
	}
	return Parse(data, URL, logger)
}

// Parse extracts scopes from data; source only labels warnings and errors.
func Parse(data []byte, source string, logger *slog.Logger) (Set, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var ret Set
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		if !Valid(line) {
			logger.Warn("skipping invalid scope", "file", source, "scope", line)
			continue
		}
		ret = append(ret, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scopes %v: %w", source, err)
	}
	return ret, nil
}
