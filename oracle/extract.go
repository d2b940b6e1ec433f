package oracle

import (
	"regexp"
	"strings"
)

var (
	ipv4Pattern = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
	ipv6Pattern = regexp.MustCompile(strings.Repeat(`[0-9a-fA-F]{0,4}:`, 7) + `[0-9a-fA-F]{0,4}`)
)

// Extract returns the first IPv4 literal in text, else the first IPv6 literal.
func Extract(text string) (string, bool) {
	if match := ipv4Pattern.FindString(text); match != "" {
		return strings.TrimSpace(match), true
	}
	if match := ipv6Pattern.FindString(text); match != "" && strings.Trim(match, ":") != "" {
		return strings.TrimSpace(match), true
	}
	return "", false
}
