// Package hostname maps a request host to the tenant subdomain it names.
//
// The rules, applied in order after stripping any port and lowercasing:
//
//   - empty, localhost, localhost.localdomain and IP literals name no tenant
//   - a leading "www" label is dropped
//   - <label>.<dev suffix> names <label>; the bare dev suffix names none
//   - a host with more than two labels names its first label
//   - anything else (a bare two-label domain) names none
package hostname

import (
	"net"
	"strings"
)

// DefaultDevSuffix is the wildcard loopback domain used in development.
const DefaultDevSuffix = "lvh.me"

// Resolve returns the tenant subdomain for host, or "" when the host
// names no tenant. An empty devSuffix selects DefaultDevSuffix.
func Resolve(host, devSuffix string) string {
	if devSuffix == "" {
		devSuffix = DefaultDevSuffix
	}
	devSuffix = strings.ToLower(strings.Trim(devSuffix, "."))

	h := strings.ToLower(strings.TrimSpace(stripPort(host)))
	h = strings.TrimSuffix(h, ".")
	if h == "" || h == "localhost" || h == "localhost.localdomain" {
		return ""
	}
	if net.ParseIP(h) != nil {
		return ""
	}
	h = strings.TrimPrefix(h, "www.")
	if h == "www" {
		return ""
	}

	if h == devSuffix {
		return ""
	}
	if rest, ok := strings.CutSuffix(h, "."+devSuffix); ok {
		labels := strings.Split(rest, ".")
		return labels[len(labels)-1]
	}

	labels := strings.Split(h, ".")
	if len(labels) > 2 && labels[0] != "" {
		return labels[0]
	}
	return ""
}

// stripPort removes a trailing :port, including from bracketed IPv6.
func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.Trim(host, "[]")
}
