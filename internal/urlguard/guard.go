// Package urlguard validates untrusted URL strings before the service is
// allowed to act on them. It normalizes scheme-less input, then rejects any
// target that points at loopback, private, link-local, or internal hosts so
// the upstream fetch cannot be steered at the local network (SSRF).
//
// The guard is purely syntactic: it never resolves DNS, so a hostname that
// only resolves to a private address at fetch time (DNS rebinding) passes.
// That revalidation belongs to the layer performing the actual fetch.
package urlguard

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Reason is the closed set of rejection categories.
type Reason string

const (
	ReasonInvalidFormat     Reason = "invalid_format"
	ReasonUnsupportedScheme Reason = "unsupported_scheme"
	ReasonLoopback          Reason = "loopback"
	ReasonPrivateIP         Reason = "private_ip"
	ReasonLinkLocal         Reason = "link_local"
	ReasonInvalidIP         Reason = "invalid_ip"
	ReasonInternalHostname  Reason = "internal_hostname"
)

// RejectionError reports why a URL was refused. The message carries only the
// reason code, never classification internals.
type RejectionError struct {
	Reason Reason
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("url rejected: %s", e.Reason)
}

func reject(r Reason) (string, error) {
	return "", &RejectionError{Reason: r}
}

// schemePattern matches any URI scheme prefix, so input that carries a
// non-HTTP scheme reaches the scheme check instead of being double-prefixed.
var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// Validate trims and normalizes raw into an absolute HTTP(S) URL, or returns
// a *RejectionError. Scheme-less input gets an https:// prefix. Validate is
// idempotent: feeding its own output back returns the same string.
func Validate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return reject(ReasonInvalidFormat)
	}
	if !schemePattern.MatchString(trimmed) {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return reject(ReasonInvalidFormat)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return reject(ReasonUnsupportedScheme)
	}
	if u.Host == "" {
		return reject(ReasonInvalidFormat)
	}

	if r, ok := classifyHost(strings.ToLower(u.Hostname())); !ok {
		return reject(r)
	}
	return u.String(), nil
}

// classifyHost decides whether a lower-cased hostname may be fetched.
// It returns ok=false with the rejection reason for blocked hosts.
// Check order: loopback literals, IPv4 ranges, IPv6 ranges, internal
// suffixes. The order keeps every rejection deterministic for a given input.
func classifyHost(host string) (Reason, bool) {
	// A trailing dot is the fully-qualified spelling of the same name;
	// "localhost." resolves exactly like "localhost".
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return ReasonInvalidFormat, false
	}
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return ReasonLoopback, false
	}

	if octets, looksIPv4, err := parseIPv4(host); looksIPv4 {
		if err != nil {
			return ReasonInvalidIP, false
		}
		if r, ok := classifyIPv4(octets); !ok {
			return r, false
		}
		return "", true
	}

	// url.Hostname() strips the brackets from IPv6 literals.
	if strings.Contains(host, ":") {
		return classifyIPv6(host)
	}

	for _, suffix := range []string{".local", ".internal", ".lan"} {
		if strings.HasSuffix(host, suffix) {
			return ReasonInternalHostname, false
		}
	}
	return "", true
}

// parseIPv4 reports whether host has dotted-quad shape, and if so parses its
// octets. A host that looks like an IPv4 address but carries an out-of-range
// octet (e.g. 999.1.1.1) is an error, not a hostname.
func parseIPv4(host string) (octets [4]int, looksIPv4 bool, err error) {
	parts := strings.Split(host, ".")
	if len(parts) != 4 {
		return octets, false, nil
	}
	for _, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return octets, false, nil
		}
	}
	for i, p := range parts {
		n, convErr := strconv.Atoi(p)
		if convErr != nil || n > 255 {
			return octets, true, fmt.Errorf("octet out of range: %s", p)
		}
		octets[i] = n
	}
	return octets, true, nil
}

// classifyIPv4 applies the blocked-range policy to parsed octets.
func classifyIPv4(o [4]int) (Reason, bool) {
	switch {
	case o[0] == 127:
		return ReasonLoopback, false
	case o[0] == 10:
		return ReasonPrivateIP, false
	case o[0] == 172 && o[1] >= 16 && o[1] <= 31:
		return ReasonPrivateIP, false
	case o[0] == 192 && o[1] == 168:
		return ReasonPrivateIP, false
	case o[0] == 169 && o[1] == 254:
		return ReasonLinkLocal, false
	}
	return "", true
}

// classifyIPv6 rejects loopback, link-local, unique-local, and IPv4-mapped
// literals. Mapped addresses re-apply the IPv4 range test to the embedded
// dotted quad so ::ffff:10.0.0.1 cannot slip past the string checks.
func classifyIPv6(host string) (Reason, bool) {
	switch {
	case host == "::1":
		return ReasonLoopback, false
	case strings.HasPrefix(host, "fe80:"):
		return ReasonLinkLocal, false
	case strings.HasPrefix(host, "fc"), strings.HasPrefix(host, "fd"):
		return ReasonPrivateIP, false
	}
	if embedded, ok := strings.CutPrefix(host, "::ffff:"); ok {
		octets, looksIPv4, err := parseIPv4(embedded)
		if err != nil {
			return ReasonInvalidIP, false
		}
		if looksIPv4 {
			return classifyIPv4(octets)
		}
	}
	return "", true
}
