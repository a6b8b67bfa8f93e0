package pagescan

import (
	"net/url"
	"strings"
)

// privateHostPrefixes are matched against the literal hostname text.
// This is a textual check, not a numeric subnet test: a public hostname
// that happens to start with "10." is misclassified, and decimal/hex
// encodings of private IPs slip through. Known limitation, kept so that
// filter decisions are reproducible from the URL string alone; the
// dial-time guard in safedialer.go covers the numeric cases.
var privateHostPrefixes = []string{"10.", "127.", "192.168.", "169.254."}

// IsBlockedURL reports whether a URL must not be fetched or admitted as
// a resource candidate. Unparsable input is blocked (fail closed), as is
// any scheme other than http/https and any loopback, .local, or
// private-prefixed host. Every URL passes through here before any
// network activity, the main target included.
func IsBlockedURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return true
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return true
	}

	host := strings.ToLower(u.Hostname())
	if host == "" || host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return true
	}
	if strings.HasSuffix(host, ".local") {
		return true
	}

	for _, p := range privateHostPrefixes {
		if strings.HasPrefix(host, p) {
			return true
		}
	}

	return false
}

// resolveRef resolves a possibly-relative reference against base.
// Malformed references report ok=false; callers skip those candidates.
func resolveRef(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return "", false
	}

	return base.ResolveReference(parsed).String(), true
}
