package sitegraph

import (
	"net/url"
	"strings"
)

// Hrefs with these prefixes never point at a crawlable page.
var nonPagePrefixes = []string{"mailto:", "javascript:", "tel:", "#"}

// Normalize returns a canonical copy of u so that URLs differing only by
// fragment or trailing slash compare equal. The fragment is removed, an
// empty path becomes "/", and any other path loses its trailing slashes.
// Scheme, host, port and query are preserved. Normalize is idempotent.
func Normalize(u *url.URL) *url.URL {
	n := *u
	n.Fragment = ""
	n.RawFragment = ""

	// Trim on the escaped form so an encoded %2F is not taken for a slash.
	escaped := strings.TrimRight(n.EscapedPath(), "/")
	if escaped == "" {
		n.Path = "/"
		n.RawPath = ""
		return &n
	}
	path, err := url.PathUnescape(escaped)
	if err != nil {
		return &n
	}
	n.Path = path
	n.RawPath = ""
	if (&url.URL{Path: path}).EscapedPath() != escaped {
		n.RawPath = escaped
	}
	return &n
}

// NormalizeURL parses rawURL and returns its normalized string form.
// It returns EINVALID if rawURL is not an absolute URL with a host.
func NormalizeURL(rawURL string) (string, error) {
	u, err := ParseAbsoluteURL(rawURL)
	if err != nil {
		return "", err
	}
	return Normalize(u).String(), nil
}

// ParseAbsoluteURL parses rawURL and requires an http or https scheme and a
// non-empty host.
func ParseAbsoluteURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, Errorf(EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if !isHTTPScheme(u.Scheme) {
		return nil, Errorf(EINVALID, "URL %q must use http or https", rawURL)
	}
	if u.Host == "" {
		return nil, Errorf(EINVALID, "URL %q has no host", rawURL)
	}
	return u, nil
}

// ResolveURL resolves a raw href found on the page at base and returns the
// normalized absolute URL. The bool result is false for hrefs that carry no
// crawlable page (mailto:, javascript:, tel:, bare fragments, empty) and for
// hrefs that fail to parse. Malformed hrefs are common in the wild, so
// failures are reported as a missing result rather than an error.
func ResolveURL(base *url.URL, href string) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil, false
	}
	lower := strings.ToLower(href)
	for _, prefix := range nonPagePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return nil, false
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return nil, false
	}
	return Normalize(base.ResolveReference(ref)), true
}

// InScope reports whether target belongs to a crawl rooted at base: it must
// use http or https, and its host must equal base's host or be a subdomain
// of it. Hosts compare case-insensitively and without port.
//
// The subdomain check is one-directional. A crawl rooted at www.example.com
// does not treat example.com as in scope.
func InScope(target, base *url.URL) bool {
	if !isHTTPScheme(target.Scheme) {
		return false
	}
	host := strings.ToLower(target.Hostname())
	baseHost := strings.ToLower(base.Hostname())
	if host == "" || baseHost == "" {
		return false
	}
	return host == baseHost || strings.HasSuffix(host, "."+baseHost)
}

func isHTTPScheme(scheme string) bool {
	return strings.EqualFold(scheme, "http") || strings.EqualFold(scheme, "https")
}
