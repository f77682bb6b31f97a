package pipeline

import (
	"net/url"
	"strings"
)

// trackingPrefixes are query-parameter key prefixes stripped during URL
// normalization. They carry attribution noise that would defeat dedupe on
// otherwise identical article URLs.
var trackingPrefixes = []string{"utm_", "fbclid", "gclid", "icid"}

// NormalizeURL canonicalizes a URL for use as a dedupe key: lower-cases
// scheme and host, defaults the scheme to https, strips trailing slashes
// from the path, removes tracking query parameters and drops the fragment.
// The relative order of surviving query parameters is preserved. On parse
// failure the input is returned unchanged, never an error.
func NormalizeURL(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = strings.TrimRight(u.RawPath, "/")
	u.RawQuery = filterQuery(u.RawQuery)
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""

	return u.String()
}

// ExtractDomain returns the lower-cased host of a URL with the leading
// "www." removed, or "" when the URL has no parseable host.
func ExtractDomain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// filterQuery drops tracking parameters and re-encodes the survivors in
// their original relative order. url.Values cannot be used here, it loses
// parameter order.
func filterQuery(raw string) string {
	if raw == "" {
		return ""
	}
	kept := make([]string, 0, 4)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, _, _ := strings.Cut(pair, "=")
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if isTrackingParam(key) {
			continue
		}
		kept = append(kept, reencodePair(pair))
	}
	return strings.Join(kept, "&")
}

func isTrackingParam(key string) bool {
	key = strings.ToLower(key)
	for _, prefix := range trackingPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// reencodePair decodes and re-encodes one key=value pair so repeated
// normalization produces identical bytes.
func reencodePair(pair string) string {
	key, val, hasVal := strings.Cut(pair, "=")
	if decoded, err := url.QueryUnescape(key); err == nil {
		key = decoded
	}
	if !hasVal {
		return url.QueryEscape(key)
	}
	if decoded, err := url.QueryUnescape(val); err == nil {
		val = decoded
	}
	return url.QueryEscape(key) + "=" + url.QueryEscape(val)
}
