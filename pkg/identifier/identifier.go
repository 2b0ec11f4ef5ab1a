// Package identifier canonicalizes raw YouTube channel identifiers
// (UC... channel IDs or @handles, possibly wrapped in URL path fragments)
// into a single lookup key.
package identifier

import (
	"net/url"
	"regexp"
	"strings"
)

// prefixRe strips any run of leading path segments meaning "channel",
// "user" or "custom alias", plus runs of slashes, "@" and whitespace.
// The + repetition handles doubled prefixes like "//channel//@handle".
var prefixRe = regexp.MustCompile(`^((?i:/?(?:channel|user|c)/)|[\s/@]+)+`)

// Normalize canonicalizes a raw channel identifier into a lowercase
// storage key. It is total and idempotent: it never fails, and
// Normalize(Normalize(x)) == Normalize(x). Empty input yields "".
func Normalize(raw string) string {
	return strings.ToLower(NormalizeDisplay(raw))
}

// NormalizeDisplay applies the same stripping as Normalize but preserves
// the original casing, for display purposes.
func NormalizeDisplay(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	// Percent-decode once; a malformed escape leaves the input as-is.
	if dec, err := url.PathUnescape(s); err == nil {
		s = dec
	}

	s = prefixRe.ReplaceAllString(s, "")
	s = strings.TrimRight(s, "/")
	return strings.TrimSpace(s)
}

// IsChannelID reports whether the identifier looks like a stable YouTube
// channel ID (UC followed by 22 characters) rather than a handle.
func IsChannelID(id string) bool {
	return len(id) == 24 && strings.EqualFold(id[:2], "UC") && channelIDRe.MatchString(id)
}

var channelIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
