// Package selector turns raw search hits into the capped, owned-first list
// of candidate sources that the snippet fetcher will retrieve.
package selector

import (
	"net/url"
	"strings"
)

// trailingPunct is stripped from the end of extracted URLs. Query strings
// and fragments are preserved.
const trailingPunct = ".,;:!?"

// Candidate is a URL under consideration for grounding.
type Candidate struct {
	URL   string
	Owned bool
	Rank  int
}

// NormalizeURL strips trailing sentence punctuation from a URL string.
func NormalizeURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), trailingPunct)
}

// HostOf extracts the host of a URL, lowercased and with a leading "www."
// removed. A bare domain without a scheme is accepted.
func HostOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.ToLower(parsed.Host)
	return strings.TrimPrefix(host, "www.")
}

// IsOwned reports whether rawURL belongs to the brand: its host equals the
// brand host or is a subdomain of it. Comparison is case-insensitive and
// www-insensitive on both sides.
func IsOwned(rawURL, brandHost string) bool {
	if brandHost == "" {
		return false
	}
	host := HostOf(rawURL)
	if host == "" {
		return false
	}
	return host == brandHost || strings.HasSuffix(host, "."+brandHost)
}

// Select normalizes and deduplicates the raw candidate URLs, classifies each
// against the brand URL, orders owned sources first (each group keeping its
// relative rank), and truncates to maxSources. A maxSources of zero yields
// an empty list.
func Select(rawURLs []string, brandURL string, maxSources int) []Candidate {
	if maxSources <= 0 {
		return nil
	}

	brandHost := HostOf(brandURL)
	seen := make(map[string]struct{}, len(rawURLs))
	var owned, external []Candidate

	rank := 0
	for _, raw := range rawURLs {
		normalized := NormalizeURL(raw)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}

		c := Candidate{URL: normalized, Rank: rank}
		rank++
		if IsOwned(normalized, brandHost) {
			c.Owned = true
			owned = append(owned, c)
		} else {
			external = append(external, c)
		}
	}

	selected := append(owned, external...)
	if len(selected) > maxSources {
		selected = selected[:maxSources]
	}
	return selected
}

// Fallback returns the single synthetic candidate used when search yields
// nothing: the brand's own URL.
func Fallback(brandURL string) []Candidate {
	return []Candidate{{URL: NormalizeURL(brandURL), Owned: true}}
}
