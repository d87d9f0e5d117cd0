// Package tokens implements the token-count capability contract. Counting
// is a uniform character-based estimate applied across providers, an
// acknowledged approximation for providers without native counts.
package tokens

import "unicode/utf8"

// DefaultEncoding names the encoding assumed by the estimate. The value is
// informative; the estimate itself does not vary by encoding.
const DefaultEncoding = "cl100k_base"

// charsPerToken is the conservative English-text ratio used across the
// pipeline's budgeting.
const charsPerToken = 4

// Count estimates the token count of text under the given encoding.
func Count(text, encoding string) int {
	if text == "" {
		return 0
	}
	chars := utf8.RuneCountInString(text)
	return (chars + charsPerToken - 1) / charsPerToken
}
