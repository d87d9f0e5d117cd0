// Package analyze derives visibility facts from the final answer text:
// citations, brand mentions, and the owned/external source partition.
// Every function here is a pure scan over immutable strings; the answer is
// never modified.
package analyze

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/brandlens/brandlens/pkg/selector"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// capitalizedToken matches a word whose first character is uppercase and
// whose remainder is letters. Sentence-initial common words qualify too;
// the heuristic deliberately substitutes for entity recognition.
var capitalizedToken = regexp.MustCompile(`(^|[^A-Za-z0-9])([A-Z][A-Za-z]*)([^A-Za-z0-9]|$)`)

// Analysis holds everything derived from one answer.
type Analysis struct {
	Citations       []string
	Mentions        []string
	OwnedSources    []string
	ExternalSources []string
}

// ExtractURLs returns the URL-like substrings of a line in order of
// appearance, each with trailing sentence punctuation stripped.
func ExtractURLs(line string) []string {
	matches := urlPattern.FindAllString(line, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		if normalized := selector.NormalizeURL(m); normalized != "" {
			urls = append(urls, normalized)
		}
	}
	return urls
}

// HasCapitalizedToken reports whether the line contains a capitalized word.
func HasCapitalizedToken(line string) bool {
	return capitalizedToken.MatchString(line)
}

// Citations scans the answer line by line. A line qualifies when it carries
// at least one URL and at least one capitalized token; every URL on a
// qualifying line becomes a citation. The result is deduplicated in order
// of first qualifying appearance.
func Citations(answer string) []string {
	seen := make(map[string]struct{})
	citations := []string{}

	for _, line := range strings.Split(answer, "\n") {
		urls := ExtractURLs(line)
		if len(urls) == 0 || !HasCapitalizedToken(line) {
			continue
		}
		for _, u := range urls {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			citations = append(citations, u)
		}
	}
	return citations
}

// Mentions records every whole-word occurrence of the brand name in the
// answer. Word boundaries are transitions between alphanumeric and
// non-alphanumeric characters. Matching ignores case so that domain-cased
// occurrences (shopify.com) count; each occurrence is recorded as the
// configured brand name.
func Mentions(answer, brand string) []string {
	mentions := []string{}
	if brand == "" {
		return mentions
	}

	// Lowering can change byte length (İ grows from two bytes to three),
	// so offsets into the lowered text must never index the original.
	// Both the scan and the boundary checks stay in the lowered text.
	lowerAnswer := strings.ToLower(answer)
	lowerBrand := strings.ToLower(brand)

	for from := 0; ; {
		idx := strings.Index(lowerAnswer[from:], lowerBrand)
		if idx < 0 {
			break
		}
		start := from + idx
		end := start + len(lowerBrand)
		if boundaryBefore(lowerAnswer, start) && boundaryAfter(lowerAnswer, end) {
			mentions = append(mentions, brand)
		}
		from = end
	}
	return mentions
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isAlnum(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isAlnum(r)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Partition classifies the combined URL universe: answer-extracted URLs in
// answer order, then context URLs not already present in selection order,
// deduplicated, split into owned and external per the ownership rule.
func Partition(answerURLs, contextURLs []string, brandURL string) (owned, external []string) {
	brandHost := selector.HostOf(brandURL)
	owned = []string{}
	external = []string{}

	seen := make(map[string]struct{})
	for _, u := range append(append([]string{}, answerURLs...), contextURLs...) {
		normalized := selector.NormalizeURL(u)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}

		if selector.IsOwned(normalized, brandHost) {
			owned = append(owned, normalized)
		} else {
			external = append(external, normalized)
		}
	}
	return owned, external
}

// AnswerURLs extracts the deduplicated URLs of the whole answer in order of
// first appearance.
func AnswerURLs(answer string) []string {
	seen := make(map[string]struct{})
	urls := []string{}
	for _, line := range strings.Split(answer, "\n") {
		for _, u := range ExtractURLs(line) {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			urls = append(urls, u)
		}
	}
	return urls
}

// Analyze runs the full answer analysis. contextURLs are the URLs of the
// snippets actually included in the generation context, in selection order.
func Analyze(answer, brand, brandURL string, contextURLs []string) Analysis {
	answerURLs := AnswerURLs(answer)
	owned, external := Partition(answerURLs, contextURLs, brandURL)

	return Analysis{
		Citations:       Citations(answer),
		Mentions:        Mentions(answer, brand),
		OwnedSources:    owned,
		ExternalSources: external,
	}
}
