// Package queryplan derives the search query for a run.
package queryplan

import "strings"

// Plan returns the search query for a brand/question pair. An explicit
// override is used verbatim with no transformation; otherwise the query is
// composed deterministically from the brand and question terms. Pure string
// transform, no I/O.
func Plan(brand, question, override string) string {
	if override != "" {
		return override
	}

	parts := make([]string, 0, 2)
	if b := strings.TrimSpace(brand); b != "" {
		parts = append(parts, b)
	}
	if q := strings.TrimSpace(question); q != "" {
		parts = append(parts, q)
	}
	return strings.Join(parts, " ")
}
