// Package prompt assembles the generation prompt: instruction string,
// bounded context block, and the user question.
package prompt

import (
	"fmt"
	"strings"

	"github.com/brandlens/brandlens/pkg/snippet"
	"github.com/brandlens/brandlens/pkg/tokens"
)

const fullInstructions = `You are a helpful assistant answering a question about brands and products.
Answer in markdown. When your answer relies on one of the provided sources, cite its URL on the same line as the claim it supports.
Be specific and factual; do not invent sources.`

const compactInstructions = `Answer the question in markdown, citing provided source URLs inline where used.`

// Assembler formats snippets into the prompt and reports the token count of
// the result.
type Assembler struct {
	Brand         string
	BrandURL      string
	CompactPrompt bool
	MustLinkSite  bool
}

// ContextBlock renders the retained snippets as a compact bullet list,
// preserving selection order.
func (a Assembler) ContextBlock(snippets []snippet.Snippet) string {
	if len(snippets) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Context from the web:\n")
	for _, s := range snippets {
		title := s.Title
		if title == "" {
			title = s.URL
		}
		fmt.Fprintf(&b, "- %s (%s): %s\n", title, s.URL, s.Text)
	}
	return b.String()
}

// Build assembles the full prompt: instructions, optional must-link
// directive, context block, and question. The must-link directive biases
// the model toward referencing the brand site; the answer text itself is
// never rewritten.
func (a Assembler) Build(question string, snippets []snippet.Snippet) string {
	instructions := fullInstructions
	if a.CompactPrompt {
		instructions = compactInstructions
	}

	parts := []string{instructions}
	if a.MustLinkSite && a.BrandURL != "" {
		parts = append(parts, fmt.Sprintf("Where relevant, link to %s's own site: %s", a.Brand, a.BrandURL))
	}
	if block := a.ContextBlock(snippets); block != "" {
		parts = append(parts, block)
	}
	parts = append(parts, fmt.Sprintf("Question: %s", question))

	return strings.Join(parts, "\n\n")
}

// InputTokens counts the assembled prompt with the token-count capability.
func (a Assembler) InputTokens(assembled string) int {
	return tokens.Count(assembled, tokens.DefaultEncoding)
}
