package prompt

import (
	"strings"
	"testing"

	"github.com/brandlens/brandlens/pkg/snippet"
)

var testSnippets = []snippet.Snippet{
	{URL: "https://shopify.com/pricing", Title: "Shopify Pricing", Text: "Plans for every business."},
	{URL: "https://example.org/review", Title: "", Text: "An independent review."},
}

func TestContextBlock_PreservesOrderAndURLs(t *testing.T) {
	block := Assembler{}.ContextBlock(testSnippets)

	first := strings.Index(block, "https://shopify.com/pricing")
	second := strings.Index(block, "https://example.org/review")
	if first < 0 || second < 0 {
		t.Fatalf("ContextBlock() = %q, want both URLs present", block)
	}
	if first > second {
		t.Error("ContextBlock() reordered snippets")
	}
	if !strings.Contains(block, "- Shopify Pricing (https://shopify.com/pricing): Plans for every business.") {
		t.Errorf("ContextBlock() = %q, want bullet-list entries", block)
	}
}

func TestContextBlock_Empty(t *testing.T) {
	if got := (Assembler{}).ContextBlock(nil); got != "" {
		t.Errorf("ContextBlock(nil) = %q, want empty", got)
	}
}

func TestBuild_CompactIsShorter(t *testing.T) {
	full := Assembler{Brand: "Shopify"}.Build("Best platform?", testSnippets)
	compact := Assembler{Brand: "Shopify", CompactPrompt: true}.Build("Best platform?", testSnippets)

	if len(compact) >= len(full) {
		t.Errorf("compact prompt (%d chars) not shorter than full (%d chars)", len(compact), len(full))
	}
	if !strings.Contains(full, "Best platform?") || !strings.Contains(compact, "Best platform?") {
		t.Error("Build() dropped the question")
	}
}

func TestBuild_MustLinkSiteDirective(t *testing.T) {
	a := Assembler{Brand: "Shopify", BrandURL: "https://shopify.com", MustLinkSite: true}
	got := a.Build("Best platform?", nil)
	if !strings.Contains(got, "https://shopify.com") {
		t.Errorf("Build() = %q, want must-link directive with brand URL", got)
	}

	without := Assembler{Brand: "Shopify", BrandURL: "https://shopify.com"}.Build("Best platform?", nil)
	if strings.Contains(without, "own site") {
		t.Error("Build() injected the directive without MustLinkSite")
	}
}

func TestInputTokens_CountsAssembledPrompt(t *testing.T) {
	a := Assembler{Brand: "Shopify"}
	assembled := a.Build("Best platform?", testSnippets)
	if got := a.InputTokens(assembled); got <= 0 {
		t.Errorf("InputTokens() = %d, want positive", got)
	}
}
