package analyze

import (
	"reflect"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	answer := "Visit https://shopify.com for more."
	got := Analyze(answer, "Shopify", "https://shopify.com", nil)

	wantCitations := []string{"https://shopify.com"}
	if !reflect.DeepEqual(got.Citations, wantCitations) {
		t.Errorf("Citations = %v, want %v", got.Citations, wantCitations)
	}

	foundMention := false
	for _, m := range got.Mentions {
		if m == "Shopify" {
			foundMention = true
		}
	}
	if !foundMention {
		t.Errorf("Mentions = %v, want it to contain %q", got.Mentions, "Shopify")
	}

	wantOwned := []string{"https://shopify.com"}
	if !reflect.DeepEqual(got.OwnedSources, wantOwned) {
		t.Errorf("OwnedSources = %v, want %v", got.OwnedSources, wantOwned)
	}
	if len(got.ExternalSources) != 0 {
		t.Errorf("ExternalSources = %v, want empty", got.ExternalSources)
	}
}

func TestExtractURLs_StripsTrailingPunctuation(t *testing.T) {
	got := ExtractURLs("see https://example.org/page. and https://example.org/other?a=b,")
	want := []string{"https://example.org/page", "https://example.org/other?a=b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractURLs() = %v, want %v", got, want)
	}
}

func TestCitations_RequiresCapitalizedToken(t *testing.T) {
	answer := "more at https://example.org/page\nSee https://example.org/other"
	got := Citations(answer)
	want := []string{"https://example.org/other"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Citations() = %v, want %v", got, want)
	}
}

func TestCitations_AllURLsOnQualifyingLine(t *testing.T) {
	answer := "Compare https://a.example/x and https://b.example/y"
	got := Citations(answer)
	want := []string{"https://a.example/x", "https://b.example/y"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Citations() = %v, want %v", got, want)
	}
}

func TestCitations_DeduplicatesByFirstAppearance(t *testing.T) {
	answer := "See https://a.example/x\nAlso https://a.example/x again"
	got := Citations(answer)
	if len(got) != 1 {
		t.Errorf("Citations() = %v, want one entry", got)
	}
}

func TestMentions_WholeWordBoundaries(t *testing.T) {
	answer := "Shopify is big. Shopifyx is not shopify. (Shopify)"
	got := Mentions(answer, "Shopify")
	if len(got) != 3 {
		t.Errorf("Mentions() found %d occurrences %v, want 3", len(got), got)
	}
}

func TestMentions_RecordsEveryOccurrence(t *testing.T) {
	got := Mentions("Shopify and Shopify and Shopify", "Shopify")
	if len(got) != 3 {
		t.Errorf("Mentions() = %v, want 3 entries", got)
	}
}

func TestMentions_NonASCIIAnswer(t *testing.T) {
	// Lowercasing İ (U+0130) grows it from two bytes to three, so byte
	// offsets in the lowered answer run past the original's length.
	got := Mentions("İİİİİİİİİİ Shopify", "Shopify")
	if len(got) != 1 {
		t.Errorf("Mentions() = %v, want one occurrence after length-changing runes", got)
	}

	// A single İ shifts offsets by one byte without going out of bounds;
	// the boundary checks must still land on the right runes.
	got = Mentions("İ Shopify İ shopify", "Shopify")
	if len(got) != 2 {
		t.Errorf("Mentions() = %v, want 2 occurrences with drifted offsets", got)
	}

	got = Mentions("Überall Shopify", "Shopify")
	if len(got) != 1 {
		t.Errorf("Mentions() = %v, want one occurrence in a non-ASCII answer", got)
	}
}

func TestMentions_EmptyBrand(t *testing.T) {
	if got := Mentions("anything", ""); len(got) != 0 {
		t.Errorf("Mentions() with empty brand = %v, want empty", got)
	}
}

func TestPartition_MergeOrderAndOwnership(t *testing.T) {
	answerURLs := []string{"https://example.org/a", "https://blog.shopify.com/x"}
	contextURLs := []string{"https://blog.shopify.com/x", "https://other.net/b"}

	owned, external := Partition(answerURLs, contextURLs, "https://shopify.com")

	wantOwned := []string{"https://blog.shopify.com/x"}
	if !reflect.DeepEqual(owned, wantOwned) {
		t.Errorf("owned = %v, want %v", owned, wantOwned)
	}
	wantExternal := []string{"https://example.org/a", "https://other.net/b"}
	if !reflect.DeepEqual(external, wantExternal) {
		t.Errorf("external = %v, want %v", external, wantExternal)
	}
}

func TestAnswerURLs_OrderOfFirstAppearance(t *testing.T) {
	answer := "See https://b.example/y\nthen https://a.example/x and https://b.example/y"
	got := AnswerURLs(answer)
	want := []string{"https://b.example/y", "https://a.example/x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AnswerURLs() = %v, want %v", got, want)
	}
}

func TestAnalyze_IncludesContextURLsInPartition(t *testing.T) {
	got := Analyze("No links here.", "Shopify", "https://shopify.com",
		[]string{"https://shopify.com/pricing", "https://example.org/review"})

	if !reflect.DeepEqual(got.OwnedSources, []string{"https://shopify.com/pricing"}) {
		t.Errorf("OwnedSources = %v, want the context brand URL", got.OwnedSources)
	}
	if !reflect.DeepEqual(got.ExternalSources, []string{"https://example.org/review"}) {
		t.Errorf("ExternalSources = %v, want the context external URL", got.ExternalSources)
	}
	if len(got.Citations) != 0 {
		t.Errorf("Citations = %v, want empty for a linkless answer", got.Citations)
	}
}
