package snippet

import (
	"bufio"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"
)

// Snippet is the trimmed, markup-stripped text extracted from one page.
type Snippet struct {
	URL       string
	Title     string
	Text      string
	CharCount int
	Language  string
}

// Extract pulls the title element, meta description, and the main body text
// out of a page, strips markup, collapses whitespace, and truncates the
// combined text to maxChars characters.
func Extract(rawURL string, html []byte, maxChars int) (Snippet, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return Snippet{}, err
	}

	title := collapseWhitespace(doc.Find("title").First().Text())
	description := collapseWhitespace(doc.Find(`meta[name="description"]`).First().AttrOr("content", ""))
	body := extractBody(rawURL, html, doc)

	parts := make([]string, 0, 3)
	for _, part := range []string{title, description, body} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	text := Truncate(strings.Join(parts, " "), maxChars)

	return Snippet{
		URL:       rawURL,
		Title:     title,
		Text:      text,
		CharCount: len([]rune(text)),
	}, nil
}

// extractBody prefers the readability-distilled article text; when the page
// has no recognizable article it falls back to the raw body with script and
// style elements removed.
func extractBody(rawURL string, html []byte, doc *goquery.Document) string {
	if parsedURL, err := url.Parse(rawURL); err == nil {
		readabilityParser := readability.NewParser()
		if article, err := readabilityParser.Parse(strings.NewReader(string(html)), parsedURL); err == nil {
			if text := collapseWhitespace(article.TextContent); text != "" {
				return text
			}
		}
	}

	body := doc.Find("body").Clone()
	body.Find("script,style,noscript,template").Remove()
	return collapseWhitespace(body.Text())
}

// collapseWhitespace trims each line and joins non-empty lines with single
// spaces, so whitespace runs never survive into a snippet.
func collapseWhitespace(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		for _, field := range strings.Fields(scanner.Text()) {
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(field)
		}
	}
	return b.String()
}

// Truncate hard-cuts a string to max characters. Not word-boundary aware.
// A string already within the cap is returned unchanged.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// NewLanguageDetector builds the detector used to tag snippet language.
// The candidate set is deliberately small; detection is metadata only and
// never filters a source.
func NewLanguageDetector() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.German,
			lingua.French,
			lingua.Spanish,
			lingua.Portuguese,
		).
		Build()
}

// DetectLanguage tags a snippet with its ISO 639-1 language code, or ""
// when the detector is absent or unsure.
func DetectLanguage(detector lingua.LanguageDetector, text string) string {
	if detector == nil || text == "" {
		return ""
	}
	lang, ok := detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
