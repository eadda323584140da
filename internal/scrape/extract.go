package scrape

import (
	"html"
	"regexp"
	"strings"

	"evolve-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var reEmail = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)

// summaryPolicy strips every tag. Script and style bodies are dropped,
// the page title is kept as text.
var summaryPolicy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	p.AllowElementsContent("title")
	return p
}()

// ExtractEmails returns every email-like substring of page, deduplicated
// case-insensitively in first-seen order.
func ExtractEmails(page string) []string {
	matches := reEmail.FindAllString(page, -1)
	out := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		k := strings.ToLower(m)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, m)
	}
	return out
}

// ExtractTitle returns the text of the first <title> element, or "".
func ExtractTitle(page string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return ""
	}
	return util.CleanText(doc.Find("title").First().Text())
}

// Summarize reduces page to collapsed plain text of at most limit
// characters, with "..." appended when it was cut.
func Summarize(page string, limit int) string {
	text := html.UnescapeString(summaryPolicy.Sanitize(page))
	return util.Ellipsize(util.CleanText(text), limit)
}
