package extract

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanText unescapes HTML entities and collapses runs of whitespace.
func CleanText(s string) string {
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// TextFromHTML strips markup from an HTML fragment and cleans the remainder.
// Used for RSS summaries, which frequently carry inline tags.
func TextFromHTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return CleanText(fragment)
	}
	return CleanText(doc.Text())
}

// WordCount tokenizes on whitespace.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
