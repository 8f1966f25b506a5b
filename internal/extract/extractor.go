// Package extract converts raw HTML documents into clean article titles and
// body text via a fixed cascade of progressively less confident strategies.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Mode identifies which upstream strategy produced the content. Less
// confident strategies earn lower quality ceilings.
type Mode int

const (
	// ModeEnriched marks full article text fetched from the item's own page.
	ModeEnriched Mode = iota
	// ModeScan marks text scraped straight off a listing page.
	ModeScan
	// ModeBasic marks minimal meta/paragraph extraction from a root page.
	ModeBasic
)

// Result holds the extracted title and joined body text of one document.
type Result struct {
	Title   string
	Content string
}

// FromHTML parses the document and runs the full extraction cascade.
func FromHTML(raw string) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return Result{}, fmt.Errorf("parse html: %w", err)
	}
	return FromDocument(doc), nil
}

// FromDocument runs title and body extraction on an already parsed document.
// Every strategy runs at most once, in cascade order.
func FromDocument(doc *goquery.Document) Result {
	return Result{
		Title:   title(doc),
		Content: body(doc),
	}
}

// QualityScore derives a 0-100 content quality score from the word count,
// with a ceiling that reflects extraction confidence.
func QualityScore(words int, mode Mode) int {
	switch mode {
	case ModeEnriched:
		return min(words*2, 100)
	case ModeScan:
		return min(words*3/2, 100)
	default:
		return min(words, 75)
	}
}
