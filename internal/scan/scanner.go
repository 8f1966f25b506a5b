// Package scan locates repeated article-shaped blocks on a listing page when
// the source offers no machine-readable feed.
package scan

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/localscout-hq/localscout/internal/domain"
	"github.com/localscout-hq/localscout/internal/extract"
)

const (
	// maxBlocks bounds per-page work.
	maxBlocks = 8
	// minTitleChars rejects nav links and section labels posing as headings.
	minTitleChars = 10
)

// blockSelectors is the block priority order: class-tagged story wrappers
// first, bare article tags next, content-class divs last. Only the first
// selector that matches anything is used.
var blockSelectors = []string{
	classTaggedBlockSelector(),
	"article",
	`div[class*="content"]`,
}

func classTaggedBlockSelector() string {
	tags := []string{"div", "section", "li"}
	classes := []string{"story", "article", "post", "entry", "news"}

	parts := make([]string, 0, len(tags)*len(classes))
	for _, tag := range tags {
		for _, class := range classes {
			parts = append(parts, tag+`[class*="`+class+`"]`)
		}
	}
	return strings.Join(parts, ", ")
}

// headingSelectors is the per-block title cascade.
var headingSelectors = []string{
	`[class*="headline"]`,
	`[class*="title"]`,
	"h1", "h2", "h3", "h4",
}

// Scan extracts candidate articles from a listing page. Links are resolved
// absolute against pageURL. A block survives only with a real heading and a
// body that clears the storable word floor.
func Scan(raw, pageURL string) ([]domain.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}

	blocks := findBlocks(doc)
	if len(blocks) == 0 {
		return nil, domain.ErrExtractionEmpty
	}

	now := time.Now().UTC()
	seen := make(map[string]bool, len(blocks))
	candidates := make([]domain.Candidate, 0, len(blocks))

	for _, block := range blocks {
		title := blockTitle(block)
		if len(title) <= minTitleChars {
			continue
		}

		body := blockBody(block)
		words := extract.WordCount(body)
		if words < domain.MinStorableWords {
			continue
		}

		link := resolveURL(blockLink(block), pageURL)
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true

		candidates = append(candidates, domain.Candidate{
			ID:             domain.HashURL(link),
			Title:          title,
			Body:           body,
			SourceURL:      link,
			PublishedAt:    blockTime(block, now),
			WordCount:      words,
			ContentQuality: extract.QualityScore(words, extract.ModeScan),
		})
	}

	if len(candidates) == 0 {
		return nil, domain.ErrExtractionEmpty
	}
	return candidates, nil
}

// findBlocks returns up to maxBlocks blocks from the first selector that
// matches at all.
func findBlocks(doc *goquery.Document) []*goquery.Selection {
	for _, selector := range blockSelectors {
		var blocks []*goquery.Selection
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			blocks = append(blocks, s)
			return len(blocks) < maxBlocks
		})
		if len(blocks) > 0 {
			return blocks
		}
	}
	return nil
}

func blockTitle(block *goquery.Selection) string {
	for _, selector := range headingSelectors {
		if heading := block.Find(selector).First(); heading.Length() > 0 {
			if title := extract.CleanText(heading.Text()); title != "" {
				return title
			}
		}
	}
	return ""
}

// blockBody takes the longer of a content-class inner div and the block's
// concatenated paragraphs.
func blockBody(block *goquery.Selection) string {
	var fromDiv string
	if inner := block.Find(`div[class*="content"]`).First(); inner.Length() > 0 {
		fromDiv = extract.CleanText(inner.Text())
	}

	var paragraphs []string
	block.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := extract.CleanText(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	fromParagraphs := strings.Join(paragraphs, "\n\n")

	if len(fromDiv) > len(fromParagraphs) {
		return fromDiv
	}
	return fromParagraphs
}

func blockLink(block *goquery.Selection) string {
	if href, ok := block.Find("a[href]").First().Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	if href, ok := block.Find("link[href]").First().Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	return ""
}

// blockTime parses a <time datetime> attribute when the markup offers one.
func blockTime(block *goquery.Selection, fallback time.Time) time.Time {
	datetime, ok := block.Find("time[datetime]").First().Attr("datetime")
	if !ok {
		return fallback
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(datetime)); err == nil {
		return t
	}
	return fallback
}

func resolveURL(raw, base string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(parsed).String()
}
