package feed

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/localscout-hq/localscout/internal/domain"
	"github.com/localscout-hq/localscout/internal/extract"
)

// maxItemsPerFeed bounds downstream enrichment cost per feed.
const maxItemsPerFeed = 10

// sniffMarkers are the cheap syndication-format probes. A payload containing
// none of them is rejected before any parser touches it.
var sniffMarkers = []string{"<rss", "<feed", "<item", "<entry>"}

// Parser turns raw feed payloads into candidate articles. RSS and Atom are
// handled uniformly.
type Parser struct {
	parser *gofeed.Parser
}

// NewParser builds a feed parser.
func NewParser() *Parser {
	return &Parser{parser: gofeed.NewParser()}
}

// Parse extracts up to maxItemsPerFeed candidates from the payload. Relative
// item links are resolved against baseURL. Returns domain.ErrNotFeedContent
// when the payload fails the content sniff.
func (p *Parser) Parse(content, baseURL string) ([]domain.Candidate, error) {
	if !looksLikeFeed(content) {
		return nil, domain.ErrNotFeedContent
	}

	parsed, err := p.parser.ParseString(content)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	candidates := make([]domain.Candidate, 0, min(len(parsed.Items), maxItemsPerFeed))
	for _, item := range parsed.Items {
		if len(candidates) >= maxItemsPerFeed {
			break
		}

		title := strings.TrimSpace(html.UnescapeString(item.Title))
		link := itemLink(item)
		if title == "" && link == "" {
			continue
		}
		link = resolveURL(link, baseURL)

		candidates = append(candidates, domain.Candidate{
			ID:          domain.HashURL(link),
			Title:       title,
			Summary:     itemSummary(item),
			SourceURL:   link,
			Author:      itemAuthor(item),
			PublishedAt: itemTime(item),
		})
	}

	return candidates, nil
}

// looksLikeFeed performs the content sniff that gates expensive parsing.
func looksLikeFeed(content string) bool {
	lowered := strings.ToLower(content)
	for _, marker := range sniffMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// itemLink prefers the plain link and falls back to Atom link entries, where
// the target lives in an href attribute.
func itemLink(item *gofeed.Item) string {
	if link := strings.TrimSpace(item.Link); link != "" {
		return link
	}
	for _, link := range item.Links {
		if link = strings.TrimSpace(link); link != "" {
			return link
		}
	}
	return ""
}

// itemSummary returns the description, falling back to embedded content.
// The text keeps its markup; enrichment decides whether it is ever used.
func itemSummary(item *gofeed.Item) string {
	if desc := strings.TrimSpace(item.Description); desc != "" {
		return desc
	}
	return strings.TrimSpace(item.Content)
}

// itemAuthor resolves the author, trying the item author first, then
// dc:creator, then any embedded name entries.
func itemAuthor(item *gofeed.Item) string {
	for _, person := range item.Authors {
		if person == nil {
			continue
		}
		if name := strings.TrimSpace(person.Name); name != "" {
			return extract.CleanText(name)
		}
	}
	if item.DublinCoreExt != nil {
		for _, creator := range item.DublinCoreExt.Creator {
			if creator = strings.TrimSpace(creator); creator != "" {
				return extract.CleanText(creator)
			}
		}
	}
	if item.Author != nil {
		if name := strings.TrimSpace(item.Author.Name); name != "" {
			return extract.CleanText(name)
		}
	}
	return ""
}

// itemTime falls back from publish to update time, then to scrape time.
func itemTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Now().UTC()
}

// resolveURL resolves a possibly relative URL against a base URL.
func resolveURL(raw, base string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}
	return baseURL.ResolveReference(parsed).String()
}
