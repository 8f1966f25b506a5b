// Package discovery is the last-resort strategy: hunt for an undeclared feed
// behind a page, and failing that, squeeze minimal content out of the page
// itself.
package discovery

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/localscout-hq/localscout/internal/domain"
	"github.com/localscout-hq/localscout/internal/extract"
	"github.com/localscout-hq/localscout/internal/feed"
	"github.com/localscout-hq/localscout/internal/logger"
	"github.com/localscout-hq/localscout/pkg/httpclient"
)

// conventionalFeedPaths are probed after <link> hints, in this order.
var conventionalFeedPaths = []string{
	"/feed", "/rss", "/feed.xml", "/rss.xml", "/atom.xml", "/feeds/all.atom.xml",
}

// feedLinkRels are the <link rel> values that advertise a feed.
var feedLinkRels = map[string]bool{
	"alternate": true,
	"feed":      true,
	"rss":       true,
	"atom":      true,
}

const (
	// minDescriptionWords is the point below which a meta description is
	// abandoned for a paragraph scan.
	minDescriptionWords = 20
	// maxBasicParagraphs caps the best-effort paragraph scan.
	maxBasicParagraphs = 5
	// minBasicParagraphChars filters the paragraph scan.
	minBasicParagraphChars = 50
)

// Discoverer scans a source's root page for feed hints and falls back to
// basic content extraction.
type Discoverer struct {
	client httpclient.Client
	parser *feed.Parser
	log    logger.Logger
}

// NewDiscoverer builds a Discoverer sharing the pipeline's HTTP client and
// feed parser.
func NewDiscoverer(client httpclient.Client, parser *feed.Parser, log logger.Logger) *Discoverer {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Discoverer{client: client, parser: parser, log: log}
}

// Discover fetches the source's root page and tries every candidate feed URL
// in turn. On success the feed's raw candidates are returned with viaFeed
// true (the caller still enriches them). Otherwise a single basic-extraction
// candidate is returned, or an error when even that falls short.
func (d *Discoverer) Discover(ctx context.Context, sourceURL string) ([]domain.Candidate, bool, error) {
	rootURL, err := siteRoot(sourceURL)
	if err != nil {
		return nil, false, err
	}

	raw, err := httpclient.Fetch(ctx, d.client, rootURL, httpclient.AcceptHTML, httpclient.DiscoveryTimeout)
	if err != nil {
		return nil, false, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, false, err
	}

	for _, feedURL := range d.candidateFeedURLs(doc, rootURL) {
		body, fetchErr := httpclient.Fetch(ctx, d.client, feedURL, httpclient.AcceptFeed, httpclient.FeedTimeout)
		if fetchErr != nil {
			continue
		}

		candidates, parseErr := d.parser.Parse(string(body), feedURL)
		if parseErr != nil || len(candidates) == 0 {
			continue
		}

		d.log.InfoObj("discovered working feed", "discovery_feed_found", map[string]any{
			"source_url": sourceURL,
			"feed_url":   feedURL,
		})
		return candidates, true, nil
	}

	candidate, err := basicExtract(doc, rootURL)
	if err != nil {
		return nil, false, err
	}
	return []domain.Candidate{candidate}, false, nil
}

// candidateFeedURLs collects <link rel> hints and conventional paths,
// deduplicated, hints first.
func (d *Discoverer) candidateFeedURLs(doc *goquery.Document, rootURL string) []string {
	seen := make(map[string]bool)
	var urls []string

	add := func(raw string) {
		resolved := resolveURL(raw, rootURL)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		urls = append(urls, resolved)
	}

	doc.Find("link[rel][href]").Each(func(_ int, link *goquery.Selection) {
		rel, _ := link.Attr("rel")
		if !feedLinkRels[strings.ToLower(strings.TrimSpace(rel))] {
			return
		}
		if href, ok := link.Attr("href"); ok {
			add(href)
		}
	})

	for _, path := range conventionalFeedPaths {
		add(strings.TrimRight(rootURL, "/") + path)
	}

	return urls
}

// basicExtract pulls a minimal title and description off the page, scanning
// paragraphs when the meta description is too thin.
func basicExtract(doc *goquery.Document, pageURL string) (domain.Candidate, error) {
	title := basicTitle(doc)

	body := metaDescription(doc)
	if extract.WordCount(body) < minDescriptionWords {
		if scanned := basicParagraphs(doc); scanned != "" {
			body = scanned
		}
	}

	words := extract.WordCount(body)
	if words < domain.MinStorableWords {
		return domain.Candidate{}, domain.ErrExtractionEmpty
	}

	return domain.Candidate{
		ID:             domain.HashURL(pageURL),
		Title:          title,
		Body:           body,
		SourceURL:      pageURL,
		PublishedAt:    time.Now().UTC(),
		WordCount:      words,
		ContentQuality: extract.QualityScore(words, extract.ModeBasic),
	}, nil
}

func basicTitle(doc *goquery.Document) string {
	if t := extract.CleanText(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	if t := extract.CleanText(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		return extract.CleanText(content)
	}
	return ""
}

func metaDescription(doc *goquery.Document) string {
	for _, selector := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if desc := extract.CleanText(content); desc != "" {
				return desc
			}
		}
	}
	return ""
}

func basicParagraphs(doc *goquery.Document) string {
	var paragraphs []string
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := extract.CleanText(p.Text())
		if len(text) >= minBasicParagraphChars && !extract.IsBoilerplate(text) {
			paragraphs = append(paragraphs, text)
		}
		return len(paragraphs) < maxBasicParagraphs
	})
	return strings.Join(paragraphs, "\n\n")
}

// siteRoot reduces a URL to scheme://host.
func siteRoot(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	return parsed.Scheme + "://" + parsed.Host, nil
}

func resolveURL(raw, base string) string {
	raw = strings.TrimSpace(raw)
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
