package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// minTitleChars is the floor a decoded title must clear to win its slot in
// the cascade.
const minTitleChars = 10

// titleSteps is the ordered title cascade, most specific first. The first
// step yielding a decoded title longer than minTitleChars wins, even if a
// later step would match something longer.
var titleSteps = []func(*goquery.Document) string{
	func(doc *goquery.Document) string {
		return firstText(doc, `h1[class*="headline"], h2[class*="headline"], h3[class*="headline"], [class*="entry-title"], [class*="article-title"]`)
	},
	func(doc *goquery.Document) string {
		return firstText(doc, `[itemprop="headline"], [itemprop="name"]`)
	},
	func(doc *goquery.Document) string {
		return metaContent(doc, `meta[property="og:title"], meta[name="twitter:title"]`)
	},
	jsonLDHeadline,
	func(doc *goquery.Document) string { return firstText(doc, "h1") },
	func(doc *goquery.Document) string { return firstText(doc, "title") },
}

// title walks the cascade and returns the first acceptable match.
func title(doc *goquery.Document) string {
	for _, step := range titleSteps {
		if t := CleanText(step(doc)); len(t) > minTitleChars {
			return t
		}
	}
	return ""
}

func firstText(doc *goquery.Document, selector string) string {
	var out string
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := strings.TrimSpace(s.Text()); t != "" {
			out = t
			return false
		}
		return true
	})
	return out
}

func metaContent(doc *goquery.Document, selector string) string {
	var out string
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if val, ok := s.Attr("content"); ok && strings.TrimSpace(val) != "" {
			out = strings.TrimSpace(val)
			return false
		}
		return true
	})
	return out
}

// jsonLDHeadline digs a "headline" field out of any ld+json block, including
// @graph wrappers.
func jsonLDHeadline(doc *goquery.Document) string {
	var out string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var payload any
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return true
		}
		if headline := findHeadline(payload); headline != "" {
			out = headline
			return false
		}
		return true
	})
	return out
}

func findHeadline(v any) string {
	switch node := v.(type) {
	case map[string]any:
		if headline, ok := node["headline"].(string); ok && strings.TrimSpace(headline) != "" {
			return strings.TrimSpace(headline)
		}
		if graph, ok := node["@graph"]; ok {
			return findHeadline(graph)
		}
	case []any:
		for _, item := range node {
			if headline := findHeadline(item); headline != "" {
				return headline
			}
		}
	}
	return ""
}
