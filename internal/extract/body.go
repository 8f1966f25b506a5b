package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Body extraction thresholds. These numbers are behavioral contract, tuned
// against real pages; changing them changes which articles survive.
const (
	minStrategyChars          = 200
	minParagraphChars         = 30
	minFallbackParagraphChars = 40
	maxFallbackParagraphs     = 15
	minFragmentChars          = 20
	minParagraphWords         = 15
	minDivScore               = 10
	longDivChars              = 500
)

// bodySelectors is the fixed strategy cascade: news-specific containers,
// schema.org article bodies, generic CMS containers, then broad semantic
// tags. The first strategy whose filtered paragraphs reach minStrategyChars
// wins; later strategies are never consulted.
var bodySelectors = []string{
	newsContainerSelector(),
	`[itemprop="articleBody"]`,
	`div[class*="content"], div[id*="content"], div[class*="entry-content"], div[class*="post-body"], div[class*="article-body"]`,
	`main, article`,
}

// newsContainerSelector matches block elements class-tagged the way news CMSes
// tag their story wrappers.
func newsContainerSelector() string {
	tags := []string{"article", "div", "section"}
	classes := []string{"story", "article", "post", "entry", "main-content"}

	parts := make([]string, 0, len(tags)*len(classes))
	for _, tag := range tags {
		for _, class := range classes {
			parts = append(parts, tag+`[class*="`+class+`"]`)
		}
	}
	return strings.Join(parts, ", ")
}

// body runs the strategy cascade, then the whole-document paragraph fallback,
// then the div-scoring fallback. Each stage runs at most once.
func body(doc *goquery.Document) string {
	for _, selector := range bodySelectors {
		if text := bodyFromContainers(doc, selector); text != "" {
			return text
		}
	}

	if text := wholeDocumentFallback(doc); text != "" {
		return text
	}

	return bestScoredDiv(doc)
}

// bodyFromContainers tries each matching container and accepts the first one
// whose filtered paragraph text reaches the strategy bar.
func bodyFromContainers(doc *goquery.Document, selector string) string {
	var out string
	doc.Find(selector).EachWithBreak(func(_ int, container *goquery.Selection) bool {
		var paragraphs []string
		container.Find("p").Each(func(_ int, p *goquery.Selection) {
			text := CleanText(p.Text())
			if keepParagraph(text, minParagraphChars, false) {
				paragraphs = append(paragraphs, text)
			}
		})

		joined := strings.Join(paragraphs, "\n\n")
		if len(joined) >= minStrategyChars {
			out = joined
			return false
		}
		return true
	})
	return out
}

// wholeDocumentFallback scans every paragraph in the document, ignoring
// container boundaries, with the stricter filter.
func wholeDocumentFallback(doc *goquery.Document) string {
	var paragraphs []string
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := CleanText(p.Text())
		if keepParagraph(text, minFallbackParagraphChars, true) {
			paragraphs = append(paragraphs, text)
		}
		return len(paragraphs) < maxFallbackParagraphs
	})

	joined := strings.Join(paragraphs, "\n\n")
	if len(joined) >= minStrategyChars {
		return joined
	}
	return ""
}

// keepParagraph applies the paragraph quality filter. The strict variant also
// rejects bare metadata lines.
func keepParagraph(text string, floor int, strict bool) bool {
	if len(text) <= floor {
		return false
	}

	lowered := strings.ToLower(text)
	if isNavigation(lowered) || isAdvertising(lowered) || isSocialBoilerplate(lowered) {
		return false
	}
	if strict && isMetadata(lowered) {
		return false
	}

	return hasSubstantialContent(text)
}

var (
	navigationPhrases = []string{
		"skip to content", "read more", "related articles", "more stories",
		"sign in", "log in", "privacy policy", "terms of service",
		"cookie policy", "all rights reserved", "back to top", "main menu",
	}
	advertisingPhrases = []string{
		"advertisement", "sponsored", "promoted content", "buy now",
		"special offer", "discount code", "affiliate",
	}
	socialPhrases = []string{
		"follow us", "share this", "like us on", "join our newsletter",
		"subscribe to our", "find us on facebook", "follow on twitter",
	}
	metadataPhrases = []string{
		"posted on", "published on", "filed under", "tags:", "copyright",
		"photo credit", "image credit", "last updated", "©",
	}
)

// IsBoilerplate reports whether the text reads like navigation, advertising,
// or social-media furniture rather than article prose.
func IsBoilerplate(text string) bool {
	lowered := strings.ToLower(text)
	return isNavigation(lowered) || isAdvertising(lowered) || isSocialBoilerplate(lowered)
}

func isNavigation(lowered string) bool        { return containsAny(lowered, navigationPhrases) }
func isAdvertising(lowered string) bool       { return containsAny(lowered, advertisingPhrases) }
func isSocialBoilerplate(lowered string) bool { return containsAny(lowered, socialPhrases) }
func isMetadata(lowered string) bool          { return containsAny(lowered, metadataPhrases) }

func containsAny(s string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(s, phrase) {
			return true
		}
	}
	return false
}

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

// hasSubstantialContent requires at least minParagraphWords words and one
// sentence fragment of minFragmentChars or more.
func hasSubstantialContent(text string) bool {
	if WordCount(text) < minParagraphWords {
		return false
	}
	for _, fragment := range sentenceSplitRe.Split(text, -1) {
		if len(strings.TrimSpace(fragment)) >= minFragmentChars {
			return true
		}
	}
	return false
}

// promoVerbs penalize divs that read like calls to action rather than prose.
var promoVerbs = []string{"click", "subscribe", "follow", "share"}

var properNounRe = regexp.MustCompile(`^[A-Z][a-z]+`)

// bestScoredDiv is the readability-style last resort: score every div and
// keep the single best one above the floor.
func bestScoredDiv(doc *goquery.Document) string {
	var best string
	bestScore := 0

	doc.Find("div").Each(func(_ int, div *goquery.Selection) {
		text := CleanText(div.Text())
		if text == "" {
			return
		}
		if score := scoreDiv(text); score >= minDivScore && score > bestScore {
			bestScore = score
			best = text
		}
	})

	return best
}

// scoreDiv computes (sentences x 2) + proper-noun-like words + a length bonus,
// minus promotional-verb and cookie-banner penalties.
func scoreDiv(text string) int {
	score := sentenceCount(text)*2 + properNounCount(text)

	if len(text) > longDivChars {
		score += 10
	}

	lowered := strings.ToLower(text)
	for _, verb := range promoVerbs {
		score -= 5 * strings.Count(lowered, verb)
	}
	if strings.Contains(lowered, "cookie") {
		score -= 10
	}

	return score
}

func sentenceCount(text string) int {
	count := 0
	for _, fragment := range sentenceSplitRe.Split(text, -1) {
		if len(strings.TrimSpace(fragment)) >= minFragmentChars {
			count++
		}
	}
	return count
}

func properNounCount(text string) int {
	count := 0
	for _, word := range strings.Fields(text) {
		if properNounRe.MatchString(word) {
			count++
		}
	}
	return count
}
