package scan

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localscout-hq/localscout/internal/domain"
)

// storyBody builds a paragraph comfortably above the storable word floor.
func storyBody(topic string) string {
	sentence := fmt.Sprintf("The %s project moved a step closer this week as planners published their findings. ", topic)
	return strings.Repeat(sentence, 5)
}

func TestScanExtractsStoryBlocks(t *testing.T) {
	t.Parallel()

	page := `<html><body><div class="listing">
		<div class="story-card">
			<h3 class="title">Library Expansion Approved By Planners</h3>
			<a href="/news/library">Read more</a>
			<p>` + storyBody("library") + `</p>
		</div>
		<div class="story-card">
			<h3 class="title">New Market Traders Sign Up In Droves</h3>
			<a href="/news/market">Read more</a>
			<p>` + storyBody("market") + `</p>
		</div>
	</div></body></html>`

	candidates, err := Scan(page, "https://example.com/news")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	first := candidates[0]
	assert.Equal(t, "Library Expansion Approved By Planners", first.Title)
	assert.Equal(t, "https://example.com/news/library", first.SourceURL)
	assert.GreaterOrEqual(t, first.WordCount, domain.MinStorableWords)
	assert.Equal(t, min(first.WordCount*3/2, 100), first.ContentQuality)
}

func TestScanDropsThinBlocks(t *testing.T) {
	t.Parallel()

	page := `<html><body>
		<div class="story-card">
			<h3 class="title">Nav</h3>
			<a href="/about">About</a>
			<p>` + storyBody("depot") + `</p>
		</div>
		<div class="story-card">
			<h3 class="title">A Headline Long Enough To Pass</h3>
			<a href="/news/short">Read</a>
			<p>Far too few words here.</p>
		</div>
	</body></html>`

	_, err := Scan(page, "https://example.com/news")
	assert.ErrorIs(t, err, domain.ErrExtractionEmpty)
}

func TestScanFallsBackToArticleTags(t *testing.T) {
	t.Parallel()

	page := `<html><body>
		<article>
			<h2>Town Hall Clock Restored At Last</h2>
			<a href="https://example.com/news/clock">link</a>
			<p>` + storyBody("clock tower") + `</p>
		</article>
	</body></html>`

	candidates, err := Scan(page, "https://example.com/news")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Town Hall Clock Restored At Last", candidates[0].Title)
	assert.Equal(t, "https://example.com/news/clock", candidates[0].SourceURL)
}

func TestScanCapsBlocks(t *testing.T) {
	t.Parallel()

	var blocks strings.Builder
	for i := range 12 {
		fmt.Fprintf(&blocks, `<div class="news-item">
			<h3>Numbered Story Headline %d</h3>
			<a href="/news/%d">go</a>
			<p>%s</p>
		</div>`, i, i, storyBody("street"))
	}

	candidates, err := Scan("<html><body>"+blocks.String()+"</body></html>", "https://example.com")
	require.NoError(t, err)
	assert.Len(t, candidates, maxBlocks)
}

func TestScanPrefersLongerOfDivAndParagraphs(t *testing.T) {
	t.Parallel()

	longText := storyBody("swimming pool")
	page := `<html><body>
		<div class="story-card">
			<h3>Swimming Pool Reopens After Refit</h3>
			<a href="/news/pool">go</a>
			<div class="content-inner">` + longText + `</div>
			<p>Short teaser only.</p>
		</div>
	</body></html>`

	candidates, err := Scan(page, "https://example.com")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Contains(t, candidates[0].Body, "swimming pool project")
	assert.NotEqual(t, "Short teaser only.", candidates[0].Body)
}
