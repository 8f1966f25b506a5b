package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localscout-hq/localscout/internal/domain"
	"github.com/localscout-hq/localscout/internal/relevance"
	"github.com/localscout-hq/localscout/pkg/httpclient"
	"github.com/localscout-hq/localscout/pkg/publishers"
)

const testArticlePage = `<html><body><div class="story-body">
	<p>Halifax town council approved the new riverside development plan after a lengthy public consultation on Tuesday evening.</p>
	<p>Residents from several neighbouring streets spoke in favour of the proposal during the meeting and asked for safer street crossings.</p>
	<p>Planning officers said the scheme would bring new footpaths, trees and seating to the neglected stretch of the riverbank.</p>
</div></body></html>`

// memStore is an in-memory ArticleStore plus SourceStore for pipeline tests.
type memStore struct {
	mu       sync.Mutex
	articles map[string]domain.StoredArticle
	sources  map[string]domain.Source
	metrics  []string
}

func newMemStore() *memStore {
	return &memStore{
		articles: make(map[string]domain.StoredArticle),
		sources:  make(map[string]domain.Source),
	}
}

func (m *memStore) InsertArticle(_ context.Context, article domain.StoredArticle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.articles[article.SourceURL]; exists {
		return domain.ErrDuplicateURL
	}
	m.articles[article.SourceURL] = article
	return nil
}

func (m *memStore) GetSource(_ context.Context, id string) (domain.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.sources[id]
	if !ok {
		return domain.Source{}, domain.ErrSourceNotFound
	}
	return src, nil
}

func (m *memStore) PutSource(_ context.Context, source domain.Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[source.ID] = source
	return nil
}

func (m *memStore) UpdateMetrics(_ context.Context, id string, _ time.Time, method string, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[id]; !ok {
		return domain.ErrSourceNotFound
	}
	m.metrics = append(m.metrics, id+":"+method)
	return nil
}

// capturePublisher records delivered events.
type capturePublisher struct {
	mu     sync.Mutex
	events []publishers.Event
}

func (p *capturePublisher) ID() string   { return "capture" }
func (p *capturePublisher) Type() string { return "test" }

func (p *capturePublisher) Publish(_ context.Context, evt publishers.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func rssWithItems(links ...string) string {
	var items strings.Builder
	for i, link := range links {
		fmt.Fprintf(&items,
			`<item><title>Riverside Story Number %d</title><link>%s</link><description>short</description></item>`,
			i, link)
	}
	return `<?xml version="1.0"?><rss version="2.0"><channel><title>Gazette</title>` +
		items.String() + `</channel></rss>`
}

func newScraperForTest(st *memStore, pubs ...publishers.Publisher) *Scraper {
	return New(Config{
		Client:     httpclient.NewRestyClient(5 * time.Second),
		Articles:   st,
		Sources:    st,
		Publishers: pubs,
		Workers:    2,
	})
}

func TestScrapeFeedPathStoresEnrichedArticles(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/feed", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssWithItems(srvURL+"/news/riverside"))
	})
	mux.HandleFunc("/news/riverside", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, testArticlePage)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	st := newMemStore()
	require.NoError(t, st.PutSource(context.Background(), domain.Source{
		ID:     "gazette",
		Type:   domain.SourceTypeHyperlocal,
		Region: "calderdale",
	}))
	pub := &capturePublisher{}

	result := newScraperForTest(st, pub).Scrape(context.Background(), domain.Request{
		SourceID: "gazette",
		FeedURL:  srv.URL + "/feed",
	})

	assert.True(t, result.Success)
	assert.Equal(t, domain.MethodRSS, result.Method)
	assert.Equal(t, 1, result.ArticlesFound)
	assert.Equal(t, 1, result.ArticlesStored)
	assert.Empty(t, result.Errors)

	stored, ok := st.articles[srv.URL+"/news/riverside"]
	require.True(t, ok)
	assert.Equal(t, "gazette", stored.SourceID)
	assert.Equal(t, "calderdale", stored.Region)
	// "halifax" keyword on a hyperlocal base clamps high.
	assert.GreaterOrEqual(t, stored.RegionalRelevance, 70)

	require.Len(t, st.metrics, 1)
	assert.Equal(t, "gazette:rss", st.metrics[0])

	require.Len(t, pub.events, 1)
	assert.Equal(t, "gazette", pub.events[0].SourceID)
	require.Len(t, pub.events[0].Articles, 1)
}

func TestScrapeCountsDuplicatesWithinOneRun(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/feed", func(w http.ResponseWriter, _ *http.Request) {
		link := srvURL + "/news/riverside"
		fmt.Fprint(w, rssWithItems(link, link))
	})
	mux.HandleFunc("/news/riverside", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, testArticlePage)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	st := newMemStore()
	result := newScraperForTest(st).Scrape(context.Background(), domain.Request{
		SourceID: "gazette",
		FeedURL:  srv.URL + "/feed",
	})

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.ArticlesFound)
	assert.Equal(t, 1, result.ArticlesStored)
	assert.Equal(t, 1, result.DuplicatesSkipped)
	assert.Empty(t, result.Errors)
}

func TestPublishedEventCarriesOnlyStoredArticles(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/feed", func(w http.ResponseWriter, _ *http.Request) {
		link := srvURL + "/news/riverside"
		fmt.Fprint(w, rssWithItems(link, link))
	})
	mux.HandleFunc("/news/riverside", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, testArticlePage)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	st := newMemStore()
	pub := &capturePublisher{}
	result := newScraperForTest(st, pub).Scrape(context.Background(), domain.Request{
		SourceID: "gazette",
		FeedURL:  srv.URL + "/feed",
	})

	// two found, one stored; the duplicate must not leave the process
	require.Equal(t, 1, result.ArticlesStored)
	require.Len(t, pub.events, 1)
	assert.Len(t, pub.events[0].Articles, result.ArticlesStored)
	assert.Equal(t, srv.URL+"/news/riverside", pub.events[0].Articles[0].URL)
}

func TestScrapeEscalatesToHTMLScan(t *testing.T) {
	t.Parallel()

	story := strings.Repeat("The swimming pool project moved a step closer this week as planners published their findings. ", 5)
	listing := `<html><body>
		<div class="story-card">
			<h3 class="title">Swimming Pool Reopens After Refit</h3>
			<a href="/news/pool">Read more</a>
			<p>` + story + `</p>
		</div>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, listing)
	}))
	defer srv.Close()

	st := newMemStore()
	result := newScraperForTest(st).Scrape(context.Background(), domain.Request{
		SourceID: "gazette",
		FeedURL:  srv.URL + "/news",
	})

	assert.True(t, result.Success)
	assert.Equal(t, domain.MethodHTML, result.Method)
	assert.Equal(t, 1, result.ArticlesStored)
	// the feed strategy failed first and left a trace
	assert.NotEmpty(t, result.Errors)
}

func TestScrapeTotalFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	st := newMemStore()
	pub := &capturePublisher{}
	result := newScraperForTest(st, pub).Scrape(context.Background(), domain.Request{
		SourceID: "gazette",
		FeedURL:  srv.URL + "/feed",
	})

	assert.False(t, result.Success)
	assert.Equal(t, domain.MethodNone, result.Method)
	assert.Zero(t, result.ArticlesStored)
	assert.NotEmpty(t, result.Errors)
	assert.Empty(t, st.articles)
	assert.Empty(t, pub.events)
}

func TestScrapeAppliesRelevanceFloor(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/feed", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssWithItems(srvURL+"/news/riverside"))
	})
	mux.HandleFunc("/news/riverside", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, testArticlePage)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	st := newMemStore()
	require.NoError(t, st.PutSource(context.Background(), domain.Source{
		ID:     "national-wire",
		Type:   domain.SourceTypeNational,
		Region: "kirklees",
	}))

	scraper := New(Config{
		Client:       httpclient.NewRestyClient(5 * time.Second),
		Articles:     st,
		Sources:      st,
		Scorer:       relevance.NewScorer(nil, nil),
		Workers:      2,
		MinRelevance: 60,
	})

	result := scraper.Scrape(context.Background(), domain.Request{
		SourceID: "national-wire",
		FeedURL:  srv.URL + "/feed",
	})

	// national base with no kirklees terms scores below the floor
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.ArticlesFound)
	assert.Zero(t, result.ArticlesStored)
	assert.Equal(t, 1, result.LowRelevanceCount)
	assert.Empty(t, st.articles)
}

func TestScrapeFallsBackToRequestFieldsForUnknownSource(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/feed", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssWithItems(srvURL+"/news/riverside"))
	})
	mux.HandleFunc("/news/riverside", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, testArticlePage)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	st := newMemStore()
	result := newScraperForTest(st).Scrape(context.Background(), domain.Request{
		SourceID: "never-seeded",
		FeedURL:  srv.URL + "/feed",
		Region:   "bradford",
	})

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.ArticlesStored)

	stored, ok := st.articles[srv.URL+"/news/riverside"]
	require.True(t, ok)
	assert.Equal(t, "never-seeded", stored.SourceID)
	assert.Equal(t, "bradford", stored.Region)
	// metrics are skipped silently for sources the store has never seen
	assert.Empty(t, st.metrics)
}
