// Package scraper sequences the scrape strategies for one source and owns
// duplicate suppression, relevance scoring, and metric reporting.
package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/localscout-hq/localscout/internal/discovery"
	"github.com/localscout-hq/localscout/internal/domain"
	"github.com/localscout-hq/localscout/internal/enrich"
	"github.com/localscout-hq/localscout/internal/feed"
	"github.com/localscout-hq/localscout/internal/logger"
	"github.com/localscout-hq/localscout/internal/relevance"
	"github.com/localscout-hq/localscout/internal/scan"
	"github.com/localscout-hq/localscout/internal/store"
	"github.com/localscout-hq/localscout/pkg/httpclient"
	"github.com/localscout-hq/localscout/pkg/publishers"
)

// Config wires the scraper's collaborators.
type Config struct {
	Client       httpclient.Client
	Articles     store.ArticleStore
	Sources      store.SourceStore
	Scorer       *relevance.Scorer
	Publishers   []publishers.Publisher
	Log          logger.Logger
	Workers      int
	MinRelevance int
}

// Scraper runs the strategy cascade: feed parsing, then HTML scanning, then
// feed discovery. Strategies are mutually exclusive fallbacks; partial
// results from two strategies are never mixed in one pass.
type Scraper struct {
	client       httpclient.Client
	parser       *feed.Parser
	enricher     *enrich.Enricher
	discoverer   *discovery.Discoverer
	scorer       *relevance.Scorer
	articles     store.ArticleStore
	sources      store.SourceStore
	pubs         []publishers.Publisher
	log          logger.Logger
	minRelevance int
}

// New builds a Scraper from its collaborators.
func New(cfg Config) *Scraper {
	log := cfg.Log
	if log == nil {
		log = logger.NopLogger{}
	}

	client := cfg.Client
	if client == nil {
		client = httpclient.NewRestyClient(30 * time.Second)
	}

	parser := feed.NewParser()

	scorer := cfg.Scorer
	if scorer == nil {
		scorer = relevance.NewScorer(nil, log)
	}

	return &Scraper{
		client:       client,
		parser:       parser,
		enricher:     enrich.NewEnricher(client, log, cfg.Workers),
		discoverer:   discovery.NewDiscoverer(client, parser, log),
		scorer:       scorer,
		articles:     cfg.Articles,
		sources:      cfg.Sources,
		pubs:         cfg.Publishers,
		log:          log,
		minRelevance: cfg.MinRelevance,
	}
}

// Scrape runs the full pipeline for one source. It never panics and never
// returns an error: every failure mode lands in the Result, and only total
// exhaustion of all three strategies yields Success == false.
func (s *Scraper) Scrape(ctx context.Context, req domain.Request) domain.Result {
	start := time.Now()

	src := s.resolveSource(ctx, req)
	region := req.Region
	if region == "" {
		region = src.Region
	}
	feedURL := req.FeedURL
	if feedURL == "" {
		feedURL = src.FeedURL
	}

	result := domain.Result{Method: domain.MethodNone}

	candidates := s.runStrategies(ctx, feedURL, &result)

	for i := range candidates {
		candidates[i].RegionalRelevance = s.scorer.Score(candidates[i], src.Type, region)
	}
	result.Articles = candidates
	result.ArticlesFound = len(candidates)
	result.Success = len(candidates) > 0

	var stored []domain.Candidate
	if result.Success {
		stored = s.storeCandidates(ctx, candidates, src.ID, region, &result)
	}

	result.Duration = time.Since(start)

	s.reportMetrics(ctx, src.ID, result)
	s.publish(ctx, src.ID, region, result, stored)

	s.log.InfoObj("scrape finished", "scrape_done", map[string]any{
		"source_id":  src.ID,
		"method":     result.Method,
		"found":      result.ArticlesFound,
		"stored":     result.ArticlesStored,
		"duplicates": result.DuplicatesSkipped,
		"success":    result.Success,
		"elapsed_ms": result.Duration.Milliseconds(),
	})

	return result
}

// resolveSource loads the descriptor, degrading to the request fields when
// the store has no entry.
func (s *Scraper) resolveSource(ctx context.Context, req domain.Request) domain.Source {
	if s.sources != nil {
		if src, err := s.sources.GetSource(ctx, req.SourceID); err == nil {
			return src
		} else if !errors.Is(err, domain.ErrSourceNotFound) {
			s.log.WarnObj("source descriptor read failed", "source_read_error", map[string]any{
				"source_id": req.SourceID,
				"error":     err.Error(),
			})
		}
	}
	return domain.Source{ID: req.SourceID, FeedURL: req.FeedURL, Region: req.Region}
}

// runStrategies escalates feed -> html scan -> discovery, recording each
// failure, and returns the first strategy's surviving candidates.
func (s *Scraper) runStrategies(ctx context.Context, feedURL string, result *domain.Result) []domain.Candidate {
	feedBody, fetchErr := httpclient.Fetch(ctx, s.client, feedURL, httpclient.AcceptFeed, httpclient.FeedTimeout)
	if fetchErr != nil {
		result.Errors = append(result.Errors, fetchErr.Error())
	} else if candidates := s.tryFeed(ctx, string(feedBody), feedURL, result); len(candidates) > 0 {
		result.Method = domain.MethodRSS
		return candidates
	}

	if candidates := s.tryScan(ctx, feedBody, feedURL, result); len(candidates) > 0 {
		result.Method = domain.MethodHTML
		return candidates
	}

	if candidates := s.tryDiscovery(ctx, feedURL, result); len(candidates) > 0 {
		result.Method = domain.MethodFallback
		return candidates
	}

	return nil
}

// tryFeed parses the payload as a feed and enriches the items.
func (s *Scraper) tryFeed(ctx context.Context, body, feedURL string, result *domain.Result) []domain.Candidate {
	candidates, err := s.parser.Parse(body, feedURL)
	if err != nil {
		result.Errors = append(result.Errors, "feed: "+err.Error())
		return nil
	}
	if len(candidates) == 0 {
		result.Errors = append(result.Errors, "feed: no usable items")
		return nil
	}

	enriched := s.enricher.Enrich(ctx, candidates)
	if len(enriched) == 0 {
		result.Errors = append(result.Errors, "feed: all items dropped at quality gate")
	}
	return enriched
}

// tryScan scans the listing page directly. The feed fetch's payload is
// reused when available; otherwise the page is fetched with HTML headers.
func (s *Scraper) tryScan(ctx context.Context, feedBody []byte, pageURL string, result *domain.Result) []domain.Candidate {
	raw := feedBody
	if raw == nil {
		fetched, err := httpclient.Fetch(ctx, s.client, pageURL, httpclient.AcceptHTML, httpclient.PageTimeout)
		if err != nil {
			result.Errors = append(result.Errors, "scan: "+err.Error())
			return nil
		}
		raw = fetched
	}

	candidates, err := scan.Scan(string(raw), pageURL)
	if err != nil {
		result.Errors = append(result.Errors, "scan: "+err.Error())
		return nil
	}
	return candidates
}

// tryDiscovery probes for a hidden feed and falls back to basic extraction.
func (s *Scraper) tryDiscovery(ctx context.Context, sourceURL string, result *domain.Result) []domain.Candidate {
	candidates, viaFeed, err := s.discoverer.Discover(ctx, sourceURL)
	if err != nil {
		result.Errors = append(result.Errors, "discovery: "+err.Error())
		return nil
	}

	if viaFeed {
		enriched := s.enricher.Enrich(ctx, candidates)
		if len(enriched) == 0 {
			result.Errors = append(result.Errors, "discovery: all items dropped at quality gate")
		}
		return enriched
	}
	return candidates
}

// storeCandidates applies the relevance floor and hands survivors to the
// storage collaborator, returning the candidates actually inserted.
// Duplicates are counted, never treated as errors.
func (s *Scraper) storeCandidates(ctx context.Context, candidates []domain.Candidate, sourceID, region string, result *domain.Result) []domain.Candidate {
	if s.articles == nil {
		return nil
	}

	var stored []domain.Candidate
	now := time.Now().UTC()
	for _, c := range candidates {
		if !c.Storable() {
			continue
		}
		if c.RegionalRelevance < s.minRelevance {
			result.LowRelevanceCount++
			continue
		}

		err := s.articles.InsertArticle(ctx, domain.StoredArticle{
			Candidate: c,
			SourceID:  sourceID,
			Region:    region,
			StoredAt:  now,
		})
		switch {
		case errors.Is(err, domain.ErrDuplicateURL):
			result.DuplicatesSkipped++
		case err != nil:
			result.Errors = append(result.Errors, "store: "+err.Error())
		default:
			result.ArticlesStored++
			stored = append(stored, c)
		}
	}
	return stored
}

// reportMetrics writes scrape metrics back to the source store. Fire and
// forget: failure is logged, never surfaced.
func (s *Scraper) reportMetrics(ctx context.Context, sourceID string, result domain.Result) {
	if s.sources == nil || sourceID == "" {
		return
	}

	err := s.sources.UpdateMetrics(ctx, sourceID, time.Now().UTC(), result.Method, result.Duration.Milliseconds())
	if err != nil && !errors.Is(err, domain.ErrSourceNotFound) {
		s.log.WarnObj("metrics write failed", "metrics_write_error", map[string]any{
			"source_id": sourceID,
			"error":     err.Error(),
		})
	}
}

// publish fans the outcome out to configured publishers. Only candidates that
// actually reached storage are carried; duplicates and relevance rejects never
// leave the process. Best effort.
func (s *Scraper) publish(ctx context.Context, sourceID, region string, result domain.Result, stored []domain.Candidate) {
	if len(s.pubs) == 0 || len(stored) == 0 {
		return
	}

	evt := publishers.Event{
		SourceID:   sourceID,
		Region:     region,
		Method:     result.Method,
		OccurredAt: time.Now().UTC(),
	}
	for _, c := range stored {
		evt.Articles = append(evt.Articles, publishers.EventArticle{
			ID:          c.ID,
			Title:       c.Title,
			URL:         c.SourceURL,
			Relevance:   c.RegionalRelevance,
			Quality:     c.ContentQuality,
			PublishedAt: c.PublishedAt,
		})
	}

	for _, pub := range s.pubs {
		if err := pub.Publish(ctx, evt); err != nil {
			s.log.WarnObj("publisher delivery failed", "publish_error", map[string]any{
				"publisher_id": pub.ID(),
				"source_id":    sourceID,
				"error":        err.Error(),
			})
		}
	}
}
