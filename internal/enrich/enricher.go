// Package enrich replaces thin feed summaries with full article text fetched
// from each item's own page.
package enrich

import (
	"context"
	"sync"

	"github.com/localscout-hq/localscout/internal/domain"
	"github.com/localscout-hq/localscout/internal/extract"
	"github.com/localscout-hq/localscout/internal/logger"
	"github.com/localscout-hq/localscout/pkg/httpclient"
)

const (
	// defaultWorkers bounds concurrent article-page fetches so third-party
	// servers see a polite trickle rather than a burst.
	defaultWorkers = 6

	// minGoodChars accepts extracted content outright.
	minGoodChars = 200
	// minShortChars accepts extracted content flagged as short.
	minShortChars = 50
)

// Enricher fetches article pages and runs content extraction over them with a
// bounded worker pool.
type Enricher struct {
	client  httpclient.Client
	log     logger.Logger
	workers int
}

// NewEnricher creates an Enricher. A non-positive worker count falls back to
// the default pool size.
func NewEnricher(client httpclient.Client, log logger.Logger, workers int) *Enricher {
	if log == nil {
		log = logger.NopLogger{}
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Enricher{client: client, log: log, workers: workers}
}

// Enrich upgrades each candidate's body and drops candidates that fail the
// storable word floor. Results are order-independent; no candidate's
// extraction depends on another's. Partial results are returned on cancel.
func (e *Enricher) Enrich(ctx context.Context, candidates []domain.Candidate) []domain.Candidate {
	if len(candidates) == 0 {
		return nil
	}

	out := make([]*domain.Candidate, len(candidates))
	workerCount := min(len(candidates), e.workers)

	jobCh := make(chan int)
	var wg sync.WaitGroup

	for workerID := range workerCount {
		wg.Add(1)
		go e.worker(ctx, candidates, jobCh, out, &wg, workerID)
	}

	for idx := range candidates {
		if ctx.Err() != nil {
			break
		}
		jobCh <- idx
	}
	close(jobCh)

	wg.Wait()

	kept := make([]domain.Candidate, 0, len(candidates))
	for _, c := range out {
		if c != nil {
			kept = append(kept, *c)
		}
	}
	return kept
}

// worker processes candidates from the job channel. A nil slot in out means
// the candidate was dropped at the quality gate.
func (e *Enricher) worker(
	ctx context.Context,
	candidates []domain.Candidate,
	jobCh <-chan int,
	out []*domain.Candidate,
	wg *sync.WaitGroup,
	workerID int,
) {
	defer wg.Done()

	for idx := range jobCh {
		if ctx.Err() != nil {
			return
		}

		enriched, ok := e.enrichOne(ctx, candidates[idx], workerID)
		if !ok {
			e.log.DebugObj("candidate dropped below word floor", "enrich_drop", map[string]any{
				"worker_id": workerID,
				"url":       candidates[idx].SourceURL,
			})
			continue
		}
		out[idx] = &enriched
	}
}

// enrichOne fetches the article page, extracts the body, and applies the
// acceptance ladder: full extraction, short extraction, then the feed summary.
func (e *Enricher) enrichOne(ctx context.Context, c domain.Candidate, workerID int) (domain.Candidate, bool) {
	body := ""

	if c.SourceURL != "" {
		raw, err := httpclient.Fetch(ctx, e.client, c.SourceURL, httpclient.AcceptHTML, httpclient.PageTimeout)
		if err != nil {
			e.log.WarnObj("article page fetch failed", "enrich_fetch_error", map[string]any{
				"worker_id": workerID,
				"url":       c.SourceURL,
				"error":     err.Error(),
			})
		} else if result, extractErr := extract.FromHTML(string(raw)); extractErr == nil {
			switch {
			case len(result.Content) >= minGoodChars:
				body = result.Content
			case len(result.Content) >= minShortChars:
				e.log.DebugObj("extracted content is short", "enrich_short_content", map[string]any{
					"worker_id": workerID,
					"url":       c.SourceURL,
					"chars":     len(result.Content),
				})
				body = result.Content
			}
			if c.Title == "" && result.Title != "" {
				c.Title = result.Title
			}
		}
	}

	// An extracted body below the word floor is no better than no extraction;
	// the feed description gets its own chance before the candidate is dropped.
	if extract.WordCount(body) < domain.MinStorableWords {
		body = extract.TextFromHTML(c.Summary)
	}

	c.Body = body
	c.WordCount = extract.WordCount(body)
	if !c.Storable() {
		return domain.Candidate{}, false
	}
	c.ContentQuality = extract.QualityScore(c.WordCount, extract.ModeEnriched)

	return c, true
}
