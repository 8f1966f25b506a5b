package domain

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"time"
)

// Domain contains core models shared across the scraping pipeline.

// Source type priors used by the relevance scorer.
const (
	SourceTypeHyperlocal = "hyperlocal"
	SourceTypeRegional   = "regional"
	SourceTypeNational   = "national"
)

// Scrape methods recorded in results and source metrics.
const (
	MethodRSS      = "rss"
	MethodHTML     = "html"
	MethodFallback = "fallback"
	MethodNone     = "none"
)

// MinStorableWords is the quality floor: candidates whose body falls below it
// are dropped before they ever reach storage.
const MinStorableWords = 50

// Candidate is an in-flight extracted article. It is produced per scrape
// attempt and never persisted directly.
type Candidate struct {
	ID                string
	Title             string
	Body              string
	Summary           string
	SourceURL         string
	Author            string
	PublishedAt       time.Time
	WordCount         int
	ContentQuality    int
	RegionalRelevance int
}

// Storable reports whether the candidate clears the word-count floor.
func (c Candidate) Storable() bool {
	return c.WordCount >= MinStorableWords
}

// Source describes a configured news source. The core reads it and writes back
// aggregate scrape metrics; everything else is owned by an external workflow.
type Source struct {
	ID              string
	Name            string
	FeedURL         string
	Type            string
	Region          string
	CanonicalDomain string

	LastScrapedAt time.Time
	LastMethod    string
	AvgResponseMs int64
}

// Request triggers a scrape of a single source. Region defaults to the stored
// source region when empty.
type Request struct {
	FeedURL  string
	SourceID string
	Region   string
}

// Result is the orchestrator's output for one scrape run.
type Result struct {
	Success           bool
	Method            string
	ArticlesFound     int
	ArticlesStored    int
	DuplicatesSkipped int
	LowRelevanceCount int
	Articles          []Candidate
	Errors            []string
	Duration          time.Duration
}

// StoredArticle is the record handed to the storage collaborator.
type StoredArticle struct {
	Candidate
	SourceID string
	Region   string
	StoredAt time.Time
}

// HashURL generates a stable hex id for the given URL string.
func HashURL(u string) string {
	sum := sha1.Sum([]byte(u))
	return hex.EncodeToString(sum[:])
}
