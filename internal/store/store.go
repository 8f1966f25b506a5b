// Package store is the storage collaborator boundary: an idempotent
// insert-or-reject article sink and a source descriptor read/metrics-write
// side.
package store

import (
	"context"
	"time"

	"github.com/localscout-hq/localscout/internal/domain"
)

// ArticleStore persists candidate articles keyed by canonical URL. Inserting
// an already-stored URL returns domain.ErrDuplicateURL; the caller counts it,
// it is not a failure. Duplicate atomicity is owned by the store, not by
// in-process locking.
type ArticleStore interface {
	InsertArticle(ctx context.Context, article domain.StoredArticle) error
}

// SourceStore reads source descriptors and accepts aggregate scrape metrics.
type SourceStore interface {
	GetSource(ctx context.Context, id string) (domain.Source, error)
	PutSource(ctx context.Context, source domain.Source) error
	UpdateMetrics(ctx context.Context, id string, scrapedAt time.Time, method string, responseMs int64) error
}
