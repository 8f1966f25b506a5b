package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/localscout-hq/localscout/internal/domain"
)

var (
	articlesBucket = []byte("articles")
	sourcesBucket  = []byte("sources")
)

// Bolt implements ArticleStore and SourceStore on a local bbolt file.
type Bolt struct {
	db *bbolt.DB
}

// OpenBolt opens (or creates) the database file and ensures both buckets
// exist.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{articlesBucket, sourcesBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Close releases the underlying file.
func (b *Bolt) Close() error { return b.db.Close() }

// InsertArticle stores the article keyed by its canonical URL, rejecting
// collisions with domain.ErrDuplicateURL. The transaction makes the
// check-and-put atomic across concurrent scrapers.
func (b *Bolt) InsertArticle(_ context.Context, article domain.StoredArticle) error {
	key := []byte(article.SourceURL)

	payload, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("encode article: %w", err)
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(articlesBucket)
		if bucket.Get(key) != nil {
			return domain.ErrDuplicateURL
		}
		return bucket.Put(key, payload)
	})
}

// GetSource loads a source descriptor by id.
func (b *Bolt) GetSource(_ context.Context, id string) (domain.Source, error) {
	var source domain.Source

	err := b.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(sourcesBucket).Get([]byte(id))
		if raw == nil {
			return domain.ErrSourceNotFound
		}
		return json.Unmarshal(raw, &source)
	})
	if err != nil {
		return domain.Source{}, err
	}
	return source, nil
}

// PutSource writes a source descriptor.
func (b *Bolt) PutSource(_ context.Context, source domain.Source) error {
	payload, err := json.Marshal(source)
	if err != nil {
		return fmt.Errorf("encode source: %w", err)
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sourcesBucket).Put([]byte(source.ID), payload)
	})
}

// UpdateMetrics writes back aggregate scrape metrics. The response time is
// folded into a running average with the previous value.
func (b *Bolt) UpdateMetrics(_ context.Context, id string, scrapedAt time.Time, method string, responseMs int64) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(sourcesBucket)

		raw := bucket.Get([]byte(id))
		if raw == nil {
			return domain.ErrSourceNotFound
		}

		var source domain.Source
		if err := json.Unmarshal(raw, &source); err != nil {
			return fmt.Errorf("decode source: %w", err)
		}

		source.LastScrapedAt = scrapedAt
		source.LastMethod = method
		if source.AvgResponseMs > 0 {
			source.AvgResponseMs = (source.AvgResponseMs + responseMs) / 2
		} else {
			source.AvgResponseMs = responseMs
		}

		payload, err := json.Marshal(source)
		if err != nil {
			return fmt.Errorf("encode source: %w", err)
		}
		return bucket.Put([]byte(id), payload)
	})
}
