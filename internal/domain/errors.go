package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the scrape pipeline. All of them are recoverable at the
// strategy level; only exhaustion of every strategy fails a scrape.
var (
	// ErrNotFeedContent means the payload failed the syndication-format sniff.
	ErrNotFeedContent = errors.New("content is not an rss or atom feed")

	// ErrExtractionEmpty means no extraction strategy produced enough body text.
	ErrExtractionEmpty = errors.New("extraction produced no usable content")

	// ErrDuplicateURL means the storage collaborator already holds an article
	// with the same canonical URL. Expected and counted, never fatal.
	ErrDuplicateURL = errors.New("article url already stored")

	// ErrSourceNotFound means the source descriptor store has no entry for the id.
	ErrSourceNotFound = errors.New("source not found")
)

// FetchError carries the status or transport reason for a failed HTTP fetch.
// It never propagates past the strategy that issued the fetch.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetchError wraps a transport failure.
func NewFetchError(url string, err error) *FetchError {
	return &FetchError{URL: url, Err: err}
}

// NewStatusError records a non-2xx response.
func NewStatusError(url string, status int) *FetchError {
	return &FetchError{URL: url, StatusCode: status}
}

// IsFetchError reports whether err is a fetch failure.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
