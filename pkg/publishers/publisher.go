// Package publishers fans scrape outcomes out to configured downstream sinks
// (cloud queues or plain HTTP endpoints). Delivery is best effort; a failed
// publish never fails the scrape that produced the event.
package publishers

import (
	"context"
	"time"
)

// Event is the payload published after a successful scrape run.
type Event struct {
	SourceID   string         `json:"source_id"`
	Region     string         `json:"region"`
	Method     string         `json:"method"`
	Articles   []EventArticle `json:"articles"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// EventArticle is the stored-article summary carried in an Event.
type EventArticle struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Relevance   int       `json:"relevance"`
	Quality     int       `json:"quality"`
	PublishedAt time.Time `json:"published_at"`
}

// Publisher delivers events to one configured sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Logger is the minimal structured logging surface publishers need.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	InfoObj(msg, event string, fields map[string]any)
	WarnObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) DebugObj(string, string, map[string]any) {}
func (nopLogger) InfoObj(string, string, map[string]any)  {}
func (nopLogger) WarnObj(string, string, map[string]any)  {}
func (nopLogger) ErrorObj(string, string, map[string]any) {}

// ensureLogger substitutes a no-op logger for nil.
func ensureLogger(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}
