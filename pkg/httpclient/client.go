package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// defaultUserAgent mimics a desktop browser; many news servers reject the Go
// default agent outright.
const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:126.0) Gecko/20100101 Firefox/126.0"

// Accept header values matched to the requested content type.
const (
	AcceptFeed = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"
	AcceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Response is the subset of an HTTP response the scraper consumes.
type Response interface {
	StatusCode() int
	Body() []byte
}

// Client issues GET requests with per-request headers. Implementations must
// honor context cancellation and apply a hard timeout.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// restyClient wraps a resty client tuned for scraping third-party news sites.
type restyClient struct {
	client *resty.Client
}

// NewRestyClient builds a Client with the given overall request timeout.
func NewRestyClient(timeout time.Duration) Client {
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", defaultUserAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &restyClient{client: c}
}

// Get performs the request. Non-2xx responses are returned, not errored; the
// caller decides how a bad status escalates.
func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := c.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
