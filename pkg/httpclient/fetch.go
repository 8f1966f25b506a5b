package httpclient

import (
	"context"
	"time"

	"github.com/localscout-hq/localscout/internal/domain"
)

// Strategy-specific fetch timeouts. Feeds answer fast or not at all; article
// pages get a little longer; discovery probes stay cheap.
const (
	FeedTimeout      = 15 * time.Second
	PageTimeout      = 20 * time.Second
	DiscoveryTimeout = 10 * time.Second
)

// maxBodyBytes caps how much of a response the pipeline will look at.
const maxBodyBytes = 1 << 20 // 1 MiB

// Fetch performs a timeout-guarded GET with the given Accept header and maps
// transport failures and non-2xx statuses to a domain.FetchError. It is the
// single I/O leaf every strategy goes through.
func Fetch(ctx context.Context, client Client, url, accept string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	headers := map[string]string{"Accept": accept}

	resp, err := client.Get(ctx, url, headers)
	if err != nil {
		return nil, domain.NewFetchError(url, err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, domain.NewStatusError(url, resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxBodyBytes {
		body = body[:maxBodyBytes]
	}
	return body, nil
}
