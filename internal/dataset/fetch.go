package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"survey-insights-go/internal/logger"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

const defaultFetchTimeout = 30 * time.Second

// Fetch downloads a remote source, retrying transport failures and 5xx
// responses with exponential backoff until maxElapsed. Other non-2xx
// responses fail immediately.
func Fetch(ctx context.Context, src string, maxElapsed time.Duration) ([]byte, error) {
	if maxElapsed <= 0 {
		maxElapsed = defaultFetchTimeout
	}
	log := logger.New().WithField("component", "dataset.fetch").WithField("url", src)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxElapsed

	var body []byte
	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			log.WithError(err).WithField("attempt", attempt).Warn("fetch failed")
			return err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			log.WithField("status", resp.StatusCode).WithField("attempt", attempt).Warn("server error")
			return fmt.Errorf("server error: %d", resp.StatusCode)
		}
		if resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("download failed: %d %s", resp.StatusCode, string(b)))
		}
		body = b
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}
	log.WithField("bytes", len(body)).Debug("source downloaded")
	return body, nil
}
