package corpus

import (
	"context"
	"log/slog"
	"time"

	"github.com/mvil/nox"
)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// fetchWithRetry fetches url, retrying after each delay in delays.
// Invalid requests are not retried, and retrying stops once ctx is done.
func fetchWithRetry(ctx context.Context, f nox.Fetcher, url string, delays []time.Duration, logger *slog.Logger) ([]byte, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		body, err := f.Fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 || !retryable(err) {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		logger.Info("retrying fetch", "url", url, "attempt", attempt+2, "err", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return nil, lastErr
}

func retryable(err error) bool {
	return nox.ErrorCode(err) != nox.EINVALID
}
