// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the retrying HTTP round trip shared by the
// backend reference client and the search client.
package httputil

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// MaxRetryDelay caps both computed backoff and server-supplied Retry-After
// values.
var MaxRetryDelay = time.Minute

const defaultMaxRetries = 4

// retryable reports whether a status is worth retrying: rate limiting and
// temporary unavailability.
func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}

// DoWithRetry executes an HTTP request and retries on 429 and 503. The wait
// honours a Retry-After header when present, otherwise it starts at
// RetryBaseDelay and doubles each attempt. Waits never exceed MaxRetryDelay.
//
// When maxRetries is 0 the default (4) is used. If the context is cancelled
// during a wait the function returns ctx.Err(). After exhausting retries
// the last response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := retryDelay(resp.Header.Get("Retry-After"), attempt, time.Now())
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		slog.Debug("retrying request",
			"url", req.URL.Redacted(),
			"status", resp.StatusCode,
			"wait", wait,
			"attempt", attempt+1,
			"max", maxRetries)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// retryDelay parses Retry-After (delta seconds or an HTTP date) and falls
// back to exponential backoff.
func retryDelay(header string, attempt int, now time.Time) time.Duration {
	var wait time.Duration
	switch secs, err := strconv.Atoi(header); {
	case header == "":
		wait = time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
	case err == nil:
		wait = time.Duration(max(secs, 0)) * time.Second
	default:
		at, perr := http.ParseTime(header)
		if perr != nil {
			wait = time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		} else {
			wait = max(at.Sub(now), 0)
		}
	}
	return min(wait, MaxRetryDelay)
}
