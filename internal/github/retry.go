package github

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// parseRateHeaders reads GitHub's rate limit headers.
func parseRateHeaders(h http.Header) (remaining int, reset time.Time, retryAfter int) {
	remaining = atoi(h.Get("X-RateLimit-Remaining"))
	if rs := h.Get("X-RateLimit-Reset"); rs != "" {
		if sec := atoi(rs); sec > 0 {
			reset = time.Unix(int64(sec), 0).UTC()
		}
	}
	retryAfter = atoi(h.Get("Retry-After"))
	return remaining, reset, retryAfter
}

// computeWait decides how long to wait based on headers. Zero means the
// headers give no hint.
func computeWait(remaining int, reset time.Time, retryAfter int, now time.Time) time.Duration {
	if retryAfter > 0 {
		return time.Duration(retryAfter) * time.Second
	}
	if remaining <= 0 && !reset.IsZero() && reset.After(now) {
		return reset.Sub(now)
	}
	return 0
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// isRateLimited reports whether a 403 is GitHub's primary or secondary rate
// limit rather than a permission problem.
func isRateLimited(resp *http.Response) bool {
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		return false
	}
	return resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.Header.Get("Retry-After") != ""
}

// checkRetry extends the default policy (transport errors, 429, 5xx) with
// rate-limited 403 responses.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil && isRateLimited(resp) {
		return true, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// backoff waits as long as the rate limit headers ask, capped at maxWait,
// and falls back to exponential backoff.
func (c *Client) backoff(minWait, maxWait time.Duration, attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		remaining, reset, retryAfter := parseRateHeaders(resp.Header)
		if resp.Header.Get("X-RateLimit-Remaining") == "" {
			remaining = 1
		}
		if wait := computeWait(remaining, reset, retryAfter, c.now()); wait > 0 {
			if wait > maxWait {
				wait = maxWait
			}
			c.logger.Warn("github rate limited, backing off",
				"wait", wait,
				"attempt", attempt,
				"status", resp.StatusCode,
			)
			return wait
		}
	}
	return retryablehttp.DefaultBackoff(minWait, maxWait, attempt, resp)
}
