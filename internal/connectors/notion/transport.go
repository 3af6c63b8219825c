package notion

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/notion-nlp/internal/logger"
)

const (
	// DefaultRequestsPerSecond is Notion's documented average limit.
	DefaultRequestsPerSecond = 3.0

	// DefaultMaxRetries is the number of retries after a 429 response.
	DefaultMaxRetries = 3

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"

	// maxRetryAfter caps the wait requested by the server.
	maxRetryAfter = time.Minute
)

// transport throttles requests with a token bucket and retries 429
// responses after the server's Retry-After delay.
type transport struct {
	base       http.RoundTripper
	limiter    *rate.Limiter
	maxRetries int

	// baseURL, when set, replaces the scheme and host of every request.
	baseURL *url.URL

	sleep func(ctx context.Context, d time.Duration) error
}

func newTransport(base http.RoundTripper, rps float64, maxRetries int, baseURL *url.URL) *transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	return &transport{
		base:       base,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		maxRetries: maxRetries,
		baseURL:    baseURL,
		sleep:      sleepContext,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if t.baseURL != nil {
		req = req.Clone(ctx)
		req.URL.Scheme = t.baseURL.Scheme
		req.URL.Host = t.baseURL.Host
		req.Host = t.baseURL.Host
	}

	for attempt := 0; ; attempt++ {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := t.base.RoundTrip(req)
		if err != nil || resp.StatusCode != http.StatusTooManyRequests || attempt >= t.maxRetries {
			return resp, err
		}

		next, ok := rewind(req)
		if !ok {
			return resp, nil
		}

		wait := retryAfter(resp.Header.Get(HeaderRetryAfter), attempt)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		logger.Warn("Notion rate limit hit, retrying in %s (attempt %d/%d)", wait, attempt+1, t.maxRetries)
		if err := t.sleep(ctx, wait); err != nil {
			return nil, err
		}
		req = next
	}
}

// rewind returns a copy of req with a fresh body, or false if the body
// cannot be replayed.
func rewind(req *http.Request) (*http.Request, bool) {
	next := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return next, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	next.Body = body
	return next, true
}

// retryAfter parses a Retry-After value in seconds, falling back to
// exponential backoff from one second.
func retryAfter(header string, attempt int) time.Duration {
	if secs, err := strconv.ParseFloat(header, 64); err == nil && secs >= 0 {
		d := time.Duration(secs * float64(time.Second))
		return min(d, maxRetryAfter)
	}
	return min(time.Second<<attempt, maxRetryAfter)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
