package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ndlegal/citecheck/internal/model"
)

// retrySleep is the sleep function used between attempts (injectable for
// tests)
var retrySleep = time.Sleep

// HTTPError carries an HTTP error status through the retry predicate
type HTTPError struct {
	Status int
	URL    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Status, e.URL)
}

// RetryPolicy is an explicit retry-with-backoff schedule composed around
// adapter calls: delays of BaseDelay·2^attempt, capped at MaxDelay.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// PolicyFromConfig builds a RetryPolicy from configuration, filling
// zero fields with the defaults (3 attempts, 1s base, 60s cap).
func PolicyFromConfig(cfg model.RetryConfig) RetryPolicy {
	p := RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		MaxDelay:    cfg.MaxDelay,
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 60 * time.Second
	}
	return p
}

// Do runs op, retrying transient failures until the attempt budget is
// spent. Non-retryable errors return immediately.
func (p RetryPolicy) Do(ctx context.Context, op func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		err = op(ctx)
		if err == nil || !Retryable(err) {
			return err
		}
		if attempt < p.MaxAttempts-1 {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			retrySleep(p.backoff(attempt))
		}
	}
	return err
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	delay := p.BaseDelay << uint(attempt)
	if delay > p.MaxDelay || delay <= 0 {
		delay = p.MaxDelay
	}
	return delay
}

// Retryable reports whether an error denotes a transient fault: HTTP 429
// or 5xx, or a transport-level failure. Other HTTP statuses (auth,
// malformed request) will not improve on retry.
func Retryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status == 429 || (httpErr.Status >= 500 && httpErr.Status < 600)
	}

	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
