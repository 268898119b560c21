package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ndlegal/citecheck/internal/model"
	"github.com/ndlegal/citecheck/internal/worker"
)

func testHTTPConfig() model.HTTPConfig {
	return model.DefaultConfig().HTTP
}

func testRetry() RetryPolicy {
	return PolicyFromConfig(model.RetryConfig{MaxAttempts: 3})
}

func fastLimiter() *worker.Limiter {
	return worker.NewLimiter(1000, 100)
}

func TestCourtListener_Unavailable(t *testing.T) {
	cl := NewCourtListener("", "", testHTTPConfig(), fastLimiter(), testRetry())
	if cl.Available() {
		t.Error("adapter should be unavailable without an API key")
	}
}

func TestCourtListener_KeyCommentStripped(t *testing.T) {
	cl := NewCourtListener("abc123  # prod key", "", testHTTPConfig(), fastLimiter(), testRetry())
	if cl.apiKey != "abc123" {
		t.Errorf("apiKey = %q, want %q", cl.apiKey, "abc123")
	}
}

func TestCourtListener_ResolveHit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token testkey" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("q"); got != `"2024 ND 156"` {
			t.Errorf("q = %q", got)
		}
		fmt.Fprint(w, `{"results":[{"caseName":"Smith v. Jones","absolute_url":"/opinion/123/smith/"}]}`)
	}))
	defer server.Close()

	cl := NewCourtListener("testkey", server.URL, testHTTPConfig(), fastLimiter(), testRetry())
	res := cl.Resolve(context.Background(), ndCase("2024 ND 156"))

	if res.Status != model.StatusVerified {
		t.Fatalf("status = %s, want verified (%s)", res.Status, res.Error)
	}
	if res.CaseName != "Smith v. Jones" {
		t.Errorf("case name = %q", res.CaseName)
	}
	if res.URL != "https://www.courtlistener.com/opinion/123/smith/" {
		t.Errorf("url = %q", res.URL)
	}
}

func TestCourtListener_ResolveMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer server.Close()

	cl := NewCourtListener("testkey", server.URL, testHTTPConfig(), fastLimiter(), testRetry())
	res := cl.Resolve(context.Background(), ndCase("1999 ND 1"))

	if res.Status != model.StatusNotFound {
		t.Errorf("status = %s, want not_found", res.Status)
	}
}

func TestCourtListener_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"results":[{"caseName":"Doe v. Roe","absolute_url":"/opinion/9/doe/"}]}`)
	}))
	defer server.Close()

	cl := NewCourtListener("testkey", server.URL, testHTTPConfig(), fastLimiter(), testRetry())
	res := cl.Resolve(context.Background(), ndCase("2020 ND 5"))

	if res.Status != model.StatusVerified {
		t.Errorf("status = %s, want verified after retries", res.Status)
	}
	if calls != 3 {
		t.Errorf("server saw %d calls, want 3", calls)
	}
}

func TestCourtListener_RetriesTakeLimiterTokens(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"results":[{"caseName":"Doe v. Roe","absolute_url":"/opinion/9/doe/"}]}`)
	}))
	defer server.Close()

	// Backoff sleep is disabled package-wide, so any spacing between
	// attempts comes from the limiter: capacity-1 bucket at 50/s means
	// the second and third attempts each wait ~20ms for a token.
	limiter := worker.NewLimiter(50, 1)
	cl := NewCourtListener("testkey", server.URL, testHTTPConfig(), limiter, testRetry())

	start := time.Now()
	res := cl.Resolve(context.Background(), ndCase("2020 ND 5"))
	elapsed := time.Since(start)

	if res.Status != model.StatusVerified {
		t.Fatalf("status = %s, want verified after retries (%s)", res.Status, res.Error)
	}
	if calls != 3 {
		t.Errorf("server saw %d calls, want 3", calls)
	}
	if elapsed < 35*time.Millisecond {
		t.Errorf("three attempts completed in %v; each retry must take a limiter token", elapsed)
	}
}

func TestCourtListener_ExhaustedRetriesIsSourceError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cl := NewCourtListener("testkey", server.URL, testHTTPConfig(), fastLimiter(), testRetry())
	res := cl.Resolve(context.Background(), ndCase("2020 ND 5"))

	if res.Status != model.StatusSourceError {
		t.Errorf("status = %s, want source_error", res.Status)
	}
	if calls != 3 {
		t.Errorf("server saw %d calls, want 3 attempts", calls)
	}
}

func TestCourtListener_AuthFailureNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	cl := NewCourtListener("badkey", server.URL, testHTTPConfig(), fastLimiter(), testRetry())
	res := cl.Resolve(context.Background(), ndCase("2020 ND 5"))

	if res.Status != model.StatusSourceError {
		t.Errorf("status = %s, want source_error", res.Status)
	}
	if calls != 1 {
		t.Errorf("server saw %d calls, want 1 (4xx is not retryable)", calls)
	}
}
