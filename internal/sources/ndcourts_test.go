package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ndlegal/citecheck/internal/model"
	"github.com/ndlegal/citecheck/internal/worker"
)

const opinionListing = `<html><body>
<div class="opinions">
<a href="/supreme-court/opinion/2024ND156">Smith v. Jones, 2024 ND 156</a>
<a href="/supreme-court/opinion/2024ND155">State v. Miller, 2024 ND 155</a>
</div>
</body></html>`

func TestNDCourts_ResolveHit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search"); got != "2024 ND 156" {
			t.Errorf("search = %q", got)
		}
		fmt.Fprint(w, opinionListing)
	}))
	defer server.Close()

	s := NewNDCourts(server.URL, testHTTPConfig(), fastLimiter(), testRetry(), nil)
	res := s.Resolve(context.Background(), ndCase("2024 ND 156"))

	if res.Status != model.StatusVerified {
		t.Fatalf("status = %s, want verified (%s)", res.Status, res.Error)
	}
	if res.CaseName != "Smith v. Jones" {
		t.Errorf("case name = %q, want %q", res.CaseName, "Smith v. Jones")
	}
}

func TestNDCourts_ResolveMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>No results found.</body></html>`)
	}))
	defer server.Close()

	s := NewNDCourts(server.URL, testHTTPConfig(), fastLimiter(), testRetry(), nil)
	res := s.Resolve(context.Background(), ndCase("2024 ND 999"))

	if res.Status != model.StatusNotFound {
		t.Errorf("status = %s, want not_found", res.Status)
	}
}

func TestNDCourts_SelfImposedRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, opinionListing)
	}))
	defer server.Close()

	// Capacity-1 bucket refilling at 10/s keeps the test quick while
	// still proving the second request waits for a token.
	limiter := worker.NewLimiter(10, 1)
	s := NewNDCourts(server.URL, testHTTPConfig(), fastLimiter(), testRetry(), nil)
	s.limiter = limiter

	start := time.Now()
	s.Resolve(context.Background(), ndCase("2024 ND 156"))
	s.Resolve(context.Background(), ndCase("2024 ND 155"))
	elapsed := time.Since(start)

	if elapsed < 90*time.Millisecond {
		t.Errorf("two scraper requests completed in %v; expected rate limiting", elapsed)
	}
}

func TestNDCourts_ServerErrorBecomesSourceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewNDCourts(server.URL, testHTTPConfig(), fastLimiter(), testRetry(), nil)
	res := s.Resolve(context.Background(), ndCase("2024 ND 156"))

	if res.Status != model.StatusSourceError {
		t.Errorf("status = %s, want source_error", res.Status)
	}
}

func TestNDCourts_NoFullText(t *testing.T) {
	s := NewNDCourts("http://unused", testHTTPConfig(), fastLimiter(), testRetry(), nil)
	if _, err := s.FetchFullText(context.Background(), ndCase("2024 ND 156")); err != ErrNoFullText {
		t.Errorf("err = %v, want ErrNoFullText", err)
	}
}
