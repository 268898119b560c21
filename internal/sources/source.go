// Package sources implements the four verification sources behind a
// single capability interface. Errors never escape an adapter: every
// failure becomes a VerificationResult with status SourceError.
package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ndlegal/citecheck/internal/model"
)

// Source is the uniform capability every adapter provides: resolve a
// normalized citation to evidence or absence, and fetch full text for
// quotation checking when the source has it.
type Source interface {
	// ID names the adapter; it is also its cache namespace.
	ID() string

	// Available reports whether the adapter is usable at all (API key
	// present, corpus directory exists). An unavailable stage is
	// skipped by the orchestrator, never counted as a miss.
	Available() bool

	// CanResolve reports whether the adapter can look up citations of
	// the given kind.
	CanResolve(kind model.Kind) bool

	// Resolve looks the citation up. The returned status is Verified,
	// NotFound, or SourceError; Resolve never panics and never returns
	// an error.
	Resolve(ctx context.Context, cite model.Citation) model.VerificationResult

	// FetchFullText returns the source's full text for a citation, for
	// quotation checking. ErrNoFullText when the source cannot serve it.
	FetchFullText(ctx context.Context, cite model.Citation) (string, error)
}

// ErrNoFullText marks sources that confirm existence but cannot serve
// the underlying text.
var ErrNoFullText = errors.New("full text not available from this source")

func verified(cite model.Citation, source, evidenceURL, caseName string) model.VerificationResult {
	return model.VerificationResult{
		Citation:  cite,
		Status:    model.StatusVerified,
		Source:    source,
		URL:       evidenceURL,
		CaseName:  caseName,
		FetchedAt: time.Now().UTC(),
	}
}

func notFound(cite model.Citation, source string) model.VerificationResult {
	return model.VerificationResult{
		Citation:  cite,
		Status:    model.StatusNotFound,
		Source:    source,
		FetchedAt: time.Now().UTC(),
	}
}

func sourceError(cite model.Citation, source string, err error) model.VerificationResult {
	return model.VerificationResult{
		Citation:  cite,
		Status:    model.StatusSourceError,
		Source:    source,
		Error:     err.Error(),
		FetchedAt: time.Now().UTC(),
	}
}

// fetcher is the shared HTTP texture for the network adapters: UA and
// accept headers, redirect cap, bounded body reads.
type fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

func newFetcher(cfg model.HTTPConfig) *fetcher {
	return &fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
	}
}

type response struct {
	Status   int
	Body     []byte
	FinalURL string
}

// get performs a GET and reads the body up to maxBytes. Transport
// failures return an error; HTTP error statuses do not, since callers
// decide what a 404 means for their source.
func (f *fetcher) get(ctx context.Context, rawURL string, params url.Values, header http.Header) (*response, error) {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &response{
		Status:   resp.StatusCode,
		Body:     body,
		FinalURL: resp.Request.URL.String(),
	}, nil
}
