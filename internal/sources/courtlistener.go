package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ndlegal/citecheck/internal/model"
	"github.com/ndlegal/citecheck/internal/worker"
)

// SourceCourtListener is the adapter ID and cache namespace for the
// CourtListener API
const SourceCourtListener = "courtlistener"

const defaultCourtListenerURL = "https://www.courtlistener.com/api/rest/v4"

// CourtListener verifies case citations against the CourtListener
// search API. Requires an API key; unavailable without one.
type CourtListener struct {
	apiKey  string
	baseURL string
	http    *fetcher
	limiter *worker.Limiter
	retry   RetryPolicy
}

// NewCourtListener creates the CourtListener adapter. baseURL overrides
// the production endpoint (used by tests); empty means production.
func NewCourtListener(apiKey, baseURL string, httpCfg model.HTTPConfig, limiter *worker.Limiter, retry RetryPolicy) *CourtListener {
	if baseURL == "" {
		baseURL = defaultCourtListenerURL
	}
	// Tolerate a trailing inline comment in the key value, a common
	// .env copy-paste artifact.
	apiKey = strings.TrimSpace(strings.SplitN(apiKey, "#", 2)[0])

	return &CourtListener{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newFetcher(httpCfg),
		limiter: limiter,
		retry:   retry,
	}
}

// ID returns the adapter name
func (c *CourtListener) ID() string { return SourceCourtListener }

// Available reports whether an API key is configured
func (c *CourtListener) Available() bool { return c.apiKey != "" }

// CanResolve covers both slip and reporter case citations
func (c *CourtListener) CanResolve(kind model.Kind) bool {
	return kind == model.KindNDCase || kind == model.KindReporter
}

type clSearchResponse struct {
	Results []struct {
		CaseName    string `json:"caseName"`
		AbsoluteURL string `json:"absolute_url"`
	} `json:"results"`
}

// Resolve searches CourtListener for the citation
func (c *CourtListener) Resolve(ctx context.Context, cite model.Citation) model.VerificationResult {
	var result model.VerificationResult
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		// Inside the retry op so every attempt takes a token; retried
		// requests must not bypass the configured quota.
		if err := c.limiter.Wait(ctx, SourceCourtListener); err != nil {
			return err
		}

		params := url.Values{}
		params.Set("q", fmt.Sprintf("%q", cite.Normalized))
		params.Set("type", "o")

		header := http.Header{}
		header.Set("Authorization", "Token "+c.apiKey)

		resp, err := c.http.get(ctx, c.baseURL+"/search/", params, header)
		if err != nil {
			return err
		}
		if resp.Status != http.StatusOK {
			return &HTTPError{Status: resp.Status, URL: c.baseURL + "/search/"}
		}

		var data clSearchResponse
		if err := json.Unmarshal(resp.Body, &data); err != nil {
			return fmt.Errorf("decode search response: %w", err)
		}

		if len(data.Results) == 0 {
			result = notFound(cite, SourceCourtListener)
			return nil
		}

		hit := data.Results[0]
		result = verified(cite, SourceCourtListener,
			"https://www.courtlistener.com"+hit.AbsoluteURL, hit.CaseName)
		return nil
	})
	if err != nil {
		return sourceError(cite, SourceCourtListener, err)
	}

	return result
}

// FetchFullText is not supported: the search endpoint confirms existence
// but does not return opinion text.
func (c *CourtListener) FetchFullText(ctx context.Context, cite model.Citation) (string, error) {
	return "", ErrNoFullText
}
