package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/ndlegal/citecheck/internal/model"
	"github.com/ndlegal/citecheck/internal/util"
	"github.com/ndlegal/citecheck/internal/worker"
)

// SourceNDCourts is the adapter ID and cache namespace for the
// ndcourts.gov opinion search scraper
const SourceNDCourts = "ndcourts"

const defaultNDCourtsURL = "https://www.ndcourts.gov"

// scraperCaseNameRe finds a "X v. Y" caption in listing text
var scraperCaseNameRe = regexp.MustCompile(`([A-Z][a-zA-Z\s.,']+?\sv\.\s[A-Z][a-zA-Z\s.,']+)`)

// NDCourts scrapes the ND Supreme Court opinion search. Unauthenticated,
// so it throttles itself to the configured scraper rate regardless of
// how the server responds, and consults robots.txt (fail-open).
type NDCourts struct {
	baseURL string
	http    *fetcher
	limiter *worker.Limiter
	retry   RetryPolicy
	robots  *util.RobotsChecker
}

// NewNDCourts creates the ndcourts.gov adapter. baseURL overrides the
// production endpoint (used by tests); robots may be nil to skip the
// robots.txt check.
func NewNDCourts(baseURL string, httpCfg model.HTTPConfig, limiter *worker.Limiter, retry RetryPolicy, robots *util.RobotsChecker) *NDCourts {
	if baseURL == "" {
		baseURL = defaultNDCourtsURL
	}
	return &NDCourts{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newFetcher(httpCfg),
		limiter: limiter,
		retry:   retry,
		robots:  robots,
	}
}

// ID returns the adapter name
func (s *NDCourts) ID() string { return SourceNDCourts }

// Available is always true: the scraper needs no credentials
func (s *NDCourts) Available() bool { return true }

// CanResolve restricts the scraper to ND slip citations; the opinion
// search indexes those.
func (s *NDCourts) CanResolve(kind model.Kind) bool { return kind == model.KindNDCase }

// Resolve searches the opinion listing for the citation
func (s *NDCourts) Resolve(ctx context.Context, cite model.Citation) model.VerificationResult {
	searchURL := s.baseURL + "/supreme-court/opinions"

	if s.robots != nil && !s.robots.IsAllowed(ctx, searchURL) {
		return sourceError(cite, SourceNDCourts, fmt.Errorf("disallowed by robots.txt"))
	}

	var result model.VerificationResult
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		// Inside the retry op so every attempt takes a token; the hard
		// scraper budget holds across retries too.
		if err := s.limiter.Wait(ctx, SourceNDCourts); err != nil {
			return err
		}

		params := url.Values{}
		params.Set("search", cite.Normalized)

		resp, err := s.http.get(ctx, searchURL, params, nil)
		if err != nil {
			return err
		}
		if resp.Status != http.StatusOK {
			return &HTTPError{Status: resp.Status, URL: searchURL}
		}

		text := pageText(resp.Body)
		idx := strings.Index(text, cite.Normalized)
		if idx < 0 {
			result = notFound(cite, SourceNDCourts)
			return nil
		}

		result = verified(cite, SourceNDCourts,
			searchURL+"?search="+url.QueryEscape(cite.Normalized),
			captionBefore(text, idx))
		return nil
	})
	if err != nil {
		return sourceError(cite, SourceNDCourts, err)
	}

	return result
}

// FetchFullText is not supported: the listing confirms existence but
// carries only captions.
func (s *NDCourts) FetchFullText(ctx context.Context, cite model.Citation) (string, error) {
	return "", ErrNoFullText
}

// pageText flattens an HTML document into whitespace-normalized text
func pageText(body []byte) string {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		// Malformed markup: fall back to the raw bytes so a citation
		// string can still be found.
		return string(body)
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(b.String()), " ")
}

// captionBefore looks for a case caption in the text window preceding
// the citation match. Best effort: an empty name is fine.
func captionBefore(text string, idx int) string {
	start := idx - 200
	if start < 0 {
		start = 0
	}
	matches := scraperCaseNameRe.FindAllString(text[start:idx], -1)
	if len(matches) == 0 {
		return ""
	}
	return strings.Trim(matches[len(matches)-1], " ,")
}
