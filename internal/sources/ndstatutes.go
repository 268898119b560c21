package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/ndlegal/citecheck/internal/model"
	"github.com/ndlegal/citecheck/internal/util"
	"github.com/ndlegal/citecheck/internal/worker"
)

// SourceNDStatutes is the adapter ID and cache namespace for the
// ndlegis.gov Century Code scraper
const SourceNDStatutes = "ndstatutes"

const defaultNDLegisURL = "https://www.ndlegis.gov"

// subsectionRe strips subsection designators: "14-09-06.2(1)(a)" ->
// "14-09-06.2". Chapter pages are keyed by the base section.
var subsectionRe = regexp.MustCompile(`\(.*\)`)

// NDStatutes verifies Century Code sections against the legislative
// branch site. Same self-imposed rate limit and backoff as the court
// scraper.
type NDStatutes struct {
	baseURL string
	http    *fetcher
	limiter *worker.Limiter
	retry   RetryPolicy
	robots  *util.RobotsChecker
}

// NewNDStatutes creates the ndlegis.gov adapter. baseURL overrides the
// production endpoint (used by tests); robots may be nil to skip the
// robots.txt check.
func NewNDStatutes(baseURL string, httpCfg model.HTTPConfig, limiter *worker.Limiter, retry RetryPolicy, robots *util.RobotsChecker) *NDStatutes {
	if baseURL == "" {
		baseURL = defaultNDLegisURL
	}
	return &NDStatutes{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newFetcher(httpCfg),
		limiter: limiter,
		retry:   retry,
		robots:  robots,
	}
}

// ID returns the adapter name
func (s *NDStatutes) ID() string { return SourceNDStatutes }

// Available is always true: the scraper needs no credentials
func (s *NDStatutes) Available() bool { return true }

// CanResolve covers Century Code sections only
func (s *NDStatutes) CanResolve(kind model.Kind) bool { return kind == model.KindStatute }

// Resolve checks that the section appears on its chapter page, falling
// back to the site search.
func (s *NDStatutes) Resolve(ctx context.Context, cite model.Citation) model.VerificationResult {
	base, chapterURL, ok := s.chapterURL(cite.Normalized)
	if !ok {
		// Not shaped like a title-chapter-section reference; nothing
		// to look up, and that is a definitive miss.
		return notFound(cite, SourceNDStatutes)
	}

	if s.robots != nil && !s.robots.IsAllowed(ctx, chapterURL) {
		return sourceError(cite, SourceNDStatutes, fmt.Errorf("disallowed by robots.txt"))
	}

	var result model.VerificationResult
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		if err := s.limiter.Wait(ctx, SourceNDStatutes); err != nil {
			return err
		}

		resp, err := s.http.get(ctx, chapterURL, nil, nil)
		if err != nil {
			return err
		}
		switch {
		case resp.Status == http.StatusOK:
			if strings.Contains(string(resp.Body), base) {
				result = verified(cite, SourceNDStatutes, chapterURL,
					"N.D.C.C. § "+cite.Normalized)
				return nil
			}
		case resp.Status != http.StatusNotFound:
			return &HTTPError{Status: resp.Status, URL: chapterURL}
		}

		// Chapter page missing or section absent from it: one more
		// chance via the site search.
		if err := s.limiter.Wait(ctx, SourceNDStatutes); err != nil {
			return err
		}

		params := url.Values{}
		params.Set("q", "N.D.C.C. "+base)
		searchURL := s.baseURL + "/search"
		searchResp, err := s.http.get(ctx, searchURL, params, nil)
		if err != nil {
			return err
		}
		if searchResp.Status != http.StatusOK {
			return &HTTPError{Status: searchResp.Status, URL: searchURL}
		}

		if strings.Contains(string(searchResp.Body), base) {
			result = verified(cite, SourceNDStatutes,
				searchURL+"?"+params.Encode(), "N.D.C.C. § "+cite.Normalized)
			return nil
		}

		result = notFound(cite, SourceNDStatutes)
		return nil
	})
	if err != nil {
		return sourceError(cite, SourceNDStatutes, err)
	}

	return result
}

// FetchFullText returns the chapter page as plain text for quotation
// checking.
func (s *NDStatutes) FetchFullText(ctx context.Context, cite model.Citation) (string, error) {
	_, chapterURL, ok := s.chapterURL(cite.Normalized)
	if !ok {
		return "", fmt.Errorf("not a section reference: %q", cite.Normalized)
	}

	if err := s.limiter.Wait(ctx, SourceNDStatutes); err != nil {
		return "", err
	}

	resp, err := s.http.get(ctx, chapterURL, nil, nil)
	if err != nil {
		return "", err
	}
	if resp.Status != http.StatusOK {
		return "", &HTTPError{Status: resp.Status, URL: chapterURL}
	}

	return pageText(resp.Body), nil
}

// chapterURL maps "14-09-06.2(1)(a)" to the base section "14-09-06.2"
// and its chapter page /cencode/t14c09.html
func (s *NDStatutes) chapterURL(section string) (base, chapterURL string, ok bool) {
	base = strings.TrimSpace(subsectionRe.ReplaceAllString(section, ""))

	parts := strings.Split(base, "-")
	if len(parts) < 2 {
		return "", "", false
	}

	title := zeroPad(parts[0])
	chapter := zeroPad(parts[1])
	return base, fmt.Sprintf("%s/cencode/t%sc%s.html", s.baseURL, title, chapter), true
}

// zeroPad left-pads a title or chapter number to two digits
func zeroPad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
