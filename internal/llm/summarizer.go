package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/ndlegal/citecheck/internal/model"
)

// Summarizer runs the configured provider against a finished report
type Summarizer struct {
	provider Provider
	cfg      model.LLMConfig
}

// NewSummarizer wraps a provider; a nil provider yields a no-op Summarizer
func NewSummarizer(provider Provider, cfg model.LLMConfig) *Summarizer {
	return &Summarizer{provider: provider, cfg: cfg}
}

// Annotate fills report.LLMSummary in place. Failures are logged to
// stderr and swallowed: the report is complete without the narrative.
func (s *Summarizer) Annotate(ctx context.Context, report *model.Report) {
	if s == nil || s.provider == nil {
		return
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:       report,
		EvidenceURLs: evidenceURLs(report),
		Model:        s.cfg.Model,
		MaxTokens:    s.cfg.MaxTokens,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "citecheck: narrative summary skipped: %v\n", err)
		return
	}

	report.LLMSummary = resp.Summary
}

// evidenceURLs collects the distinct evidence URLs from verified results
func evidenceURLs(report *model.Report) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, res := range report.Results {
		if res.URL == "" || seen[res.URL] {
			continue
		}
		seen[res.URL] = true
		urls = append(urls, res.URL)
	}
	return urls
}
