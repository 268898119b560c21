// Package llm generates the optional narrative summary appended to a
// verification report. The summary never affects a status or a count: a
// provider failure is logged and the report ships without it.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ndlegal/citecheck/internal/model"
)

// Provider is a narrative-summary backend
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a summary of the report with strict evidence mode
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)
}

// SummarizeRequest contains the input for summarization
type SummarizeRequest struct {
	Report *model.Report

	// EvidenceURLs is the STRICT allowlist of URLs the summary may cite.
	// A response citing anything else is rejected as a hallucination.
	EvidenceURLs []string

	// Prompt overrides the default prompt when non-empty
	Prompt string

	Model     string
	MaxTokens int
}

// SummarizeResponse contains the generated summary
type SummarizeResponse struct {
	Summary    string
	CitedURLs  []string
	Model      string
	TokensUsed int
}

// NewProvider builds the configured provider. An empty provider name
// disables summarization; callers get a nil Provider and no error.
func NewProvider(cfg model.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "openai":
		return NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}

// BuildPrompt constructs the default prompt. It feeds the model only
// what the report already says, so the narrative cannot introduce facts
// the verification did not establish.
func BuildPrompt(report *model.Report, evidenceURLs []string) string {
	s := report.Summary
	var b strings.Builder

	b.WriteString(`You are summarizing a legal citation verification report. The report
records whether each citation in a memo could be confirmed against a
source. It never judges the memo's legal reasoning, and neither do you.

RULES:
1. Cite only URLs from this list:
`)
	if len(evidenceURLs) == 0 {
		b.WriteString("(no evidence URLs)\n")
	}
	for i, u := range evidenceURLs {
		if i >= 20 {
			fmt.Fprintf(&b, "... and %d more\n", len(evidenceURLs)-20)
			break
		}
		fmt.Fprintf(&b, "- %s\n", u)
	}
	b.WriteString(`2. Do not speculate about citations the report could not verify; say they need human review.
3. Describe verification outcomes only, never legal merit.

`)
	fmt.Fprintf(&b, "Counts: %d citations, %d verified, %d not found, %d not verifiable, %d need manual review.\n",
		s.Total, s.Verified, s.NotFound, s.NotVerifiable, s.ManualReview)
	if s.QuotesChecked > 0 {
		fmt.Fprintf(&b, "Quotations: %d checked, %d flagged.\n", s.QuotesChecked, s.QuotesFlagged)
	}
	for _, res := range report.ManualReviewItems() {
		fmt.Fprintf(&b, "- needs review: %s (%s)\n", res.Citation.Raw, res.Error)
	}

	b.WriteString("\nWrite a 3-4 sentence summary of the verification outcome.")
	return b.String()
}
