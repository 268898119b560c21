package model

import "time"

// Report is the complete verification report for one memo.
// Built once per run; immutable; owned by the output layer after return.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`

	// Results are ordered exactly as the input citations, regardless of
	// the order in which verification completed.
	Results []VerificationResult `json:"results"`

	Quotes []QuotationCheck `json:"quotes,omitempty"`

	Summary Summary `json:"summary"`

	// LLMSummary is an optional narrative rendering of the report.
	// It never affects any status or count.
	LLMSummary string `json:"llm_summary,omitempty"`
}

// Summary holds counts by status
type Summary struct {
	Verified      int `json:"verified"`
	NotFound      int `json:"not_found"`
	NotVerifiable int `json:"not_verifiable"`
	ManualReview  int `json:"manual_review"`
	Total         int `json:"total"`

	QuotesChecked int `json:"quotes_checked"`
	QuotesClean   int `json:"quotes_clean"`
	QuotesFlagged int `json:"quotes_flagged"`
}

// ManualReviewItems returns the results a human should look at, in report order
func (r *Report) ManualReviewItems() []VerificationResult {
	var items []VerificationResult
	for _, res := range r.Results {
		if res.Status == StatusManualReview {
			items = append(items, res)
		}
	}
	return items
}
