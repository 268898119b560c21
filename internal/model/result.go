package model

import "time"

// Status is the terminal outcome of verifying one citation
type Status string

const (
	StatusVerified      Status = "verified"       // Confirmed to exist in a source
	StatusNotFound      Status = "not_found"      // Every applicable source definitively reported absence
	StatusNotVerifiable Status = "not_verifiable" // No public source covers this citation kind
	StatusManualReview  Status = "manual_review"  // Inconclusive: at least one source faulted
	StatusSourceError   Status = "source_error"   // Single-stage transient fault (never terminal in a report)
)

// VerificationResult records the outcome of one citation lookup.
// Never mutated after creation; re-verification produces a new value.
type VerificationResult struct {
	Citation  Citation  `json:"citation"`
	Status    Status    `json:"status"`
	Source    string    `json:"source,omitempty"`    // ID of the source that answered
	URL       string    `json:"url,omitempty"`       // Evidence URL or local file path
	CaseName  string    `json:"case_name,omitempty"` // "Party v. Party" when known
	Excerpt   string    `json:"excerpt,omitempty"`
	Error     string    `json:"error,omitempty"` // Fault description for manual_review / source_error
	FetchedAt time.Time `json:"fetched_at"`
}

// QuotationCheck is the outcome of fuzzy-matching one quoted excerpt
// against the full text of its source.
type QuotationCheck struct {
	Line          int      `json:"line"`
	Quote         string   `json:"quote"`
	MatchScore    float64  `json:"match_score"` // [0,1]
	SourceExcerpt string   `json:"source_excerpt,omitempty"`
	Discrepancies []string `json:"discrepancies,omitempty"`
	CitationKey   string   `json:"citation_key,omitempty"` // Normalized key of the paired citation
	Note          string   `json:"note,omitempty"`         // e.g. "source text unavailable"
}
