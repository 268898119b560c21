package verify

import (
	"time"

	"github.com/ndlegal/citecheck/internal/model"
)

// BuildReport assembles the run report from per-citation results and
// quotation checks. Pure assembly: no I/O, inputs are not mutated.
func BuildReport(results []model.VerificationResult, quotes []model.QuotationCheck) *model.Report {
	r := &model.Report{
		GeneratedAt: time.Now().UTC(),
		Results:     results,
		Quotes:      quotes,
	}

	for _, res := range results {
		r.Summary.Total++
		switch res.Status {
		case model.StatusVerified:
			r.Summary.Verified++
		case model.StatusNotFound:
			r.Summary.NotFound++
		case model.StatusNotVerifiable:
			r.Summary.NotVerifiable++
		default:
			// ManualReview, plus any stray SourceError that escaped the
			// chain: both need a human.
			r.Summary.ManualReview++
		}
	}

	r.Summary.QuotesChecked = len(quotes)
	for _, q := range quotes {
		switch {
		case len(q.Discrepancies) > 0:
			r.Summary.QuotesFlagged++
		case q.Note == "":
			r.Summary.QuotesClean++
		}
	}

	return r
}
