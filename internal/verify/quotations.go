package verify

import (
	"context"

	"github.com/ndlegal/citecheck/internal/cite"
	"github.com/ndlegal/citecheck/internal/model"
)

// CheckQuotations extracts quoted excerpts from the memo text, pairs
// each with the nearest preceding verifiable citation, and scores it
// against that source's full text. A quote that cannot be checked (no
// citation precedes it, the citation did not verify, or the source has
// no full text) is reported with a note, never as a failure.
func (v *Verifier) CheckQuotations(ctx context.Context, text string, results []model.VerificationResult) []model.QuotationCheck {
	quotes := cite.ExtractQuotes(text)
	if len(quotes) == 0 {
		return nil
	}

	texts := make(map[string]string)
	misses := make(map[string]bool)

	var checks []model.QuotationCheck
	for _, q := range quotes {
		check := model.QuotationCheck{Line: q.Line, Quote: q.Text}

		res := nearestPreceding(results, q.Offset)
		if res == nil {
			check.Note = "no citation precedes this quote"
			checks = append(checks, check)
			continue
		}
		check.CitationKey = res.Citation.Normalized

		if res.Status != model.StatusVerified {
			check.Note = "cited source not verified"
			checks = append(checks, check)
			continue
		}

		full, ok := v.fullText(ctx, *res, texts, misses)
		if !ok {
			check.Note = "source text unavailable"
			checks = append(checks, check)
			continue
		}

		m := matchQuote(q.Text, full, v.cfg.QuoteTolerance, v.cfg.QuoteFloor)
		check.MatchScore = m.Score
		check.SourceExcerpt = m.Excerpt
		check.Discrepancies = m.Discrepancies
		if len(m.Discrepancies) > 0 {
			v.logf("quote at line %d flagged (similarity %.2f)", q.Line, m.Score)
		}
		checks = append(checks, check)
	}
	return checks
}

// nearestPreceding returns the verifiable citation closest before the
// given offset, which is the one the quote is attributed to.
func nearestPreceding(results []model.VerificationResult, offset int) *model.VerificationResult {
	var best *model.VerificationResult
	for i := range results {
		c := results[i].Citation
		if !c.Kind.Verifiable() || c.Offset >= offset {
			continue
		}
		if best == nil || c.Offset > best.Citation.Offset {
			best = &results[i]
		}
	}
	return best
}

// fullText fetches and memoizes the source text backing a verified
// citation. Misses are memoized too, so one unavailable source does not
// get refetched per quote.
func (v *Verifier) fullText(ctx context.Context, res model.VerificationResult, texts map[string]string, misses map[string]bool) (string, bool) {
	key := res.Source + "/" + res.Citation.Normalized
	if t, ok := texts[key]; ok {
		return t, true
	}
	if misses[key] {
		return "", false
	}

	src, ok := v.byID[res.Source]
	if !ok {
		misses[key] = true
		return "", false
	}
	t, err := src.FetchFullText(ctx, res.Citation)
	if err != nil {
		misses[key] = true
		return "", false
	}
	texts[key] = t
	return t, true
}
