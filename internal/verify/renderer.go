package verify

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ndlegal/citecheck/internal/model"
)

// WriteJSON writes the report as indented JSON
func WriteJSON(path string, report *model.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// WriteMarkdown writes the human-readable report
func WriteMarkdown(path string, report *model.Report, includeFooter bool) error {
	return os.WriteFile(path, []byte(RenderMarkdown(report, includeFooter)), 0644)
}

// RenderMarkdown renders the report for human review. Verified entries
// are one line each; everything else carries enough detail to act on.
func RenderMarkdown(report *model.Report, includeFooter bool) string {
	var b strings.Builder
	s := report.Summary

	b.WriteString("# Citation Verification Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format(time.RFC3339))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Status | Count |\n|---|---|\n")
	fmt.Fprintf(&b, "| Verified | %d |\n", s.Verified)
	fmt.Fprintf(&b, "| Not found | %d |\n", s.NotFound)
	fmt.Fprintf(&b, "| Not verifiable | %d |\n", s.NotVerifiable)
	fmt.Fprintf(&b, "| Manual review | %d |\n", s.ManualReview)
	fmt.Fprintf(&b, "| Total | %d |\n", s.Total)
	if s.QuotesChecked > 0 {
		fmt.Fprintf(&b, "\nQuotations: %d checked, %d clean, %d flagged\n",
			s.QuotesChecked, s.QuotesClean, s.QuotesFlagged)
	}

	b.WriteString("\n## Citations\n\n")
	for _, res := range report.Results {
		fmt.Fprintf(&b, "- `%s` (line %d): %s", res.Citation.Raw, res.Citation.Line, statusLabel(res.Status))
		if res.CaseName != "" {
			fmt.Fprintf(&b, ", %s", res.CaseName)
		}
		if res.Source != "" {
			fmt.Fprintf(&b, " [%s]", res.Source)
		}
		if res.URL != "" {
			fmt.Fprintf(&b, " <%s>", res.URL)
		}
		if res.Error != "" {
			fmt.Fprintf(&b, ": %s", res.Error)
		}
		b.WriteString("\n")
	}

	if len(report.Quotes) > 0 {
		b.WriteString("\n## Quotations\n\n")
		for _, q := range report.Quotes {
			fmt.Fprintf(&b, "- line %d: \"%s\"", q.Line, truncate(q.Quote, 60))
			switch {
			case q.Note != "":
				fmt.Fprintf(&b, " (%s)", q.Note)
			case len(q.Discrepancies) > 0:
				fmt.Fprintf(&b, " FLAGGED")
				for _, d := range q.Discrepancies {
					fmt.Fprintf(&b, "\n  - %s", d)
				}
				if q.SourceExcerpt != "" {
					fmt.Fprintf(&b, "\n  - source reads: \"%s\"", truncate(q.SourceExcerpt, 80))
				}
			default:
				b.WriteString(" ok")
			}
			b.WriteString("\n")
		}
	}

	if items := report.ManualReviewItems(); len(items) > 0 {
		b.WriteString("\n## Needs manual review\n\n")
		for _, res := range items {
			fmt.Fprintf(&b, "- `%s` (line %d): %s\n", res.Citation.Raw, res.Citation.Line, res.Error)
		}
	}

	if report.LLMSummary != "" {
		b.WriteString("\n## Narrative summary\n\n")
		b.WriteString(strings.TrimSpace(report.LLMSummary))
		b.WriteString("\n")
	}

	if includeFooter {
		b.WriteString("\n---\n*Automated citation check. A clean report is not a substitute for attorney review.*\n")
	}

	return b.String()
}

// RenderSummary prints the one-screen console summary
func RenderSummary(w io.Writer, report *model.Report) {
	s := report.Summary
	fmt.Fprintf(w, "Citations: %d total, %d verified, %d not found, %d not verifiable, %d manual review\n",
		s.Total, s.Verified, s.NotFound, s.NotVerifiable, s.ManualReview)
	if s.QuotesChecked > 0 {
		fmt.Fprintf(w, "Quotations: %d checked, %d clean, %d flagged\n",
			s.QuotesChecked, s.QuotesClean, s.QuotesFlagged)
	}
	for _, res := range report.ManualReviewItems() {
		fmt.Fprintf(w, "  review: %s (line %d): %s\n", res.Citation.Raw, res.Citation.Line, res.Error)
	}
}

func statusLabel(s model.Status) string {
	switch s {
	case model.StatusVerified:
		return "VERIFIED"
	case model.StatusNotFound:
		return "NOT FOUND"
	case model.StatusNotVerifiable:
		return "NOT VERIFIABLE"
	default:
		return "MANUAL REVIEW"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
