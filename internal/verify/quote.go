package verify

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// bracketRe matches editorial alterations like "[T]he" or "[sic]",
	// which legitimately differ from the source. The brackets come off
	// and the contents stay, so "[T]he" scores as "The".
	bracketRe = regexp.MustCompile(`\[([^\]]*)\]`)

	// ellipsisRe splits a quote into the segments an ellipsis elides between
	ellipsisRe = regexp.MustCompile(`\.\.\.|\x{2026}`)

	wordRe = regexp.MustCompile(`[a-z0-9']+`)
)

var quoteMarkReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
)

type quoteMatch struct {
	Score         float64
	Excerpt       string
	Discrepancies []string
}

// matchQuote scores a quoted excerpt against source text. Bracketed
// alterations lose their brackets and ellipses split the quote into segments,
// each scored independently against its best-aligned window of source
// tokens; the combined score weights segments by length. A score at or
// above tolerance is clean, between floor and tolerance is flagged with
// the divergent source window, and below floor means no plausible match.
func matchQuote(quote, source string, tolerance, floor float64) quoteMatch {
	segs := segments(quote)
	if len(segs) == 0 {
		return quoteMatch{Score: 1}
	}
	srcTokens := tokenize(source)

	var (
		weightedSum float64
		totalTokens int
		worstScore  = 2.0
		worstWindow string
	)
	for _, seg := range segs {
		score, window := bestWindow(seg, srcTokens)
		weightedSum += score * float64(len(seg))
		totalTokens += len(seg)
		if score < worstScore {
			worstScore = score
			worstWindow = window
		}
	}
	score := weightedSum / float64(totalTokens)

	m := quoteMatch{Score: score}
	switch {
	case score >= tolerance:
	case score >= floor:
		m.Excerpt = worstWindow
		m.Discrepancies = []string{
			fmt.Sprintf("quote differs from source text (similarity %.2f)", score),
		}
	default:
		m.Discrepancies = []string{"no plausible match found in source text"}
	}
	return m
}

// segments tokenizes a quote into ellipsis-separated token runs
func segments(quote string) [][]string {
	cleaned := bracketRe.ReplaceAllString(quote, "$1")

	var segs [][]string
	for _, part := range ellipsisRe.Split(cleaned, -1) {
		if toks := tokenize(part); len(toks) > 0 {
			segs = append(segs, toks)
		}
	}
	return segs
}

func tokenize(s string) []string {
	return wordRe.FindAllString(strings.ToLower(quoteMarkReplacer.Replace(s)), -1)
}

// bestWindow slides a segment-sized window across the source tokens and
// returns the highest LCS ratio along with the window that produced it.
func bestWindow(seg, src []string) (float64, string) {
	n := len(seg)
	if n == 0 {
		return 1, ""
	}
	if len(src) == 0 {
		return 0, ""
	}

	window := n
	if window > len(src) {
		window = len(src)
	}

	var best float64
	bestStart := 0
	for start := 0; start+window <= len(src); start++ {
		ratio := float64(lcs(seg, src[start:start+window])) / float64(n)
		if ratio > best {
			best = ratio
			bestStart = start
			if best == 1 {
				break
			}
		}
	}
	return best, strings.Join(src[bestStart:bestStart+window], " ")
}

// lcs is the longest common subsequence length, two-row DP
func lcs(a, b []string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
