// Package cite extracts typed citation occurrences from memo text.
// Parsing is deterministic and side-effect-free; malformed or partial
// fragments are discarded, never emitted as low-confidence citations.
package cite

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ndlegal/citecheck/internal/model"
)

const contextRadius = 80

type pattern struct {
	kind model.Kind
	re   *regexp.Regexp
}

// Patterns ordered by specificity. At a given offset the longest match
// wins, so a record citation swallows its embedded paragraph marker.
var patterns = []pattern{
	{model.KindRecord, regexp.MustCompile(`\(R(\d+)(?::(\d+))?(?::¶(\d+))?\)`)},
	{model.KindNDCase, regexp.MustCompile(`(\d{4})\s+ND\s+(\d+)`)},
	{model.KindReporter, regexp.MustCompile(`(\d+)\s+N\.W\.2d\s+(\d+)`)},
	{model.KindStatute, regexp.MustCompile(`N\.D\.C\.C\.\s*§\s*([\d\-.]+(?:\([^)]*\))*)`)},
	{model.KindRuleAppellate, regexp.MustCompile(`N\.D\.R\.App\.P\.\s*([\d.]+)`)},
	{model.KindRuleCivil, regexp.MustCompile(`N\.D\.R\.Civ\.P\.\s*([\d.]+(?:\([^)]*\))*)`)},
	{model.KindRuleEvidence, regexp.MustCompile(`N\.D\.R\.Ev\.\s*([\d.]+)`)},
	{model.KindParagraph, regexp.MustCompile(`¶\s*(\d+)`)},
}

type match struct {
	kind   model.Kind
	start  int // byte offset within the line
	end    int
	groups []string
	raw    string
}

// Parse extracts all citations from text in source order.
func Parse(text string) []model.Citation {
	var cites []model.Citation

	offset := 0
	for lineNum, line := range strings.Split(text, "\n") {
		for _, m := range scanLine(line) {
			norm := normalize(m)
			if norm == "" {
				continue
			}

			// The radius is in bytes and can land inside a multi-byte
			// rune (¶, §, smart quotes); back up to a boundary so the
			// context is always valid UTF-8.
			ctxStart := clampToRuneStart(line, m.start-contextRadius)
			ctxEnd := m.end + contextRadius
			if ctxEnd > len(line) {
				ctxEnd = len(line)
			}
			ctxEnd = clampToRuneStart(line, ctxEnd)

			cites = append(cites, model.Citation{
				Raw:        m.raw,
				Kind:       m.kind,
				Normalized: norm,
				Line:       lineNum + 1,
				Offset:     offset + m.start,
				Context:    line[ctxStart:ctxEnd],
			})
		}
		offset += len(line) + 1
	}

	return cites
}

// scanLine collects matches from every pattern and resolves overlaps:
// earliest start first, longest match wins at the same start, and a match
// overlapping an already-accepted span is dropped.
func scanLine(line string) []match {
	var all []match
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(line, -1) {
			m := match{
				kind:  p.kind,
				start: loc[0],
				end:   loc[1],
				raw:   line[loc[0]:loc[1]],
			}
			for g := 1; g*2 < len(loc); g++ {
				if loc[g*2] < 0 {
					m.groups = append(m.groups, "")
				} else {
					m.groups = append(m.groups, line[loc[g*2]:loc[g*2+1]])
				}
			}
			all = append(all, m)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].end > all[j].end
	})

	var kept []match
	lastEnd := -1
	for _, m := range all {
		if m.start < lastEnd {
			continue
		}
		kept = append(kept, m)
		lastEnd = m.end
	}
	return kept
}

func normalize(m match) string {
	g := func(i int) string {
		if i < len(m.groups) {
			return m.groups[i]
		}
		return ""
	}

	switch m.kind {
	case model.KindNDCase:
		return fmt.Sprintf("%s ND %s", g(0), g(1))
	case model.KindReporter:
		return fmt.Sprintf("%s N.W.2d %s", g(0), g(1))
	case model.KindStatute:
		return g(0)
	case model.KindRuleAppellate, model.KindRuleCivil, model.KindRuleEvidence:
		// The number class is greedy about dots; drop a trailing
		// sentence period ("N.D.R.Ev. 403." -> "N.D.R.Ev. 403").
		return strings.TrimRight(strings.TrimSpace(m.raw), ".")
	case model.KindRecord:
		parts := []string{g(0)}
		if g(1) != "" {
			parts = append(parts, g(1))
		}
		if g(2) != "" {
			parts = append(parts, "¶"+g(2))
		}
		return strings.Join(parts, ":")
	case model.KindParagraph:
		return g(0)
	}
	return ""
}

// clampToRuneStart moves a byte offset left to the nearest rune boundary
func clampToRuneStart(s string, i int) int {
	if i < 0 {
		return 0
	}
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// Unique returns the first occurrence of each normalized key, restricted
// to the given kinds (all kinds when none are given). Order follows the
// input.
func Unique(cites []model.Citation, kinds ...model.Kind) []model.Citation {
	want := make(map[model.Kind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}

	seen := make(map[string]bool)
	var out []model.Citation
	for _, c := range cites {
		if len(kinds) > 0 && !want[c.Kind] {
			continue
		}
		key := string(c.Kind) + ":" + c.Normalized
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
