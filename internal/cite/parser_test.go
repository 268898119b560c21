package cite

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ndlegal/citecheck/internal/model"
)

func TestParse_CaseAndParagraph(t *testing.T) {
	text := "See Smith v. Jones, 2024 ND 156, ¶ 12."

	cites := Parse(text)
	if len(cites) != 2 {
		t.Fatalf("expected 2 citations, got %d: %+v", len(cites), cites)
	}

	if cites[0].Kind != model.KindNDCase || cites[0].Normalized != "2024 ND 156" {
		t.Errorf("first citation = %s %q, want nd_case %q", cites[0].Kind, cites[0].Normalized, "2024 ND 156")
	}
	if cites[1].Kind != model.KindParagraph || cites[1].Normalized != "12" {
		t.Errorf("second citation = %s %q, want paragraph %q", cites[1].Kind, cites[1].Normalized, "12")
	}
	if cites[0].Offset >= cites[1].Offset {
		t.Errorf("citations out of source order: %d >= %d", cites[0].Offset, cites[1].Offset)
	}
}

func TestParse_AllKinds(t *testing.T) {
	text := `The court held in 2021 ND 44 and 956 N.W.2d 101 that
N.D.C.C. § 14-09-06.2(1)(a) controls. See N.D.R.App.P. 4 and
N.D.R.Civ.P. 56(c); N.D.R.Ev. 403. (R45:12:¶3)`

	cites := Parse(text)

	want := []struct {
		kind model.Kind
		norm string
	}{
		{model.KindNDCase, "2021 ND 44"},
		{model.KindReporter, "956 N.W.2d 101"},
		{model.KindStatute, "14-09-06.2(1)(a)"},
		{model.KindRuleAppellate, "N.D.R.App.P. 4"},
		{model.KindRuleCivil, "N.D.R.Civ.P. 56(c)"},
		{model.KindRuleEvidence, "N.D.R.Ev. 403"},
		{model.KindRecord, "45:12:¶3"},
	}

	if len(cites) != len(want) {
		t.Fatalf("expected %d citations, got %d: %+v", len(want), len(cites), cites)
	}
	for i, w := range want {
		if cites[i].Kind != w.kind || cites[i].Normalized != w.norm {
			t.Errorf("citation %d = %s %q, want %s %q", i, cites[i].Kind, cites[i].Normalized, w.kind, w.norm)
		}
	}
}

func TestParse_RecordSwallowsParagraph(t *testing.T) {
	// The ¶3 inside the record citation must not produce a separate
	// paragraph citation.
	cites := Parse("(R45:¶3)")
	if len(cites) != 1 {
		t.Fatalf("expected 1 citation, got %d: %+v", len(cites), cites)
	}
	if cites[0].Kind != model.KindRecord || cites[0].Normalized != "45:¶3" {
		t.Errorf("got %s %q, want record %q", cites[0].Kind, cites[0].Normalized, "45:¶3")
	}
}

func TestParse_MalformedDiscarded(t *testing.T) {
	for _, text := range []string{
		"a bare ND without digits",
		"N.D.C.C. without a section symbol",
		"R45 outside parens is a record shorthand we do not treat as a citation",
	} {
		if cites := Parse(text); len(cites) != 0 {
			t.Errorf("Parse(%q) = %+v, want none", text, cites)
		}
	}
}

func TestParse_LineAndContext(t *testing.T) {
	text := "first line\nsecond line cites 2020 ND 7 here\n"
	cites := Parse(text)
	if len(cites) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(cites))
	}
	if cites[0].Line != 2 {
		t.Errorf("line = %d, want 2", cites[0].Line)
	}
	if cites[0].Context == "" {
		t.Error("expected context to be captured")
	}
}

func TestParse_ContextStaysValidUTF8(t *testing.T) {
	// 40 three-byte ellipsis runes on each side put both edges of the
	// 80-byte context window in the middle of a rune.
	line := strings.Repeat("…", 40) + "2024 ND 156" + strings.Repeat("…", 40)

	cites := Parse(line)
	if len(cites) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(cites))
	}
	if !utf8.ValidString(cites[0].Context) {
		t.Errorf("context contains invalid UTF-8: %q", cites[0].Context)
	}
	if !strings.Contains(cites[0].Context, "2024 ND 156") {
		t.Errorf("context lost the citation: %q", cites[0].Context)
	}
}

func TestUnique(t *testing.T) {
	text := "2024 ND 156 ... later again 2024 ND 156 and 2023 ND 9, plus ¶ 4"
	cites := Parse(text)

	unique := Unique(cites, model.KindNDCase)
	if len(unique) != 2 {
		t.Fatalf("expected 2 unique case citations, got %d", len(unique))
	}
	if unique[0].Normalized != "2024 ND 156" || unique[1].Normalized != "2023 ND 9" {
		t.Errorf("unexpected order: %q, %q", unique[0].Normalized, unique[1].Normalized)
	}

	all := Unique(cites)
	if len(all) != 3 {
		t.Errorf("expected 3 unique citations across kinds, got %d", len(all))
	}
}

func TestExtractQuotes(t *testing.T) {
	text := `The court stated that "the district court abused its discretion in granting summary judgment" in ¶ 12.
A short "term of art" is skipped.
Smart quotes work too: ` + "“the moving party bears the burden of showing no dispute”" + ` indeed.`

	quotes := ExtractQuotes(text)
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d: %+v", len(quotes), quotes)
	}
	if quotes[0].Line != 1 {
		t.Errorf("first quote line = %d, want 1", quotes[0].Line)
	}
	if quotes[1].Text != "the moving party bears the burden of showing no dispute" {
		t.Errorf("unexpected smart-quote body: %q", quotes[1].Text)
	}
}
