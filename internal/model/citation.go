package model

// Kind categorizes a citation by the authority it references
type Kind string

const (
	KindNDCase        Kind = "nd_case"       // ND Supreme Court slip citation, e.g. "2024 ND 156"
	KindReporter      Kind = "nw2d"          // North Western Reporter, e.g. "973 N.W.2d 124"
	KindStatute       Kind = "ndcc"          // Century Code section, e.g. "14-09-06.2"
	KindRuleAppellate Kind = "nd_rule_app"   // N.D.R.App.P.
	KindRuleCivil     Kind = "nd_rule_civ"   // N.D.R.Civ.P.
	KindRuleEvidence  Kind = "nd_rule_ev"    // N.D.R.Ev.
	KindRecord        Kind = "record"        // Record citation, e.g. "(R45:12)"
	KindParagraph     Kind = "paragraph"     // Paragraph marker, e.g. "¶ 12"
)

// Verifiable reports whether citations of this kind can be checked against
// a public source. Record and paragraph citations reference case-specific
// materials; rule citations have no configured source.
func (k Kind) Verifiable() bool {
	switch k {
	case KindNDCase, KindReporter, KindStatute:
		return true
	default:
		return false
	}
}

// Citation is a single citation occurrence extracted from memo text.
// Immutable once parsed.
type Citation struct {
	Raw        string `json:"raw"`                  // Exact matched text
	Kind       Kind   `json:"kind"`                 // Citation category
	Normalized string `json:"normalized"`           // Canonical lookup form
	Line       int    `json:"line"`                 // 1-based line number in source text
	Offset     int    `json:"offset"`               // Byte offset of the match in source text
	Context    string `json:"context,omitempty"`    // Surrounding text, up to 80 chars each side
}
