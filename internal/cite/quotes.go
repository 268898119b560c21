package cite

import (
	"regexp"
	"strings"
)

// Quote is a quoted excerpt found in memo text, candidate for fidelity
// checking against the source it is attributed to.
type Quote struct {
	Text   string // Quote body without the surrounding quote marks
	Line   int    // 1-based line number
	Offset int    // Byte offset of the opening quote mark
}

// minQuoteWords filters out short inline quotes ("abuse of discretion")
// that are terms of art rather than excerpts worth verifying.
const minQuoteWords = 5

var quoteRe = regexp.MustCompile(`["\x{201C}]([^"\x{201C}\x{201D}]+)["\x{201D}]`)

// ExtractQuotes finds quoted spans of at least minQuoteWords words.
// Straight and smart double quotes are both recognized.
func ExtractQuotes(text string) []Quote {
	var quotes []Quote

	offset := 0
	for lineNum, line := range strings.Split(text, "\n") {
		for _, loc := range quoteRe.FindAllStringSubmatchIndex(line, -1) {
			body := line[loc[2]:loc[3]]
			if len(strings.Fields(body)) < minQuoteWords {
				continue
			}
			quotes = append(quotes, Quote{
				Text:   body,
				Line:   lineNum + 1,
				Offset: offset + loc[0],
			})
		}
		offset += len(line) + 1
	}

	return quotes
}
