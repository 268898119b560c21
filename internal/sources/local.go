package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ndlegal/citecheck/internal/model"
)

// SourceLocal is the adapter ID and cache namespace for the local corpus
const SourceLocal = "local"

var ndCiteRe = regexp.MustCompile(`^(\d{4}) ND (\d+)$`)

// caseNameRe finds "Party v. Party" in the head of an opinion, tolerating
// the line breaks the markdown conversion leaves inside the caption.
var caseNameRe = regexp.MustCompile(`([A-Z][A-Za-z.\-\s]+?)\s*(?:,\s*\n)?\s*v\.\s*\n?\s*([A-Z][A-Za-z.\-\s]+?)(?:\s*\n|,)`)

// Local resolves ND slip citations against a downloaded opinion corpus
// laid out as {root}/markdown/{year}/{year}ND{number}.md. No network, no
// rate limit; absence of the directory tree means the adapter is
// unavailable, not broken.
type Local struct {
	markdownDir string
	available   bool
}

// NewLocal creates the local corpus adapter rooted at courtData
func NewLocal(courtData string) *Local {
	l := &Local{}
	if courtData != "" {
		l.markdownDir = filepath.Join(courtData, "markdown")
		if info, err := os.Stat(l.markdownDir); err == nil && info.IsDir() {
			l.available = true
		}
	}
	return l
}

// ID returns the adapter name
func (l *Local) ID() string { return SourceLocal }

// Available reports whether the corpus directory exists
func (l *Local) Available() bool { return l.available }

// CanResolve restricts the corpus to ND slip citations; the file layout
// is keyed by them.
func (l *Local) CanResolve(kind model.Kind) bool { return kind == model.KindNDCase }

// Resolve looks an ND case citation up in the corpus
func (l *Local) Resolve(ctx context.Context, cite model.Citation) model.VerificationResult {
	path, ok := l.opinionPath(cite.Normalized)
	if !ok {
		return notFound(cite, SourceLocal)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return notFound(cite, SourceLocal)
		}
		return sourceError(cite, SourceLocal, fmt.Errorf("stat opinion: %w", err))
	}

	return verified(cite, SourceLocal, path, l.extractCaseName(path))
}

// FetchFullText returns the full opinion text for a citation
func (l *Local) FetchFullText(ctx context.Context, cite model.Citation) (string, error) {
	path, ok := l.opinionPath(cite.Normalized)
	if !ok {
		return "", fmt.Errorf("not an ND slip citation: %q", cite.Normalized)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read opinion: %w", err)
	}
	return string(data), nil
}

// opinionPath maps "2024 ND 156" to {markdown}/2024/2024ND156.md
func (l *Local) opinionPath(normalized string) (string, bool) {
	m := ndCiteRe.FindStringSubmatch(normalized)
	if m == nil || !l.available {
		return "", false
	}
	year, num := m[1], m[2]
	return filepath.Join(l.markdownDir, year, fmt.Sprintf("%sND%s.md", year, num)), true
}

// extractCaseName pulls "Party v. Party" from the opinion head. Best
// effort: an empty name is fine.
func (l *Local) extractCaseName(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	head := string(data)
	if len(head) > 2000 {
		head = head[:2000]
	}

	m := caseNameRe.FindStringSubmatch(head)
	if m == nil {
		return ""
	}

	plaintiff := lastLine(m[1])
	defendant := firstLine(m[2])
	return plaintiff + " v. " + defendant
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func firstLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[0])
}
