package sources

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ndlegal/citecheck/internal/model"
)

const sampleOpinion = `Smith,
v.
Jones, 2024 ND 156

[¶1] The district court abused its discretion in granting summary judgment.
`

func writeCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "markdown", "2024")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "2024ND156.md"), []byte(sampleOpinion), 0644); err != nil {
		t.Fatal(err)
	}
	return root
}

func ndCase(normalized string) model.Citation {
	return model.Citation{Kind: model.KindNDCase, Normalized: normalized, Raw: normalized}
}

func TestLocal_ResolveHit(t *testing.T) {
	l := NewLocal(writeCorpus(t))
	if !l.Available() {
		t.Fatal("corpus should be available")
	}

	res := l.Resolve(context.Background(), ndCase("2024 ND 156"))
	if res.Status != model.StatusVerified {
		t.Fatalf("status = %s, want verified (%s)", res.Status, res.Error)
	}
	if res.Source != SourceLocal {
		t.Errorf("source = %q, want %q", res.Source, SourceLocal)
	}
	if !strings.Contains(res.CaseName, "v.") {
		t.Errorf("case name = %q, expected a caption", res.CaseName)
	}
}

func TestLocal_ResolveMiss(t *testing.T) {
	l := NewLocal(writeCorpus(t))

	res := l.Resolve(context.Background(), ndCase("2024 ND 999"))
	if res.Status != model.StatusNotFound {
		t.Errorf("status = %s, want not_found", res.Status)
	}
}

func TestLocal_MissingCorpusIsUnavailableNotError(t *testing.T) {
	l := NewLocal(filepath.Join(t.TempDir(), "does-not-exist"))
	if l.Available() {
		t.Error("adapter should be unavailable without a markdown directory")
	}

	l2 := NewLocal("")
	if l2.Available() {
		t.Error("adapter should be unavailable with no configured root")
	}
}

func TestLocal_FetchFullText(t *testing.T) {
	l := NewLocal(writeCorpus(t))

	text, err := l.FetchFullText(context.Background(), ndCase("2024 ND 156"))
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !strings.Contains(text, "abused its discretion") {
		t.Errorf("unexpected text: %q", text)
	}
}
