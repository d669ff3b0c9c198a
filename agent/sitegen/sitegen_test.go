package sitegen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	g := New(Config{
		PublicDir: t.TempDir(),
		BaseURL:   "http://localhost:3001",
		Enabled:   true,
	})
	g.now = func() time.Time { return time.Unix(1700000000, 0) }
	return g
}

func TestGenerateWritesSiteFromMapStructure(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(t)
	url, err := g.Generate(map[string]any{
		"file_structure": map[string]any{
			"index.html": "<html><body>Cloud Bakery</body></html>",
			"styles.css": "body { background: wheat; }",
		},
	}, "Cloud Bakery!")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := "http://localhost:3001/sites/cloud-bakery_1700000000/index.html"
	if url != want {
		t.Fatalf("unexpected url: %s", url)
	}

	siteDir := filepath.Join(g.publicDir, "sites", "cloud-bakery_1700000000")
	index, err := os.ReadFile(filepath.Join(siteDir, "index.html"))
	if err != nil {
		t.Fatalf("index.html not written: %v", err)
	}
	if !strings.Contains(string(index), "Cloud Bakery") {
		t.Fatalf("unexpected index content: %s", index)
	}
	if _, err := os.Stat(filepath.Join(siteDir, "styles.css")); err != nil {
		t.Fatalf("styles.css not written: %v", err)
	}
}

func TestGenerateFindsFilesInNestedListStructure(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(t)
	url, err := g.Generate(map[string]any{
		"file_structure": []any{
			map[string]any{"path": "src/App.css", "content": ".app { color: navy; }"},
			map[string]any{
				"name": "public",
				"children": []any{
					map[string]any{"file_name": "index.html", "content": "<html></html>"},
				},
			},
		},
	}, "nested")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if url == "" {
		t.Fatal("expected a preview url")
	}

	siteDir := filepath.Join(g.publicDir, "sites", "nested_1700000000")
	if _, err := os.Stat(filepath.Join(siteDir, "styles.css")); err != nil {
		t.Fatalf("nested css not found: %v", err)
	}
}

func TestGenerateSkipsWithoutIndex(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(t)
	url, err := g.Generate(map[string]any{
		"file_structure": map[string]any{"readme.md": "no site here"},
	}, "plain")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if url != "" {
		t.Fatalf("expected skip, got %s", url)
	}
}

func TestGenerateDisabled(t *testing.T) {
	t.Parallel()

	g := New(Config{PublicDir: t.TempDir(), BaseURL: "http://localhost:3001", Enabled: false})
	url, err := g.Generate(map[string]any{
		"file_structure": map[string]any{"index.html": "<html></html>"},
	}, "off")
	if err != nil || url != "" {
		t.Fatalf("disabled generator must be a no-op, got url=%q err=%v", url, err)
	}
}

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Cloud Bakery!":  "cloud-bakery",
		"  spaced  out ": "spaced--out",
		"???":            "project",
	}
	for in, want := range cases {
		if got := sanitizeName(in); got != want {
			t.Fatalf("sanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
