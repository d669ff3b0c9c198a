// Package sitegen materializes a generated website file tree onto local disk
// so the served preview URL resolves immediately after a run.
package sitegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	PublicDir string `envconfig:"PUBLIC_DIR" default:"public"`
	BaseURL   string `envconfig:"BASE_URL" default:"http://localhost:3001"`
	Enabled   bool   `envconfig:"ENABLED" default:"true"`
}

type Generator struct {
	publicDir string
	baseURL   string
	enabled   bool
	now       func() time.Time
}

func New(cfg Config) *Generator {
	return &Generator{
		publicDir: cfg.PublicDir,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		enabled:   cfg.Enabled,
		now:       time.Now,
	}
}

// Generate writes the site's entry page and stylesheet under
// <publicDir>/sites/<project>-<timestamp>/ and returns the preview URL.
// An empty URL with nil error means generation was skipped.
func (g *Generator) Generate(techArtifact map[string]any, projectName string) (string, error) {
	if g == nil || !g.enabled {
		return "", nil
	}

	structure, ok := techArtifact["file_structure"]
	if !ok {
		return "", nil
	}

	index := findFile(structure, "index.html")
	if index == "" {
		return "", nil
	}
	css := findFile(structure, "styles.css", "style.css", "App.css")

	dir := fmt.Sprintf("%s_%d", sanitizeName(projectName), g.now().Unix())
	siteDir := filepath.Join(g.publicDir, "sites", dir)
	if err := os.MkdirAll(siteDir, 0o755); err != nil {
		return "", fmt.Errorf("create site dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(siteDir, "index.html"), []byte(index), 0o644); err != nil {
		return "", fmt.Errorf("write index.html: %w", err)
	}
	if css != "" {
		if err := os.WriteFile(filepath.Join(siteDir, "styles.css"), []byte(css), 0o644); err != nil {
			return "", fmt.Errorf("write styles.css: %w", err)
		}
	}

	return fmt.Sprintf("%s/sites/%s/index.html", g.baseURL, dir), nil
}

// findFile walks an arbitrarily nested file tree. Both shapes produced by the
// tech agent are accepted: maps keyed by file name and lists of
// {file_name|path, content} objects.
func findFile(node any, names ...string) string {
	switch n := node.(type) {
	case map[string]any:
		if content := fileEntryContent(n, names); content != "" {
			return content
		}
		for key, value := range n {
			if matchesName(key, names) {
				if content, ok := value.(string); ok {
					return content
				}
			}
			if content := findFile(value, names...); content != "" {
				return content
			}
		}
	case []any:
		for _, item := range n {
			if content := findFile(item, names...); content != "" {
				return content
			}
		}
	}
	return ""
}

func fileEntryContent(entry map[string]any, names []string) string {
	name, _ := entry["file_name"].(string)
	if name == "" {
		name, _ = entry["path"].(string)
	}
	if name == "" || !matchesName(name, names) {
		return ""
	}
	content, _ := entry["content"].(string)
	return content
}

func matchesName(candidate string, names []string) bool {
	base := strings.ToLower(filepath.Base(candidate))
	for _, name := range names {
		if base == strings.ToLower(name) {
			return true
		}
	}
	return false
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	clean := strings.Trim(b.String(), "-")
	if clean == "" {
		return "project"
	}
	return clean
}
