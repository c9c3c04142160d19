package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/state"
)

// TestEndToEndBuild drives the whole pipeline the way the build command
// does: config file on disk, content tree on disk, static output verified
// against the flattened route list.
func TestEndToEndBuild(t *testing.T) {
	workDir := t.TempDir()
	contentDir := filepath.Join(workDir, "content")
	outputDir := filepath.Join(workDir, "site")

	writeFile(t, filepath.Join(workDir, "config.yaml"), `
site:
  title: ML Notes
content:
  dir: `+contentDir+`
output:
  dir: `+outputDir+`
  clean: true
routes:
  - title: Machine Learning
    href: /machine-learning
    items:
      - title: Introduction
        href: /introduction
  - title: Math
    href: /math
    no_link: true
    items:
      - title: Linear Algebra
        href: /linear-algebra
`)

	writeFile(t, filepath.Join(contentDir, "machine-learning.md"),
		"---\ntitle: Machine Learning\n---\nSee [Linear Algebra](/math/linear-algebra).\n")
	writeFile(t, filepath.Join(contentDir, "machine-learning", "introduction.mdx"),
		"---\ntitle: Introduction\ndescription: Start here\n---\n## Why ML\n\ntext\n")
	writeFile(t, filepath.Join(contentDir, "math", "linear-algebra.md"),
		"---\ntitle: Linear Algebra\n---\n## Vectors\n\ntext\n")

	cfg, err := config.Load(filepath.Join(workDir, "config.yaml"))
	require.NoError(t, err)

	store, err := state.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	builder, err := site.NewBuilder(cfg, content.NewLoader(cfg.Content.Dir), site.Options{Store: store})
	require.NoError(t, err)

	ctx := context.Background()
	result, err := builder.Build(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 3, result.Built)
	require.Empty(t, result.Warnings)

	// One output page per flattened route, in spec'd locations.
	for _, page := range cfg.Pages() {
		require.FileExists(t, filepath.Join(outputDir, filepath.FromSlash(page.Slug()), "index.html"))
	}

	// The cross-section internal link passed verification; breadcrumbs and
	// pagination made it into the output.
	intro, err := os.ReadFile(filepath.Join(outputDir, "machine-learning", "introduction", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(intro), `<a href="/machine-learning">Machine Learning</a>`)
	require.Contains(t, string(intro), `<span class="current">Introduction</span>`)
	require.Contains(t, string(intro), `href="/math/linear-algebra"`)

	// An incremental rebuild with nothing changed writes nothing.
	second, err := builder.Build(ctx, true)
	require.NoError(t, err)
	require.Zero(t, second.Built)
	require.Equal(t, 3, second.Skipped)

	// Both builds were recorded.
	records, err := store.RecentBuilds(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}
