package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderBasic(t *testing.T) {
	res, err := Render([]byte("## Overview\n\nSome *emphasized* text.\n"))
	require.NoError(t, err)
	require.Contains(t, string(res.HTML), "<h2 id=\"overview\">Overview</h2>")
	require.Contains(t, string(res.HTML), "<em>emphasized</em>")
}

func TestRenderHeadingOutline(t *testing.T) {
	body := []byte("# Title\n\n## First\n\ntext\n\n### Nested *part*\n\n## Second\n")
	res, err := Render(body)
	require.NoError(t, err)

	require.Equal(t, []Heading{
		{Level: 2, Text: "First", ID: "first"},
		{Level: 3, Text: "Nested part", ID: "nested-part"},
		{Level: 2, Text: "Second", ID: "second"},
	}, res.Headings)
}

func TestRenderGFMTable(t *testing.T) {
	body := []byte("| a | b |\n|---|---|\n| 1 | 2 |\n")
	res, err := Render(body)
	require.NoError(t, err)
	require.Contains(t, string(res.HTML), "<table>")
}

func TestRenderRawHTMLPassesThrough(t *testing.T) {
	res, err := Render([]byte("<div class=\"note\">hi</div>\n"))
	require.NoError(t, err)
	require.Contains(t, string(res.HTML), "<div class=\"note\">")
}

func TestInternalLinks(t *testing.T) {
	rendered := []byte(`<p>
		<a href="/math/linear-algebra">internal</a>
		<a href="/math/calculus#limits">with fragment</a>
		<a href="https://example.com/external">external</a>
		<a href="//cdn.example.com/x">protocol relative</a>
		<a href="#local">fragment only</a>
		<a href="mailto:a@b.c">mail</a>
	</p>`)

	links, err := InternalLinks(rendered)
	require.NoError(t, err)
	require.Equal(t, []string{"/math/linear-algebra", "/math/calculus"}, links)
}

func TestInternalLinksNone(t *testing.T) {
	links, err := InternalLinks([]byte("<p>no links</p>"))
	require.NoError(t, err)
	require.Empty(t, links)
}
