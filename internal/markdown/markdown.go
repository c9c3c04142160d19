// Package markdown renders content documents to HTML and extracts the
// structural information the site builder needs: the heading outline for
// the table of contents and internal links for verification.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Heading is one entry in a document's heading outline.
type Heading struct {
	Level int
	Text  string
	ID    string
}

// Result is a rendered document body plus its heading outline. Heading IDs
// match the anchors emitted into the HTML, so the table of contents can
// link straight to them.
type Result struct {
	HTML     []byte
	Headings []Heading
}

// Render converts a Markdown body (frontmatter already removed) to HTML.
// GFM extensions are enabled and raw HTML passes through, since the
// article corpus mixes Markdown with inline HTML.
func Render(body []byte) (Result, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(ghtml.WithUnsafe()),
	)

	root := md.Parser().Parse(text.NewReader(body))

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, body, root); err != nil {
		return Result{}, err
	}

	return Result{
		HTML:     buf.Bytes(),
		Headings: collectHeadings(root, body),
	}, nil
}

// collectHeadings walks the parsed AST and returns h2..h4 headings in
// document order. h1 is excluded: the page title comes from frontmatter,
// not from the body.
func collectHeadings(root gmast.Node, source []byte) []Heading {
	headings := make([]Heading, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok || h.Level < 2 || h.Level > 4 {
			return gmast.WalkContinue, nil
		}

		entry := Heading{Level: h.Level, Text: nodeText(h, source)}
		if id, found := h.AttributeString("id"); found {
			if b, isBytes := id.([]byte); isBytes {
				entry.ID = string(b)
			}
		}
		headings = append(headings, entry)
		return gmast.WalkSkipChildren, nil
	})
	return headings
}

// nodeText flattens the literal text under a node, dropping inline markup.
func nodeText(node gmast.Node, source []byte) string {
	var sb strings.Builder
	_ = gmast.Walk(node, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if t, ok := n.(*gmast.Text); ok {
			sb.Write(t.Segment.Value(source))
		}
		return gmast.WalkContinue, nil
	})
	return sb.String()
}
