// Package content loads documents from the content tree by slug. A slug is
// the fully-qualified slash-joined path of a page, matching the href
// convention of the flattened route list (without the leading slash).
package content

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/frontmatter"
	"git.home.luguber.info/inful/docsite/internal/markdown"
)

// ErrNotFound indicates no document exists for the requested slug. It is a
// normal terminal outcome, not a failure: callers translate it into a
// not-found page.
var ErrNotFound = errors.New("document not found")

// Document is a loaded, rendered content document.
type Document struct {
	Slug        string
	Path        string // file the document was loaded from
	Meta        frontmatter.Meta
	HTML        []byte
	Headings    []markdown.Heading
	Fingerprint string // sha256 of the raw file, for incremental builds
}

// Loader resolves slugs against a content root directory. Documents live
// at <root>/<slug>.mdx (or .md), with <slug>/index.mdx as a fallback for
// section landing pages.
type Loader struct {
	root string
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string) *Loader { return &Loader{root: dir} }

// Root returns the content root directory.
func (l *Loader) Root() string { return l.root }

// Load reads, splits and renders the document for a slug. Returns
// ErrNotFound when no candidate file exists.
func (l *Loader) Load(slug string) (*Document, error) {
	slug = strings.Trim(slug, "/")
	if slug == "" || strings.Contains(slug, "..") {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, slug)
	}

	path, raw, err := l.read(slug)
	if err != nil {
		return nil, err
	}

	metaRaw, body, _, err := frontmatter.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("split frontmatter of %s: %w", path, err)
	}
	meta, err := frontmatter.Parse(metaRaw)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter of %s: %w", path, err)
	}

	rendered, err := markdown.Render(body)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", path, err)
	}

	sum := sha256.Sum256(raw)
	return &Document{
		Slug:        slug,
		Path:        path,
		Meta:        meta,
		HTML:        rendered.HTML,
		Headings:    rendered.Headings,
		Fingerprint: hex.EncodeToString(sum[:]),
	}, nil
}

// Exists reports whether a document file is present for the slug, without
// loading or rendering it.
func (l *Loader) Exists(slug string) bool {
	slug = strings.Trim(slug, "/")
	if slug == "" || strings.Contains(slug, "..") {
		return false
	}
	for _, c := range candidates(slug) {
		if st, err := os.Stat(filepath.Join(l.root, c)); err == nil && !st.IsDir() {
			return true
		}
	}
	return false
}

func (l *Loader) read(slug string) (string, []byte, error) {
	for _, c := range candidates(slug) {
		path := filepath.Join(l.root, c)
		raw, err := os.ReadFile(path)
		if err == nil {
			return path, raw, nil
		}
		if !os.IsNotExist(err) {
			return "", nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	return "", nil, fmt.Errorf("%w: %q", ErrNotFound, slug)
}

func candidates(slug string) []string {
	p := filepath.FromSlash(slug)
	return []string{
		p + ".mdx",
		p + ".md",
		filepath.Join(p, "index.mdx"),
		filepath.Join(p, "index.md"),
	}
}
