// Package routes models the authored navigation tree of a documentation
// site. The tree is declared once in configuration and never mutated at
// runtime; everything else (left-nav ordering, pagination, breadcrumbs) is
// derived from it by pure functions, so concurrent readers never race.
package routes

import (
	"fmt"
	"strings"
)

// RouteNode is one authored entry in the navigation tree. Href is a path
// segment relative to the node's parent (leading slash included, e.g.
// "/linear-algebra"). A node with NoLink set is a pure section header: it
// emits no page of its own but still prefixes and orders its descendants.
type RouteNode struct {
	Title  string      `yaml:"title"`
	Href   string      `yaml:"href"`
	NoLink bool        `yaml:"no_link,omitempty"`
	Items  []RouteNode `yaml:"items,omitempty"`
}

// Page is a flattened, fully-qualified navigable entry derived from a
// RouteNode. Href is the concatenation of all ancestor segments in
// root-to-leaf order.
type Page struct {
	Title string
	Href  string
}

// Slug returns the page href without its leading slash, matching the
// on-disk layout of content documents.
func (p Page) Slug() string { return strings.TrimPrefix(p.Href, "/") }

// Flatten derives the complete ordered page list from the authored tree:
// a pre-order, depth-first, left-to-right traversal. Traversal order IS the
// left-nav display order and the pagination order. The result is
// deterministic for a fixed tree.
func Flatten(nodes []RouteNode) []Page {
	pages := make([]Page, 0, countPages(nodes))
	for _, n := range nodes {
		pages = appendPages(pages, n, "")
	}
	return pages
}

func appendPages(pages []Page, node RouteNode, prefix string) []Page {
	full := prefix + node.Href
	if !node.NoLink {
		pages = append(pages, Page{Title: node.Title, Href: full})
	}
	for _, child := range node.Items {
		pages = appendPages(pages, child, full)
	}
	return pages
}

func countPages(nodes []RouteNode) int {
	n := 0
	for _, node := range nodes {
		if !node.NoLink {
			n++
		}
		n += countPages(node.Items)
	}
	return n
}

// FindPageIndex returns the position of the page whose href matches the
// requested path, or ok=false when no page matches. A miss is a normal
// outcome (the caller renders not-found), not an error. The path may be
// given with or without a leading slash.
func FindPageIndex(pages []Page, path string) (int, bool) {
	href := normalizePath(path)
	for i, p := range pages {
		if p.Href == href {
			return i, true
		}
	}
	return 0, false
}

// Neighbors returns the previous and next pages relative to the given path
// in flattened order. Either may be nil at the ends of the list; there is
// no wraparound. An unknown path yields nil, nil.
func Neighbors(pages []Page, path string) (prev, next *Page) {
	i, ok := FindPageIndex(pages, path)
	if !ok {
		return nil, nil
	}
	if i > 0 {
		prev = &pages[i-1]
	}
	if i+1 < len(pages) {
		next = &pages[i+1]
	}
	return prev, next
}

// normalizePath maps a request path onto the href convention used by
// Flatten: a single leading slash, no trailing slash.
func normalizePath(path string) string {
	return "/" + strings.Trim(path, "/")
}

// Validate enforces the authoring contract on the tree: every node carries
// a title and an href, and no two emitted pages share a flattened href.
// Malformed trees are a configuration error caught at load time, never
// handled at request time.
func Validate(nodes []RouteNode) error {
	seen := make(map[string]struct{})
	for _, n := range nodes {
		if err := validateNode(n, "", seen); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(node RouteNode, prefix string, seen map[string]struct{}) error {
	if node.Title == "" {
		return fmt.Errorf("route node under %q is missing a title", prefix)
	}
	if node.Href == "" {
		return fmt.Errorf("route node %q is missing an href", node.Title)
	}
	if !strings.HasPrefix(node.Href, "/") {
		return fmt.Errorf("route node %q href %q must start with a slash", node.Title, node.Href)
	}
	full := prefix + node.Href
	if !node.NoLink {
		if _, dup := seen[full]; dup {
			return fmt.Errorf("duplicate route href %q", full)
		}
		seen[full] = struct{}{}
	}
	for _, child := range node.Items {
		if err := validateNode(child, full, seen); err != nil {
			return err
		}
	}
	return nil
}
