package site

import "git.home.luguber.info/inful/docsite/internal/routes"

// NavItem is one rendered left-nav entry. Active marks the node on the
// path to the current page so the template can highlight it.
type NavItem struct {
	Title  string
	Href   string
	NoLink bool
	Active bool
	Items  []NavItem
}

// HasActive reports whether the item or any descendant is active.
func (n NavItem) HasActive() bool {
	if n.Active {
		return true
	}
	for _, c := range n.Items {
		if c.HasActive() {
			return true
		}
	}
	return false
}

// buildNav mirrors the authored route tree into renderable nav items with
// fully-qualified hrefs, marking the chain leading to currentHref. Only
// pages in the live set render as links: a linked node whose document is
// draft or missing demotes to a plain section while it still has live
// descendants, and disappears otherwise.
func buildNav(nodes []routes.RouteNode, prefix, currentHref string, live map[string]struct{}) []NavItem {
	items := make([]NavItem, 0, len(nodes))
	for _, node := range nodes {
		full := prefix + node.Href
		children := buildNav(node.Items, full, currentHref, live)

		_, isLive := live[full]
		if node.NoLink || !isLive {
			if len(children) == 0 {
				continue
			}
			items = append(items, NavItem{
				Title:  node.Title,
				Href:   full,
				NoLink: true,
				Items:  children,
			})
			continue
		}

		items = append(items, NavItem{
			Title:  node.Title,
			Href:   full,
			Active: full == currentHref,
			Items:  children,
		})
	}
	return items
}
