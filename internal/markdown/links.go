package markdown

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// InternalLinks extracts site-internal anchor targets from rendered HTML:
// hrefs starting with a single slash, with any fragment and query stripped.
// External links, pure-fragment links and mailto links are ignored.
func InternalLinks(rendered []byte) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		return nil, err
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := attrValue(n, "href"); isInternal(href) {
				links = append(links, trimTarget(href))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func isInternal(href string) bool {
	return strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//")
}

func trimTarget(href string) string {
	if i := strings.IndexAny(href, "#?"); i >= 0 {
		href = href[:i]
	}
	return strings.TrimSuffix(href, "/")
}
