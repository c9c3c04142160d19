package routes

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Crumb is one entry in the breadcrumb trail above a page. Non-terminal
// crumbs link to their cumulative-prefix path; the last crumb is the
// current page and renders as plain text.
type Crumb struct {
	Label   string
	Href    string
	Current bool
}

// Breadcrumbs derives the breadcrumb trail for a request path. It operates
// on the literal path text alone (no route tree needed): each slash
// segment becomes one crumb, labeled by title-casing its hyphen-separated
// words ("neural-network-archs" -> "Neural Network Archs").
func Breadcrumbs(path string) []Crumb {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}

	// cases.Caser is stateful, so a fresh one per call.
	titler := cases.Title(language.English)

	segments := strings.Split(trimmed, "/")
	crumbs := make([]Crumb, 0, len(segments))
	prefix := ""
	for i, seg := range segments {
		prefix += "/" + seg
		crumbs = append(crumbs, Crumb{
			Label:   titler.String(strings.ReplaceAll(seg, "-", " ")),
			Href:    prefix,
			Current: i == len(segments)-1,
		})
	}
	return crumbs
}
