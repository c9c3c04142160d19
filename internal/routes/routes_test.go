package routes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleTree() []RouteNode {
	return []RouteNode{
		{
			Title: "Machine Learning", Href: "/machine-learning",
			Items: []RouteNode{
				{Title: "Introduction", Href: "/introduction"},
				{Title: "Regression", Href: "/regression"},
			},
		},
		{
			Title: "Deep Learning", Href: "/deep-learning",
			Items: []RouteNode{
				{
					Title: "Neural Network Archs", Href: "/neural-network-archs", NoLink: true,
					Items: []RouteNode{
						{Title: "CNN", Href: "/cnn"},
						{Title: "RNN", Href: "/rnn"},
					},
				},
			},
		},
		{
			Title: "Math", Href: "/math", NoLink: true,
			Items: []RouteNode{
				{Title: "Linear Algebra", Href: "/linear-algebra"},
			},
		},
	}
}

func TestFlattenOrderAndPrefixes(t *testing.T) {
	pages := Flatten(sampleTree())

	want := []Page{
		{Title: "Machine Learning", Href: "/machine-learning"},
		{Title: "Introduction", Href: "/machine-learning/introduction"},
		{Title: "Regression", Href: "/machine-learning/regression"},
		{Title: "Deep Learning", Href: "/deep-learning"},
		{Title: "CNN", Href: "/deep-learning/neural-network-archs/cnn"},
		{Title: "RNN", Href: "/deep-learning/neural-network-archs/rnn"},
		{Title: "Linear Algebra", Href: "/math/linear-algebra"},
	}
	require.Equal(t, want, pages)
}

func TestFlattenCountsOnlyLinkedNodes(t *testing.T) {
	tree := sampleTree()

	linked := 0
	var count func(nodes []RouteNode)
	count = func(nodes []RouteNode) {
		for _, n := range nodes {
			if !n.NoLink {
				linked++
			}
			count(n.Items)
		}
	}
	count(tree)

	require.Len(t, Flatten(tree), linked)
}

func TestFlattenNoLinkSectionPrefixesChild(t *testing.T) {
	tree := []RouteNode{
		{
			Title: "Math", Href: "/math", NoLink: true,
			Items: []RouteNode{{Title: "Linear Algebra", Href: "/linear-algebra"}},
		},
	}
	require.Equal(t,
		[]Page{{Title: "Linear Algebra", Href: "/math/linear-algebra"}},
		Flatten(tree))
}

func TestFlattenIsDeterministic(t *testing.T) {
	tree := sampleTree()
	require.Equal(t, Flatten(tree), Flatten(tree))
}

func TestFlattenEmptyTree(t *testing.T) {
	require.Empty(t, Flatten(nil))
}

func TestFindPageIndex(t *testing.T) {
	pages := Flatten(sampleTree())

	i, ok := FindPageIndex(pages, "deep-learning/neural-network-archs/cnn")
	require.True(t, ok)
	require.Equal(t, 4, i)

	// Leading slash is accepted too.
	j, ok := FindPageIndex(pages, "/deep-learning/neural-network-archs/cnn")
	require.True(t, ok)
	require.Equal(t, i, j)

	_, ok = FindPageIndex(pages, "deep-learning/transformers")
	require.False(t, ok)

	// Section-only nodes never match.
	_, ok = FindPageIndex(pages, "math")
	require.False(t, ok)
}

func TestNeighborsInterior(t *testing.T) {
	pages := []Page{
		{Title: "A", Href: "/a"},
		{Title: "B", Href: "/b"},
		{Title: "C", Href: "/c"},
	}
	prev, next := Neighbors(pages, "b")
	require.NotNil(t, prev)
	require.NotNil(t, next)
	require.Equal(t, pages[0], *prev)
	require.Equal(t, pages[2], *next)
}

func TestNeighborsBoundaries(t *testing.T) {
	pages := Flatten(sampleTree())

	prev, next := Neighbors(pages, pages[0].Href)
	require.Nil(t, prev)
	require.NotNil(t, next)
	require.Equal(t, pages[1], *next)

	prev, next = Neighbors(pages, pages[len(pages)-1].Href)
	require.NotNil(t, prev)
	require.Nil(t, next)
	require.Equal(t, pages[len(pages)-2], *prev)
}

func TestNeighborsCrossSectionBoundary(t *testing.T) {
	pages := Flatten(sampleTree())

	// The last page of one section links forward into the next section.
	_, next := Neighbors(pages, "/machine-learning/regression")
	require.NotNil(t, next)
	require.Equal(t, "/deep-learning", next.Href)
}

func TestNeighborsUnknownPath(t *testing.T) {
	prev, next := Neighbors(Flatten(sampleTree()), "/nope")
	require.Nil(t, prev)
	require.Nil(t, next)
}

func TestValidateAcceptsSampleTree(t *testing.T) {
	require.NoError(t, Validate(sampleTree()))
}

func TestValidateRejectsDuplicateHrefs(t *testing.T) {
	tree := []RouteNode{
		{Title: "A", Href: "/a"},
		{Title: "Also A", Href: "/a"},
	}
	err := Validate(tree)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate")
}

func TestValidateRejectsMissingFields(t *testing.T) {
	require.Error(t, Validate([]RouteNode{{Href: "/a"}}))
	require.Error(t, Validate([]RouteNode{{Title: "A"}}))
	require.Error(t, Validate([]RouteNode{{Title: "A", Href: "a"}}))
}

func TestPageSlug(t *testing.T) {
	p := Page{Title: "CNN", Href: "/deep-learning/cnn"}
	require.Equal(t, "deep-learning/cnn", p.Slug())
}
