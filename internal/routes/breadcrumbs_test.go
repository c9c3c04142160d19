package routes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBreadcrumbsTitleCasing(t *testing.T) {
	crumbs := Breadcrumbs("deep-learning/neural-network-archs/cnn")
	require.Len(t, crumbs, 3)

	require.Equal(t, "Deep Learning", crumbs[0].Label)
	require.Equal(t, "/deep-learning", crumbs[0].Href)
	require.False(t, crumbs[0].Current)

	require.Equal(t, "Neural Network Archs", crumbs[1].Label)
	require.Equal(t, "/deep-learning/neural-network-archs", crumbs[1].Href)
	require.False(t, crumbs[1].Current)

	require.Equal(t, "Cnn", crumbs[2].Label)
	require.Equal(t, "/deep-learning/neural-network-archs/cnn", crumbs[2].Href)
	require.True(t, crumbs[2].Current)
}

func TestBreadcrumbsSingleSegment(t *testing.T) {
	crumbs := Breadcrumbs("math")
	require.Len(t, crumbs, 1)
	require.Equal(t, "Math", crumbs[0].Label)
	require.True(t, crumbs[0].Current)
}

func TestBreadcrumbsLeadingSlash(t *testing.T) {
	require.Equal(t, Breadcrumbs("math/linear-algebra"), Breadcrumbs("/math/linear-algebra"))
}

func TestBreadcrumbsEmptyPath(t *testing.T) {
	require.Nil(t, Breadcrumbs(""))
	require.Nil(t, Breadcrumbs("/"))
}
