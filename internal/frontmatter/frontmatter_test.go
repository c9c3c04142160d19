package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitAndParse(t *testing.T) {
	doc := []byte("---\ntitle: Linear Algebra\ndescription: Vectors and matrices\n---\n# Body\n")

	meta, body, had, err := Split(doc)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "# Body\n", string(body))

	m, err := Parse(meta)
	require.NoError(t, err)
	require.Equal(t, "Linear Algebra", m.Title)
	require.Equal(t, "Vectors and matrices", m.Description)
	require.False(t, m.Draft)
}

func TestSplitNoFrontmatter(t *testing.T) {
	doc := []byte("# Just a body\n")
	meta, body, had, err := Split(doc)
	require.NoError(t, err)
	require.False(t, had)
	require.Nil(t, meta)
	require.Equal(t, doc, body)
}

func TestSplitEmptyFrontmatter(t *testing.T) {
	doc := []byte("---\n---\nbody\n")
	meta, body, had, err := Split(doc)
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, meta)
	require.Equal(t, "body\n", string(body))
}

func TestSplitCRLF(t *testing.T) {
	doc := []byte("---\r\ntitle: CNN\r\n---\r\nbody\r\n")
	meta, body, had, err := Split(doc)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "body\r\n", string(body))

	m, err := Parse(meta)
	require.NoError(t, err)
	require.Equal(t, "CNN", m.Title)
}

func TestSplitMissingClosingDelimiter(t *testing.T) {
	_, _, _, err := Split([]byte("---\ntitle: Broken\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
}

func TestSplitClosingDelimiterAtEOF(t *testing.T) {
	meta, body, had, err := Split([]byte("---\ntitle: Tail\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, body)

	m, err := Parse(meta)
	require.NoError(t, err)
	require.Equal(t, "Tail", m.Title)
}

func TestFields(t *testing.T) {
	fields, err := Fields([]byte("title: X\ntags: [a, b]\n"))
	require.NoError(t, err)
	require.Equal(t, "X", fields["title"])
	require.Len(t, fields["tags"], 2)
}

func TestParseDraft(t *testing.T) {
	m, err := Parse([]byte("title: WIP\ndraft: true\n"))
	require.NoError(t, err)
	require.True(t, m.Draft)
}
