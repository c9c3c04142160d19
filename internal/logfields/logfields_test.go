package logfields

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHelperKeysAndValues(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"BuildID", KeyBuildID, BuildID("b1").Value.String()},
		{"Slug", KeySlug, Slug("math/linear-algebra").Value.String()},
		{"Path", KeyPath, Path("/tmp/x").Value.String()},
		{"Method", KeyMethod, Method("GET").Value.String()},
	}
	for _, tc := range cases {
		require.NotEmpty(t, tc.key, tc.name)
		require.NotEmpty(t, tc.val, tc.name)
	}

	require.Equal(t, KeyBuildID, BuildID("b1").Key)
	require.Equal(t, "b1", BuildID("b1").Value.String())
}

func TestErrorHandlesNil(t *testing.T) {
	require.Equal(t, "", Error(nil).Value.String())
	require.Equal(t, "boom", Error(errors.New("boom")).Value.String())
}
