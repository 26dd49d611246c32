package revision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContains(t *testing.T) {
	branch := MustParse("1.1.2")

	cases := []struct {
		commit string
		want   bool
	}{
		{"1.1.2.1", true},     // on-branch
		{"1.1.2.2", true},     // on-branch
		{"1.1", true},         // ancestor
		{"1.1.3.1", false},    // sibling branch
		{"1.1.2.1.1.1", false}, // descendant branch
		{"1.2", false},        // past branchpoint on parent
	}
	for _, c := range cases {
		commit := MustParse(c.commit)
		got, err := branch.Contains(commit)
		require.NoError(t, err)
		assert.Equalf(t, c.want, got, "branch %s contains %s", branch, commit)
	}
}

func TestContainsRequiresBranchAndCommit(t *testing.T) {
	_, err := MustParse("1.1").Contains(MustParse("1.2"))
	assert.ErrorIs(t, err, ErrInvalidTypesForContains)

	_, err = MustParse("1.1.2").Contains(MustParse("1.1.2"))
	assert.ErrorIs(t, err, ErrInvalidTypesForContains)
}

func TestParseNormalization(t *testing.T) {
	id, err := Parse("1.2.0.3")
	require.NoError(t, err)
	assert.True(t, id.IsBranch())
	assert.Equal(t, "1.2.3", id.String())

	id, err = Parse("1.2.3.4")
	require.NoError(t, err)
	assert.True(t, id.IsCommit())
	assert.Equal(t, "1.2.3.4", id.String())

	for _, bad := range []string{"", "x", "1.", "1.x"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestToBranch(t *testing.T) {
	assert.Equal(t, "1.2.3", MustParse("1.2.3.4").ToBranch().String())
	assert.Equal(t, "1.2.3", MustParse("1.2.3").ToBranch().String())
}

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []string{"1.1", "1.2.3.4", "1.2.3", "3.14.15.9.2.6"} {
		id := MustParse(s)
		again, err := Parse(id.String())
		require.NoError(t, err)
		assert.True(t, id.Equal(again))
	}
}
