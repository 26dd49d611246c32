package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvsfastimport/cvsfastimport/ids"
	"github.com/cvsfastimport/cvsfastimport/state"
)

func TestBuildManifestReplaysAddsAndDeletes(t *testing.T) {
	st := state.New()
	t1 := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC)

	aMark := ids.Mark(1)
	aID := st.AddFileRevision(state.FileRevision{Key: state.Key{Path: "a.txt", Revision: "1.1"}, Mark: &aMark, Time: t1})
	bID := st.AddFileRevision(state.FileRevision{Key: state.Key{Path: "b.txt", Revision: "1.1"}, Mark: nil, Time: t1})

	st.AddPatchset(ids.Mark(1), "main", t1, []ids.FileRevisionID{aID, bID})

	cMark := ids.Mark(2)
	cID := st.AddFileRevision(state.FileRevision{Key: state.Key{Path: "a.txt", Revision: "1.2"}, Mark: &cMark, Time: t2})
	dID := st.AddFileRevision(state.FileRevision{Key: state.Key{Path: "c.txt", Revision: "1.1"}, Mark: nil, Time: t2})
	st.AddPatchset(ids.Mark(2), "main", t2, []ids.FileRevisionID{cID, dID})

	tree := buildManifest(st, "main")
	assert.ElementsMatch(t, []string{"a.txt"}, tree.GetFiles(""))
}

func TestBuildGraphConnectsBranchChainAndSharesReusedMarks(t *testing.T) {
	st := state.New()
	t1 := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC)

	st.AddPatchset(ids.Mark(1), "main", t1, nil)
	st.AddPatchset(ids.Mark(2), "main", t2, nil)
	require.NoError(t, st.AddBranchToPatchset(ids.Mark(1), "rel1"))

	g := buildGraph(st)
	dot := g.String()
	assert.Contains(t, dot, "1")
	assert.Contains(t, dot, "2")
	assert.Contains(t, dot, "main")
	assert.Contains(t, dot, "rel1")
}
