package walker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvsfastimport/cvsfastimport/fastimport"
	"github.com/cvsfastimport/cvsfastimport/ids"
	"github.com/cvsfastimport/cvsfastimport/patchset"
	"github.com/cvsfastimport/cvsfastimport/rcs"
	"github.com/cvsfastimport/cvsfastimport/revision"
	"github.com/cvsfastimport/cvsfastimport/state"
)

type fakeEmitter struct {
	mu    sync.Mutex
	blobs []fastimport.Blob
}

func (f *fakeEmitter) Blob(b fastimport.Blob) (fastimport.Mark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs = append(f.blobs, b)
	return fastimport.Mark(len(f.blobs)), nil
}

// buildFixture returns a two-revision trunk (1.1 -> 1.2, head) with a
// branch "rel1" cut at 1.1 carrying one commit, 1.1.1.1, tagged REL1_0.
// 1.2 is "alpha\nbeta\ngamma\n"; its reverse delta to 1.1 deletes line 2
// (beta); the branch delta from 1.1 appends "delta" after line 2 (gamma).
func buildFixture() (file *rcs.File, t1, t2, t3 time.Time) {
	t1 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 = time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	t3 = time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC)

	head := revision.MustParse("1.2")
	rev11 := revision.MustParse("1.1")
	rev1111 := revision.MustParse("1.1.1.1")

	file = &rcs.File{
		Admin: rcs.Admin{
			Head: &head,
			Symbols: map[string]revision.ID{
				"rel1":   revision.MustParse("1.1.1"),
				"REL1_0": rev1111,
			},
		},
		Delta: map[string]rcs.Delta{
			"1.2":     {Date: t2, Author: "alice", Next: &rev11},
			"1.1":     {Date: t1, Author: "bob", Branches: []revision.ID{rev1111}},
			"1.1.1.1": {Date: t3, Author: "carol"},
		},
		DeltaText: map[string]rcs.DeltaText{
			"1.2":     {Log: []byte("second"), Text: []byte("alpha\nbeta\ngamma\n")},
			"1.1":     {Log: []byte("first"), Text: []byte("d2 1\n")},
			"1.1.1.1": {Log: []byte("branch"), Text: []byte("a2 1\ndelta\n")},
		},
	}
	return file, t1, t2, t3
}

func TestWalkReconstructsTrunkAndBranch(t *testing.T) {
	file, t1, t2, t3 := buildFixture()
	st := state.New()
	emitter := &fakeEmitter{}
	w := &RevisionWalker{
		HeadBranch: "main",
		Output:     emitter,
		State:      st,
		Detectors:  NewBranchDetectors(patchset.DefaultDelta),
	}

	require.NoError(t, w.Walk("foo.txt", file))

	require.Len(t, emitter.blobs, 3)
	assert.Equal(t, []byte("alpha\nbeta\ngamma\n"), emitter.blobs[0].Data)
	assert.Equal(t, []byte("alpha\ngamma\n"), emitter.blobs[1].Data)
	assert.Equal(t, []byte("alpha\ngamma\ndelta\n"), emitter.blobs[2].Data)

	id12, fr12, err := st.GetFileRevision(state.Key{Path: "foo.txt", Revision: "1.2"})
	require.NoError(t, err)
	assert.Equal(t, ids.FileRevisionID(1), id12)
	assert.Equal(t, []string{"main"}, fr12.Branches)
	assert.Equal(t, "alice", fr12.Author)
	assert.Equal(t, "second", fr12.Message)
	assert.Equal(t, t2, fr12.Time)
	require.NotNil(t, fr12.Mark)
	assert.Equal(t, ids.Mark(1), *fr12.Mark)

	id11, fr11, err := st.GetFileRevision(state.Key{Path: "foo.txt", Revision: "1.1"})
	require.NoError(t, err)
	assert.Equal(t, ids.FileRevisionID(2), id11)
	assert.ElementsMatch(t, []string{"main", "rel1"}, fr11.Branches)
	assert.Equal(t, t1, fr11.Time)
	require.NotNil(t, fr11.Mark)
	assert.Equal(t, ids.Mark(2), *fr11.Mark)

	id111, fr111, err := st.GetFileRevision(state.Key{Path: "foo.txt", Revision: "1.1.1.1"})
	require.NoError(t, err)
	assert.Equal(t, ids.FileRevisionID(3), id111)
	assert.Equal(t, []string{"rel1"}, fr111.Branches)
	assert.Equal(t, t3, fr111.Time)
	require.NotNil(t, fr111.Mark)
	assert.Equal(t, ids.Mark(3), *fr111.Mark)

	tagIDs, err := st.GetFileRevisionsForTag("REL1_0")
	require.NoError(t, err)
	assert.Equal(t, []ids.FileRevisionID{3}, tagIDs)

	drained := w.Detectors.Drain()
	assert.Len(t, drained["main"], 2)
	assert.Len(t, drained["rel1"], 2)
}

func TestWalkIsIdempotentOnRepeatedWalk(t *testing.T) {
	file, _, _, _ := buildFixture()
	st := state.New()

	first := &RevisionWalker{
		HeadBranch: "main",
		Output:     &fakeEmitter{},
		State:      st,
		Detectors:  NewBranchDetectors(patchset.DefaultDelta),
	}
	require.NoError(t, first.Walk("foo.txt", file))

	resumed := &fakeEmitter{}
	second := &RevisionWalker{
		HeadBranch: "main",
		Output:     resumed,
		State:      st,
		Detectors:  NewBranchDetectors(patchset.DefaultDelta),
	}
	require.NoError(t, second.Walk("foo.txt", file))

	assert.Empty(t, resumed.blobs, "already-known revisions must not re-emit blobs")

	id, _, err := st.GetFileRevision(state.Key{Path: "foo.txt", Revision: "1.1.1.1"})
	require.NoError(t, err)
	assert.Equal(t, ids.FileRevisionID(3), id)
}

func TestWalkSkipsBlobForDeadRevision(t *testing.T) {
	head := revision.MustParse("1.1")
	tDel := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	file := &rcs.File{
		Admin: rcs.Admin{Head: &head},
		Delta: map[string]rcs.Delta{
			"1.1": {Date: tDel, Author: "dave", State: "dead"},
		},
		DeltaText: map[string]rcs.DeltaText{
			"1.1": {Log: []byte("remove"), Text: []byte("")},
		},
	}
	st := state.New()
	emitter := &fakeEmitter{}
	w := &RevisionWalker{
		HeadBranch: "main",
		Output:     emitter,
		State:      st,
		Detectors:  NewBranchDetectors(patchset.DefaultDelta),
	}

	require.NoError(t, w.Walk("gone.txt", file))

	assert.Empty(t, emitter.blobs)
	_, fr, err := st.GetFileRevision(state.Key{Path: "gone.txt", Revision: "1.1"})
	require.NoError(t, err)
	assert.Nil(t, fr.Mark)
}

func TestWalkMissingHeadReturnsError(t *testing.T) {
	file := &rcs.File{Delta: map[string]rcs.Delta{}, DeltaText: map[string]rcs.DeltaText{}}
	st := state.New()
	w := &RevisionWalker{
		HeadBranch: "main",
		Output:     &fakeEmitter{},
		State:      st,
		Detectors:  NewBranchDetectors(patchset.DefaultDelta),
	}

	err := w.Walk("x.txt", file)
	require.Error(t, err)
	var missing *MissingHeadError
	assert.ErrorAs(t, err, &missing)
}
