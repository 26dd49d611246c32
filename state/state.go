// Package state holds the durable, in-memory record of everything the
// importer has decided: which file revisions exist, how they were folded
// into patchsets, which marks correspond to which branches, and what
// content each tag points at. It is the one place import progress can be
// resumed from.
package state

import (
	"sync"
	"time"

	"github.com/cvsfastimport/cvsfastimport/ids"
)

// Manager is the single synchronized owner of import state. All of its
// methods are safe for concurrent use; callers (the walker's worker pool)
// are expected to call into it from many goroutines at once.
type Manager struct {
	fileRevisions *fileRevisionStore
	patchsets     *patchsetStore
	tags          *tagStore

	marksMu  sync.RWMutex
	rawMarks []byte
}

// New returns an empty Manager.
func New() *Manager {
	return &Manager{
		fileRevisions: newFileRevisionStore(),
		patchsets:     newPatchsetStore(),
		tags:          newTagStore(),
	}
}

// AddFileRevision records a file revision, returning its id. Calling this
// twice with the same Key is idempotent and returns the original id.
func (m *Manager) AddFileRevision(fr FileRevision) ids.FileRevisionID {
	return m.fileRevisions.add(fr)
}

// GetFileRevision looks up a file revision by (path, revision).
func (m *Manager) GetFileRevision(key Key) (ids.FileRevisionID, *FileRevision, error) {
	id, fr, ok := m.fileRevisions.getByKey(key)
	if !ok {
		return 0, nil, &NoFileRevisionForKeyError{Key: key}
	}
	return id, fr, nil
}

// GetFileRevisionByID looks up a file revision by id.
func (m *Manager) GetFileRevisionByID(id ids.FileRevisionID) (*FileRevision, error) {
	fr, ok := m.fileRevisions.getByID(id)
	if !ok {
		return nil, &NoFileRevisionForIDError{ID: id}
	}
	return fr, nil
}

// AddPatchset records a newly emitted commit, assigning it mark on branch.
// revisionIDs lists the file revisions folded into it, in deterministic
// emission order.
func (m *Manager) AddPatchset(mark ids.Mark, branch string, t time.Time, revisionIDs []ids.FileRevisionID) {
	m.patchsets.add(mark, branch, t, revisionIDs)
}

// AddBranchToPatchset records that the commit already emitted as mark is
// also reachable from branch (content reused via fast-forward rather than
// re-emitted, see spec.md §3).
func (m *Manager) AddBranchToPatchset(mark ids.Mark, branch string) error {
	if _, ok := m.patchsets.addBranch(mark, branch); !ok {
		return &NoPatchSetForMarkError{Mark: mark}
	}
	return nil
}

// GetPatchsetFromMark returns the patchset previously recorded for mark.
func (m *Manager) GetPatchsetFromMark(mark ids.Mark) (*Patchset, error) {
	ps, ok := m.patchsets.getByMark(mark)
	if !ok {
		return nil, &NoPatchSetForMarkError{Mark: mark}
	}
	return ps, nil
}

// GetLastPatchsetMarkOnBranch returns the mark most recently appended to
// branch, for use as the parent of the next commit on it.
func (m *Manager) GetLastPatchsetMarkOnBranch(branch string) (ids.Mark, bool) {
	return m.patchsets.lastMarkOnBranch(branch)
}

// GetMarkFromPatchsetContent looks up a prior commit by its exact content
// (time plus file revision set), enabling branch-to-branch content reuse
// instead of re-emitting identical commits.
func (m *Manager) GetMarkFromPatchsetContent(t time.Time, revisionIDs []ids.FileRevisionID) (ids.Mark, bool) {
	return m.patchsets.markForContent(t, revisionIDs)
}

// GetPatchsetIDsForFileRevision returns every mark whose patchset includes
// id.
func (m *Manager) GetPatchsetIDsForFileRevision(id ids.FileRevisionID) []ids.Mark {
	return m.patchsets.marksForFileRevision(id)
}

// GetLastPatchsetForFileRevision returns the most recent (by time) mark and
// patchset containing id.
func (m *Manager) GetLastPatchsetForFileRevision(id ids.FileRevisionID) (ids.Mark, *Patchset, error) {
	mark, ps, ok := m.patchsets.lastForFileRevision(id)
	if !ok {
		return 0, nil, &NoFileRevisionForIDError{ID: id}
	}
	return mark, ps, nil
}

// AddTag records that name's materialised content includes id. A tag may
// accumulate many file revisions before it is emitted.
func (m *Manager) AddTag(name string, id ids.FileRevisionID) {
	m.tags.addRevision(name, id)
}

// AddTagMark records the mark of the synthetic commit emitted for name.
func (m *Manager) AddTagMark(name string, mark ids.Mark) {
	m.tags.setMark(name, mark)
}

// GetFileRevisionsForTag returns the file revisions materialised under
// name.
func (m *Manager) GetFileRevisionsForTag(name string) ([]ids.FileRevisionID, error) {
	revisionIDs, ok := m.tags.revisionsFor(name)
	if !ok {
		return nil, &NoTagError{Name: name}
	}
	return revisionIDs, nil
}

// GetMarkForTag returns the mark previously recorded via AddTagMark.
func (m *Manager) GetMarkForTag(name string) (ids.Mark, error) {
	mark, ok := m.tags.markFor(name)
	if !ok {
		return 0, &NoTagError{Name: name}
	}
	return mark, nil
}

// GetTags returns every tag name the manager has observed, either as
// materialised content or as an emitted mark.
func (m *Manager) GetTags() []string {
	return m.tags.names()
}

// GetBranches returns every branch name that has at least one patchset
// recorded against it.
func (m *Manager) GetBranches() []string {
	return m.patchsets.branches()
}

// GetPatchsetMarksOnBranch returns every mark appended to branch, in the
// order each was emitted or reused on it.
func (m *Manager) GetPatchsetMarksOnBranch(branch string) []ids.Mark {
	return m.patchsets.marksOnBranch(branch)
}

// GetRawMarks returns the raw git fast-import mark-file bytes last
// recorded via SetRawMarks, for round-tripping across a resumed import.
func (m *Manager) GetRawMarks() []byte {
	m.marksMu.RLock()
	defer m.marksMu.RUnlock()
	out := make([]byte, len(m.rawMarks))
	copy(out, m.rawMarks)
	return out
}

// SetRawMarks stores the raw git fast-import mark-file bytes produced by
// the most recent --export-marks.
func (m *Manager) SetRawMarks(data []byte) {
	m.marksMu.Lock()
	defer m.marksMu.Unlock()
	m.rawMarks = append([]byte(nil), data...)
}
