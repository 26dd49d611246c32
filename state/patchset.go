package state

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cvsfastimport/cvsfastimport/ids"
)

// Patchset is the state manager's durable record of a repository-wide
// commit: a time, the set of file revisions folded into it, and the
// branches it has been emitted on (the same content may be shared across
// branches, see spec.md §3).
type Patchset struct {
	Time          time.Time
	FileRevisions []ids.FileRevisionID
	Branches      []string
}

func contentKey(t time.Time, revisionIDs []ids.FileRevisionID) string {
	sorted := append([]ids.FileRevisionID(nil), revisionIDs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return fmt.Sprintf("%d|%v", t.UnixNano(), sorted)
}

type patchsetStore struct {
	mu             sync.RWMutex
	patchsets      map[ids.Mark]*Patchset
	byBranch       map[string][]ids.Mark
	byContent      map[string]ids.Mark
	byFileRevision map[ids.FileRevisionID][]ids.Mark
}

func newPatchsetStore() *patchsetStore {
	return &patchsetStore{
		patchsets:      make(map[ids.Mark]*Patchset),
		byBranch:       make(map[string][]ids.Mark),
		byContent:      make(map[string]ids.Mark),
		byFileRevision: make(map[ids.FileRevisionID][]ids.Mark),
	}
}

func (s *patchsetStore) add(mark ids.Mark, branch string, t time.Time, revisionIDs []ids.FileRevisionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := &Patchset{Time: t, FileRevisions: revisionIDs, Branches: []string{branch}}
	s.patchsets[mark] = ps
	s.byBranch[branch] = append(s.byBranch[branch], mark)
	s.byContent[contentKey(t, revisionIDs)] = mark
	for _, id := range revisionIDs {
		s.byFileRevision[id] = append(s.byFileRevision[id], mark)
	}
}

func (s *patchsetStore) addBranch(mark ids.Mark, branch string) (*Patchset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, ok := s.patchsets[mark]
	if !ok {
		return nil, false
	}
	for _, b := range ps.Branches {
		if b == branch {
			return ps, true
		}
	}
	ps.Branches = append(ps.Branches, branch)
	s.byBranch[branch] = append(s.byBranch[branch], mark)
	return ps, true
}

func (s *patchsetStore) getByMark(mark ids.Mark) (*Patchset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ps, ok := s.patchsets[mark]
	return ps, ok
}

func (s *patchsetStore) lastMarkOnBranch(branch string) (ids.Mark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	marks := s.byBranch[branch]
	if len(marks) == 0 {
		return 0, false
	}
	return marks[len(marks)-1], true
}

func (s *patchsetStore) markForContent(t time.Time, revisionIDs []ids.FileRevisionID) (ids.Mark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mark, ok := s.byContent[contentKey(t, revisionIDs)]
	return mark, ok
}

func (s *patchsetStore) marksForFileRevision(id ids.FileRevisionID) []ids.Mark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ids.Mark, len(s.byFileRevision[id]))
	copy(out, s.byFileRevision[id])
	return out
}

// lastForFileRevision folds over every mark referencing id to find the one
// whose patchset has the latest time, per spec.md §4.6.
func (s *patchsetStore) lastForFileRevision(id ids.FileRevisionID) (ids.Mark, *Patchset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best ids.Mark
	var bestPS *Patchset
	for _, mark := range s.byFileRevision[id] {
		ps, ok := s.patchsets[mark]
		if !ok {
			continue
		}
		if bestPS == nil || bestPS.Time.Before(ps.Time) {
			best, bestPS = mark, ps
		}
	}
	if bestPS == nil {
		return 0, nil, false
	}
	return best, bestPS, true
}

func (s *patchsetStore) branches() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.byBranch))
	for b := range s.byBranch {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

func (s *patchsetStore) marksOnBranch(branch string) []ids.Mark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ids.Mark, len(s.byBranch[branch]))
	copy(out, s.byBranch[branch])
	return out
}

func (s *patchsetStore) snapshot() ([]ids.Mark, []*Patchset) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	marks := make([]ids.Mark, 0, len(s.patchsets))
	records := make([]*Patchset, 0, len(s.patchsets))
	for m, ps := range s.patchsets {
		marks = append(marks, m)
		records = append(records, ps)
	}
	return marks, records
}

func (s *patchsetStore) restore(marks []ids.Mark, records []*Patchset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patchsets = make(map[ids.Mark]*Patchset, len(marks))
	s.byBranch = make(map[string][]ids.Mark)
	s.byContent = make(map[string]ids.Mark)
	s.byFileRevision = make(map[ids.FileRevisionID][]ids.Mark)
	for i, m := range marks {
		ps := records[i]
		s.patchsets[m] = ps
		for _, b := range ps.Branches {
			s.byBranch[b] = append(s.byBranch[b], m)
		}
		s.byContent[contentKey(ps.Time, ps.FileRevisions)] = m
		for _, id := range ps.FileRevisions {
			s.byFileRevision[id] = append(s.byFileRevision[id], m)
		}
	}
	for _, marks := range s.byBranch {
		sort.Slice(marks, func(i, j int) bool { return marks[i] < marks[j] })
	}
}
