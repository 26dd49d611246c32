package state

import (
	"sync"

	"github.com/cvsfastimport/cvsfastimport/ids"
)

// tagStore records, per tag name, the content it pins (a set of file
// revisions materialised by the walker) and, once emitted, the mark of the
// synthetic commit created for it.
type tagStore struct {
	mu        sync.RWMutex
	revisions map[string][]ids.FileRevisionID
	marks     map[string]ids.Mark
}

func newTagStore() *tagStore {
	return &tagStore{
		revisions: make(map[string][]ids.FileRevisionID),
		marks:     make(map[string]ids.Mark),
	}
}

func (s *tagStore) addRevision(name string, id ids.FileRevisionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revisions[name] = append(s.revisions[name], id)
}

func (s *tagStore) setMark(name string, mark ids.Mark) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks[name] = mark
}

func (s *tagStore) revisionsFor(name string) ([]ids.FileRevisionID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	revisionIDs, ok := s.revisions[name]
	return revisionIDs, ok
}

func (s *tagStore) markFor(name string) (ids.Mark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.marks[name]
	return m, ok
}

func (s *tagStore) names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool, len(s.revisions)+len(s.marks))
	for name := range s.revisions {
		seen[name] = true
	}
	for name := range s.marks {
		seen[name] = true
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	return out
}

type tagSnapshot struct {
	Revisions map[string][]ids.FileRevisionID
	Marks     map[string]ids.Mark
}

func (s *tagStore) snapshot() tagSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	revisions := make(map[string][]ids.FileRevisionID, len(s.revisions))
	for k, v := range s.revisions {
		revisions[k] = append([]ids.FileRevisionID(nil), v...)
	}
	marks := make(map[string]ids.Mark, len(s.marks))
	for k, v := range s.marks {
		marks[k] = v
	}
	return tagSnapshot{Revisions: revisions, Marks: marks}
}

func (s *tagStore) restore(snap tagSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Revisions == nil {
		snap.Revisions = make(map[string][]ids.FileRevisionID)
	}
	if snap.Marks == nil {
		snap.Marks = make(map[string]ids.Mark)
	}
	s.revisions = snap.Revisions
	s.marks = snap.Marks
}
