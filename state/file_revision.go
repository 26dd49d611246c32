package state

import (
	"sync"
	"time"

	"github.com/cvsfastimport/cvsfastimport/ids"
)

// Key identifies a unique historical version of one file. Path is kept in
// its native byte form by the caller (state itself only needs it as a map
// key, so it's typed string here for Go map ergonomics; a Go string holds
// arbitrary bytes unchanged, so no encoding is applied).
type Key struct {
	Path     string
	Revision string
}

// FileRevision is the stored record for a Key. It is immutable after
// insertion and referenced by FileRevisionID everywhere else.
type FileRevision struct {
	Key      Key
	Mark     *ids.Mark // nil iff this revision is a CVS deletion (state "dead")
	Branches []string
	Author   string
	Message  string
	Time     time.Time
}

type fileRevisionStore struct {
	mu        sync.RWMutex
	revisions []FileRevision
	byKey     map[Key]ids.FileRevisionID
}

func newFileRevisionStore() *fileRevisionStore {
	return &fileRevisionStore{byKey: make(map[Key]ids.FileRevisionID)}
}

// add is idempotent on key: a second insert for the same key returns the
// original id without mutating the stored record.
func (s *fileRevisionStore) add(fr FileRevision) ids.FileRevisionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byKey[fr.Key]; ok {
		return id
	}
	s.revisions = append(s.revisions, fr)
	id := ids.FileRevisionID(len(s.revisions)) // 1-indexed; 0 is never valid
	s.byKey[fr.Key] = id
	return id
}

func (s *fileRevisionStore) getByID(id ids.FileRevisionID) (*FileRevision, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id == 0 || int(id) > len(s.revisions) {
		return nil, false
	}
	fr := s.revisions[id-1]
	return &fr, true
}

func (s *fileRevisionStore) getByKey(key Key) (ids.FileRevisionID, *FileRevision, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[key]
	if !ok {
		return 0, nil, false
	}
	fr := s.revisions[id-1]
	return id, &fr, true
}

func (s *fileRevisionStore) snapshot() []FileRevision {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]FileRevision, len(s.revisions))
	copy(out, s.revisions)
	return out
}

func (s *fileRevisionStore) restore(revisions []FileRevision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revisions = revisions
	s.byKey = make(map[Key]ids.FileRevisionID, len(revisions))
	for i, fr := range revisions {
		s.byKey[fr.Key] = ids.FileRevisionID(i + 1)
	}
}
