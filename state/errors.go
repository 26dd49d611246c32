package state

import "fmt"

// NoFileRevisionForIDError reports a lookup by an id the manager has never
// seen.
type NoFileRevisionForIDError struct{ ID interface{} }

func (e *NoFileRevisionForIDError) Error() string {
	return fmt.Sprintf("state: no file revision for id %v", e.ID)
}

// NoFileRevisionForKeyError reports a lookup by a (path, revision) key the
// manager has never seen.
type NoFileRevisionForKeyError struct{ Key Key }

func (e *NoFileRevisionForKeyError) Error() string {
	return fmt.Sprintf("state: no file revision for key %+v", e.Key)
}

// NoFileRevisionForMarkError reports a lookup by a mark not indexed as a
// file revision.
type NoFileRevisionForMarkError struct{ Mark interface{} }

func (e *NoFileRevisionForMarkError) Error() string {
	return fmt.Sprintf("state: no file revision for mark %v", e.Mark)
}

// NoPatchSetForMarkError reports a lookup by a mark not indexed as a
// patchset.
type NoPatchSetForMarkError struct{ Mark interface{} }

func (e *NoPatchSetForMarkError) Error() string {
	return fmt.Sprintf("state: no patchset for mark %v", e.Mark)
}

// NoTagError reports a lookup of an unknown tag name.
type NoTagError struct{ Name string }

func (e *NoTagError) Error() string {
	return fmt.Sprintf("state: no tag %q", e.Name)
}

// UnknownSerialisationVersionError reports a persistence stream whose
// version byte this build does not recognize.
type UnknownSerialisationVersionError struct{ Version byte }

func (e *UnknownSerialisationVersionError) Error() string {
	return fmt.Sprintf("state: unknown serialisation version %d", e.Version)
}
