// Package ids defines the small set of integer identifier types shared
// across state, patchset, walker and the commands. They are hoisted into
// their own package so those packages can reference each other's
// identifiers without an import cycle — the arena-plus-dense-id design
// (every cross-index reference is an integer id, not a pointer) means they
// all need the same vocabulary. fastimport keeps its own Mark type; walker
// and the commands convert between the two.
package ids

import "fmt"

// Mark is an opaque positive integer naming a Git object emitted by the
// fast-import subprocess. Allocation is monotone and marks persist across
// runs via the mark file.
type Mark uint64

func (m Mark) String() string { return fmt.Sprintf(":%d", uint64(m)) }

// FileRevisionID densely identifies one FileRevision record owned by the
// state manager, referenced by id (never by pointer) from the detector, tag,
// and patchset indices.
type FileRevisionID uint64
