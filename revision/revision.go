// Package revision implements the CVS dotted-decimal revision number
// algebra: parsing, the branch/commit distinction, and the "contains"
// predicate used to decide which branches a revision belongs to.
package revision

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes a branch identifier (odd number of components) from a
// commit identifier (even number of components).
type Kind int

const (
	// Branch identifies a line of development, e.g. "1.1.2".
	Branch Kind = iota
	// Commit identifies one historical version of a file, e.g. "1.1.2.1".
	Commit
)

// ErrInvalidTypesForContains is returned by Contains when the receiver is
// not a Branch or the argument is not a Commit.
var ErrInvalidTypesForContains = errors.New("revision: invalid types for contains")

// MalformedRevisionError reports a revision string that could not be
// parsed into an ID.
type MalformedRevisionError struct {
	Text string
	Err  error
}

func (e *MalformedRevisionError) Error() string {
	return fmt.Sprintf("revision: malformed revision %q: %v", e.Text, e.Err)
}

func (e *MalformedRevisionError) Unwrap() error { return e.Err }

// ID is a non-empty dotted sequence of positive integers, e.g. "1.1" or
// "1.1.2.2.2.1". The internal representation never contains zeros: a
// literal zero component (CVS's magic-revision encoding of branches as
// "X.Y.0.Z") is stripped during Parse.
type ID struct {
	kind  Kind
	parts []uint64
}

// Parse splits text on '.', rejects empty or non-digit components, elides
// zero components, and classifies the remainder as Branch (odd length) or
// Commit (even length).
func Parse(text string) (ID, error) {
	if text == "" {
		return ID{}, &MalformedRevisionError{Text: text, Err: errors.New("empty revision")}
	}
	fields := strings.Split(text, ".")
	parts := make([]uint64, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			return ID{}, &MalformedRevisionError{Text: text, Err: errors.New("empty component")}
		}
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return ID{}, &MalformedRevisionError{Text: text, Err: err}
		}
		if v == 0 {
			// Magic-revision encoding of a branch number; drop it.
			continue
		}
		parts = append(parts, v)
	}
	if len(parts) == 0 {
		return ID{}, &MalformedRevisionError{Text: text, Err: errors.New("no non-zero components")}
	}
	kind := Branch
	if len(parts)%2 == 0 {
		kind = Commit
	}
	return ID{kind: kind, parts: parts}, nil
}

// MustParse is Parse but panics on error; intended for tests and literals.
func MustParse(text string) ID {
	id, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return id
}

// Kind reports whether id is a Branch or a Commit.
func (id ID) Kind() Kind { return id.kind }

// IsBranch reports whether id is a branch identifier.
func (id ID) IsBranch() bool { return id.kind == Branch }

// IsCommit reports whether id is a commit identifier.
func (id ID) IsCommit() bool { return id.kind == Commit }

// Len returns the number of dotted components.
func (id ID) Len() int { return len(id.parts) }

// Part returns the i'th dotted component (0-indexed).
func (id ID) Part(i int) uint64 { return id.parts[i] }

// String renders id in dotted-decimal form.
func (id ID) String() string {
	var sb strings.Builder
	for i, p := range id.parts {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.FormatUint(p, 10))
	}
	return sb.String()
}

// Equal reports whether id and other have the same kind and components.
func (id ID) Equal(other ID) bool {
	if id.kind != other.kind || len(id.parts) != len(other.parts) {
		return false
	}
	for i := range id.parts {
		if id.parts[i] != other.parts[i] {
			return false
		}
	}
	return true
}

// Less provides a total dotted-decimal order, suitable for sorting or use
// as a map key via String() where hashability is required.
func (id ID) Less(other ID) bool {
	for i := 0; i < len(id.parts) && i < len(other.parts); i++ {
		if id.parts[i] != other.parts[i] {
			return id.parts[i] < other.parts[i]
		}
	}
	return len(id.parts) < len(other.parts)
}

// ToBranch returns the branch a commit lies on. For a commit "a.b....x.y" it
// returns branch "a.b....x". Branches return themselves.
func (id ID) ToBranch() ID {
	if id.kind == Branch {
		return id
	}
	parts := make([]uint64, len(id.parts)-1)
	copy(parts, id.parts[:len(id.parts)-1])
	return ID{kind: Branch, parts: parts}
}

// Contains decides whether the commit other lies on branch id, or on an
// ancestor of it. id must be a Branch and other must be a Commit; otherwise
// ErrInvalidTypesForContains is returned.
//
// Algorithm (see spec.md §4.1):
//  1. If other is longer than id+1, other is strictly deeper than anything
//     on id: not contained.
//  2. Walk paired (branch_number, max_rev) components of id. At each pair,
//     if other has run out of components it is an ancestor: contained. If
//     the branch component doesn't match exactly, not contained. If the
//     commit's revision at this position exceeds the branch's own revision
//     at the same position, not contained (it happened after the branch was
//     cut from this line of development).
//  3. Finally check the leaf branch component if other still has one.
func (id ID) Contains(other ID) (bool, error) {
	if id.kind != Branch || other.kind != Commit {
		return false, ErrInvalidTypesForContains
	}
	branch := id.parts
	commit := other.parts

	if len(commit) > len(branch)+1 {
		return false, nil
	}

	for i := 0; i < len(branch)-1; i += 2 {
		if i >= len(commit) {
			// Previous pairs matched and the commit is shallower than this
			// branch prefix position: it's an ancestor.
			return true, nil
		}
		if commit[i] != branch[i] {
			return false, nil
		}
		if i+1 < len(commit) {
			if commit[i+1] > branch[i+1] {
				return false, nil
			}
		} else {
			// Odd number of entries on what's supposed to be a commit: not
			// meaningful.
			return false, ErrInvalidTypesForContains
		}
	}

	if leaf := len(branch) - 1; leaf < len(commit) {
		if commit[leaf] != branch[leaf] {
			return false, nil
		}
	}

	return true, nil
}
