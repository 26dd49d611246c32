// Package fastimport writes the git fast-import wire protocol: blobs,
// commits, tags, resets and the handful of control commands a frontend
// needs to stream a repository into `git fast-import`.
package fastimport

import "fmt"

// Mark is a frontend-assigned integer naming a blob or commit so later
// commands can refer back to it without knowing its eventual sha1.
type Mark uint64

// String formats the mark in wire form, e.g. ":42".
func (m Mark) String() string {
	return fmt.Sprintf(":%d", uint64(m))
}
