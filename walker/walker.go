// Package walker orchestrates turning one parsed ,v file into a sequence
// of blobs, file-revision records, and patchset observations: the
// RevisionWalker. It also provides the path munging the CLI driver applies
// to each walked file, and the branch filtering, commit assembly and tag
// materialization it runs once the walk is done.
package walker

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cvsfastimport/cvsfastimport/edscript"
	"github.com/cvsfastimport/cvsfastimport/fastimport"
	"github.com/cvsfastimport/cvsfastimport/ids"
	"github.com/cvsfastimport/cvsfastimport/rcs"
	"github.com/cvsfastimport/cvsfastimport/revision"
	"github.com/cvsfastimport/cvsfastimport/state"
)

// BlobEmitter is the subset of importer.Supervisor the walker needs. It's
// an interface so tests can exercise RevisionWalker without spawning a real
// git fast-import subprocess.
type BlobEmitter interface {
	Blob(fastimport.Blob) (fastimport.Mark, error)
}

// MissingHeadError reports a ,v file whose admin block has no head
// revision, or whose head has no matching delta/delta-text record — a
// malformed RCS file this walker cannot traverse.
type MissingHeadError struct{ Path string }

func (e *MissingHeadError) Error() string {
	return fmt.Sprintf("walker: %s: missing or incomplete head revision", e.Path)
}

// RevisionWalker reconstructs every historical revision of a ,v file and
// feeds the result into a state manager and, per branch membership, the
// appropriate patchset detector.
type RevisionWalker struct {
	HeadBranch string
	Output     BlobEmitter
	State      *state.Manager
	Detectors  *BranchDetectors
	// Logger, if set, receives a warning when a revision's reconstructed
	// content looks binary despite an expand mode ("kv"/"kvl", or unset)
	// that implies text — a common CVS footgun (binary added without -kb).
	Logger *logrus.Logger
}

// Walk traverses file's full revision tree (trunk, then every branch
// reachable from it) starting at the head, reconstructing content along the
// way. path is the already-munged repository-relative path.
func (w *RevisionWalker) Walk(path string, file *rcs.File) error {
	if file.Admin.Head == nil {
		return &MissingHeadError{Path: path}
	}
	head := *file.Admin.Head
	headDelta, ok := file.Delta[head.String()]
	if !ok {
		return &MissingHeadError{Path: path}
	}
	headText, ok := file.DeltaText[head.String()]
	if !ok {
		return &MissingHeadError{Path: path}
	}

	branches := w.branchMap(file)
	tags := w.tagMap(file)

	content := edscript.NewFile(headText.Text)
	return w.walkRevision(path, head, headDelta, content, file, branches, tags)
}

func (w *RevisionWalker) branchMap(file *rcs.File) map[string]revision.ID {
	branches := map[string]revision.ID{
		w.HeadBranch: file.Admin.Head.ToBranch(),
	}
	for name, id := range file.Admin.Symbols {
		if id.IsBranch() {
			branches[name] = id
		}
	}
	return branches
}

func (w *RevisionWalker) tagMap(file *rcs.File) map[string][]string {
	tags := make(map[string][]string)
	for name, id := range file.Admin.Symbols {
		if id.IsCommit() {
			tags[id.String()] = append(tags[id.String()], name)
		}
	}
	return tags
}

// walkRevision processes id and every revision reachable via its delta.Next
// chain (trunk, or a branch's own continuation) iteratively, to keep stack
// depth bounded on long linear histories. It only recurses into
// delta.Branches, where a genuinely new call frame is needed per branch.
func (w *RevisionWalker) walkRevision(
	path string,
	id revision.ID,
	delta rcs.Delta,
	content edscript.File,
	file *rcs.File,
	branches map[string]revision.ID,
	tags map[string][]string,
) error {
	for {
		key := state.Key{Path: path, Revision: id.String()}

		var mark *ids.Mark
		if _, existingFR, err := w.State.GetFileRevision(key); err == nil {
			mark = existingFR.Mark
		} else if delta.State != "dead" {
			w.warnIfLooksBinary(path, id, file.Admin.Expand, content.Bytes())
			m, err := w.Output.Blob(fastimport.Blob{Data: content.Bytes()})
			if err != nil {
				return fmt.Errorf("walker: %s: emitting blob for %s: %w", path, id, err)
			}
			im := ids.Mark(m)
			mark = &im
		}

		memberships := branchesContaining(branches, id)

		message := ""
		if dt, ok := file.DeltaText[id.String()]; ok {
			message = string(dt.Log)
		}

		frID := w.State.AddFileRevision(state.FileRevision{
			Key:      key,
			Mark:     mark,
			Branches: memberships,
			Author:   delta.Author,
			Message:  message,
			Time:     delta.Date,
		})

		for _, branchName := range memberships {
			w.Detectors.detectorFor(branchName).Add(path, delta.Author, message, frID, delta.State == "dead", delta.Date)
		}

		for _, tagName := range tags[id.String()] {
			w.State.AddTag(tagName, frID)
		}

		for _, childID := range delta.Branches {
			childDelta, ok := file.Delta[childID.String()]
			if !ok {
				continue
			}
			childText, ok := file.DeltaText[childID.String()]
			if !ok {
				continue
			}
			childContent, err := applyDeltaText(content, childText.Text)
			if err != nil {
				return fmt.Errorf("walker: %s: reconstructing %s: %w", path, childID, err)
			}
			if err := w.walkRevision(path, childID, childDelta, childContent, file, branches, tags); err != nil {
				return err
			}
		}

		if delta.Next == nil {
			return nil
		}

		nextDelta, ok := file.Delta[delta.Next.String()]
		if !ok {
			return fmt.Errorf("walker: %s: missing delta for %s", path, delta.Next)
		}
		nextText, ok := file.DeltaText[delta.Next.String()]
		if !ok {
			return fmt.Errorf("walker: %s: missing delta text for %s", path, delta.Next)
		}
		nextContent, err := applyDeltaText(content, nextText.Text)
		if err != nil {
			return fmt.Errorf("walker: %s: reconstructing %s: %w", path, delta.Next, err)
		}

		id, delta, content = *delta.Next, nextDelta, nextContent
	}
}

func (w *RevisionWalker) warnIfLooksBinary(path string, id revision.ID, expand []byte, data []byte) {
	if w.Logger == nil {
		return
	}
	mode := string(expand)
	if mode != "" && mode != "kv" && mode != "kvl" {
		return
	}
	if looksBinary, kind := state.ClassifyContent(data); looksBinary {
		w.Logger.Warnf("walker: %s: revision %s looks like binary content (%s) but expand mode is %q; consider -kb", path, id, kind, mode)
	}
}

func applyDeltaText(content edscript.File, script []byte) (edscript.File, error) {
	commands, err := edscript.ParseScript(script)
	if err != nil {
		return edscript.File{}, err
	}
	return content.Apply(commands)
}

func branchesContaining(branches map[string]revision.ID, id revision.ID) []string {
	var names []string
	for name, branchID := range branches {
		ok, err := branchID.Contains(id)
		if err == nil && ok {
			names = append(names, name)
		}
	}
	return names
}
