package walker

import (
	"fmt"
	"sort"

	"github.com/cvsfastimport/cvsfastimport/fastimport"
	"github.com/cvsfastimport/cvsfastimport/ids"
	"github.com/cvsfastimport/cvsfastimport/patchset"
	"github.com/cvsfastimport/cvsfastimport/state"
)

// CommitEmitter is the subset of importer.Supervisor the commit assembler
// needs.
type CommitEmitter interface {
	Commit(*fastimport.Commit) (fastimport.Mark, error)
	SetBranch(branch string, mark fastimport.Mark) error
}

// CommitAssembler turns the patchsets a BranchDetectors drained for one
// branch into a chain of Git commits, each parented on the previous commit
// on that branch (or, if content with the same time and file revisions was
// already emitted on another branch, reused via a ref reset instead of
// re-emitted; see spec.md §3).
type CommitAssembler struct {
	State  *state.Manager
	Output CommitEmitter
}

// Send assembles and emits every patchset for branch, in the order given
// (Detector.Drain already returns them time-ordered), then leaves the
// branch ref pointing at the last commit (whether newly emitted or reused).
func (a *CommitAssembler) Send(branch string, patchsets []*patchset.Patchset) error {
	from, havePrior := a.State.GetLastPatchsetMarkOnBranch(branch)

	for _, ps := range patchsets {
		revisionIDs, fileCommands, err := a.buildFileCommands(ps)
		if err != nil {
			return fmt.Errorf("walker: branch %s: %w", branch, err)
		}

		if mark, ok := a.State.GetMarkFromPatchsetContent(ps.Time, revisionIDs); ok {
			if err := a.State.AddBranchToPatchset(mark, branch); err != nil {
				return fmt.Errorf("walker: branch %s: reusing mark %s: %w", branch, mark, err)
			}
			from, havePrior = mark, true
			continue
		}

		builder := fastimport.NewCommitBuilder("refs/heads/" + branch)
		builder.Committer(fastimport.Identity{Email: ps.Author, When: ps.Time}).Message(ps.Message)
		if havePrior {
			builder.From(fastimport.Mark(from))
		}
		for _, cmd := range fileCommands {
			builder.AddFileCommand(cmd)
		}

		commit, err := builder.Build()
		if err != nil {
			return fmt.Errorf("walker: branch %s: building commit: %w", branch, err)
		}

		mark, err := a.Output.Commit(commit)
		if err != nil {
			return fmt.Errorf("walker: branch %s: emitting commit: %w", branch, err)
		}

		emittedMark := ids.Mark(mark)
		a.State.AddPatchset(emittedMark, branch, ps.Time, revisionIDs)
		from, havePrior = emittedMark, true
	}

	if havePrior {
		if err := a.Output.SetBranch(branch, fastimport.Mark(from)); err != nil {
			return fmt.Errorf("walker: branch %s: setting ref: %w", branch, err)
		}
	}
	return nil
}

// buildFileCommands turns a patchset's per-path entries into file commands
// (in deterministic, path-sorted order) and returns every file revision id
// folded into it, for content-based dedup and for AddPatchset's record.
func (a *CommitAssembler) buildFileCommands(ps *patchset.Patchset) ([]ids.FileRevisionID, []fastimport.FileCommand, error) {
	paths := make([]string, 0, len(ps.Files))
	for path := range ps.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var revisionIDs []ids.FileRevisionID
	commands := make([]fastimport.FileCommand, 0, len(paths))

	for _, path := range paths {
		for _, entry := range ps.Files[path] {
			revisionIDs = append(revisionIDs, entry.ID)
		}

		effective, ok := ps.Effective(path)
		if !ok {
			continue
		}
		if effective.Deleted {
			commands = append(commands, fastimport.FileCommand{Kind: fastimport.Delete, Path: path})
			continue
		}

		fr, err := a.State.GetFileRevisionByID(effective.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving file revision %d for %s: %w", effective.ID, path, err)
		}
		if fr.Mark == nil {
			commands = append(commands, fastimport.FileCommand{Kind: fastimport.Delete, Path: path})
			continue
		}
		commands = append(commands, fastimport.FileCommand{
			Kind: fastimport.Modify,
			Mode: fastimport.ModeNormal,
			Mark: fastimport.Mark(*fr.Mark),
			Path: path,
		})
	}

	return revisionIDs, commands, nil
}
