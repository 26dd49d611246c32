package walker

import (
	"fmt"
	"time"

	"github.com/cvsfastimport/cvsfastimport/fastimport"
	"github.com/cvsfastimport/cvsfastimport/ids"
	"github.com/cvsfastimport/cvsfastimport/state"
)

// TagEmitter is the subset of importer.Supervisor the tag processor needs.
type TagEmitter interface {
	Commit(*fastimport.Commit) (fastimport.Mark, error)
	LightweightTag(name string, commitMark fastimport.Mark) error
}

// TagProcessor materializes CVS tags as synthetic Git commits: CVS tags have
// no direct Git equivalent, since a tag can mix revisions with different
// logical parents, so each tag becomes a deleteall-then-rebuild commit
// pointing at the tagged content of every file.
type TagProcessor struct {
	State    *state.Manager
	Output   TagEmitter
	Identity fastimport.Identity
}

// Process materializes tag, skipping re-emission if its content exactly
// matches the previous run's. The parent of the synthetic commit is chosen
// by a heuristic: reuse the previous tag commit if the tag already existed,
// otherwise parent on whichever patchset most recently touched any file
// revision in the tag.
func (p *TagProcessor) Process(tag string) error {
	revisionIDs, err := p.State.GetFileRevisionsForTag(tag)
	if err != nil {
		return nil
	}
	if len(revisionIDs) == 0 {
		return nil
	}

	var parentMark ids.Mark
	havePreviousTag := false

	if mark, err := p.State.GetMarkForTag(tag); err == nil {
		ps, err := p.State.GetPatchsetFromMark(mark)
		if err != nil {
			return fmt.Errorf("walker: tag %s: resolving previous mark %s: %w", tag, mark, err)
		}
		if sameFileRevisions(ps.FileRevisions, revisionIDs) {
			return nil
		}
		parentMark, havePreviousTag = mark, true
	}

	builder := fastimport.NewCommitBuilder("refs/heads/tags/" + tag)
	builder.Committer(p.Identity).Message(fmt.Sprintf("Fake commit for tag %s.", tag))
	builder.AddFileCommand(fastimport.FileCommand{Kind: fastimport.DeleteAll})

	var contentTime time.Time
	var bestParentTime time.Time
	haveContentParent := false

	for _, id := range revisionIDs {
		fr, err := p.State.GetFileRevisionByID(id)
		if err != nil {
			return fmt.Errorf("walker: tag %s: resolving file revision %d: %w", tag, id, err)
		}

		if fr.Mark != nil {
			builder.AddFileCommand(fastimport.FileCommand{
				Kind: fastimport.Modify,
				Mode: fastimport.ModeNormal,
				Mark: fastimport.Mark(*fr.Mark),
				Path: fr.Key.Path,
			})
		} else {
			builder.AddFileCommand(fastimport.FileCommand{Kind: fastimport.Delete, Path: fr.Key.Path})
		}

		if fr.Time.After(contentTime) {
			contentTime = fr.Time
		}

		if havePreviousTag {
			continue
		}

		mark, ps, err := p.State.GetLastPatchsetForFileRevision(id)
		if err != nil {
			continue
		}
		if !haveContentParent || bestParentTime.Before(ps.Time) {
			parentMark, bestParentTime, haveContentParent = mark, ps.Time, true
		}
	}

	if havePreviousTag || haveContentParent {
		builder.From(fastimport.Mark(parentMark))
	}

	commit, err := builder.Build()
	if err != nil {
		return fmt.Errorf("walker: tag %s: building synthetic commit: %w", tag, err)
	}

	mark, err := p.Output.Commit(commit)
	if err != nil {
		return fmt.Errorf("walker: tag %s: emitting synthetic commit: %w", tag, err)
	}

	emittedMark := ids.Mark(mark)
	p.State.AddPatchset(emittedMark, tag, contentTime, revisionIDs)
	p.State.AddTagMark(tag, emittedMark)

	if err := p.Output.LightweightTag(tag, mark); err != nil {
		return fmt.Errorf("walker: tag %s: setting ref: %w", tag, err)
	}

	return nil
}

func sameFileRevisions(a, b []ids.FileRevisionID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
