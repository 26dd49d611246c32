package walker

import (
	"sync"
	"time"

	"github.com/cvsfastimport/cvsfastimport/patchset"
)

// BranchDetectors lazily creates and owns one patchset.Detector per branch,
// since clustering (spec.md §4.5) happens independently per branch.
type BranchDetectors struct {
	mu        sync.Mutex
	delta     time.Duration
	detectors map[string]*patchset.Detector
}

// NewBranchDetectors returns an empty set of per-branch detectors, each
// created on first use with the given clustering window.
func NewBranchDetectors(delta time.Duration) *BranchDetectors {
	return &BranchDetectors{delta: delta, detectors: make(map[string]*patchset.Detector)}
}

func (d *BranchDetectors) detectorFor(branch string) *patchset.Detector {
	d.mu.Lock()
	defer d.mu.Unlock()
	det, ok := d.detectors[branch]
	if !ok {
		det = patchset.NewDetector(d.delta)
		d.detectors[branch] = det
	}
	return det
}

// Drain drains every branch's detector, returning the resulting patchset
// sequence keyed by branch name.
func (d *BranchDetectors) Drain() map[string][]*patchset.Patchset {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string][]*patchset.Patchset, len(d.detectors))
	for branch, det := range d.detectors {
		out[branch] = det.Drain()
	}
	return out
}
