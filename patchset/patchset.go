// Package patchset clusters per-file commit observations into
// repository-wide commits ("patchsets") by (author, message) grouping and
// time proximity.
package patchset

import (
	"container/heap"
	"sync"
	"time"

	"github.com/cvsfastimport/cvsfastimport/ids"
)

// DefaultDelta is the default clustering window.
const DefaultDelta = 120 * time.Second

// Entry is one file's contribution to a patchset: either a content id, or a
// deletion (Deleted == true, ID meaningless).
type Entry struct {
	ID      ids.FileRevisionID
	Deleted bool
}

// Patchset is a reconstructed repository-wide commit.
type Patchset struct {
	Time    time.Time
	Author  string
	Message string
	Files   map[string][]Entry
}

// Effective returns the last entry recorded for path — the entry that wins
// when a single patchset squashes multiple edits of the same file — and
// whether that entry exists at all.
func (p *Patchset) Effective(path string) (Entry, bool) {
	entries, ok := p.Files[path]
	if !ok || len(entries) == 0 {
		return Entry{}, false
	}
	return entries[len(entries)-1], true
}

type record struct {
	path string
	id   ids.FileRevisionID
	del  bool
	time time.Time
}

type bucketKey struct {
	author, message string
}

// Detector accumulates per-file commit observations, grouped by (author,
// message), until Drain is called. A Detector stands in for the spec's
// single-consumer detector task: rather than a channel and a dedicated
// goroutine, Add and Drain serialize through an internal mutex, which gives
// the same multi-producer/single-consumer semantics with far less
// plumbing for what is, per call, a handful of map and heap operations.
type Detector struct {
	mu      sync.Mutex
	delta   time.Duration
	buckets map[bucketKey]*timeHeap
}

// NewDetector returns a Detector with the given clustering window.
func NewDetector(delta time.Duration) *Detector {
	return &Detector{delta: delta, buckets: make(map[bucketKey]*timeHeap)}
}

// Add records one file-commit observation. deleted marks a CVS deletion; id
// is meaningless when deleted is true. Add is safe to call concurrently.
func (d *Detector) Add(path string, author, message string, id ids.FileRevisionID, deleted bool, t time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := bucketKey{author: author, message: message}
	b, ok := d.buckets[key]
	if !ok {
		b = &timeHeap{}
		heap.Init(b)
		d.buckets[key] = b
	}
	heap.Push(b, record{path: path, id: id, del: deleted, time: t})
}

// Drain consumes all accumulated observations and returns the resulting
// patchsets across every bucket, sorted ascending by time. After Drain the
// detector holds no further state.
func (d *Detector) Drain() []*Patchset {
	d.mu.Lock()
	defer d.mu.Unlock()

	outer := &patchsetHeap{}
	heap.Init(outer)

	for key, bucket := range d.buckets {
		var last time.Time
		haveLast := false
		pending := make(map[string][]Entry)

		flush := func() {
			if len(pending) == 0 {
				return
			}
			heap.Push(outer, &Patchset{Time: last, Author: key.author, Message: key.message, Files: pending})
			pending = make(map[string][]Entry)
		}

		for bucket.Len() > 0 {
			rec := heap.Pop(bucket).(record)
			if haveLast && rec.time.Sub(last) > d.delta {
				flush()
			}
			last = rec.time
			haveLast = true
			pending[rec.path] = append(pending[rec.path], Entry{ID: rec.id, Deleted: rec.del})
		}
		flush()
	}
	d.buckets = make(map[bucketKey]*timeHeap)

	result := make([]*Patchset, 0, outer.Len())
	for outer.Len() > 0 {
		result = append(result, heap.Pop(outer).(*Patchset))
	}
	return result
}

// timeHeap is a min-heap of records ordered by time, used per (author,
// message) bucket.
type timeHeap []record

func (h timeHeap) Len() int            { return len(h) }
func (h timeHeap) Less(i, j int) bool  { return h[i].time.Before(h[j].time) }
func (h timeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *timeHeap) Push(x interface{}) { *h = append(*h, x.(record)) }
func (h *timeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// patchsetHeap is the outer min-heap of flushed patchsets, ordered by time.
type patchsetHeap []*Patchset

func (h patchsetHeap) Len() int            { return len(h) }
func (h patchsetHeap) Less(i, j int) bool  { return h[i].Time.Before(h[j].Time) }
func (h patchsetHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *patchsetHeap) Push(x interface{}) { *h = append(*h, x.(*Patchset)) }
func (h *patchsetHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
