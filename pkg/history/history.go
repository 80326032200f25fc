package history

import (
	"sort"
	"sync"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// FileDelta describes how one file changed between consecutive attempts.
type FileDelta struct {
	Path      string `json:"path"`
	Status    string `json:"status"` // added, modified, removed or unchanged
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Diff      string `json:"diff,omitempty"`
}

// AttemptRecord is a snapshot of one generation attempt plus its deltas
// against the attempt before it.
type AttemptRecord struct {
	Number     int               `json:"number"`
	RecordedAt time.Time         `json:"recorded_at"`
	Files      map[string]string `json:"-"`
	Deltas     []FileDelta       `json:"deltas"`
}

// History accumulates attempt snapshots for a single job. It satisfies the
// orchestrator's attempt recorder and is safe for concurrent use.
type History struct {
	mu       sync.Mutex
	attempts []AttemptRecord
}

func NewHistory() *History {
	return &History{}
}

// RecordAttempt stores a snapshot of the attempt's files and computes the
// deltas against the previous attempt. The first attempt's files all show
// up as added.
func (h *History) RecordAttempt(number int, files map[string]string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot := make(map[string]string, len(files))
	for path, content := range files {
		snapshot[path] = content
	}

	var previous map[string]string
	if len(h.attempts) > 0 {
		previous = h.attempts[len(h.attempts)-1].Files
	}

	h.attempts = append(h.attempts, AttemptRecord{
		Number:     number,
		RecordedAt: time.Now(),
		Files:      snapshot,
		Deltas:     computeDeltas(previous, snapshot),
	})
}

// Attempts returns all recorded attempts in order.
func (h *History) Attempts() []AttemptRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]AttemptRecord, len(h.attempts))
	copy(out, h.attempts)
	return out
}

// Latest returns the most recent attempt, if any.
func (h *History) Latest() (AttemptRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.attempts) == 0 {
		return AttemptRecord{}, false
	}
	return h.attempts[len(h.attempts)-1], true
}

func computeDeltas(previous, current map[string]string) []FileDelta {
	dmp := diffmatchpatch.New()

	paths := make(map[string]struct{}, len(previous)+len(current))
	for path := range previous {
		paths[path] = struct{}{}
	}
	for path := range current {
		paths[path] = struct{}{}
	}

	deltas := make([]FileDelta, 0, len(paths))
	for path := range paths {
		before, hadBefore := previous[path]
		after, hasAfter := current[path]

		delta := FileDelta{Path: path}
		switch {
		case !hadBefore:
			delta.Status = "added"
		case !hasAfter:
			delta.Status = "removed"
		case before == after:
			delta.Status = "unchanged"
		default:
			delta.Status = "modified"
		}

		if delta.Status != "unchanged" {
			diffs := dmp.DiffMain(before, after, true)
			diffs = dmp.DiffCleanupSemantic(diffs)
			delta.Additions, delta.Deletions = countChanges(diffs)
			delta.Diff = dmp.DiffPrettyText(diffs)
		}
		deltas = append(deltas, delta)
	}

	sort.Slice(deltas, func(i, j int) bool { return deltas[i].Path < deltas[j].Path })
	return deltas
}

func countChanges(diffs []diffmatchpatch.Diff) (additions, deletions int) {
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			additions += len(diff.Text)
		case diffmatchpatch.DiffDelete:
			deletions += len(diff.Text)
		}
	}
	return
}
