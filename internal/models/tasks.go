package models

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// Tasks is an ordered sequence of tasks.
type Tasks []Task

// Stats summarizes completion over a sequence.
type Stats struct {
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Pending    int     `json:"pending"`
	Percentage float64 `json:"percentage"`
}

// DisplayPercent truncates the percentage for display.
func (s Stats) DisplayPercent() int {
	return int(s.Percentage)
}

// CompletedCount counts completed tasks.
func (ts Tasks) CompletedCount() int {
	n := 0
	for _, t := range ts {
		if t.IsCompleted {
			n++
		}
	}
	return n
}

// PendingCount counts tasks that are not completed.
func (ts Tasks) PendingCount() int {
	return len(ts) - ts.CompletedCount()
}

// CompletionPercentage is 100 * completed / total, or 0 for an empty sequence.
func (ts Tasks) CompletionPercentage() float64 {
	if len(ts) == 0 {
		return 0
	}
	return float64(ts.CompletedCount()) / float64(len(ts)) * 100
}

// Stats computes all counters in one value.
func (ts Tasks) Stats() Stats {
	completed := ts.CompletedCount()
	return Stats{
		Total:      len(ts),
		Completed:  completed,
		Pending:    len(ts) - completed,
		Percentage: ts.CompletionPercentage(),
	}
}

// Filter returns the tasks whose title contains query, ignoring case, in
// their original order. An empty query returns ts itself.
func (ts Tasks) Filter(query string) Tasks {
	if query == "" {
		return ts
	}
	fold := cases.Fold()
	needle := fold.String(query)

	out := make(Tasks, 0, len(ts))
	for _, t := range ts {
		if strings.Contains(fold.String(t.Title), needle) {
			out = append(out, t)
		}
	}
	return out
}

// Index returns the position of the task with id, or -1.
func (ts Tasks) Index(id uuid.UUID) int {
	for i := range ts {
		if ts[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns the task with id.
func (ts Tasks) Find(id uuid.UUID) (Task, bool) {
	if i := ts.Index(id); i >= 0 {
		return ts[i], true
	}
	return Task{}, false
}

// Toggle flips completion of the task with id in place. It reports whether a
// task matched.
func (ts Tasks) Toggle(id uuid.UUID) bool {
	i := ts.Index(id)
	if i < 0 {
		return false
	}
	ts[i].IsCompleted = !ts[i].IsCompleted
	return true
}

// IDsAt maps positions to identities. Out of range offsets are skipped.
func (ts Tasks) IDsAt(offsets []int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(offsets))
	for _, off := range offsets {
		if off >= 0 && off < len(ts) {
			ids = append(ids, ts[off].ID)
		}
	}
	return ids
}

// Remove returns a new sequence without the listed identities.
func (ts Tasks) Remove(ids ...uuid.UUID) Tasks {
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make(Tasks, 0, len(ts))
	for _, t := range ts {
		if _, ok := drop[t.ID]; !ok {
			out = append(out, t)
		}
	}
	return out
}

// Move relocates the tasks at the source positions as one block in front of
// the task originally at destination, keeping their relative order.
// destination == len(ts) moves the block to the end.
func (ts Tasks) Move(source []int, destination int) Tasks {
	selected := make(map[int]struct{}, len(source))
	for _, i := range source {
		if i >= 0 && i < len(ts) {
			selected[i] = struct{}{}
		}
	}
	if len(selected) == 0 {
		return ts
	}
	destination = min(max(destination, 0), len(ts))

	moved := make(Tasks, 0, len(selected))
	rest := make(Tasks, 0, len(ts)-len(selected))
	insertAt := -1
	for i, t := range ts {
		if i == destination {
			insertAt = len(rest)
		}
		if _, ok := selected[i]; ok {
			moved = append(moved, t)
		} else {
			rest = append(rest, t)
		}
	}
	if insertAt < 0 {
		insertAt = len(rest)
	}

	out := make(Tasks, 0, len(ts))
	out = append(out, rest[:insertAt]...)
	out = append(out, moved...)
	return append(out, rest[insertAt:]...)
}

// Append adds a task at the end and returns the extended sequence.
func (ts Tasks) Append(t Task) Tasks {
	return append(ts, t)
}

// Replace swaps in an edited version of an existing task. The stored ID and
// CreatedAt are kept. It reports whether a task matched.
func (ts Tasks) Replace(t Task) bool {
	i := ts.Index(t.ID)
	if i < 0 {
		return false
	}
	t.CreatedAt = ts[i].CreatedAt
	ts[i] = t
	return true
}

// Clone returns an independent copy.
func (ts Tasks) Clone() Tasks {
	if ts == nil {
		return Tasks{}
	}
	out := make(Tasks, len(ts))
	copy(out, ts)
	for i := range out {
		if out[i].DueDate != nil {
			due := *out[i].DueDate
			out[i].DueDate = &due
		}
	}
	return out
}
