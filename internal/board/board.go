package board

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"taskboard/internal/models"
)

// ErrNotFound is returned when no task carries the requested identifier.
var ErrNotFound = errors.New("task not found")

// ChangeKind names the mutation that produced a Change.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeToggled ChangeKind = "toggled"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
	ChangeMoved   ChangeKind = "moved"
)

// Change describes an applied mutation and the resulting canonical sequence.
type Change struct {
	Kind  ChangeKind
	IDs   []uuid.UUID
	Tasks models.Tasks
}

// Board owns the canonical task sequence. Every method is safe for concurrent
// use; mutations are applied one at a time.
type Board struct {
	mu        sync.Mutex
	tasks     models.Tasks
	listeners []func(Change)
	logger    *slog.Logger
}

// New creates a board holding the given tasks in order.
func New(logger *slog.Logger, seed ...models.Task) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{
		tasks:  models.Tasks(seed).Clone(),
		logger: logger,
	}
}

// OnChange registers fn to be called after every applied mutation. Listeners
// run synchronously on the mutating goroutine after the lock is released.
func (b *Board) OnChange(fn func(Change)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// List returns a copy of the tasks matching query, or all tasks when the
// query is empty.
func (b *Board) List(query string) models.Tasks {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tasks.Filter(query).Clone()
}

// Get returns the task with id.
func (b *Board) Get(id uuid.UUID) (models.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.tasks.Index(id)
	if i < 0 {
		return models.Task{}, ErrNotFound
	}
	return b.tasks[i : i+1].Clone()[0], nil
}

// Stats reports completion over the canonical sequence, ignoring any filter.
func (b *Board) Stats() models.Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tasks.Stats()
}

// Len is the number of tasks on the board.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tasks)
}

// Add appends task to the end of the board.
func (b *Board) Add(task models.Task) models.Task {
	b.apply(ChangeAdded, func() ([]uuid.UUID, bool) {
		b.tasks = b.tasks.Append(task)
		return []uuid.UUID{task.ID}, true
	})
	return task
}

// Toggle flips completion of the task with id and returns the updated task.
func (b *Board) Toggle(id uuid.UUID) (models.Task, error) {
	var (
		updated models.Task
		found   bool
	)
	b.apply(ChangeToggled, func() ([]uuid.UUID, bool) {
		if !b.tasks.Toggle(id) {
			return nil, false
		}
		updated, found = b.tasks.Find(id)
		return []uuid.UUID{id}, true
	})
	if !found {
		return models.Task{}, ErrNotFound
	}
	return updated, nil
}

// Update replaces the stored task sharing task.ID. The creation time of the
// stored task is kept.
func (b *Board) Update(task models.Task) (models.Task, error) {
	var (
		updated models.Task
		found   bool
	)
	b.apply(ChangeUpdated, func() ([]uuid.UUID, bool) {
		if !b.tasks.Replace(task) {
			return nil, false
		}
		updated, found = b.tasks.Find(task.ID)
		return []uuid.UUID{task.ID}, true
	})
	if !found {
		return models.Task{}, ErrNotFound
	}
	return updated, nil
}

// Edit runs fn on a copy of the stored task with id and stores the result,
// all under the board lock. When fn returns an error the board is left
// unchanged and the error is returned. The identifier and creation time
// cannot be changed by fn.
func (b *Board) Edit(id uuid.UUID, fn func(*models.Task) error) (models.Task, error) {
	var updated models.Task
	err := ErrNotFound
	b.apply(ChangeUpdated, func() ([]uuid.UUID, bool) {
		i := b.tasks.Index(id)
		if i < 0 {
			return nil, false
		}
		task := b.tasks[i : i+1].Clone()[0]
		if ferr := fn(&task); ferr != nil {
			err = ferr
			return nil, false
		}
		task.ID = id
		b.tasks.Replace(task)
		updated, err = b.tasks[i : i+1].Clone()[0], nil
		return []uuid.UUID{id}, true
	})
	if err != nil {
		return models.Task{}, err
	}
	return updated, nil
}

// DeleteIDs removes every task whose identifier is listed and returns how
// many were removed.
func (b *Board) DeleteIDs(ids ...uuid.UUID) int {
	removed := 0
	b.apply(ChangeDeleted, func() ([]uuid.UUID, bool) {
		present := make([]uuid.UUID, 0, len(ids))
		for _, id := range ids {
			if b.tasks.Index(id) >= 0 {
				present = append(present, id)
			}
		}
		before := len(b.tasks)
		b.tasks = b.tasks.Remove(present...)
		removed = before - len(b.tasks)
		return present, removed > 0
	})
	return removed
}

// DeleteAt removes the tasks at the given positions of the view filtered by
// query. Positions are resolved to identities first, so the canonical
// sequence loses exactly the tasks the caller saw.
func (b *Board) DeleteAt(query string, offsets []int) []uuid.UUID {
	var ids []uuid.UUID
	b.apply(ChangeDeleted, func() ([]uuid.UUID, bool) {
		ids = b.tasks.Filter(query).IDsAt(offsets)
		if len(ids) == 0 {
			return nil, false
		}
		b.tasks = b.tasks.Remove(ids...)
		return ids, true
	})
	return ids
}

// Move reorders the canonical sequence. See models.Tasks.Move.
func (b *Board) Move(source []int, destination int) models.Tasks {
	var out models.Tasks
	b.apply(ChangeMoved, func() ([]uuid.UUID, bool) {
		moved := b.tasks.Move(source, destination)
		changed := !sameOrder(b.tasks, moved)
		b.tasks = moved
		out = b.tasks.Clone()
		return nil, changed
	})
	return out
}

// apply runs mutate under the lock and notifies listeners when it reports a
// change. mutate returns the identities it touched.
func (b *Board) apply(kind ChangeKind, mutate func() ([]uuid.UUID, bool)) {
	b.mu.Lock()
	ids, changed := mutate()
	if !changed {
		b.mu.Unlock()
		b.logger.Debug("board unchanged", slog.String("op", string(kind)))
		return
	}
	change := Change{Kind: kind, IDs: ids, Tasks: b.tasks.Clone()}
	listeners := append([]func(Change){}, b.listeners...)
	b.mu.Unlock()

	b.logger.Debug("board changed", slog.String("op", string(kind)), slog.Int("tasks", len(change.Tasks)))
	for _, fn := range listeners {
		fn(change)
	}
}

func sameOrder(a, b models.Tasks) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
