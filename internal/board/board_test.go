package board

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/models"
)

func newTestBoard(t *testing.T, titles ...string) *Board {
	t.Helper()
	seed := make([]models.Task, len(titles))
	for i, title := range titles {
		seed[i] = models.NewTask(title)
	}
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), seed...)
}

func titlesOf(ts models.Tasks) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Title
	}
	return out
}

func TestBoard_ListReturnsCopy(t *testing.T) {
	b := newTestBoard(t, "Write unit tests", "Deploy")
	list := b.List("")
	list[0].Title = "changed"
	assert.Equal(t, []string{"Write unit tests", "Deploy"}, titlesOf(b.List("")))
	assert.Equal(t, []string{"Deploy"}, titlesOf(b.List("DEPLOY")))
}

func TestBoard_AddAndGet(t *testing.T) {
	b := newTestBoard(t, "first")
	added := b.Add(models.NewTask("second", models.WithPriority(models.PriorityHigh)))

	got, err := b.Get(added.ID)
	require.NoError(t, err)
	assert.True(t, added.Equal(got))
	assert.Equal(t, []string{"first", "second"}, titlesOf(b.List("")))
	assert.Equal(t, 2, b.Len())

	_, err = b.Get(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBoard_Toggle(t *testing.T) {
	b := newTestBoard(t, "a", "b")
	id := b.List("")[1].ID

	got, err := b.Toggle(id)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, models.Stats{Total: 2, Completed: 1, Pending: 1, Percentage: 50}, b.Stats())

	got, err = b.Toggle(id)
	require.NoError(t, err)
	assert.False(t, got.IsCompleted)

	_, err = b.Toggle(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, b.Stats().Completed)
}

func TestBoard_Update(t *testing.T) {
	b := newTestBoard(t, "draft")
	original := b.List("")[0]

	edited := original
	edited.Title = "final"
	edited.IsCompleted = true
	got, err := b.Update(edited)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.True(t, original.CreatedAt.Equal(got.CreatedAt))

	_, err = b.Update(models.NewTask("ghost"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBoard_EditKeepsConcurrentToggle(t *testing.T) {
	b := newTestBoard(t, "draft")
	id := b.List("")[0].ID

	// a client reads the task, then a toggle lands before its edit is applied
	_, err := b.Get(id)
	require.NoError(t, err)
	_, err = b.Toggle(id)
	require.NoError(t, err)

	got, err := b.Edit(id, func(task *models.Task) error {
		task.Title = "renamed"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.True(t, got.IsCompleted, "edit must not undo the toggle")

	stored, err := b.Get(id)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted)
	assert.Equal(t, "renamed", stored.Title)
}

func TestBoard_Edit(t *testing.T) {
	b := newTestBoard(t, "draft")
	original := b.List("")[0]

	var changes []Change
	b.OnChange(func(c Change) { changes = append(changes, c) })

	got, err := b.Edit(original.ID, func(task *models.Task) error {
		task.ID = uuid.New()
		task.CreatedAt = task.CreatedAt.AddDate(-1, 0, 0)
		task.Priority = models.PriorityHigh
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, original.ID, got.ID)
	assert.True(t, original.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, models.PriorityHigh, got.Priority)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeUpdated, changes[0].Kind)

	rejected := errors.New("rejected")
	_, err = b.Edit(original.ID, func(task *models.Task) error {
		task.Title = "discarded"
		return rejected
	})
	assert.ErrorIs(t, err, rejected)
	assert.Equal(t, "draft", b.List("")[0].Title)
	assert.Len(t, changes, 1)

	_, err = b.Edit(uuid.New(), func(*models.Task) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBoard_EditConcurrentWithToggle(t *testing.T) {
	b := newTestBoard(t, "task")
	id := b.List("")[0].ID

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = b.Edit(id, func(task *models.Task) error {
				task.Title = "edited"
				return nil
			})
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = b.Toggle(id)
	}()
	wg.Wait()

	got, err := b.Get(id)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, "edited", got.Title)
}

func TestBoard_DeleteAtUsesFilteredPositions(t *testing.T) {
	b := newTestBoard(t, "Write unit tests", "Deploy", "Add UI tests", "Review")

	ids := b.DeleteAt("tests", []int{1})
	require.Len(t, ids, 1)
	assert.Equal(t, []string{"Write unit tests", "Deploy", "Review"}, titlesOf(b.List("")))

	assert.Empty(t, b.DeleteAt("tests", []int{5}))
	assert.Equal(t, 3, b.Len())

	ids = b.DeleteAt("", []int{0, 2})
	assert.Len(t, ids, 2)
	assert.Equal(t, []string{"Deploy"}, titlesOf(b.List("")))
}

func TestBoard_DeleteIDs(t *testing.T) {
	b := newTestBoard(t, "a", "b", "c")
	list := b.List("")

	assert.Equal(t, 2, b.DeleteIDs(list[0].ID, list[2].ID, uuid.New()))
	assert.Equal(t, []string{"b"}, titlesOf(b.List("")))
	assert.Zero(t, b.DeleteIDs(uuid.New()))
}

func TestBoard_Move(t *testing.T) {
	b := newTestBoard(t, "A", "B", "C", "D")
	got := b.Move([]int{0, 1}, 4)
	assert.Equal(t, []string{"C", "D", "A", "B"}, titlesOf(got))
	assert.Equal(t, titlesOf(got), titlesOf(b.List("")))
}

func TestBoard_OnChange(t *testing.T) {
	b := newTestBoard(t, "A", "B")
	var changes []Change
	b.OnChange(func(c Change) { changes = append(changes, c) })

	added := b.Add(models.NewTask("C"))
	_, _ = b.Toggle(added.ID)
	_, _ = b.Toggle(uuid.New())
	b.Move([]int{2}, 0)
	b.Move([]int{0}, 0)
	b.DeleteAt("a", []int{0})
	b.DeleteIDs(uuid.New())

	require.Len(t, changes, 4)
	assert.Equal(t, ChangeAdded, changes[0].Kind)
	assert.Equal(t, []uuid.UUID{added.ID}, changes[0].IDs)
	assert.Equal(t, ChangeToggled, changes[1].Kind)
	assert.Equal(t, ChangeMoved, changes[2].Kind)
	assert.Equal(t, []string{"C", "A", "B"}, titlesOf(changes[2].Tasks))
	assert.Equal(t, ChangeDeleted, changes[3].Kind)
	assert.Equal(t, []string{"C", "B"}, titlesOf(changes[3].Tasks))

	changes[3].Tasks[0].Title = "mutated"
	assert.Equal(t, "C", b.List("")[0].Title)
}

func TestBoard_ConcurrentMutations(t *testing.T) {
	b := newTestBoard(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task := b.Add(models.NewTask("task"))
			_, _ = b.Toggle(task.ID)
			_ = b.List("TASK")
		}()
	}
	wg.Wait()

	s := b.Stats()
	assert.Equal(t, 50, s.Total)
	assert.Equal(t, 50, s.Completed)
	assert.Equal(t, float64(100), s.Percentage)
}
