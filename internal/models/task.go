package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidTask is returned when a serialized task cannot be decoded.
var ErrInvalidTask = errors.New("invalid task")

// Task is a single to-do item. ID and CreatedAt never change after construction.
type Task struct {
	ID          uuid.UUID
	Title       string
	IsCompleted bool
	Priority    Priority
	DueDate     *time.Time
	CreatedAt   time.Time
}

// TaskOption overrides one of the defaults applied by NewTask.
type TaskOption func(*Task)

// WithID sets an explicit identifier.
func WithID(id uuid.UUID) TaskOption {
	return func(t *Task) { t.ID = id }
}

// WithCompleted sets the completion flag.
func WithCompleted(done bool) TaskOption {
	return func(t *Task) { t.IsCompleted = done }
}

// WithPriority sets the priority. Unknown values are ignored.
func WithPriority(p Priority) TaskOption {
	return func(t *Task) {
		if p.Valid() {
			t.Priority = p
		}
	}
}

// WithDueDate sets the due date; nil clears it.
func WithDueDate(due *time.Time) TaskOption {
	return func(t *Task) {
		if due == nil {
			t.DueDate = nil
			return
		}
		d := *due
		t.DueDate = &d
	}
}

// WithCreatedAt overrides the creation timestamp.
func WithCreatedAt(at time.Time) TaskOption {
	return func(t *Task) { t.CreatedAt = at }
}

// NewTask builds a pending, medium priority task with a fresh identifier.
// The title is stored as given; callers validate it.
func NewTask(title string, opts ...TaskOption) Task {
	t := Task{
		ID:        uuid.New(),
		Title:     title,
		Priority:  PriorityMedium,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Equal compares every field. Timestamps are compared as instants.
func (t Task) Equal(other Task) bool {
	if t.ID != other.ID ||
		t.Title != other.Title ||
		t.IsCompleted != other.IsCompleted ||
		t.Priority != other.Priority ||
		!t.CreatedAt.Equal(other.CreatedAt) {
		return false
	}
	switch {
	case t.DueDate == nil && other.DueDate == nil:
		return true
	case t.DueDate == nil || other.DueDate == nil:
		return false
	default:
		return t.DueDate.Equal(*other.DueDate)
	}
}

type taskJSON struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	IsCompleted bool       `json:"isCompleted"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// decoding side uses pointers so absent fields can be told apart from zero values
type taskDecodeJSON struct {
	ID          *string    `json:"id"`
	Title       *string    `json:"title"`
	IsCompleted *bool      `json:"isCompleted"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   *time.Time `json:"createdAt"`
}

// MarshalJSON implements json.Marshaler.
func (t Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(taskJSON{
		ID:          t.ID.String(),
		Title:       t.Title,
		IsCompleted: t.IsCompleted,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Missing or malformed fields fail
// with an error wrapping ErrInvalidTask and leave t untouched.
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw taskDecodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}

	switch {
	case raw.ID == nil:
		return missingField("id")
	case raw.Title == nil:
		return missingField("title")
	case raw.IsCompleted == nil:
		return missingField("isCompleted")
	case raw.Priority == nil:
		return missingField("priority")
	case raw.CreatedAt == nil:
		return missingField("createdAt")
	}

	id, err := uuid.Parse(*raw.ID)
	if err != nil {
		return fmt.Errorf("%w: id: %w", ErrInvalidTask, err)
	}
	priority, err := ParsePriority(*raw.Priority)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}

	*t = Task{
		ID:          id,
		Title:       *raw.Title,
		IsCompleted: *raw.IsCompleted,
		Priority:    priority,
		DueDate:     raw.DueDate,
		CreatedAt:   *raw.CreatedAt,
	}
	return nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: missing field %q", ErrInvalidTask, name)
}

// SampleTasks returns the demo tasks a fresh board starts with.
func SampleTasks() Tasks {
	return Tasks{
		NewTask("Set up CircleCI pipeline", WithPriority(PriorityHigh)),
		NewTask("Configure M4 resource class", WithPriority(PriorityHigh)),
		NewTask("Write unit tests", WithPriority(PriorityMedium)),
		NewTask("Add UI tests", WithPriority(PriorityMedium)),
		NewTask("Configure code signing", WithPriority(PriorityLow)),
		NewTask("Deploy to TestFlight", WithCompleted(true), WithPriority(PriorityLow)),
	}
}
