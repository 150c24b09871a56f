package models

import (
	"errors"
	"fmt"
)

// ErrInvalidPriority is returned when a label does not name a known priority.
var ErrInvalidPriority = errors.New("invalid priority")

// Priority ranks a task. The string value is the display label and the wire form.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

var priorityColors = map[Priority]string{
	PriorityLow:    "green",
	PriorityMedium: "orange",
	PriorityHigh:   "red",
}

// Priorities lists every priority in declaration order.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// ParsePriority converts a display label into a Priority.
func ParsePriority(label string) (Priority, error) {
	p := Priority(label)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, label)
	}
	return p, nil
}

// Valid reports whether p is one of the defined priorities.
func (p Priority) Valid() bool {
	_, ok := priorityColors[p]
	return ok
}

// Color is the presentation color associated with the priority.
func (p Priority) Color() string {
	return priorityColors[p]
}

func (p Priority) String() string {
	return string(p)
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, string(p))
	}
	return []byte(p), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
