package model

import (
	"encoding/json"
	"strings"
)

// TaskState is the display state derived from a task's completion flags.
type TaskState string

// Task states.
const (
	TaskStateUnchecked TaskState = "unchecked"
	TaskStateChecked   TaskState = "checked"
	TaskStateFailed    TaskState = "failed"
)

// Task is a single objective within a quest.
// Completed and Failed are never both true.
type Task struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	Failed    bool   `json:"failed"`
	Hidden    bool   `json:"hidden"`
}

// TaskRecord is the loosely-typed input used to build a Task.
type TaskRecord struct {
	Name      string
	Completed bool
	Failed    bool
	Hidden    bool
}

// NewTask builds a Task from a record. A record with both flags set
// is normalized to completed.
func NewTask(r TaskRecord) Task {
	t := Task{
		Name:      r.Name,
		Completed: r.Completed,
		Failed:    r.Failed,
		Hidden:    r.Hidden,
	}
	if t.Completed && t.Failed {
		t.Failed = false
	}
	return t
}

// IsValid reports whether the task has a non-empty name.
func (t Task) IsValid() bool {
	return strings.TrimSpace(t.Name) != ""
}

// State derives the display state from the completion flags.
func (t Task) State() TaskState {
	switch {
	case t.Completed:
		return TaskStateChecked
	case t.Failed:
		return TaskStateFailed
	default:
		return TaskStateUnchecked
	}
}

// Toggle advances the task through unchecked -> completed -> failed -> unchecked.
func (t *Task) Toggle() {
	switch {
	case t.Completed:
		t.Completed = false
		t.Failed = true
	case t.Failed:
		t.Failed = false
	default:
		t.Completed = true
	}
}

// ToggleVisible flips the hidden flag and returns the new value.
func (t *Task) ToggleVisible() bool {
	t.Hidden = !t.Hidden
	return t.Hidden
}

// MarshalJSON includes the derived state for display convenience.
func (t Task) MarshalJSON() ([]byte, error) {
	type plain Task
	return json.Marshal(struct {
		plain
		State TaskState `json:"state"`
	}{plain: plain(t), State: t.State()})
}
