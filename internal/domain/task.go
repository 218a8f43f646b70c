package domain

import (
	"context"
	"strings"
	"time"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var Statuses = []Status{StatusTodo, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus accepts any member of the flat status enum; empty yields StatusTodo.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return StatusTodo, nil
	}
	if st := Status(s); st.Valid() {
		return st, nil
	}
	return "", invalid("unsupported status %q", s)
}

// Assignee is the display projection of the user a task is bound to.
type Assignee struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	AssignedTo  string    `json:"-"`
	Assignee    Assignee  `json:"assignedTo"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type NewTask struct {
	Title       string
	Description string
	Status      string
	AssignedTo  string
}

// TaskPatch carries the fields present in an update; nil means untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	AssignedTo  *string
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.AssignedTo == nil
}

// OnlyStatus reports whether the patch touches nothing but the status field.
func (p TaskPatch) OnlyStatus() bool {
	return p.Title == nil && p.Description == nil && p.AssignedTo == nil
}

// Apply merges the patch into t after validating each present field.
func (p TaskPatch) Apply(t *Task) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return invalid("title is required")
		}
		t.Title = title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		st := Status(strings.TrimSpace(*p.Status))
		if !st.Valid() {
			return invalid("unsupported status %q", *p.Status)
		}
		t.Status = st
	}
	if p.AssignedTo != nil {
		id := strings.TrimSpace(*p.AssignedTo)
		if id == "" {
			return invalid("assignedTo is required")
		}
		t.AssignedTo = id
	}
	return nil
}

type TaskFilter struct {
	AssignedTo string
	Status     Status
}

type StatusCounts struct {
	Total      int64 `json:"total"`
	Todo       int64 `json:"todo"`
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
}

// TaskRepository returns (nil, nil) from FindByID and ErrNotFound from Update/Delete
// when no row matches. Reads populate Assignee.
type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, f TaskFilter) ([]Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, f TaskFilter) (StatusCounts, error)
}
