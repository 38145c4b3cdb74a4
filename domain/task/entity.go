package task

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Limits enforced when tasks are created.
const (
	MaxPendingTasks      = 5
	MaxDescriptionLength = 35
)

// Status represents the state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusDeleted   Status = "deleted"
)

// Action is a status change requested from the task list.
type Action string

const (
	ActionComplete Action = "complete"
	ActionDelete   Action = "delete"
)

// ParseAction converts callback text into an Action. Unknown values are
// returned as-is so callers can treat them as no-ops.
func ParseAction(s string) Action {
	return Action(strings.ToLower(strings.TrimSpace(s)))
}

// ValidateDescription trims s and checks it against MaxDescriptionLength.
func ValidateDescription(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDescription)
	}
	if n := utf8.RuneCountInString(trimmed); n > MaxDescriptionLength {
		return "", fmt.Errorf("%w: %d characters, at most %d allowed", ErrInvalidDescription, n, MaxDescriptionLength)
	}
	return trimmed, nil
}

// Task is a short daily task owned by a chat user.
type Task struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      int64     `gorm:"not null;index:idx_tasks_user_status" json:"user_id"`
	Username    string    `gorm:"size:255;not null" json:"username"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Emoji       string    `gorm:"size:8;not null" json:"emoji"`
	Status      Status    `gorm:"size:16;not null;default:pending;index:idx_tasks_user_status" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name for Task model.
func (Task) TableName() string {
	return "tasks"
}
