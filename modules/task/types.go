package task

import (
	"context"
	"errors"
	"time"

	domain "github.com/example/todofrog/domain/task"
)

// TaskPort defines the interface for task operations used by other modules.
type TaskPort interface {
	CreateTask(ctx context.Context, userID int64, username, description string) (*domain.Task, error)
	ListPending(ctx context.Context, userID int64) ([]*domain.Task, error)
	CountPending(ctx context.Context, userID int64) (int, error)
	GetTask(ctx context.Context, taskID uint) (*domain.Task, error)
	SetStatus(ctx context.Context, taskID uint, action domain.Action) error
}

// Error codes carried in service responses so domain sentinels survive
// the request-reply boundary.
const (
	CodeNotFound           = "not_found"
	CodeLimitExceeded      = "limit_exceeded"
	CodeInvalidDescription = "invalid_description"
	CodeGenerationFailed   = "generation_failed"
	// CodeInternal marks infrastructure failures such as database errors.
	CodeInternal = "internal"
)

var codeErrors = map[string]error{
	CodeNotFound:           domain.ErrNotFound,
	CodeLimitExceeded:      domain.ErrLimitExceeded,
	CodeInvalidDescription: domain.ErrInvalidDescription,
	CodeGenerationFailed:   domain.ErrGenerationFailed,
}

// errorCode returns the wire code for a domain error, or "" when err is not
// one of the task sentinels.
func errorCode(err error) string {
	for code, sentinel := range codeErrors {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return ""
}

// ErrorInfo describes a domain failure in a response.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TaskDTO represents a task in responses.
type TaskDTO struct {
	ID          uint      `json:"id"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	Emoji       string    `json:"emoji"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	Description string `json:"description"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	TaskID uint `json:"task_id"`
}

// TaskResponse carries a single task or a domain error.
type TaskResponse struct {
	Task  *TaskDTO   `json:"task,omitempty"`
	Error *ErrorInfo `json:"error,omitempty"`
}

// ListPendingRequest is the request for listing a user's pending tasks.
type ListPendingRequest struct {
	UserID int64 `json:"user_id"`
}

// ListPendingResponse is the response containing pending tasks in
// insertion order.
type ListPendingResponse struct {
	Tasks []TaskDTO  `json:"tasks"`
	Total int        `json:"total"`
	Error *ErrorInfo `json:"error,omitempty"`
}

// CountPendingRequest is the request for counting a user's pending tasks.
type CountPendingRequest struct {
	UserID int64 `json:"user_id"`
}

// CountPendingResponse is the response with the pending task count.
type CountPendingResponse struct {
	Count int        `json:"count"`
	Error *ErrorInfo `json:"error,omitempty"`
}

// SetStatusRequest is the request for completing or deleting a task.
type SetStatusRequest struct {
	TaskID uint   `json:"task_id"`
	Action string `json:"action"`
}

// SetStatusResponse is the response after a status change.
type SetStatusResponse struct {
	Applied bool       `json:"applied"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

func toTaskDTO(t *domain.Task) TaskDTO {
	return TaskDTO{
		ID:          t.ID,
		UserID:      t.UserID,
		Username:    t.Username,
		Description: t.Description,
		Emoji:       t.Emoji,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func fromTaskDTO(d TaskDTO) *domain.Task {
	return &domain.Task{
		ID:          d.ID,
		UserID:      d.UserID,
		Username:    d.Username,
		Description: d.Description,
		Emoji:       d.Emoji,
		Status:      domain.Status(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
