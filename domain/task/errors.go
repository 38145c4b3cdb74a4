package task

import "errors"

var (
	// ErrNotFound is returned when a task id references a missing row.
	ErrNotFound = errors.New("task not found")
	// ErrLimitExceeded is returned when a user already holds MaxPendingTasks.
	ErrLimitExceeded = errors.New("pending task limit exceeded")
	// ErrInvalidDescription is returned for empty or too long descriptions.
	ErrInvalidDescription = errors.New("invalid task description")
	// ErrGenerationFailed is returned when the emoji could not be generated.
	ErrGenerationFailed = errors.New("emoji generation failed")
)
