package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/todofrog/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// callService performs a typed request-reply call against the task module.
func callService[Resp any](ctx context.Context, container mono.ServiceContainer, service string, req any, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

// CreateTask creates a task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, userID int64, username, description string) (*domain.Task, error) {
	req := CreateTaskRequest{UserID: userID, Username: username, Description: description}
	var resp TaskResponse
	if err := callService(ctx, a.container, "create-task", &req, &resp); err != nil {
		return nil, err
	}
	if err := errorFromInfo(resp.Error); err != nil {
		return nil, err
	}
	return fromTaskDTO(*resp.Task), nil
}

// ListPending lists pending tasks via the list-pending service.
func (a *taskAdapter) ListPending(ctx context.Context, userID int64) ([]*domain.Task, error) {
	req := ListPendingRequest{UserID: userID}
	var resp ListPendingResponse
	if err := callService(ctx, a.container, "list-pending", &req, &resp); err != nil {
		return nil, err
	}
	if err := errorFromInfo(resp.Error); err != nil {
		return nil, err
	}

	tasks := make([]*domain.Task, 0, len(resp.Tasks))
	for _, d := range resp.Tasks {
		tasks = append(tasks, fromTaskDTO(d))
	}
	return tasks, nil
}

// CountPending counts pending tasks via the count-pending service.
func (a *taskAdapter) CountPending(ctx context.Context, userID int64) (int, error) {
	req := CountPendingRequest{UserID: userID}
	var resp CountPendingResponse
	if err := callService(ctx, a.container, "count-pending", &req, &resp); err != nil {
		return 0, err
	}
	if err := errorFromInfo(resp.Error); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// GetTask retrieves a task via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, taskID uint) (*domain.Task, error) {
	req := GetTaskRequest{TaskID: taskID}
	var resp TaskResponse
	if err := callService(ctx, a.container, "get-task", &req, &resp); err != nil {
		return nil, err
	}
	if err := errorFromInfo(resp.Error); err != nil {
		return nil, err
	}
	return fromTaskDTO(*resp.Task), nil
}

// SetStatus completes or deletes a task via the set-status service.
func (a *taskAdapter) SetStatus(ctx context.Context, taskID uint, action domain.Action) error {
	req := SetStatusRequest{TaskID: taskID, Action: string(action)}
	var resp SetStatusResponse
	if err := callService(ctx, a.container, "set-status", &req, &resp); err != nil {
		return err
	}
	return errorFromInfo(resp.Error)
}
