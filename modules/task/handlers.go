package task

import (
	"context"

	domain "github.com/example/todofrog/domain/task"
	"github.com/go-monolith/mono"
)

// Handlers report failures in the response body. A handler error would
// leave the caller waiting for a reply until its timeout.

// createTask handles the create-task service request.
func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.svc.CreateTask(ctx, req.UserID, req.Username, req.Description)
	if err != nil {
		return TaskResponse{Error: m.failure("create-task", err)}, nil
	}
	dto := toTaskDTO(t)
	return TaskResponse{Task: &dto}, nil
}

// getTask handles the get-task service request.
func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.svc.GetTask(ctx, req.TaskID)
	if err != nil {
		return TaskResponse{Error: m.failure("get-task", err)}, nil
	}
	dto := toTaskDTO(t)
	return TaskResponse{Task: &dto}, nil
}

// listPending handles the list-pending service request.
func (m *TaskModule) listPending(ctx context.Context, req ListPendingRequest, _ *mono.Msg) (ListPendingResponse, error) {
	tasks, err := m.svc.ListPending(ctx, req.UserID)
	if err != nil {
		return ListPendingResponse{Error: m.failure("list-pending", err)}, nil
	}

	dtos := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		dtos = append(dtos, toTaskDTO(t))
	}
	return ListPendingResponse{Tasks: dtos, Total: len(dtos)}, nil
}

// countPending handles the count-pending service request.
func (m *TaskModule) countPending(ctx context.Context, req CountPendingRequest, _ *mono.Msg) (CountPendingResponse, error) {
	count, err := m.svc.CountPending(ctx, req.UserID)
	if err != nil {
		return CountPendingResponse{Error: m.failure("count-pending", err)}, nil
	}
	return CountPendingResponse{Count: count}, nil
}

// setStatus handles the set-status service request.
func (m *TaskModule) setStatus(ctx context.Context, req SetStatusRequest, _ *mono.Msg) (SetStatusResponse, error) {
	applied, err := m.svc.setStatus(ctx, req.TaskID, domain.ParseAction(req.Action))
	if err != nil {
		return SetStatusResponse{Error: m.failure("set-status", err)}, nil
	}
	return SetStatusResponse{Applied: applied}, nil
}

func (m *TaskModule) failure(service string, err error) *ErrorInfo {
	info := responseError(err)
	if info.Code == CodeInternal {
		m.logger.WithError(err).Error("Service call failed", "service", service)
	}
	return info
}
