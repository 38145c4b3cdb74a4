// Package activity keeps running counters of task lifecycle events.
package activity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/todofrog/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Stats is a snapshot of observed task events.
type Stats struct {
	Created     int       `json:"created"`
	Completed   int       `json:"completed"`
	Deleted     int       `json:"deleted"`
	ActiveUsers int       `json:"active_users"`
	LastEventAt time.Time `json:"last_event_at"`
}

// ActivityModule subscribes to task events.
type ActivityModule struct {
	mu          sync.RWMutex
	created     int
	completed   int
	deleted     int
	users       map[int64]struct{}
	lastEventAt time.Time
	logger      types.Logger
}

var _ mono.Module = (*ActivityModule)(nil)
var _ mono.EventConsumerModule = (*ActivityModule)(nil)
var _ mono.HealthCheckableModule = (*ActivityModule)(nil)

func NewModule(logger types.Logger) *ActivityModule {
	return &ActivityModule{
		users:  make(map[int64]struct{}),
		logger: logger.WithModule("activity"),
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1, m.handleTaskCompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", "TaskCreated, TaskCompleted, TaskDeleted")
	return nil
}

func (m *ActivityModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.logger.Debug("Task created", "task_id", event.TaskID, "user_id", event.UserID, "emoji", event.Emoji)
	m.record(event.UserID, func() { m.created++ })
	return nil
}

func (m *ActivityModule) handleTaskCompleted(_ context.Context, event events.TaskCompletedEvent, _ *mono.Msg) error {
	m.logger.Debug("Task completed", "task_id", event.TaskID, "user_id", event.UserID)
	m.record(event.UserID, func() { m.completed++ })
	return nil
}

func (m *ActivityModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.logger.Debug("Task deleted", "task_id", event.TaskID, "user_id", event.UserID)
	m.record(event.UserID, func() { m.deleted++ })
	return nil
}

func (m *ActivityModule) record(userID int64, bump func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bump()
	m.users[userID] = struct{}{}
	m.lastEventAt = time.Now()
}

// Stats returns the current counters.
func (m *ActivityModule) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		Created:     m.created,
		Completed:   m.completed,
		Deleted:     m.deleted,
		ActiveUsers: len(m.users),
		LastEventAt: m.lastEventAt,
	}
}

func (m *ActivityModule) Start(_ context.Context) error {
	m.logger.Info("Module started - listening for task events")
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	s := m.Stats()
	m.logger.Info("Module stopped", "created", s.Created, "completed", s.Completed, "deleted", s.Deleted)
	return nil
}

func (m *ActivityModule) Health(_ context.Context) mono.HealthStatus {
	s := m.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"tasks_created":   s.Created,
			"tasks_completed": s.Completed,
			"tasks_deleted":   s.Deleted,
			"active_users":    s.ActiveUsers,
		},
	}
}
