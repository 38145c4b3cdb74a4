package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/todofrog/domain/task"
	"github.com/example/todofrog/events"
	"github.com/example/todofrog/modules/emoji"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// TaskModule provides task management services.
type TaskModule struct {
	db        *gorm.DB
	driver    string
	repo      *domain.Repository
	svc       *Service
	emojiPort emoji.EmojiPort
	eventBus  mono.EventBus
	logger    types.Logger
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.DependentModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a task module backed by db. driver is reported in
// health details.
func NewModule(db *gorm.DB, driver string, logger types.Logger) *TaskModule {
	return &TaskModule{
		db:     db,
		driver: driver,
		repo:   domain.NewRepository(db),
		logger: logger.WithModule("task"),
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) Dependencies() []string {
	return []string{"emoji"}
}

func (m *TaskModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "emoji" {
		m.emojiPort = emoji.NewEmojiAdapter(container)
	}
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskCompletedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-pending", json.Unmarshal, json.Marshal, m.listPending,
	); err != nil {
		return fmt.Errorf("failed to register list-pending service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "count-pending", json.Unmarshal, json.Marshal, m.countPending,
	); err != nil {
		return fmt.Errorf("failed to register count-pending service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "set-status", json.Unmarshal, json.Marshal, m.setStatus,
	); err != nil {
		return fmt.Errorf("failed to register set-status service: %w", err)
	}

	m.logger.Info("Registered services", "services", "create-task, get-task, list-pending, count-pending, set-status")
	return nil
}

// Start runs migrations and wires the service.
func (m *TaskModule) Start(_ context.Context) error {
	if m.emojiPort == nil {
		return fmt.Errorf("emojiPort dependency not set")
	}
	if err := m.repo.Migrate(); err != nil {
		return err
	}

	m.svc = NewService(m.repo, m.emojiPort, m.logger)
	if m.eventBus == nil {
		m.logger.Warn("eventBus not set, events will not be published")
	} else {
		m.svc.SetEventBus(m.eventBus)
	}

	m.logger.Info("Module started", "depends_on", "emoji", "driver", m.driver)
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	m.logger.Info("Module stopped")
	return nil
}

// Health pings the database.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": m.driver,
		},
	}
}
