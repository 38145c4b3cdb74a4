package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/example/todofrog/domain/task"
	"github.com/example/todofrog/events"
	"github.com/example/todofrog/modules/emoji"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// Service implements TaskPort on top of the task repository.
type Service struct {
	repo     *domain.Repository
	emoji    emoji.EmojiPort
	eventBus mono.EventBus
	logger   types.Logger
}

var _ TaskPort = (*Service)(nil)

// NewService creates a task service.
func NewService(repo *domain.Repository, emojiPort emoji.EmojiPort, logger types.Logger) *Service {
	return &Service{
		repo:   repo,
		emoji:  emojiPort,
		logger: logger,
	}
}

// SetEventBus enables publishing of task events.
func (s *Service) SetEventBus(bus mono.EventBus) {
	s.eventBus = bus
}

// CreateTask validates the description, generates its emoji and stores a
// pending task. The pending limit is checked again inside the insert
// transaction.
func (s *Service) CreateTask(ctx context.Context, userID int64, username, description string) (*domain.Task, error) {
	desc, err := domain.ValidateDescription(description)
	if err != nil {
		return nil, err
	}

	em, err := s.emoji.Generate(ctx, desc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	t := &domain.Task{
		UserID:      userID,
		Username:    username,
		Description: desc,
		Emoji:       em,
	}
	if err := s.repo.CreatePending(ctx, t, domain.MaxPendingTasks); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		event := events.TaskCreatedEvent{
			TaskID:      t.ID,
			UserID:      t.UserID,
			Description: t.Description,
			Emoji:       t.Emoji,
			CreatedAt:   t.CreatedAt,
		}
		if err := events.TaskCreatedV1.Publish(s.eventBus, event, nil); err != nil {
			s.logger.WithError(err).Warn("Failed to publish TaskCreated event", "task_id", t.ID)
		}
	}

	return t, nil
}

// ListPending returns the user's pending tasks in insertion order.
func (s *Service) ListPending(ctx context.Context, userID int64) ([]*domain.Task, error) {
	return s.repo.FindPendingByUser(ctx, userID)
}

// CountPending returns the number of pending tasks the user holds.
func (s *Service) CountPending(ctx context.Context, userID int64) (int, error) {
	return s.repo.CountPendingByUser(ctx, userID)
}

// GetTask returns a task by id.
func (s *Service) GetTask(ctx context.Context, taskID uint) (*domain.Task, error) {
	return s.repo.FindByID(ctx, taskID)
}

// SetStatus applies action to a task. Unknown actions are ignored.
func (s *Service) SetStatus(ctx context.Context, taskID uint, action domain.Action) error {
	_, err := s.setStatus(ctx, taskID, action)
	return err
}

func (s *Service) setStatus(ctx context.Context, taskID uint, action domain.Action) (bool, error) {
	switch action {
	case domain.ActionComplete:
		t, err := s.repo.Complete(ctx, taskID)
		if err != nil {
			return false, err
		}
		s.publishCompleted(t)
		return true, nil
	case domain.ActionDelete:
		t, err := s.repo.Delete(ctx, taskID)
		if err != nil {
			return false, err
		}
		s.publishDeleted(t)
		return true, nil
	default:
		s.logger.Debug("Ignoring unknown task action", "task_id", taskID, "action", action)
		return false, nil
	}
}

func (s *Service) publishCompleted(t *domain.Task) {
	if s.eventBus == nil {
		return
	}
	event := events.TaskCompletedEvent{
		TaskID:      t.ID,
		UserID:      t.UserID,
		CompletedAt: t.UpdatedAt,
	}
	if err := events.TaskCompletedV1.Publish(s.eventBus, event, nil); err != nil {
		s.logger.WithError(err).Warn("Failed to publish TaskCompleted event", "task_id", t.ID)
	}
}

func (s *Service) publishDeleted(t *domain.Task) {
	if s.eventBus == nil {
		return
	}
	event := events.TaskDeletedEvent{
		TaskID:    t.ID,
		UserID:    t.UserID,
		DeletedAt: time.Now(),
	}
	if err := events.TaskDeletedV1.Publish(s.eventBus, event, nil); err != nil {
		s.logger.WithError(err).Warn("Failed to publish TaskDeleted event", "task_id", t.ID)
	}
}

// responseError converts err to response error info. Task sentinels keep
// their code; anything else is reported as CodeInternal. Message carries
// the cause without the sentinel text.
func responseError(err error) *ErrorInfo {
	code := errorCode(err)
	if code == "" {
		return &ErrorInfo{Code: CodeInternal, Message: err.Error()}
	}
	msg := strings.TrimPrefix(err.Error(), codeErrors[code].Error())
	msg = strings.TrimPrefix(msg, ": ")
	return &ErrorInfo{Code: code, Message: msg}
}

// errorFromInfo rebuilds the error on the calling side.
func errorFromInfo(info *ErrorInfo) error {
	if info == nil {
		return nil
	}
	if sentinel, ok := codeErrors[info.Code]; ok {
		if info.Message == "" {
			return sentinel
		}
		return fmt.Errorf("%w: %s", sentinel, info.Message)
	}
	return errors.New(info.Message)
}
