package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	domain "github.com/example/todofrog/domain/task"
	"github.com/example/todofrog/domain/user"
	"github.com/go-monolith/mono/pkg/types"
)

// PointerStore persists the id of the message that shows a user's list.
type PointerStore interface {
	FindByID(ctx context.Context, telegramID int64) (*user.User, error)
	SetListMessageID(ctx context.Context, telegramID int64, messageID int) (bool, error)
}

// PendingLister returns a user's pending tasks in display order.
type PendingLister interface {
	ListPending(ctx context.Context, userID int64) ([]*domain.Task, error)
}

// RefreshRequest describes one redisplay of a user's task list.
type RefreshRequest struct {
	UserID int64
	ChatID int64
	// TriggerMessageID is the message that caused the refresh.
	TriggerMessageID int
	// SuppressTriggerDelete keeps the trigger in the chat.
	SuppressTriggerDelete bool
	// IDOffset counts messages the caller sent after the trigger and
	// before this refresh.
	IDOffset int
}

// DeletionOutcome records one best-effort message deletion.
type DeletionOutcome struct {
	MessageID int
	Err       error
}

// OK reports whether the message was deleted.
func (d DeletionOutcome) OK() bool {
	return d.Err == nil
}

// RefreshResult reports what a refresh did.
type RefreshResult struct {
	// Empty is set when the user had no pending tasks; nothing else
	// happened apart from the notice.
	Empty bool
	// ListMessageID is the id of the list message just sent.
	ListMessageID int
	// PointerValue is the id stored as the user's list message.
	PointerValue   int
	PointerWritten bool
	Deletions      []DeletionOutcome
}

// Tracker keeps exactly one task list message visible per user.
type Tracker struct {
	tasks     PendingLister
	pointers  PointerStore
	messenger Messenger
	messages  *Messages
	logger    types.Logger
}

// NewTracker creates a list message tracker.
func NewTracker(tasks PendingLister, pointers PointerStore, messenger Messenger, messages *Messages, logger types.Logger) *Tracker {
	return &Tracker{
		tasks:     tasks,
		pointers:  pointers,
		messenger: messenger,
		messages:  messages,
		logger:    logger,
	}
}

// Refresh sends the current task list and retires the previous one.
//
// Message ids are assigned sequentially per chat, so the stored pointer is
// predicted as TriggerMessageID + IDOffset + 1. Deletion failures are
// reported in the result and never returned as errors.
func (t *Tracker) Refresh(ctx context.Context, req RefreshRequest) (RefreshResult, error) {
	log := t.logger.With("user_id", req.UserID, "trigger", req.TriggerMessageID, "offset", req.IDOffset)

	tasks, err := t.tasks.ListPending(ctx, req.UserID)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("failed to list pending tasks: %w", err)
	}

	if len(tasks) == 0 {
		log.Debug("No pending tasks, sending notice")
		if _, err := t.messenger.SendMessage(ctx, req.ChatID, t.messages.NoTasks.Reply()); err != nil {
			return RefreshResult{Empty: true}, fmt.Errorf("failed to send empty list notice: %w", err)
		}
		return RefreshResult{Empty: true}, nil
	}

	log.Debug("Sending task list", "tasks", len(tasks))
	listID, err := t.messenger.SendList(ctx, req.ChatID, ListButtons(tasks))
	if err != nil {
		return RefreshResult{}, fmt.Errorf("failed to send task list: %w", err)
	}
	result := RefreshResult{ListMessageID: listID}

	if !req.SuppressTriggerDelete {
		result.Deletions = append(result.Deletions, t.delete(ctx, log, req.ChatID, req.TriggerMessageID))
	}

	u, err := t.pointers.FindByID(ctx, req.UserID)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return result, fmt.Errorf("failed to load list pointer: %w", err)
	}
	if u != nil && u.HasListMessage() {
		previous := *u.ListMessageID
		if previous != req.TriggerMessageID && previous != listID {
			log.Debug("Deleting previous list message", "message_id", previous)
			result.Deletions = append(result.Deletions, t.delete(ctx, log, req.ChatID, previous))
		}
	}

	result.PointerValue = req.TriggerMessageID + req.IDOffset + 1
	if result.PointerValue != listID {
		log.Debug("Predicted list message id differs from sent message", "predicted", result.PointerValue, "sent", listID)
	}

	written, err := t.pointers.SetListMessageID(ctx, req.UserID, result.PointerValue)
	if err != nil {
		return result, fmt.Errorf("failed to store list pointer: %w", err)
	}
	result.PointerWritten = written

	return result, nil
}

func (t *Tracker) delete(ctx context.Context, log types.Logger, chatID int64, messageID int) DeletionOutcome {
	err := t.messenger.DeleteMessage(ctx, chatID, messageID)
	if err != nil {
		log.WithError(err).Warn("Failed to delete message", "message_id", messageID)
	}
	return DeletionOutcome{MessageID: messageID, Err: err}
}

// ListButtons renders one button per task; the callback data is the task id.
func ListButtons(tasks []*domain.Task) []Button {
	buttons := make([]Button, 0, len(tasks))
	for _, task := range tasks {
		buttons = append(buttons, Button{
			Text: task.Emoji + " " + task.Description,
			Data: strconv.FormatUint(uint64(task.ID), 10),
		})
	}
	return buttons
}
