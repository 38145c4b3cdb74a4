package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/todofrog/domain/conversation"
	domain "github.com/example/todofrog/domain/task"
	"github.com/example/todofrog/modules/task"
	"github.com/go-monolith/mono/pkg/types"
)

// Flow drives the task creation dialogue:
//
//	Idle --create--> AwaitingDescription --description--> Idle
//	AwaitingDescription --cancel--> Idle
//	any --other command--> Idle
type Flow struct {
	tasks     task.TaskPort
	tracker   *Tracker
	states    conversation.Store
	messenger Messenger
	messages  *Messages
	logger    types.Logger
}

// NewFlow creates a conversation flow controller.
func NewFlow(tasks task.TaskPort, tracker *Tracker, states conversation.Store, messenger Messenger, messages *Messages, logger types.Logger) *Flow {
	return &Flow{
		tasks:     tasks,
		tracker:   tracker,
		states:    states,
		messenger: messenger,
		messages:  messages,
		logger:    logger,
	}
}

// State returns the user's current dialogue state.
func (f *Flow) State(ctx context.Context, userID int64) (conversation.State, error) {
	state, err := f.states.Get(ctx, userID)
	if err != nil {
		return conversation.StateIdle, fmt.Errorf("failed to load conversation state: %w", err)
	}
	return state, nil
}

// RequestCreate starts the dialogue unless the user is at the pending limit.
func (f *Flow) RequestCreate(ctx context.Context, ev Event) error {
	count, err := f.tasks.CountPending(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("failed to count pending tasks: %w", err)
	}

	if count >= domain.MaxPendingTasks {
		f.logger.Debug("Pending task limit reached", "user_id", ev.UserID, "count", count)
		if err := f.setState(ctx, ev.UserID, conversation.StateIdle); err != nil {
			return err
		}
		return f.reply(ctx, ev.ChatID, f.messages.LimitReached)
	}

	if err := f.setState(ctx, ev.UserID, conversation.StateAwaitingDescription); err != nil {
		return err
	}
	return f.reply(ctx, ev.ChatID, f.messages.AskDescription)
}

// SubmitDescription creates a task from ev.Text. It does nothing unless the
// user is awaiting a description. An invalid description keeps the dialogue
// open.
func (f *Flow) SubmitDescription(ctx context.Context, ev Event) error {
	state, err := f.State(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if state != conversation.StateAwaitingDescription {
		return nil
	}

	created, err := f.tasks.CreateTask(ctx, ev.UserID, ev.Username, ev.Text)
	switch {
	case errors.Is(err, domain.ErrInvalidDescription):
		return f.reply(ctx, ev.ChatID, f.messages.InvalidDescription)
	case errors.Is(err, domain.ErrLimitExceeded):
		if err := f.setState(ctx, ev.UserID, conversation.StateIdle); err != nil {
			return err
		}
		return f.reply(ctx, ev.ChatID, f.messages.TooManyTasks)
	case err != nil:
		if stateErr := f.setState(ctx, ev.UserID, conversation.StateIdle); stateErr != nil {
			f.logger.WithError(stateErr).Warn("Failed to reset conversation state", "user_id", ev.UserID)
		}
		if replyErr := f.reply(ctx, ev.ChatID, f.messages.CreationFailed); replyErr != nil {
			f.logger.WithError(replyErr).Warn("Failed to send failure notice", "user_id", ev.UserID)
		}
		return fmt.Errorf("failed to create task: %w", err)
	}

	f.logger.Info("Task created", "user_id", ev.UserID, "task_id", created.ID, "emoji", created.Emoji)
	if err := f.setState(ctx, ev.UserID, conversation.StateIdle); err != nil {
		return err
	}
	if err := f.reply(ctx, ev.ChatID, f.messages.TaskCreated); err != nil {
		return err
	}

	// The confirmation above is one extra message before the list.
	_, err = f.tracker.Refresh(ctx, RefreshRequest{
		UserID:                ev.UserID,
		ChatID:                ev.ChatID,
		TriggerMessageID:      ev.MessageID,
		SuppressTriggerDelete: true,
		IDOffset:              1,
	})
	return err
}

// Cancel aborts the dialogue. Idle users get no reply.
func (f *Flow) Cancel(ctx context.Context, ev Event) error {
	state, err := f.State(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if state != conversation.StateAwaitingDescription {
		return nil
	}

	if err := f.setState(ctx, ev.UserID, conversation.StateIdle); err != nil {
		return err
	}
	return f.reply(ctx, ev.ChatID, f.messages.CreationCancelled)
}

// Reset silently returns the user to Idle.
func (f *Flow) Reset(ctx context.Context, ev Event) error {
	return f.setState(ctx, ev.UserID, conversation.StateIdle)
}

func (f *Flow) setState(ctx context.Context, userID int64, state conversation.State) error {
	if err := f.states.Set(ctx, userID, state); err != nil {
		return fmt.Errorf("failed to store conversation state: %w", err)
	}
	return nil
}

func (f *Flow) reply(ctx context.Context, chatID int64, text Text) error {
	if _, err := f.messenger.SendMessage(ctx, chatID, text.Reply()); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
