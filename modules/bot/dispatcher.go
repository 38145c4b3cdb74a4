package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/example/todofrog/domain/conversation"
	domain "github.com/example/todofrog/domain/task"
	"github.com/example/todofrog/modules/task"
	"github.com/go-monolith/mono/pkg/types"
)

// Callback payloads.
const (
	backToListData = "back_to_list"
	completePrefix = "complete_"
	deletePrefix   = "delete_"
)

var (
	taskButtonPattern   = regexp.MustCompile(`^[0-9]+$`)
	statusButtonPattern = regexp.MustCompile(`^(complete|delete)_([0-9]+)$`)
)

// Dispatcher routes chat events to the flow controller and list commands.
type Dispatcher struct {
	flow      *Flow
	tracker   *Tracker
	tasks     task.TaskPort
	messenger Messenger
	messages  *Messages
	logger    types.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(flow *Flow, tracker *Tracker, tasks task.TaskPort, messenger Messenger, messages *Messages, logger types.Logger) *Dispatcher {
	return &Dispatcher{
		flow:      flow,
		tracker:   tracker,
		tasks:     tasks,
		messenger: messenger,
		messages:  messages,
		logger:    logger,
	}
}

// Handle processes one event.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) error {
	if ev.IsCallback() {
		return d.handleCallback(ctx, ev)
	}

	if cmd, ok := ev.Command(); ok {
		switch cmd {
		case "start":
			return d.start(ctx, ev)
		case "create_task":
			return d.flow.RequestCreate(ctx, ev)
		case "list_tasks":
			return d.listTasks(ctx, ev)
		case "cancel":
			return d.flow.Cancel(ctx, ev)
		default:
			d.logger.Debug("Unhandled command", "command", cmd, "user_id", ev.UserID)
			return d.flow.Reset(ctx, ev)
		}
	}

	switch ev.Text {
	case d.messages.Buttons.CreateTask:
		return d.flow.RequestCreate(ctx, ev)
	case d.messages.Buttons.ListTasks:
		return d.listTasks(ctx, ev)
	}

	state, err := d.flow.State(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if state == conversation.StateAwaitingDescription {
		return d.flow.SubmitDescription(ctx, ev)
	}

	d.logger.Debug("Ignoring text outside of a dialogue", "user_id", ev.UserID)
	return nil
}

func (d *Dispatcher) start(ctx context.Context, ev Event) error {
	if err := d.flow.Reset(ctx, ev); err != nil {
		return err
	}

	welcome := d.messages.Start.Reply()
	welcome.Keyboard = [][]string{{d.messages.Buttons.ListTasks, d.messages.Buttons.CreateTask}}
	if _, err := d.messenger.SendMessage(ctx, ev.ChatID, welcome); err != nil {
		return fmt.Errorf("failed to send welcome message: %w", err)
	}
	if _, err := d.messenger.SendMessage(ctx, ev.ChatID, d.messages.StartSticker.Reply()); err != nil {
		return fmt.Errorf("failed to send welcome message: %w", err)
	}
	return nil
}

func (d *Dispatcher) listTasks(ctx context.Context, ev Event) error {
	if err := d.flow.Reset(ctx, ev); err != nil {
		return err
	}
	_, err := d.tracker.Refresh(ctx, RefreshRequest{
		UserID:           ev.UserID,
		ChatID:           ev.ChatID,
		TriggerMessageID: ev.MessageID,
	})
	return err
}

func (d *Dispatcher) handleCallback(ctx context.Context, ev Event) error {
	data := ev.CallbackData
	switch {
	case taskButtonPattern.MatchString(data):
		return d.showTask(ctx, ev)
	case data == backToListData:
		return d.backToList(ctx, ev)
	case statusButtonPattern.MatchString(data):
		return d.changeStatus(ctx, ev)
	default:
		d.logger.Debug("Ignoring unknown callback", "data", data, "user_id", ev.UserID)
		d.answer(ctx, ev, "")
		return nil
	}
}

func (d *Dispatcher) showTask(ctx context.Context, ev Event) error {
	d.answer(ctx, ev, "")

	t, err := d.callbackTask(ctx, ev.UserID, ev.CallbackData)
	if errors.Is(err, domain.ErrNotFound) {
		_, err = d.messenger.SendMessage(ctx, ev.ChatID, d.messages.TaskNotFound.Reply())
		return err
	}
	if err != nil {
		return err
	}

	detail := Reply{
		Text: t.Description,
		Inline: [][]Button{
			{
				{Text: d.messages.Buttons.Complete, Data: completePrefix + ev.CallbackData},
				{Text: d.messages.Buttons.Delete, Data: deletePrefix + ev.CallbackData},
			},
			{
				{Text: d.messages.Buttons.Back, Data: backToListData},
			},
		},
	}
	if _, err := d.messenger.SendMessage(ctx, ev.ChatID, detail); err != nil {
		return fmt.Errorf("failed to send task detail: %w", err)
	}

	if err := d.messenger.DeleteMessage(ctx, ev.ChatID, ev.MessageID); err != nil {
		d.logger.WithError(err).Warn("Failed to delete list message", "message_id", ev.MessageID)
	}
	return nil
}

func (d *Dispatcher) backToList(ctx context.Context, ev Event) error {
	d.answer(ctx, ev, "")
	_, err := d.tracker.Refresh(ctx, RefreshRequest{
		UserID:           ev.UserID,
		ChatID:           ev.ChatID,
		TriggerMessageID: ev.MessageID,
	})
	return err
}

func (d *Dispatcher) changeStatus(ctx context.Context, ev Event) error {
	m := statusButtonPattern.FindStringSubmatch(ev.CallbackData)
	action := domain.ParseAction(m[1])
	t, err := d.callbackTask(ctx, ev.UserID, m[2])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			d.answer(ctx, ev, d.messages.TaskNotFound.Text)
			return nil
		}
		return err
	}

	if err := d.tasks.SetStatus(ctx, t.ID, action); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			d.answer(ctx, ev, d.messages.TaskNotFound.Text)
			return nil
		}
		return fmt.Errorf("failed to change task status: %w", err)
	}

	toast := d.messages.TaskCompletedToast.Text
	if action == domain.ActionDelete {
		toast = d.messages.TaskDeletedToast.Text
	}
	d.answer(ctx, ev, toast)

	if action == domain.ActionComplete {
		remaining, err := d.tasks.CountPending(ctx, ev.UserID)
		if err != nil {
			return fmt.Errorf("failed to count pending tasks: %w", err)
		}
		if remaining == 0 {
			if _, err := d.messenger.SendMessage(ctx, ev.ChatID, d.messages.AllTasksCompleted.Reply()); err != nil {
				return fmt.Errorf("failed to send completion message: %w", err)
			}
			if err := d.messenger.DeleteMessage(ctx, ev.ChatID, ev.MessageID); err != nil {
				d.logger.WithError(err).Warn("Failed to delete task message", "message_id", ev.MessageID)
			}
			return nil
		}
	}

	_, err = d.tracker.Refresh(ctx, RefreshRequest{
		UserID:           ev.UserID,
		ChatID:           ev.ChatID,
		TriggerMessageID: ev.MessageID,
	})
	return err
}

// callbackTask resolves the task id carried in callback data. Ids that do
// not parse are reported as ErrNotFound.
func (d *Dispatcher) callbackTask(ctx context.Context, userID int64, rawID string) (*domain.Task, error) {
	taskID, err := parseTaskID(rawID)
	if err != nil {
		d.logger.Debug("Unparseable task id in callback", "data", rawID, "error", err)
		return nil, domain.ErrNotFound
	}
	return d.ownedTask(ctx, userID, taskID)
}

// ownedTask loads a task and hides tasks of other users behind ErrNotFound.
func (d *Dispatcher) ownedTask(ctx context.Context, userID int64, taskID uint) (*domain.Task, error) {
	t, err := d.tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// answer acknowledges a button press. Telegram rejects answers to stale
// queries, so failures are only logged.
func (d *Dispatcher) answer(ctx context.Context, ev Event, text string) {
	if err := d.messenger.AnswerCallback(ctx, ev.CallbackID, text); err != nil {
		d.logger.WithError(err).Warn("Failed to answer callback", "callback_id", ev.CallbackID)
	}
}

func parseTaskID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q: %w", s, err)
	}
	return uint(id), nil
}
