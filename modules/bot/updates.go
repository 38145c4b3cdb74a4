package bot

import (
	"context"
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// EventFromUpdate converts a Telegram update. ok is false for updates the
// bot does not handle.
func EventFromUpdate(update tgbotapi.Update) (Event, bool) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.From == nil || q.Message == nil || q.Message.Chat == nil {
			return Event{}, false
		}
		return Event{
			TraceID:      uuid.NewString(),
			UserID:       q.From.ID,
			Username:     q.From.UserName,
			ChatID:       q.Message.Chat.ID,
			MessageID:    q.Message.MessageID,
			CallbackID:   q.ID,
			CallbackData: q.Data,
		}, true

	case update.Message != nil:
		msg := update.Message
		if msg.From == nil || msg.Chat == nil || msg.Text == "" {
			return Event{}, false
		}
		return Event{
			TraceID:   uuid.NewString(),
			UserID:    msg.From.ID,
			Username:  msg.From.UserName,
			ChatID:    msg.Chat.ID,
			MessageID: msg.MessageID,
			Text:      msg.Text,
		}, true
	}
	return Event{}, false
}

// ParseUpdate decodes a webhook request body.
func ParseUpdate(body []byte) (tgbotapi.Update, error) {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return tgbotapi.Update{}, fmt.Errorf("invalid update payload: %w", err)
	}
	return update, nil
}

// Poller receives updates with long polling.
type Poller struct {
	api     *tgbotapi.BotAPI
	timeout int
}

// NewPoller creates a long-polling receiver.
func NewPoller(api *tgbotapi.BotAPI, timeoutSeconds int) *Poller {
	return &Poller{api: api, timeout: timeoutSeconds}
}

// Run removes any registered webhook, dropping pending updates, and feeds
// polled updates to submit until ctx is done.
func (p *Poller) Run(ctx context.Context, submit func(context.Context, tgbotapi.Update)) error {
	if _, err := p.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.timeout
	updates := p.api.GetUpdatesChan(cfg)

	go func() {
		<-ctx.Done()
		p.api.StopReceivingUpdates()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			submit(ctx, update)
		}
	}
}

// RegisterWebhook points Telegram at url. A non-empty secret is echoed by
// Telegram in the X-Telegram-Bot-Api-Secret-Token header.
func RegisterWebhook(api *tgbotapi.BotAPI, url, secret string) error {
	params := make(tgbotapi.Params)
	params["url"] = url
	params.AddNonEmpty("secret_token", secret)

	if _, err := api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	return nil
}
