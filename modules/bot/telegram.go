package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramMessenger implements Messenger with the Telegram Bot API.
type TelegramMessenger struct {
	api       *tgbotapi.BotAPI
	listImage []byte
	imageName string
	caption   string
}

var _ Messenger = (*TelegramMessenger)(nil)

// NewTelegramMessenger creates a messenger. When imagePath is set the task
// list is sent as a photo, otherwise as a text message with caption.
func NewTelegramMessenger(api *tgbotapi.BotAPI, imagePath, caption string) (*TelegramMessenger, error) {
	m := &TelegramMessenger{api: api, caption: caption}
	if imagePath != "" {
		img, err := os.ReadFile(imagePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read task list image: %w", err)
		}
		m.listImage = img
		m.imageName = filepath.Base(imagePath)
	}
	return m, nil
}

func (m *TelegramMessenger) SendList(ctx context.Context, chatID int64, buttons []Button) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	rows := make([][]Button, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []Button{b})
	}
	markup := inlineMarkup(rows)

	var chattable tgbotapi.Chattable
	if m.listImage != nil {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: m.imageName, Bytes: m.listImage})
		photo.ReplyMarkup = markup
		chattable = photo
	} else {
		msg := tgbotapi.NewMessage(chatID, m.caption)
		msg.ReplyMarkup = markup
		chattable = msg
	}

	sent, err := m.api.Send(chattable)
	if err != nil {
		return 0, fmt.Errorf("telegram send list: %w", err)
	}
	return sent.MessageID, nil
}

func (m *TelegramMessenger) SendMessage(ctx context.Context, chatID int64, reply Reply) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if reply.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	switch {
	case len(reply.Inline) > 0:
		msg.ReplyMarkup = inlineMarkup(reply.Inline)
	case len(reply.Keyboard) > 0:
		msg.ReplyMarkup = replyKeyboard(reply.Keyboard)
	}

	sent, err := m.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("telegram send message: %w", err)
	}
	return sent.MessageID, nil
}

func (m *TelegramMessenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("telegram delete message %d: %w", messageID, err)
	}
	return nil
}

func (m *TelegramMessenger) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("telegram answer callback: %w", err)
	}
	return nil
}

func inlineMarkup(rows [][]Button) tgbotapi.InlineKeyboardMarkup {
	keyboard := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		keyboard = append(keyboard, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

func replyKeyboard(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	keyboard := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, text := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(text))
		}
		keyboard = append(keyboard, tgbotapi.NewKeyboardButtonRow(buttons...))
	}
	markup := tgbotapi.NewReplyKeyboard(keyboard...)
	markup.ResizeKeyboard = true
	markup.OneTimeKeyboard = false
	return markup
}
