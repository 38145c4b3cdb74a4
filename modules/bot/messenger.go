package bot

import "context"

// Button is an inline keyboard button.
type Button struct {
	Text string
	Data string
}

// Reply is an outgoing chat message.
type Reply struct {
	Text     string
	Markdown bool
	// Inline buttons attached to the message, one slice per row.
	Inline [][]Button
	// Persistent reply keyboard, one slice per row.
	Keyboard [][]string
}

// Messenger sends and removes chat messages. Send methods return the id
// of the message the platform created.
type Messenger interface {
	SendList(ctx context.Context, chatID int64, buttons []Button) (int, error)
	SendMessage(ctx context.Context, chatID int64, reply Reply) (int, error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
