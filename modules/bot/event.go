package bot

import "strings"

// Event is an inbound chat interaction reduced to what the handlers need.
type Event struct {
	TraceID   string
	UserID    int64
	Username  string
	ChatID    int64
	MessageID int
	Text      string

	// Set for inline button presses. MessageID is then the message that
	// carried the pressed button.
	CallbackID   string
	CallbackData string
}

// IsCallback reports whether the event is an inline button press.
func (e Event) IsCallback() bool {
	return e.CallbackID != ""
}

// Command returns the bot command in Text without the leading slash and
// any @botname suffix.
func (e Event) Command() (string, bool) {
	if e.IsCallback() || !strings.HasPrefix(e.Text, "/") {
		return "", false
	}
	cmd := strings.TrimPrefix(strings.Fields(e.Text)[0], "/")
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd, cmd != ""
}
