package user

import "time"

// User records, per chat user, which message currently shows their task list.
type User struct {
	TelegramID    int64     `gorm:"primaryKey;autoIncrement:false" json:"telegram_id"`
	ListMessageID *int      `json:"list_message_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName returns the table name for User model.
func (User) TableName() string {
	return "users"
}

// HasListMessage reports whether a list message id is recorded.
func (u *User) HasListMessage() bool {
	return u != nil && u.ListMessageID != nil
}
