package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no pointer record exists for a user.
var ErrNotFound = errors.New("user not found")

// Repository provides access to the list message pointers.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new user repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the users table.
func (r *Repository) Migrate() error {
	if err := r.db.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("failed to migrate users: %w", err)
	}
	return nil
}

// FindByID retrieves the pointer record of a user.
func (r *Repository) FindByID(ctx context.Context, telegramID int64) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "telegram_id = ?", telegramID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

// SetListMessageID stores messageID as the user's list message, creating
// the record when absent. The write is skipped when the stored value
// already equals messageID; written reports whether a row changed.
func (r *Repository) SetListMessageID(ctx context.Context, telegramID int64, messageID int) (written bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u User
		findErr := tx.First(&u, "telegram_id = ?", telegramID).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			u = User{TelegramID: telegramID, ListMessageID: &messageID}
			if err := tx.Create(&u).Error; err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			written = true
			return nil
		case findErr != nil:
			return fmt.Errorf("failed to find user: %w", findErr)
		}

		if u.ListMessageID != nil && *u.ListMessageID == messageID {
			return nil
		}
		if err := tx.Model(&u).Update("list_message_id", messageID).Error; err != nil {
			return fmt.Errorf("failed to update list message id: %w", err)
		}
		written = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return written, nil
}
