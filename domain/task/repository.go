package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository provides access to task storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the tasks table.
func (r *Repository) Migrate() error {
	if err := r.db.AutoMigrate(&Task{}); err != nil {
		return fmt.Errorf("failed to migrate tasks: %w", err)
	}
	return nil
}

// serializationRetries bounds how often CreatePending reruns a transaction
// that Postgres aborted with a serialization failure.
const serializationRetries = 3

const serializationFailureCode = "40001"

// CreatePending saves a new pending task unless the owner already holds
// limit pending tasks. The count and the insert share one transaction,
// which runs SERIALIZABLE on Postgres so concurrent creations cannot both
// pass the count.
func (r *Repository) CreatePending(ctx context.Context, task *Task, limit int) error {
	var err error
	for attempt := 0; attempt < serializationRetries; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := pendingByUser(tx, task.UserID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to count pending tasks: %w", err)
			}
			if count >= int64(limit) {
				return ErrLimitExceeded
			}

			task.Status = StatusPending
			if err := tx.Create(task).Error; err != nil {
				return fmt.Errorf("failed to create task: %w", err)
			}
			return nil
		}, r.limitTxOptions()...)
		if !isSerializationFailure(err) {
			return err
		}
		task.ID = 0
	}
	return err
}

func (r *Repository) limitTxOptions() []*sql.TxOptions {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	return []*sql.TxOptions{{Isolation: sql.LevelSerializable}}
}

// isSerializationFailure reports SQLSTATE 40001 from Postgres.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == serializationFailureCode
}

// FindByID retrieves a task by its ID.
func (r *Repository) FindByID(ctx context.Context, id uint) (*Task, error) {
	var task Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// FindPendingByUser returns the user's pending tasks in insertion order.
func (r *Repository) FindPendingByUser(ctx context.Context, userID int64) ([]*Task, error) {
	var tasks []*Task
	if err := pendingByUser(r.db.WithContext(ctx), userID).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to find pending tasks: %w", err)
	}
	return tasks, nil
}

// CountPendingByUser counts the user's pending tasks.
func (r *Repository) CountPendingByUser(ctx context.Context, userID int64) (int, error) {
	var count int64
	if err := pendingByUser(r.db.WithContext(ctx), userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count pending tasks: %w", err)
	}
	return int(count), nil
}

// Complete marks a task completed and bumps UpdatedAt.
func (r *Repository) Complete(ctx context.Context, id uint) (*Task, error) {
	var task Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}
		now := time.Now()
		if err := tx.Model(&task).Updates(map[string]any{
			"status":     StatusCompleted,
			"updated_at": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}
		task.Status = StatusCompleted
		task.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete physically removes a task and returns the removed row.
func (r *Repository) Delete(ctx context.Context, id uint) (*Task, error) {
	var task Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}
		result := tx.Delete(&Task{}, "id = ?", id)
		if err := result.Error; err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func pendingByUser(db *gorm.DB, userID int64) *gorm.DB {
	return db.Model(&Task{}).Where("user_id = ? AND status = ?", userID, StatusPending)
}
