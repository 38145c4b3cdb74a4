package user

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := NewRepository(db).Migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func TestRepository_FindByID(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.FindByID(context.Background(), 12345)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_SetListMessageID(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))

	t.Run("creates record lazily", func(t *testing.T) {
		written, err := repo.SetListMessageID(ctx, 12345, 11)
		if err != nil {
			t.Fatalf("SetListMessageID() error = %v", err)
		}
		if !written {
			t.Error("expected first call to write")
		}

		u, err := repo.FindByID(ctx, 12345)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if !u.HasListMessage() || *u.ListMessageID != 11 {
			t.Errorf("expected list message id 11, got %v", u.ListMessageID)
		}
	})

	t.Run("same value is a no-op", func(t *testing.T) {
		written, err := repo.SetListMessageID(ctx, 12345, 11)
		if err != nil {
			t.Fatalf("SetListMessageID() error = %v", err)
		}
		if written {
			t.Error("expected no write for unchanged value")
		}
	})

	t.Run("different value overwrites", func(t *testing.T) {
		written, err := repo.SetListMessageID(ctx, 12345, 20)
		if err != nil {
			t.Fatalf("SetListMessageID() error = %v", err)
		}
		if !written {
			t.Error("expected write for changed value")
		}

		u, _ := repo.FindByID(ctx, 12345)
		if *u.ListMessageID != 20 {
			t.Errorf("expected list message id 20, got %d", *u.ListMessageID)
		}
	})

	t.Run("null pointer gets filled", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRepository(db)
		if err := db.Create(&User{TelegramID: 7}).Error; err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}

		written, err := repo.SetListMessageID(ctx, 7, 3)
		if err != nil {
			t.Fatalf("SetListMessageID() error = %v", err)
		}
		if !written {
			t.Error("expected write when stored value is null")
		}
	})
}
