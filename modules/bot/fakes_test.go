package bot

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	domain "github.com/example/todofrog/domain/task"
	"github.com/example/todofrog/domain/user"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

type sentMessage struct {
	ID     int
	ChatID int64
	Reply  Reply
	List   []Button
}

func (s sentMessage) IsList() bool {
	return s.List != nil
}

// fakeMessenger hands out sequential message ids like Telegram does per chat.
type fakeMessenger struct {
	mu        sync.Mutex
	nextID    int
	sent      []sentMessage
	deleted   []int
	answers   []string
	sendErr   error
	deleteErr map[int]error
}

func newFakeMessenger(nextID int) *fakeMessenger {
	return &fakeMessenger{nextID: nextID, deleteErr: make(map[int]error)}
}

func (f *fakeMessenger) send(chatID int64, reply Reply, list []Button) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	id := f.nextID
	f.nextID++
	f.sent = append(f.sent, sentMessage{ID: id, ChatID: chatID, Reply: reply, List: list})
	return id, nil
}

func (f *fakeMessenger) SendList(_ context.Context, chatID int64, buttons []Button) (int, error) {
	if buttons == nil {
		buttons = []Button{}
	}
	return f.send(chatID, Reply{}, buttons)
}

func (f *fakeMessenger) SendMessage(_ context.Context, chatID int64, reply Reply) (int, error) {
	return f.send(chatID, reply, nil)
}

func (f *fakeMessenger) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return f.deleteErr[messageID]
}

func (f *fakeMessenger) AnswerCallback(_ context.Context, _ string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, text)
	return nil
}

func (f *fakeMessenger) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.sent {
		if !s.IsList() {
			out = append(out, s.Reply.Text)
		}
	}
	return out
}

func (f *fakeMessenger) lists() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, s := range f.sent {
		if s.IsList() {
			out = append(out, s)
		}
	}
	return out
}

// fakeTasks is an in-memory task.TaskPort.
type fakeTasks struct {
	mu        sync.Mutex
	nextID    uint
	tasks     map[uint]*domain.Task
	emoji     string
	createErr error
	created   []string
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{nextID: 1, tasks: make(map[uint]*domain.Task), emoji: "🐸"}
}

func (f *fakeTasks) add(userID int64, description string) *domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &domain.Task{
		ID:          f.nextID,
		UserID:      userID,
		Description: description,
		Emoji:       f.emoji,
		Status:      domain.StatusPending,
	}
	f.tasks[t.ID] = t
	f.nextID++
	return t
}

func (f *fakeTasks) CreateTask(ctx context.Context, userID int64, _ string, description string) (*domain.Task, error) {
	desc, err := domain.ValidateDescription(description)
	if err != nil {
		return nil, err
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	count, _ := f.CountPending(ctx, userID)
	if count >= domain.MaxPendingTasks {
		return nil, domain.ErrLimitExceeded
	}
	f.created = append(f.created, desc)
	return f.add(userID, desc), nil
}

func (f *fakeTasks) ListPending(_ context.Context, userID int64) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Task
	for _, t := range f.tasks {
		if t.UserID == userID && t.Status == domain.StatusPending {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTasks) CountPending(ctx context.Context, userID int64) (int, error) {
	tasks, err := f.ListPending(ctx, userID)
	return len(tasks), err
}

func (f *fakeTasks) GetTask(_ context.Context, taskID uint) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[taskID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) SetStatus(_ context.Context, taskID uint, action domain.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[taskID]
	if !ok {
		return domain.ErrNotFound
	}
	switch action {
	case domain.ActionComplete:
		t.Status = domain.StatusCompleted
	case domain.ActionDelete:
		delete(f.tasks, taskID)
	}
	return nil
}

// failingPointers fails every store call.
type failingPointers struct{}

var errStoreDown = errors.New("store down")

func (failingPointers) FindByID(context.Context, int64) (*user.User, error) {
	return nil, errStoreDown
}

func (failingPointers) SetListMessageID(context.Context, int64, int) (bool, error) {
	return false, errStoreDown
}

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

	if err := user.NewRepository(db).Migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func storedPointer(t *testing.T, repo *user.Repository, userID int64) *int {
	t.Helper()
	u, err := repo.FindByID(context.Background(), userID)
	if errors.Is(err, user.ErrNotFound) {
		return nil
	}
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	return u.ListMessageID
}
