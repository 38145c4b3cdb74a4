package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/example/todofrog/config"
	domain "github.com/example/todofrog/domain/task"
	"github.com/example/todofrog/modules/emoji"
	"github.com/go-monolith/mono"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGenerator returns a fixed emoji and fails for descriptions
// mentioning "quota".
type scriptedGenerator struct{}

func (scriptedGenerator) Complete(_ context.Context, _, input string) (string, error) {
	if strings.Contains(input, "quota") {
		return "", errors.New("quota exceeded")
	}
	return "🥛", nil
}

func (scriptedGenerator) Name() string { return "scripted" }

// callerModule depends on the task module the way the bot does.
type callerModule struct {
	tasks TaskPort
}

var _ mono.DependentModule = (*callerModule)(nil)

func (c *callerModule) Name() string                  { return "caller" }
func (c *callerModule) Dependencies() []string        { return []string{"task"} }
func (c *callerModule) Start(_ context.Context) error { return nil }
func (c *callerModule) Stop(_ context.Context) error  { return nil }

func (c *callerModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "task" {
		c.tasks = NewTaskAdapter(container)
	}
}

// startTestApp runs the emoji and task modules in a mono application and
// returns the task port as seen by a dependent module.
func startTestApp(t *testing.T) TaskPort {
	t.Helper()

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError), // Suppress logs in tests
		mono.WithNATSDontListen(),
		mono.WithNATSInProcessConn(),
	)
	require.NoError(t, err)

	caller := &callerModule{}
	require.NoError(t, app.Register(emoji.NewModuleWithGenerator(config.LLMConfig{}, scriptedGenerator{}, &mockLogger{})))
	require.NoError(t, app.Register(NewModule(setupTestDB(t), "sqlite", &mockLogger{})))
	require.NoError(t, app.Register(caller))

	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() {
		_ = app.Stop(context.Background())
	})

	require.NotNil(t, caller.tasks)
	return caller.tasks
}

func TestTaskAdapter_ThroughApplication(t *testing.T) {
	tasks := startTestApp(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := tasks.CreateTask(ctx, 7, "frog", "Buy milk")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Buy milk", created.Description)
	assert.Equal(t, "🥛", created.Emoji)
	assert.Equal(t, domain.StatusPending, created.Status)

	got, err := tasks.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, int64(7), got.UserID)
	assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Second)

	pending, err := tasks.ListPending(ctx, 7)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, created.ID, pending[0].ID)

	require.NoError(t, tasks.SetStatus(ctx, created.ID, domain.ActionDelete))

	_, err = tasks.GetTask(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = tasks.CreateTask(ctx, 7, "frog", "")
	assert.ErrorIs(t, err, domain.ErrInvalidDescription)
}

func TestTaskAdapter_LimitThroughApplication(t *testing.T) {
	tasks := startTestApp(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for i := 0; i < domain.MaxPendingTasks; i++ {
		_, err := tasks.CreateTask(ctx, 8, "frog", fmt.Sprintf("Task %d", i))
		require.NoError(t, err)
	}

	count, err := tasks.CountPending(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxPendingTasks, count)

	_, err = tasks.CreateTask(ctx, 8, "frog", "One too many")
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)
}

func TestTaskAdapter_GenerationFailureReturnsPromptly(t *testing.T) {
	tasks := startTestApp(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	start := time.Now()
	_, err := tasks.CreateTask(ctx, 9, "frog", "Check quota")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, 1, strings.Count(err.Error(), domain.ErrGenerationFailed.Error()))
	assert.Less(t, elapsed, 5*time.Second)

	count, err := tasks.CountPending(ctx, 9)
	require.NoError(t, err)
	assert.Zero(t, count)
}
