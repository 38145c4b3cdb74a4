package bot

import (
	"context"
	"testing"
	"time"

	"github.com/example/todofrog/config"
	"github.com/example/todofrog/domain/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModule(t *testing.T, messenger *fakeMessenger, tasks *fakeTasks) *BotModule {
	t.Helper()
	m := NewModule(Options{Workers: 2}, setupTestDB(t), conversation.NewMemoryStore(), DefaultMessages(), &mockLogger{}).
		WithMessenger(messenger)
	m.taskPort = tasks
	return m
}

func TestBotModule_RequiresTaskPort(t *testing.T) {
	m := NewModule(Options{}, setupTestDB(t), conversation.NewMemoryStore(), DefaultMessages(), &mockLogger{})
	assert.Error(t, m.Start(context.Background()))
	assert.Equal(t, []string{"task"}, m.Dependencies())
	assert.Equal(t, "bot", m.Name())
}

func TestBotModule_WebhookUpdateFlow(t *testing.T) {
	ctx := context.Background()
	messenger := newFakeMessenger(11)
	tasks := newFakeTasks()
	tasks.add(100, "Buy milk")

	m := newTestModule(t, messenger, tasks)
	require.NoError(t, m.Start(ctx))
	assert.True(t, m.Health(ctx).Healthy)

	err := m.HandleWebhook(ctx, []byte(`{
		"update_id": 1,
		"message": {
			"message_id": 10,
			"from": {"id": 100, "is_bot": false, "first_name": "F"},
			"chat": {"id": 500, "type": "private"},
			"date": 0,
			"text": "/list_tasks"
		}
	}`))
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return len(messenger.lists()) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, m.HandleWebhook(ctx, []byte(`{"update_id": 2}`)))
	assert.Error(t, m.HandleWebhook(ctx, []byte(`{`)))

	require.NoError(t, m.Stop(ctx))
	assert.False(t, m.Health(ctx).Healthy)
	assert.ErrorIs(t, m.Submit(ctx, Event{UserID: 100}), ErrPoolStopped)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		BotToken:      "token",
		DevMode:       true,
		WebhookURL:    "https://example.com/webhook",
		WebhookSecret: "s3cret",
		TaskListImage: "assets/tasks_list.jpg",
		Workers:       5,
	}

	opts := OptionsFromConfig(cfg)
	assert.False(t, opts.Webhook)
	assert.Equal(t, "token", opts.Token)
	assert.Equal(t, 5, opts.Workers)

	cfg.DevMode = false
	assert.True(t, OptionsFromConfig(cfg).Webhook)
}
