package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/example/todofrog/config"
	"github.com/example/todofrog/domain/conversation"
	"github.com/example/todofrog/domain/user"
	"github.com/example/todofrog/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"
)

const pollTimeoutSeconds = 30

// Options configures the bot module.
type Options struct {
	Token         string
	Webhook       bool
	WebhookURL    string
	WebhookSecret string
	ListImage     string
	Workers       int
}

// OptionsFromConfig extracts the bot settings from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Token:         cfg.BotToken,
		Webhook:       cfg.WebhookEnabled(),
		WebhookURL:    cfg.WebhookURL,
		WebhookSecret: cfg.WebhookSecret,
		ListImage:     cfg.TaskListImage,
		Workers:       cfg.Workers,
	}
}

// BotModule connects Telegram to the task dialogue and the list tracker.
type BotModule struct {
	opts       Options
	users      *user.Repository
	states     conversation.Store
	messages   *Messages
	taskPort   task.TaskPort
	api        *tgbotapi.BotAPI
	messenger  Messenger
	dispatcher *Dispatcher
	pool       *Pool
	stopPoll   context.CancelFunc
	pollDone   sync.WaitGroup
	logger     types.Logger
}

var _ mono.Module = (*BotModule)(nil)
var _ mono.DependentModule = (*BotModule)(nil)
var _ mono.HealthCheckableModule = (*BotModule)(nil)

// NewModule creates the bot module. Pointers are stored in db and dialogue
// state in states.
func NewModule(opts Options, db *gorm.DB, states conversation.Store, messages *Messages, logger types.Logger) *BotModule {
	return &BotModule{
		opts:     opts,
		users:    user.NewRepository(db),
		states:   states,
		messages: messages,
		logger:   logger.WithModule("bot"),
	}
}

// WithMessenger replaces the Telegram client, e.g. with a recorder.
func (m *BotModule) WithMessenger(messenger Messenger) *BotModule {
	m.messenger = messenger
	return m
}

func (m *BotModule) Name() string {
	return "bot"
}

func (m *BotModule) Dependencies() []string {
	return []string{"task"}
}

func (m *BotModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "task" {
		m.taskPort = task.NewTaskAdapter(container)
	}
}

// Start migrates the pointer table, connects to Telegram and begins
// receiving updates.
func (m *BotModule) Start(ctx context.Context) error {
	if m.taskPort == nil {
		return fmt.Errorf("taskPort dependency not set")
	}
	if err := m.users.Migrate(); err != nil {
		return err
	}

	if m.messenger == nil {
		api, err := tgbotapi.NewBotAPI(m.opts.Token)
		if err != nil {
			return fmt.Errorf("failed to connect to Telegram: %w", err)
		}
		messenger, err := NewTelegramMessenger(api, m.opts.ListImage, m.messages.ListCaption.Text)
		if err != nil {
			return err
		}
		m.api = api
		m.messenger = messenger
		m.logger.Info("Authorized on Telegram", "account", api.Self.UserName)
	}

	tracker := NewTracker(m.taskPort, m.users, m.messenger, m.messages, m.logger.WithModule("tracker"))
	flow := NewFlow(m.taskPort, tracker, m.states, m.messenger, m.messages, m.logger.WithModule("flow"))
	m.dispatcher = NewDispatcher(flow, tracker, m.taskPort, m.messenger, m.messages, m.logger)

	poolCfg := DefaultPoolConfig()
	if m.opts.Workers > 0 {
		poolCfg.NumWorkers = m.opts.Workers
	}
	m.pool = NewPool(poolCfg, m.dispatcher.Handle, m.logger.WithModule("pool"))
	if err := m.pool.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	if m.api == nil {
		m.logger.Info("Module started without Telegram client")
		return nil
	}

	if m.opts.Webhook {
		if err := RegisterWebhook(m.api, m.opts.WebhookURL, m.opts.WebhookSecret); err != nil {
			return err
		}
		m.logger.Info("Module started", "mode", "webhook", "url", m.opts.WebhookURL)
		return nil
	}

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.stopPoll = cancel
	poller := NewPoller(m.api, pollTimeoutSeconds)
	m.pollDone.Add(1)
	go func() {
		defer m.pollDone.Done()
		if err := poller.Run(pollCtx, m.submitUpdate); err != nil {
			m.logger.WithError(err).Error("Long polling stopped")
		}
	}()
	m.logger.Info("Module started", "mode", "polling")
	return nil
}

// Stop stops receiving updates and drains the worker pool.
func (m *BotModule) Stop(ctx context.Context) error {
	if m.stopPoll != nil {
		m.stopPoll()
		m.pollDone.Wait()
	}

	var errs []error
	if m.pool != nil {
		if err := m.pool.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop worker pool: %w", err))
		}
	}
	if closer, ok := m.states.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close state store: %w", err))
		}
	}

	m.logger.Info("Module stopped")
	return errors.Join(errs...)
}

// HandleWebhook accepts a raw update delivered to the webhook endpoint.
func (m *BotModule) HandleWebhook(ctx context.Context, body []byte) error {
	update, err := ParseUpdate(body)
	if err != nil {
		return err
	}
	ev, ok := EventFromUpdate(update)
	if !ok {
		m.logger.Debug("Ignoring unsupported update", "update_id", update.UpdateID)
		return nil
	}
	return m.Submit(ctx, ev)
}

// Submit queues ev for processing.
func (m *BotModule) Submit(ctx context.Context, ev Event) error {
	if m.pool == nil {
		return ErrPoolStopped
	}
	return m.pool.Submit(ctx, ev)
}

func (m *BotModule) submitUpdate(ctx context.Context, update tgbotapi.Update) {
	ev, ok := EventFromUpdate(update)
	if !ok {
		return
	}
	if err := m.Submit(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
		m.logger.WithError(err).Warn("Dropped update", "update_id", update.UpdateID, "trace_id", ev.TraceID)
	}
}

func (m *BotModule) Health(ctx context.Context) mono.HealthStatus {
	if m.pool == nil || !m.pool.IsRunning() {
		return mono.HealthStatus{
			Healthy: false,
			Message: "worker pool not running",
		}
	}

	details := map[string]any{
		"workers": m.pool.config.NumWorkers,
		"mode":    "polling",
	}
	if m.opts.Webhook {
		details["mode"] = "webhook"
	}

	if pinger, ok := m.states.(interface{ Ping(context.Context) error }); ok {
		if err := pinger.Ping(ctx); err != nil {
			return mono.HealthStatus{
				Healthy: false,
				Message: fmt.Sprintf("state store ping failed: %v", err),
				Details: details,
			}
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: details,
	}
}
