package main

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/example/todofrog/config"
	"github.com/example/todofrog/database"
	"github.com/example/todofrog/domain/conversation"
	"github.com/example/todofrog/logging"
	"github.com/example/todofrog/modules/activity"
	"github.com/example/todofrog/modules/bot"
	"github.com/example/todofrog/modules/emoji"
	"github.com/example/todofrog/modules/httpserver"
	"github.com/example/todofrog/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func serveCmd(envFile *string) *cobra.Command {
	var messagesFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *envFile, messagesFile)
		},
	}
	cmd.Flags().StringVar(&messagesFile, "messages", "", "YAML file overriding bot texts")

	return cmd
}

func runServe(ctx context.Context, envFile, messagesFile string) error {
	log.Println("=== TodoFrog ===")

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	messages := bot.DefaultMessages()
	if messagesFile != "" {
		if messages, err = bot.LoadMessages(messagesFile); err != nil {
			return err
		}
	}

	db, err := database.Open(cfg.DBURL, cfg.DBDebug)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.WithError(err).Warn("Failed to close database")
		}
	}()

	states, err := newStateStore(ctx, cfg)
	if err != nil {
		return err
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	activityModule := activity.NewModule(logger)
	emojiModule := emoji.NewModule(cfg.LLM, logger)
	taskModule := task.NewModule(db, database.Driver(cfg.DBURL), logger)
	botModule := bot.NewModule(bot.OptionsFromConfig(cfg), db, states, messages, logger)
	httpModule := httpserver.NewModule(
		":"+strconv.Itoa(cfg.HTTPPort),
		cfg.WebhookSecret,
		botModule,
		[]httpserver.HealthSource{emojiModule, taskModule, activityModule, botModule},
		logger,
	)

	// Order: independent modules first, then modules with dependencies
	// - activity: event consumer (task events)
	// - emoji: text-generation collaborator
	// - task: task store and service, depends on emoji
	// - bot: Telegram dialogue and list tracker, depends on task
	// - http-server: webhook and health endpoints
	app.Register(activityModule)
	app.Register(emojiModule)
	app.Register(taskModule)
	app.Register(botModule)
	app.Register(httpModule)

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	mode := "polling"
	if cfg.WebhookEnabled() {
		mode = "webhook"
	}
	logger.Info("Application started",
		"mode", mode,
		"db", database.Driver(cfg.DBURL),
		"llm", cfg.LLM.Provider,
		"http_port", cfg.HTTPPort,
		"workers", cfg.Workers,
	)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				logger.Info("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	logger.Info("Application exited", "code", exitCode)
	return exitError(exitCode)
}

// exitError turns a non-zero shutdown code into an error so deferred
// cleanup runs before main exits.
func exitError(code int) error {
	if code == 0 {
		return nil
	}
	return fmt.Errorf("application exited with code %d", code)
}

// newStateStore keeps dialogue state in Redis when configured, in memory
// otherwise.
func newStateStore(ctx context.Context, cfg *config.Config) (conversation.Store, error) {
	if cfg.RedisAddr == "" {
		return conversation.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	store := conversation.NewRedisStore(client, conversation.DefaultKeyPrefix, cfg.ConversationTTL)
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return store, nil
}
