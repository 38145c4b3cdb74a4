// Package httpserver serves the Telegram webhook and the health endpoint.
package httpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// UpdateSink accepts raw webhook payloads.
type UpdateSink interface {
	HandleWebhook(ctx context.Context, body []byte) error
}

// HealthSource is a module whose health is reported on /health.
type HealthSource interface {
	Name() string
	Health(ctx context.Context) mono.HealthStatus
}

// Module implements the HTTP server module using Fiber framework.
type Module struct {
	app      *fiber.App
	handlers *Handlers
	addr     string
	logger   types.Logger
}

var _ mono.Module = (*Module)(nil)

// NewModule creates a new HTTP server module. A non-empty secret must be
// echoed by Telegram in the webhook secret header.
func NewModule(addr, secret string, sink UpdateSink, sources []HealthSource, logger types.Logger) *Module {
	moduleLogger := logger.WithModule("http-server")
	return &Module{
		addr:     addr,
		handlers: NewHandlers(sink, secret, sources, moduleLogger),
		logger:   moduleLogger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "http-server"
}

// App builds the Fiber application with all routes.
func (m *Module) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "TodoFrog",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
	})
	app.Use(recover.New())

	app.Get("/health", m.handlers.Health)
	app.Post("/webhook", m.handlers.Webhook)
	return app
}

// Start starts the HTTP server.
func (m *Module) Start(_ context.Context) error {
	m.app = m.App()

	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.addr); err != nil {
			errCh <- err
		}
	}()

	// Wait briefly to catch immediate startup errors (port in use, permission denied)
	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("HTTP server started", "addr", m.addr)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (m *Module) Stop(ctx context.Context) error {
	if m.app != nil {
		if err := m.app.ShutdownWithContext(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}
	m.logger.Info("HTTP server stopped")
	return nil
}

func (m *Module) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	m.logger.Error("HTTP error", "code", code, "message", message, "error", err)

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
