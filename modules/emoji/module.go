package emoji

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/todofrog/config"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

var errNotStarted = errors.New("emoji module not started")

// EmojiModule exposes emoji generation as a request-reply service.
type EmojiModule struct {
	cfg    config.LLMConfig
	gen    Generator
	svc    *Service
	logger types.Logger
}

var _ mono.Module = (*EmojiModule)(nil)
var _ mono.ServiceProviderModule = (*EmojiModule)(nil)
var _ mono.HealthCheckableModule = (*EmojiModule)(nil)

// NewModule creates the module; the generator is built from cfg on Start.
func NewModule(cfg config.LLMConfig, logger types.Logger) *EmojiModule {
	return &EmojiModule{cfg: cfg, logger: logger.WithModule("emoji")}
}

// NewModuleWithGenerator creates the module around an existing generator.
func NewModuleWithGenerator(cfg config.LLMConfig, gen Generator, logger types.Logger) *EmojiModule {
	m := NewModule(cfg, logger)
	m.gen = gen
	return m
}

func (m *EmojiModule) Name() string {
	return "emoji"
}

func (m *EmojiModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "generate", json.Unmarshal, json.Marshal, m.generate,
	); err != nil {
		return fmt.Errorf("failed to register generate service: %w", err)
	}

	m.logger.Info("Registered services", "services", "generate")
	return nil
}

func (m *EmojiModule) generate(ctx context.Context, req GenerateRequest, _ *mono.Msg) (GenerateResponse, error) {
	if m.svc == nil {
		return GenerateResponse{Error: errNotStarted.Error()}, nil
	}
	emoji, err := m.svc.Generate(ctx, req.Description)
	if err != nil {
		m.logger.WithError(err).Warn("Emoji generation failed", "provider", m.svc.Provider())
		return GenerateResponse{Error: err.Error()}, nil
	}
	return GenerateResponse{Emoji: emoji}, nil
}

func (m *EmojiModule) Start(ctx context.Context) error {
	if m.gen == nil {
		gen, err := NewGenerator(ctx, m.cfg)
		if err != nil {
			return fmt.Errorf("failed to create emoji generator: %w", err)
		}
		m.gen = gen
	}
	m.svc = NewService(m.gen, m.cfg.Timeout)
	m.logger.Info("Module started", "provider", m.gen.Name(), "timeout", m.cfg.Timeout)
	return nil
}

func (m *EmojiModule) Stop(_ context.Context) error {
	m.logger.Info("Module stopped")
	return nil
}

func (m *EmojiModule) Health(_ context.Context) mono.HealthStatus {
	if m.svc == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "generator not initialized",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"provider": m.svc.Provider(),
		},
	}
}
