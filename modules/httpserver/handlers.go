package httpserver

import (
	"crypto/subtle"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// SecretHeader carries the webhook secret set at registration.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// Handlers contains the HTTP request handlers.
type Handlers struct {
	sink    UpdateSink
	secret  string
	sources []HealthSource
	logger  types.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(sink UpdateSink, secret string, sources []HealthSource, logger types.Logger) *Handlers {
	return &Handlers{
		sink:    sink,
		secret:  secret,
		sources: sources,
		logger:  logger,
	}
}

// Health reports every module's health (GET /health).
func (h *Handlers) Health(c *fiber.Ctx) error {
	healthy := true
	modules := make(fiber.Map, len(h.sources))
	for _, src := range h.sources {
		status := src.Health(c.UserContext())
		if !status.Healthy {
			healthy = false
		}
		modules[src.Name()] = fiber.Map{
			"healthy": status.Healthy,
			"message": status.Message,
			"details": status.Details,
		}
	}

	code := fiber.StatusOK
	if !healthy {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"healthy": healthy,
		"modules": modules,
	})
}

// Webhook receives Telegram updates (POST /webhook).
func (h *Handlers) Webhook(c *fiber.Ctx) error {
	if h.secret != "" {
		got := c.Get(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			h.logger.Warn("Rejected webhook call with invalid secret", "ip", c.IP())
			return fiber.NewError(fiber.StatusUnauthorized, "invalid secret token")
		}
	}

	// Fiber reuses the body buffer once the handler returns.
	body := append([]byte(nil), c.Body()...)
	if err := h.sink.HandleWebhook(c.UserContext(), body); err != nil {
		h.logger.WithError(err).Warn("Failed to accept update")
		return fiber.NewError(fiber.StatusBadRequest, "invalid update")
	}
	return c.SendStatus(fiber.StatusOK)
}
