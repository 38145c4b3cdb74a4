package emoji

import (
	"context"
	"fmt"
	"time"
)

// Service turns task descriptions into emoji using a Generator.
type Service struct {
	gen     Generator
	timeout time.Duration
}

var _ EmojiPort = (*Service)(nil)

// NewService creates a service. A zero timeout leaves the caller's deadline
// in charge.
func NewService(gen Generator, timeout time.Duration) *Service {
	return &Service{gen: gen, timeout: timeout}
}

// Generate asks the model for an emoji matching description.
func (s *Service) Generate(ctx context.Context, description string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.gen.Complete(ctx, Prompt, description)
	if err != nil {
		return "", fmt.Errorf("emoji generation via %s failed: %w", s.gen.Name(), err)
	}

	emoji, err := Normalize(raw)
	if err != nil {
		return "", fmt.Errorf("emoji generation via %s failed: %w", s.gen.Name(), err)
	}
	return emoji, nil
}

// Provider names the backing generator.
func (s *Service) Provider() string {
	return s.gen.Name()
}
