package emoji

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// emojiAdapter wraps ServiceContainer for type-safe cross-module communication.
type emojiAdapter struct {
	container mono.ServiceContainer
}

// NewEmojiAdapter creates a new adapter for the emoji module's services.
func NewEmojiAdapter(container mono.ServiceContainer) EmojiPort {
	if container == nil {
		panic("emoji adapter requires non-nil ServiceContainer")
	}
	return &emojiAdapter{container: container}
}

// Generate calls the generate service.
func (a *emojiAdapter) Generate(ctx context.Context, description string) (string, error) {
	req := GenerateRequest{Description: description}
	var resp GenerateResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"generate",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return "", fmt.Errorf("generate service call failed: %w", err)
	}
	if resp.Error != "" {
		return "", errors.New(resp.Error)
	}
	return resp.Emoji, nil
}
