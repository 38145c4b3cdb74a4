// Package emoji derives a single emoji for a task description from a
// text-generation model.
package emoji

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/todofrog/config"
)

// Prompt instructs the model to answer with exactly one emoji.
const Prompt = `You pick an emoji for a to-do item.
Read the task description and answer with the single emoji that fits its meaning best.
If several fit, choose one.
Answer with the emoji only, nothing else.
If nothing fits, answer with any neutral emoji.`

const maxEmojiRunes = 8

// ErrEmptyResponse is returned when the model answers with blank text.
var ErrEmptyResponse = errors.New("empty completion")

// Generator is a text-generation backend.
type Generator interface {
	Complete(ctx context.Context, prompt, input string) (string, error)
	Name() string
}

// NewGenerator builds the generator selected by cfg.Provider.
func NewGenerator(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model, cfg.Temperature)
	case config.ProviderOpenAI:
		return NewOpenAIGenerator(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Temperature), nil
	case config.ProviderStatic, "":
		return NewStaticGenerator(cfg.StaticEmoji), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// Normalize keeps the first whitespace-separated token of a completion,
// capped at the width of the emoji column.
func Normalize(raw string) (string, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", ErrEmptyResponse
	}
	runes := []rune(fields[0])
	if len(runes) > maxEmojiRunes {
		runes = runes[:maxEmojiRunes]
	}
	return string(runes), nil
}
