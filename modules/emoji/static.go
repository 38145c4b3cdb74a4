package emoji

import "context"

const defaultStaticEmoji = "🐸"

// StaticGenerator answers every prompt with the same emoji. Used in
// development and when no model is configured.
type StaticGenerator struct {
	emoji string
}

// NewStaticGenerator creates a generator returning emoji.
func NewStaticGenerator(emoji string) *StaticGenerator {
	if emoji == "" {
		emoji = defaultStaticEmoji
	}
	return &StaticGenerator{emoji: emoji}
}

func (g *StaticGenerator) Complete(_ context.Context, _, _ string) (string, error) {
	return g.emoji, nil
}

func (g *StaticGenerator) Name() string {
	return "static"
}
