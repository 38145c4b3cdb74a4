package emoji

import "context"

// GenerateRequest is the request for generating a task emoji.
type GenerateRequest struct {
	Description string `json:"description"`
}

// GenerateResponse is the response carrying the generated emoji, or the
// reason generation failed.
type GenerateResponse struct {
	Emoji string `json:"emoji,omitempty"`
	Error string `json:"error,omitempty"`
}

// EmojiPort defines the interface other modules use to obtain an emoji for
// a task description.
type EmojiPort interface {
	Generate(ctx context.Context, description string) (string, error)
}
