package emoji

import (
	"context"
	"errors"
	"testing"

	"github.com/example/todofrog/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{name: "plain emoji", raw: "🥛", want: "🥛"},
		{name: "surrounding whitespace", raw: "  🥛 \n", want: "🥛"},
		{name: "first token only", raw: "🥛 milk is good", want: "🥛"},
		{name: "capped length", raw: "abcdefghijkl", want: "abcdefgh"},
		{name: "blank", raw: " \n\t", wantErr: ErrEmptyResponse},
		{name: "empty", raw: "", wantErr: ErrEmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewGenerator(t *testing.T) {
	ctx := context.Background()

	t.Run("static by default", func(t *testing.T) {
		gen, err := NewGenerator(ctx, config.LLMConfig{})
		require.NoError(t, err)
		assert.Equal(t, "static", gen.Name())
	})

	t.Run("openai", func(t *testing.T) {
		gen, err := NewGenerator(ctx, config.LLMConfig{Provider: config.ProviderOpenAI, APIKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, "openai:gpt-4o-mini", gen.Name())
	})

	t.Run("gemini requires key", func(t *testing.T) {
		_, err := NewGenerator(ctx, config.LLMConfig{Provider: config.ProviderGemini})
		assert.Error(t, err)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewGenerator(ctx, config.LLMConfig{Provider: "llama"})
		assert.Error(t, err)
	})
}

func TestStaticGenerator(t *testing.T) {
	got, err := NewStaticGenerator("").Complete(context.Background(), Prompt, "anything")
	require.NoError(t, err)
	assert.Equal(t, "🐸", got)

	got, err = NewStaticGenerator("✅").Complete(context.Background(), Prompt, "anything")
	require.NoError(t, err)
	assert.Equal(t, "✅", got)
}

type fakeGenerator struct {
	reply  string
	err    error
	inputs []string
}

func (g *fakeGenerator) Complete(ctx context.Context, _, input string) (string, error) {
	g.inputs = append(g.inputs, input)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return g.reply, g.err
}

func (g *fakeGenerator) Name() string { return "fake" }

func TestService_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes output", func(t *testing.T) {
		gen := &fakeGenerator{reply: " 🥛\n"}
		got, err := NewService(gen, 0).Generate(ctx, "Buy milk")
		require.NoError(t, err)
		assert.Equal(t, "🥛", got)
		assert.Equal(t, []string{"Buy milk"}, gen.inputs)
	})

	t.Run("backend error is wrapped", func(t *testing.T) {
		cause := errors.New("quota exceeded")
		_, err := NewService(&fakeGenerator{err: cause}, 0).Generate(ctx, "Buy milk")
		assert.ErrorIs(t, err, cause)
	})

	t.Run("empty reply", func(t *testing.T) {
		_, err := NewService(&fakeGenerator{reply: ""}, 0).Generate(ctx, "Buy milk")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}
