package generation

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

const claudeMaxTokens = 4096

// ProviderKeys holds the per-provider API credentials. An empty key
// disables that provider's candidates; the client falls through to the
// next candidate in order.
type ProviderKeys struct {
	Gemini    string
	OpenAI    string
	Anthropic string
}

// Configured reports whether at least one provider credential is set
func (k ProviderKeys) Configured() bool {
	return k.Gemini != "" || k.OpenAI != "" || k.Anthropic != ""
}

// NewModelFactory returns a ModelFactory building real provider-backed
// chat models for each candidate.
func NewModelFactory(keys ProviderKeys) ModelFactory {
	return func(ctx context.Context, candidate Candidate) (model.BaseChatModel, error) {
		switch candidate.Provider {
		case ProviderGemini:
			if keys.Gemini == "" {
				return nil, fmt.Errorf("gemini API key is not configured")
			}
			client, err := genai.NewClient(ctx, &genai.ClientConfig{
				APIKey:  keys.Gemini,
				Backend: genai.BackendGeminiAPI,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create gemini client: %w", err)
			}
			return gemini.NewChatModel(ctx, &gemini.Config{
				Client: client,
				Model:  candidate.Model,
			})

		case ProviderOpenAI:
			if keys.OpenAI == "" {
				return nil, fmt.Errorf("openai API key is not configured")
			}
			return openai.NewChatModel(ctx, &openai.ChatModelConfig{
				APIKey: keys.OpenAI,
				Model:  candidate.Model,
			})

		case ProviderAnthropic:
			if keys.Anthropic == "" {
				return nil, fmt.Errorf("anthropic API key is not configured")
			}
			return claude.NewChatModel(ctx, &claude.Config{
				APIKey:    keys.Anthropic,
				Model:     candidate.Model,
				MaxTokens: claudeMaxTokens,
			})

		default:
			return nil, fmt.Errorf("unsupported provider: %s", candidate.Provider)
		}
	}
}
