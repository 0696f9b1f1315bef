package generation

import (
	"context"
	"errors"
	"fmt"

	"agriassist/config"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	adviceTemperature = 0.7
	adviceMaxTokens   = 600
)

// OpenRouterProvider talks to OpenRouter's OpenAI-compatible chat completions endpoint.
type OpenRouterProvider struct {
	apiKey string
	model  string
	opts   []option.RequestOption
}

func NewOpenRouterProvider(apiKey, model, baseURL string) *OpenRouterProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// Failures fall back immediately instead of being retried inside the time budget.
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenRouterProvider{apiKey: apiKey, model: model, opts: opts}
}

// NewOpenRouterFromConfig builds the provider from config.AppConfig.
func NewOpenRouterFromConfig() *OpenRouterProvider {
	return NewOpenRouterProvider(
		config.AppConfig.OpenRouterAPIKey,
		config.AppConfig.OpenRouterModel,
		config.AppConfig.OpenRouterBaseURL,
	)
}

func (p *OpenRouterProvider) Name() string { return config.ProviderOpenRouter }

func (p *OpenRouterProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if p.apiKey == "" {
		return "", ErrMissingCredential
	}

	client := openai.NewClient(p.opts...)
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		Temperature: openai.Float(adviceTemperature),
		MaxTokens:   openai.Int(adviceMaxTokens),
	})
	if err != nil {
		return "", describeOpenAIError(err)
	}

	text, _, err := ExtractAdvice([]byte(resp.RawJSON()))
	if err != nil {
		return "", err
	}
	return text, nil
}

// describeOpenAIError keeps the upstream error body, which carries the provider's own reason.
func describeOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if body := apiErr.RawJSON(); body != "" {
			return fmt.Errorf("openrouter status %d: %s", apiErr.StatusCode, body)
		}
		return fmt.Errorf("openrouter status %d: %w", apiErr.StatusCode, err)
	}
	return fmt.Errorf("openrouter request: %w", err)
}
