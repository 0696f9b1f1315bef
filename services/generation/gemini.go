package generation

import (
	"context"
	"fmt"
	"strings"

	"agriassist/config"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider generates advice with Google's Generative AI API.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider returns a provider whose Complete always fails with ErrMissingCredential
// when apiKey is empty, so the service still degrades to local advice.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return &GeminiProvider{}, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(adviceTemperature)
	model.SetMaxOutputTokens(adviceMaxTokens)
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Name() string { return config.ProviderGemini }

func (p *GeminiProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if p.model == nil {
		return "", ErrMissingCredential
	}

	// GenerativeModel is shared between requests, so the persona travels in a per-call copy.
	model := *p.model
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt.System)}}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt.User))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

// Close releases the underlying client.
func (p *GeminiProvider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}
