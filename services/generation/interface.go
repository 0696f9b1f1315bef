package generation

import (
	"context"
	"errors"

	"agriassist/models"
)

var (
	// ErrMissingCredential is returned by a remote provider that has no API key configured.
	ErrMissingCredential = errors.New("provider API key not configured")
	// ErrEmptyResponse is returned when a provider answers without any usable payload.
	ErrEmptyResponse = errors.New("provider returned an empty response")
)

// Prompt is one chat turn pair sent to a remote provider.
type Prompt struct {
	System string
	User   string
}

// Provider is a remote chat-completion backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// AdviceService is what the HTTP layer depends on. Generate never fails: provider errors
// surface as a local fallback result.
type AdviceService interface {
	Generate(ctx context.Context, req models.AdviceRequest) models.AdviceResult
	ProviderName() string
}
