package generation

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"agriassist/config"
	"agriassist/models"

	"go.uber.org/zap"
)

const defaultTimeout = 60 * time.Second

// Service implements AdviceService. With a nil provider it runs local-only.
type Service struct {
	provider Provider
	local    *LocalGenerator
	timeout  time.Duration
	logger   *zap.Logger
}

type Option func(*Service)

// WithTimeout bounds each remote call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock injects the clock used for the local generator's timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.local = NewLocalGenerator(now) }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(provider Provider, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		local:    NewLocalGenerator(nil),
		timeout:  defaultTimeout,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewServiceFromConfig selects the provider named by GENERATOR_PROVIDER. Unrecognized names
// run local-only.
func NewServiceFromConfig(ctx context.Context, logger *zap.Logger) (*Service, error) {
	var provider Provider
	switch config.AppConfig.GeneratorProvider {
	case config.ProviderOpenRouter:
		provider = NewOpenRouterFromConfig()
	case config.ProviderGemini:
		gemini, err := NewGeminiProvider(ctx, config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
		if err != nil {
			return nil, err
		}
		provider = gemini
	default:
		logger.Info("Advice generation running local-only",
			zap.String("provider", config.AppConfig.GeneratorProvider))
	}
	return NewService(provider, WithTimeout(config.AppConfig.GenerateTimeout), WithLogger(logger)), nil
}

// Close releases provider resources, if the provider holds any.
func (s *Service) Close() error {
	if closer, ok := s.provider.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (s *Service) ProviderName() string {
	if s.provider == nil {
		return config.ProviderLocal
	}
	return s.provider.Name()
}

// Generate returns provider advice when possible and local advice otherwise.
func (s *Service) Generate(ctx context.Context, req models.AdviceRequest) models.AdviceResult {
	if s.provider == nil {
		return models.AdviceResult{
			Text:     s.local.Generate(req),
			Source:   models.SourceLocalFallback,
			Provider: config.ProviderLocal,
		}
	}

	start := time.Now()
	text, err := s.complete(ctx, BuildPrompt(req))
	if err != nil {
		s.logger.Warn("Advice provider failed, using local fallback",
			zap.String("provider", s.provider.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return models.AdviceResult{
			Text:          s.local.Generate(req),
			Source:        models.SourceLocalFallback,
			Provider:      config.ProviderLocal,
			ProviderError: err.Error(),
		}
	}

	s.logger.Info("Advice provider succeeded",
		zap.String("provider", s.provider.Name()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return models.AdviceResult{
		Text:     text,
		Source:   models.SourceProvider,
		Provider: s.provider.Name(),
	}
}

func (s *Service) complete(ctx context.Context, prompt Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("provider panic: %v", r)}
			}
		}()
		t, e := s.provider.Complete(ctx, prompt)
		done <- outcome{text: t, err: e}
	}()

	// A provider that ignores ctx must still not hold the caller past the deadline.
	select {
	case res := <-done:
		if res.err == nil && strings.TrimSpace(res.text) == "" {
			return "", ErrEmptyResponse
		}
		return res.text, res.err
	case <-ctx.Done():
		return "", fmt.Errorf("provider timed out after %s: %w", s.timeout, ctx.Err())
	}
}
