// Package advice sequences weather lookup and advice generation for one question.
package advice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"agriassist/locale"
	"agriassist/models"
	"agriassist/suggestions"

	"go.uber.org/zap"
)

const (
	minTranscriptLength = 2
	noSuggestion        = "No suggestion"
)

type WeatherFetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (*models.WeatherReport, error)
}

// AdviceGenerator returns an error only when the call itself fails; provider fallbacks come
// back as results.
type AdviceGenerator interface {
	Generate(ctx context.Context, req models.AdviceRequest) (models.AdviceResult, error)
}

// Notifier shows non-blocking warnings.
type Notifier interface {
	Warn(message string)
}

type NotifierFunc func(message string)

func (f NotifierFunc) Warn(message string) { f(message) }

// Outcome is the result of one successful Generate call.
type Outcome struct {
	Request     models.AdviceRequest
	Result      models.AdviceResult
	Weather     *models.WeatherReport
	Suggestions []string
	// Warning is the localized fallback notice, empty when the provider answered.
	Warning string
}

type Orchestrator struct {
	weather   WeatherFetcher
	generator AdviceGenerator
	notifier  Notifier
	logger    *zap.Logger

	mu          sync.Mutex
	lang        models.Language
	seq         uint64
	lastWeather *models.WeatherReport
	text        string
}

func NewOrchestrator(weather WeatherFetcher, generator AdviceGenerator, notifier Notifier, logger *zap.Logger) *Orchestrator {
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		weather:   weather,
		generator: generator,
		notifier:  notifier,
		logger:    logger,
		lang:      models.LanguageEnglish,
	}
}

func (o *Orchestrator) SetLanguage(lang models.Language) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lang = lang
}

func (o *Orchestrator) Language() models.Language {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lang
}

// Generate validates the inputs, fetches weather (tolerating failure) and asks for advice.
// It returns *RejectionError before any network call when the inputs are incomplete and
// *GenerationError when the generation call fails; in both cases displayed state is kept.
func (o *Orchestrator) Generate(ctx context.Context, transcript string, loc models.LocationSelection) (*Outcome, error) {
	lang := o.Language()

	text := strings.TrimSpace(transcript)
	if utf8.RuneCountInString(text) < minTranscriptLength {
		return nil, &RejectionError{Reason: ReasonSpeakFirst, Message: locale.Text(lang, locale.MsgSpeakFirst)}
	}
	if !loc.HasCoordinates {
		return nil, &RejectionError{Reason: ReasonSelectLocation, Message: locale.Text(lang, locale.MsgSelectLocation)}
	}

	o.mu.Lock()
	o.seq++
	seq := o.seq
	o.mu.Unlock()

	report, err := o.weather.Fetch(ctx, loc.Lat, loc.Lon)
	if err != nil {
		o.logger.Warn("Weather fetch failed, continuing without it",
			zap.Float64("lat", loc.Lat), zap.Float64("lon", loc.Lon), zap.Error(err))
		report = nil
	}

	req := models.AdviceRequest{
		TranscriptText: transcript,
		Location:       loc,
		WeatherSummary: report.Summary(),
		Language:       lang,
	}

	result, err := o.generator.Generate(ctx, req)
	if err != nil {
		detail := mostSpecificDetail(err)
		o.logger.Error("Advice generation failed", zap.String("detail", detail), zap.Error(err))
		return nil, &GenerationError{
			Detail:  detail,
			Message: locale.Localize(lang, locale.MsgGenerationFailed, map[string]any{"Detail": detail}),
			Err:     err,
		}
	}

	adviceText := result.Text
	if strings.TrimSpace(adviceText) == "" {
		adviceText = noSuggestion
	}
	out := &Outcome{
		Request:     req,
		Result:      result,
		Weather:     report,
		Suggestions: suggestions.Parse(adviceText),
	}

	o.mu.Lock()
	current := seq == o.seq
	if current {
		if report != nil {
			o.lastWeather = report
		}
		o.text = adviceText
	}
	o.mu.Unlock()

	if !current {
		o.logger.Debug("Superseded advice response ignored")
		return out, nil
	}

	if result.IsFallback() {
		out.Warning = locale.Text(lang, locale.MsgFallbackUsed)
		o.logger.Warn("Advice came from local fallback", zap.String("providerError", result.ProviderError))
		o.notifier.Warn(out.Warning)
	}
	return out, nil
}

// Suggestions returns the displayed advice split into tips.
func (o *Orchestrator) Suggestions() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return suggestions.Parse(o.text)
}

// AdviceText is the raw advice text on display.
func (o *Orchestrator) AdviceText() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.text
}

// Weather is the last successfully fetched report, or nil.
func (o *Orchestrator) Weather() *models.WeatherReport {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastWeather
}

// Clear drops the displayed advice and weather and abandons any request in flight.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq++
	o.text = ""
	o.lastWeather = nil
}

type detailer interface {
	Detail() string
}

func mostSpecificDetail(err error) string {
	var d detailer
	if errors.As(err, &d) {
		if detail := strings.TrimSpace(d.Detail()); detail != "" {
			return detail
		}
	}
	return err.Error()
}
