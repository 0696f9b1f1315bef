package generation

import (
	"strings"
	"time"

	"agriassist/locale"
	"agriassist/models"
)

// LocalGenerator builds deterministic offline advice. Only the trailing timestamp varies
// between calls with the same request.
type LocalGenerator struct {
	now func() time.Time
}

func NewLocalGenerator(now func() time.Time) *LocalGenerator {
	if now == nil {
		now = time.Now
	}
	return &LocalGenerator{now: now}
}

func (g *LocalGenerator) Generate(req models.AdviceRequest) string {
	lang := req.Language
	lines := []string{
		locale.Localize(lang, locale.MsgLocalHeader, map[string]any{"Text": req.TranscriptText}),
		locale.Text(lang, locale.MsgLocalAdvice),
		locale.Localize(models.LanguageEnglish, locale.MsgGeneratedAt, map[string]any{
			"Time": g.now().UTC().Format(time.RFC3339),
		}),
	}
	return "• " + strings.Join(lines, "\n• ")
}
