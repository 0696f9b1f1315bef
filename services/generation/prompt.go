package generation

import (
	"fmt"

	"agriassist/models"
)

const systemPrompt = "You are an experienced agricultural advisor. Provide concise actionable bullet suggestions."

// BuildPrompt renders the advisor persona and the user's question with its context.
func BuildPrompt(req models.AdviceRequest) Prompt {
	weather := req.WeatherSummary
	if weather == "" {
		weather = models.WeatherUnavailable
	}
	lang := req.Language
	if lang == "" {
		lang = models.LanguageEnglish
	}

	user := fmt.Sprintf(
		"User question: \"%s\"\nLocation: %s\nWeather: %s\nPlease provide 3-6 practical agricultural suggestions in language code: %s. Use short bullet points.",
		req.TranscriptText, req.Location.Label(), weather, lang,
	)
	return Prompt{System: systemPrompt, User: user}
}
