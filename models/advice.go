package models

import (
	"strconv"
	"strings"
)

// Language is one of the advice languages supported end to end.
type Language string

const (
	LanguageEnglish  Language = "en"
	LanguageJapanese Language = "ja"
	LanguageHindi    Language = "hi"
)

// ParseLanguage maps a free-form code onto a supported language, defaulting to English.
func ParseLanguage(code string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(code))) {
	case LanguageJapanese:
		return LanguageJapanese
	case LanguageHindi:
		return LanguageHindi
	default:
		return LanguageEnglish
	}
}

// AdviceSource tags where the advice text came from.
type AdviceSource string

const (
	SourceProvider      AdviceSource = "provider"
	SourceLocalFallback AdviceSource = "local"
)

// AdviceRequest is built fresh for every generation attempt.
type AdviceRequest struct {
	TranscriptText string
	Location       LocationSelection
	WeatherSummary string
	Language       Language
}

// AdviceResult is what /api/generate returns to the frontend.
type AdviceResult struct {
	Text          string       `json:"result"`
	Source        AdviceSource `json:"source"`
	Provider      string       `json:"provider,omitempty"` // "openrouter", "gemini" or "local"
	ProviderError string       `json:"error,omitempty"`    // upstream failure that forced the fallback
}

// IsFallback reports whether the text came from the deterministic local generator.
func (r AdviceResult) IsFallback() bool {
	return r.Source == SourceLocalFallback
}

// GenerateRequest is the JSON body accepted by POST /api/generate.
type GenerateRequest struct {
	Text           string   `json:"text"`
	Lat            *float64 `json:"lat"`
	Lon            *float64 `json:"lon"`
	LocationName   string   `json:"locationName"`
	WeatherSummary string   `json:"weatherSummary"`
	Language       string   `json:"language"`
}

// ToAdviceRequest converts the wire body into the service request.
func (g GenerateRequest) ToAdviceRequest() AdviceRequest {
	loc := LocationSelection{Name: strings.TrimSpace(g.LocationName)}
	if g.Lat != nil && g.Lon != nil {
		loc.Lat, loc.Lon = *g.Lat, *g.Lon
		loc.HasCoordinates = true
	}
	return AdviceRequest{
		TranscriptText: g.Text,
		Location:       loc,
		WeatherSummary: g.WeatherSummary,
		Language:       ParseLanguage(g.Language),
	}
}

// NewGenerateRequest builds the wire body for an advice request.
func NewGenerateRequest(req AdviceRequest) GenerateRequest {
	body := GenerateRequest{
		Text:           req.TranscriptText,
		LocationName:   req.Location.Name,
		WeatherSummary: req.WeatherSummary,
		Language:       string(req.Language),
	}
	if req.Location.HasCoordinates {
		lat, lon := req.Location.Lat, req.Location.Lon
		body.Lat = &lat
		body.Lon = &lon
	}
	return body
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
