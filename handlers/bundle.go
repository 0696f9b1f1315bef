package handlers

import (
	"context"
	"encoding/json"

	"agriassist/services/generation"
	"agriassist/services/speech"

	"github.com/gin-gonic/gin"
)

// GeoService resolves place names and fetches forecasts.
type GeoService interface {
	Geocode(ctx context.Context, query, lang string) (json.RawMessage, error)
	Forecast(ctx context.Context, lat, lon float64) (json.RawMessage, error)
}

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Geo endpoints
	GeocodeHandler gin.HandlerFunc
	WeatherHandler gin.HandlerFunc

	// Advice endpoints
	GenerateHandler   gin.HandlerFunc
	TranscribeHandler gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires handlers to their services. transcriber may be nil when speech
// recognition is not configured.
func NewHandlerBundle(geo GeoService, advice generation.AdviceService, transcriber speech.Transcriber) *HandlerBundle {
	geoHandler := &GeoHandler{Geo: geo}
	adviceHandler := &AdviceHandler{Advice: advice}
	speechHandler := &SpeechHandler{Transcriber: transcriber}

	return &HandlerBundle{
		GeocodeHandler:    geoHandler.Geocode,
		WeatherHandler:    geoHandler.Weather,
		GenerateHandler:   adviceHandler.Generate,
		TranscribeHandler: speechHandler.Transcribe,
		HealthHandler:     HealthHandler,
	}
}
