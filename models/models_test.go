package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	cases := map[string]Language{
		"ja":   LanguageJapanese,
		" HI ": LanguageHindi,
		"en":   LanguageEnglish,
		"":     LanguageEnglish,
		"fr":   LanguageEnglish,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLanguage(in), "input %q", in)
	}
}

func TestWeatherSummary(t *testing.T) {
	var missing *WeatherReport
	assert.Equal(t, WeatherUnavailable, missing.Summary())
	assert.Equal(t, WeatherUnavailable, (&WeatherReport{}).Summary())
	assert.Equal(t, "Now: 27.4°C", (&WeatherReport{CurrentWeather: &CurrentWeather{Temperature: 27.4}}).Summary())
	assert.Equal(t, "Now: -3°C", (&WeatherReport{CurrentWeather: &CurrentWeather{Temperature: -3}}).Summary())
}

func TestWeatherReportDecodesForecast(t *testing.T) {
	payload := `{"latitude":18.5,"longitude":73.875,"timezone":"Asia/Kolkata",
		"current_weather":{"temperature":29.1,"windspeed":7.2,"weathercode":3,"time":"2024-06-01T08:00"},
		"hourly":{"time":["2024-06-01T00:00"],"temperature_2m":[24.3]}}`

	var report WeatherReport
	require.NoError(t, json.Unmarshal([]byte(payload), &report))
	require.NotNil(t, report.CurrentWeather)
	assert.Equal(t, "Now: 29.1°C", report.Summary())
	assert.JSONEq(t, `{"time":["2024-06-01T00:00"],"temperature_2m":[24.3]}`, string(report.Hourly))
}

func TestGeocodeDisplayName(t *testing.T) {
	assert.Equal(t, "Pune, Maharashtra, India", GeocodeResult{Name: "Pune", Admin1: "Maharashtra", Country: "India"}.DisplayName())
	assert.Equal(t, "Tokyo, Japan", GeocodeResult{Name: "Tokyo", Country: "Japan"}.DisplayName())
	assert.Equal(t, "Nowhere", GeocodeResult{Name: "Nowhere"}.DisplayName())
}

func TestLocationLabel(t *testing.T) {
	assert.Equal(t, "Sapporo, Hokkaido, Japan", SelectionFromGeocode(GeocodeResult{
		Name: "Sapporo", Admin1: "Hokkaido", Country: "Japan", Latitude: 43.06, Longitude: 141.35,
	}).Label())
	assert.Equal(t, "12.5,-7.25", LocationSelection{Lat: 12.5, Lon: -7.25, HasCoordinates: true}.Label())
	assert.Equal(t, "unknown", LocationSelection{}.Label())
	assert.Equal(t, CurrentLocationName, DeviceSelection(1, 2).Label())
}

func TestGenerateRequestRoundTrip(t *testing.T) {
	req := AdviceRequest{
		TranscriptText: "when should I irrigate",
		Location:       LocationSelection{Lat: 18.52, Lon: 73.86, Name: "Pune", HasCoordinates: true},
		WeatherSummary: "Now: 31°C",
		Language:       LanguageHindi,
	}

	body, err := json.Marshal(NewGenerateRequest(req))
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"when should I irrigate","lat":18.52,"lon":73.86,"locationName":"Pune","weatherSummary":"Now: 31°C","language":"hi"}`, string(body))

	var decoded GenerateRequest
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, req, decoded.ToAdviceRequest())
}

func TestGenerateRequestWithoutCoordinates(t *testing.T) {
	var g GenerateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"text":"hello","lat":10,"language":"xx"}`), &g))

	req := g.ToAdviceRequest()
	assert.False(t, req.Location.HasCoordinates)
	assert.Equal(t, LanguageEnglish, req.Language)

	body, err := json.Marshal(NewGenerateRequest(req))
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hello","lat":null,"lon":null,"locationName":"","weatherSummary":"","language":"en"}`, string(body))
}

func TestAdviceResultJSON(t *testing.T) {
	body, err := json.Marshal(AdviceResult{Text: "• tip", Source: SourceLocalFallback, Provider: "local", ProviderError: "boom"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":"• tip","source":"local","provider":"local","error":"boom"}`, string(body))
	assert.True(t, AdviceResult{Source: SourceLocalFallback}.IsFallback())
	assert.False(t, AdviceResult{Source: SourceProvider}.IsFallback())
}
