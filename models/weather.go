package models

import (
	"encoding/json"
	"strconv"
)

// WeatherUnavailable is the summary used whenever no current weather is known.
const WeatherUnavailable = "N/A"

// CurrentWeather mirrors the current_weather block of the forecast API.
type CurrentWeather struct {
	Temperature   float64 `json:"temperature"`
	Windspeed     float64 `json:"windspeed"`
	Winddirection float64 `json:"winddirection,omitempty"`
	Weathercode   int     `json:"weathercode,omitempty"`
	Time          string  `json:"time,omitempty"`
}

// WeatherReport is the subset of the forecast payload the client reads.
type WeatherReport struct {
	Latitude       float64         `json:"latitude"`
	Longitude      float64         `json:"longitude"`
	Timezone       string          `json:"timezone,omitempty"`
	CurrentWeather *CurrentWeather `json:"current_weather"`
	Hourly         json.RawMessage `json:"hourly,omitempty"`
}

// Summary renders the one-line weather text sent along with advice requests.
func (w *WeatherReport) Summary() string {
	if w == nil || w.CurrentWeather == nil {
		return WeatherUnavailable
	}
	return "Now: " + strconv.FormatFloat(w.CurrentWeather.Temperature, 'f', -1, 64) + "°C"
}
