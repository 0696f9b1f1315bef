package models

import "strings"

// CurrentLocationName labels selections that came from device geolocation.
const CurrentLocationName = "Current location"

// GeocodeResult is a single match from the geocoder, in provider order.
type GeocodeResult struct {
	ID          int64   `json:"id,omitempty"`
	Name        string  `json:"name"`
	Admin1      string  `json:"admin1,omitempty"`
	Country     string  `json:"country,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone,omitempty"`
}

// DisplayName joins name, region and country the way the result list shows them.
func (r GeocodeResult) DisplayName() string {
	parts := []string{r.Name}
	if r.Admin1 != "" {
		parts = append(parts, r.Admin1)
	}
	if r.Country != "" {
		parts = append(parts, r.Country)
	}
	return strings.Join(parts, ", ")
}

// LocationSelection is replaced wholesale on every new pick; never patch it.
type LocationSelection struct {
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	Name           string  `json:"name"`
	HasCoordinates bool    `json:"-"`
}

// SelectionFromGeocode turns a picked geocode result into the active location.
func SelectionFromGeocode(r GeocodeResult) LocationSelection {
	return LocationSelection{
		Lat:            r.Latitude,
		Lon:            r.Longitude,
		Name:           r.DisplayName(),
		HasCoordinates: true,
	}
}

// DeviceSelection wraps coordinates reported by device geolocation.
func DeviceSelection(lat, lon float64) LocationSelection {
	return LocationSelection{Lat: lat, Lon: lon, Name: CurrentLocationName, HasCoordinates: true}
}

// Label is the location text embedded in prompts: the name, else raw "lat,lon".
func (l LocationSelection) Label() string {
	if name := strings.TrimSpace(l.Name); name != "" {
		return name
	}
	if !l.HasCoordinates {
		return "unknown"
	}
	return formatCoordinate(l.Lat) + "," + formatCoordinate(l.Lon)
}
