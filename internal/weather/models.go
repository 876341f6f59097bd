package weather

import (
	"errors"
	"math"
	"time"
)

// ErrLocationNotFound is returned when the provider rejects a location lookup
// with a non-success status.
var ErrLocationNotFound = errors.New("location not found")

// Condition represents a normalized high-level weather condition keyword.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
)

// hPaToMmHg converts hectopascals to millimeters of mercury.
const hPaToMmHg = 0.750064

// Coordinates is a latitude/longitude pair. It doubles as the map point
// produced by pointer movement.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MapPoint is a position on the interactive map.
type MapPoint = Coordinates

// Location identifies what to ask the provider for: a city name, or a
// coordinate pair when Lat and Lon are both set.
type Location struct {
	City string   `json:"city,omitempty"`
	Lat  *float64 `json:"lat,omitempty"`
	Lon  *float64 `json:"lon,omitempty"`
}

// CityLocation builds a Location keyed by city name.
func CityLocation(city string) Location {
	return Location{City: city}
}

// PointLocation builds a Location keyed by coordinates.
func PointLocation(lat, lon float64) Location {
	return Location{Lat: &lat, Lon: &lon}
}

// HasCoordinates reports whether the location is coordinate keyed.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// Key returns a canonical string key for logging.
func (l Location) Key() string {
	if l.HasCoordinates() {
		return formatCoord(*l.Lat) + "," + formatCoord(*l.Lon)
	}
	return l.City
}

// Snapshot is the current-weather result set driving the main dashboard.
type Snapshot struct {
	City        string      `json:"city"`
	Temperature float64     `json:"temperatureC"`
	FeelsLike   float64     `json:"feelsLikeC"`
	PressureHPa float64     `json:"pressureHpa"`
	Humidity    float64     `json:"humidityPercent"`
	WindSpeed   float64     `json:"windSpeed"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Condition   Condition   `json:"condition"`
	Coordinates Coordinates `json:"coordinates"`
	FetchedAt   time.Time   `json:"fetchedAt"` // always UTC
}

// PressureMmHg returns the pressure converted to millimeters of mercury and
// rounded to the nearest integer.
func (s Snapshot) PressureMmHg() int {
	return Round(s.PressureHPa * hPaToMmHg)
}

// ForecastPoint is one entry of the short-term forecast.
type ForecastPoint struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperatureC"`
	WindSpeed   float64   `json:"windSpeed"`
	Humidity    float64   `json:"humidityPercent"`
}

// AirQualityLevel is the provider's AQI ordinal, 1 (best) to 5 (worst).
type AirQualityLevel int

// Valid reports whether the level is inside the provider's 1..5 scale.
func (l AirQualityLevel) Valid() bool {
	return l >= 1 && l <= 5
}

// Round rounds to the nearest integer with halves going toward positive
// infinity, so -2.5 becomes -2 and 2.5 becomes 3.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}
