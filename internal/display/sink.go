// Package display defines the presentation boundary of the dashboard. The
// controllers write into a Sink; what paints it (a browser page polling the
// Board, a terminal UI) is not their concern.
package display

// Region names one area of the page.
type Region string

const (
	RegionCityInput       Region = "cityInput"
	RegionCitySuggestions Region = "citySuggestions"

	RegionWeatherCard Region = "weatherCard"
	RegionCityName    Region = "cityName"
	RegionTemperature Region = "temperature"
	RegionFeelsLike   Region = "feelsLike"
	RegionPressure    Region = "pressure"
	RegionHumidity    Region = "humidity"
	RegionWindSpeed   Region = "windSpeed"
	RegionDescription Region = "description"
	RegionWeatherIcon Region = "weatherIcon"
	RegionUVIndex     Region = "uvIndex"
	RegionAirQuality  Region = "airQuality"

	RegionForecastTable    Region = "forecastTable"
	RegionForecastBody     Region = "forecastBody"
	RegionTemperatureChart Region = "temperatureChart"

	RegionMapContainer Region = "rainMapContainer"
	RegionMap          Region = "rainMap"

	RegionClockContainer Region = "clockContainer"
	RegionClock          Region = "clock"
)

// Sink is the write side of the page. Implementations must be safe for
// concurrent use; controllers write from independent goroutines.
type Sink interface {
	SetText(r Region, text string)
	SetImage(r Region, src string)
	SetVisible(r Region, visible bool)

	ClearRows(r Region)
	AppendRow(r Region, cells []string)

	// SetOptions replaces the whole option list of r.
	SetOptions(r Region, options []string)

	// SetChart attaches chart to r; a nil chart removes whatever is there.
	SetChart(r Region, chart *ChartSpec)

	SetMap(r Region, view MapView)

	// Alert surfaces a message the user has to see.
	Alert(message string)
}

// ChartSpec describes a chart for a front-end charting library. Its shape
// follows Chart.js configuration objects.
type ChartSpec struct {
	ID      string       `json:"id"`
	Type    string       `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label           string `json:"label"`
	Data            []int  `json:"data"`
	BorderColor     string `json:"borderColor"`
	BackgroundColor string `json:"backgroundColor"`
	BorderWidth     int    `json:"borderWidth"`
}

type ChartOptions struct {
	Responsive  bool `json:"responsive"`
	BeginAtZero bool `json:"beginAtZero"`
}

// MapView is everything a front-end map library needs to draw the map.
type MapView struct {
	Center LatLng      `json:"center"`
	Zoom   int         `json:"zoom"`
	Base   TileLayer   `json:"base"`
	Layers []TileLayer `json:"layers"`
	Popup  *Popup      `json:"popup,omitempty"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TileLayer is one {z}/{x}/{y} layer on the map.
type TileLayer struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	Opacity     float64 `json:"opacity"`
	Attribution string  `json:"attribution,omitempty"`
}

// Popup is an info bubble anchored at a map position.
type Popup struct {
	At    LatLng   `json:"at"`
	Lines []string `json:"lines"`
}
