package weather

import (
	"fmt"

	"golang.org/x/text/language"
)

// Vocabulary holds the fixed, localized strings the dashboard renders.
type Vocabulary struct {
	Tag language.Tag

	CityHeading  string // format string taking the city name
	CityNotFound string
	FetchFailed  string

	TemperatureUnit string
	WindUnit        string
	ChartLabel      string

	PopupTemperature string
	PopupWind        string
	PopupCondition   string

	airQuality        [5]string
	airQualityUnknown string
	conditions        map[Condition]string
}

var russian = Vocabulary{
	Tag:              language.Russian,
	CityHeading:      "Погода в %s",
	CityNotFound:     "Город не найден",
	FetchFailed:      "Ошибка при получении данных",
	TemperatureUnit:  "°C",
	WindUnit:         "м/с",
	ChartLabel:       "Температура (°C)",
	PopupTemperature: "Температура",
	PopupWind:        "Скорость ветра",
	PopupCondition:   "Погодные условия",
	airQuality: [5]string{
		"Очень низкое",
		"Низкое",
		"Среднее",
		"Высокое",
		"Очень высокое",
	},
	airQualityUnknown: "Неизвестно",
	conditions: map[Condition]string{
		ConditionRain:   "Дождь",
		ConditionSnow:   "Снег",
		ConditionClear:  "Ясно",
		ConditionCloudy: "Облачно",
	},
}

var english = Vocabulary{
	Tag:              language.English,
	CityHeading:      "Weather in %s",
	CityNotFound:     "City not found",
	FetchFailed:      "Failed to fetch weather data",
	TemperatureUnit:  "°C",
	WindUnit:         "m/s",
	ChartLabel:       "Temperature (°C)",
	PopupTemperature: "Temperature",
	PopupWind:        "Wind speed",
	PopupCondition:   "Conditions",
	airQuality: [5]string{
		"Very low",
		"Low",
		"Medium",
		"High",
		"Very high",
	},
	airQualityUnknown: "Unknown",
	conditions: map[Condition]string{
		ConditionRain:   "Rain",
		ConditionSnow:   "Snow",
		ConditionClear:  "Clear",
		ConditionCloudy: "Cloudy",
	},
}

// Russian is the default display vocabulary.
func Russian() Vocabulary { return russian }

var vocabularyMatcher = language.NewMatcher([]language.Tag{language.Russian, language.English})

// VocabularyFor picks the closest supported vocabulary for tag, falling back
// to Russian.
func VocabularyFor(tag language.Tag) Vocabulary {
	_, idx, _ := vocabularyMatcher.Match(tag)
	if idx == 1 {
		return english
	}
	return russian
}

// Heading renders the weather card title for city.
func (v Vocabulary) Heading(city string) string {
	return fmt.Sprintf(v.CityHeading, city)
}

// AirQualityLabel maps an AQI ordinal to its label. The mapping is total:
// anything outside 1..5 is reported as unknown.
func (v Vocabulary) AirQualityLabel(level AirQualityLevel) string {
	if !level.Valid() {
		return v.airQualityUnknown
	}
	return v.airQuality[level-1]
}

// ConditionLabel localizes cond, or returns fallback (usually the provider's
// raw description) when the keyword is not in the vocabulary.
func (v Vocabulary) ConditionLabel(cond Condition, fallback string) string {
	if label, ok := v.conditions[cond]; ok {
		return label
	}
	return fallback
}
