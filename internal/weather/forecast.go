package weather

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrDecode marks a response body that does not have the expected shape.
var ErrDecode = errors.New("failed to decode the object from the service")

var validate = validator.New()

const (
	degreeMark = "°"
	windUnit   = "km/h"
)

// LocalWeather is the current conditions plus one element per forecast day.
type LocalWeather struct {
	Current []CurrentWeather `json:"current_condition" validate:"len=1,dive"`
	Days    []WeatherElement `json:"weather" validate:"dive"`
}

// CurrentConditions returns the single current snapshot.
func (lw *LocalWeather) CurrentConditions() CurrentWeather {
	return lw.Current[0]
}

// Today returns the first forecast day, if any.
func (lw *LocalWeather) Today() (WeatherElement, bool) {
	if len(lw.Days) == 0 {
		return WeatherElement{}, false
	}
	return lw.Days[0], true
}

// Value is a {"value": "..."} entry.
type Value struct {
	Value string `json:"value"`
}

// CurrentWeather carries the provider's strings as-is.
type CurrentWeather struct {
	ObservationTime string  `json:"observation_time"`
	TempC           string  `json:"temp_C" validate:"required"`
	TempF           string  `json:"temp_F"`
	WeatherCode     string  `json:"weatherCode" validate:"required"`
	WeatherDesc     []Value `json:"weatherDesc"`
	WindSpeedKmph   string  `json:"windspeedKmph"`
	WindDirection   string  `json:"winddir16Point"`
	Humidity        string  `json:"humidity"`
	FeelsLikeC      string  `json:"FeelsLikeC"`
	FeelsLikeF      string  `json:"FeelsLikeF"`
	UVIndex         string  `json:"uvIndex"`
}

func (c CurrentWeather) TempFormatted() string      { return c.TempC + degreeMark }
func (c CurrentWeather) FeelsLikeFormatted() string { return c.FeelsLikeC + degreeMark }
func (c CurrentWeather) HumidityFormatted() string  { return c.Humidity + "%" }
func (c CurrentWeather) WindSpeedFormatted() string { return c.WindSpeedKmph + windUnit }

// Description is the first text description, or "".
func (c CurrentWeather) Description() string {
	if len(c.WeatherDesc) == 0 {
		return ""
	}
	return c.WeatherDesc[0].Value
}

// Icon picks the day or night variant from the observation time. Any
// unparseable time yields no icon.
func (c CurrentWeather) Icon(sunrise, sunset string) (Icon, bool) {
	obs, ok := ParseClock(c.ObservationTime)
	if !ok {
		return "", false
	}
	night, ok := nightAt(sunrise, sunset, obs.Hour())
	if !ok {
		return "", false
	}
	return IconForCode(c.WeatherCode, night)
}

// WeatherElement is one forecast day.
type WeatherElement struct {
	Date      string      `json:"date" validate:"required"`
	Astronomy []Astronomy `json:"astronomy"`
	MaxTempC  string      `json:"maxtempC"`
	MaxTempF  string      `json:"maxtempF"`
	MinTempC  string      `json:"mintempC"`
	MinTempF  string      `json:"mintempF"`
	Hourly    []Hourly    `json:"hourly" validate:"dive"`
}

func (w WeatherElement) HighTempFormatted() string { return w.MaxTempC + degreeMark }
func (w WeatherElement) LowTempFormatted() string  { return w.MinTempC + degreeMark }

// Day is the English weekday name of the element's date.
func (w WeatherElement) Day() (string, bool) {
	return DayOfWeek(w.Date)
}

// Sun returns the first astronomy entry.
func (w WeatherElement) Sun() (Astronomy, bool) {
	if len(w.Astronomy) == 0 {
		return Astronomy{}, false
	}
	return w.Astronomy[0], true
}

// Icon is the day variant of the first hourly code.
func (w WeatherElement) Icon() (Icon, bool) {
	if len(w.Hourly) == 0 {
		return "", false
	}
	return IconForCode(w.Hourly[0].WeatherCode, false)
}

// Hourly is one forecast bucket within a day.
type Hourly struct {
	Time        string `json:"time" validate:"required"`
	TempC       string `json:"tempC"`
	TempF       string `json:"tempF"`
	WeatherCode string `json:"weatherCode"`
}

func (h Hourly) TempFormatted() string { return h.TempC + degreeMark }

func (h Hourly) TimeFormatted() (string, bool) {
	return FormatHourlyTime(h.Time)
}

// Hour is the hour of day encoded in Time.
func (h Hourly) Hour() (int, bool) {
	return hourFromCode(h.Time)
}

// Icon picks the variant for the bucket's hour against the day's sun times.
func (h Hourly) Icon(sunrise, sunset string) (Icon, bool) {
	hour, ok := hourFromCode(h.Time)
	if !ok {
		return "", false
	}
	night, ok := nightAt(sunrise, sunset, hour)
	if !ok {
		return "", false
	}
	return IconForCode(h.WeatherCode, night)
}

// Astronomy holds sunrise and sunset as short time strings.
type Astronomy struct {
	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`
}

func (a Astronomy) SunriseFormatted() (string, bool) { return FormatAstronomyTime(a.Sunrise) }
func (a Astronomy) SunsetFormatted() (string, bool)  { return FormatAstronomyTime(a.Sunset) }

type weatherEnvelope struct {
	Data *LocalWeather `json:"data" validate:"required"`
}

// DecodeWeatherResponse decodes a weather.ashx body. Exactly one current
// condition entry is required.
func DecodeWeatherResponse(body []byte) (*LocalWeather, error) {
	var env weatherEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := validate.Struct(env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return env.Data, nil
}

type searchEnvelope struct {
	SearchAPI *struct {
		Result []Place `json:"result"`
	} `json:"search_api"`
	Data *struct {
		Error []struct {
			Msg string `json:"msg"`
		} `json:"error"`
	} `json:"data"`
}

// DecodeSearchResponse decodes a search.ashx body. The provider's
// "no matching location" error envelope decodes to an empty result.
func DecodeSearchResponse(body []byte) ([]Place, error) {
	var env searchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	switch {
	case env.SearchAPI != nil:
		if env.SearchAPI.Result == nil {
			return []Place{}, nil
		}
		return env.SearchAPI.Result, nil
	case env.Data != nil && len(env.Data.Error) > 0:
		return []Place{}, nil
	default:
		return nil, fmt.Errorf("%w: missing search_api", ErrDecode)
	}
}

// DecodePlaces decodes a flat JSON array of places in the wrapped shape.
func DecodePlaces(body []byte) ([]Place, error) {
	var places []Place
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if places == nil {
		places = []Place{}
	}
	return places, nil
}
