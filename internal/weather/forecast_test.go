package weather_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/skycast/internal/weather"
)

func TestDecodeWeatherResponse(t *testing.T) {
	lw, err := weather.DecodeWeatherResponse(readFixture(t, "weather.json"))
	require.NoError(t, err)

	assert.Len(t, lw.Current, 1)
	assert.Len(t, lw.Days, 5)

	cur := lw.CurrentConditions()
	assert.Equal(t, "16°", cur.TempFormatted())
	assert.Equal(t, "16°", cur.FeelsLikeFormatted())
	assert.Equal(t, "59%", cur.HumidityFormatted())
	assert.Equal(t, "31km/h", cur.WindSpeedFormatted())
	assert.Equal(t, "N", cur.WindDirection)
	assert.Equal(t, "4", cur.UVIndex)
	assert.Equal(t, "Partly cloudy", cur.Description())

	today, ok := lw.Today()
	require.True(t, ok)
	assert.Equal(t, "16°", today.HighTempFormatted())
	assert.Equal(t, "12°", today.LowTempFormatted())
	day, ok := today.Day()
	require.True(t, ok)
	assert.Equal(t, "Tuesday", day)

	sun, ok := today.Sun()
	require.True(t, ok)
	rise, ok := sun.SunriseFormatted()
	require.True(t, ok)
	assert.Equal(t, "7:07 AM", rise)
	set, ok := sun.SunsetFormatted()
	require.True(t, ok)
	assert.Equal(t, "5:13 PM", set)

	first := today.Hourly[0]
	label, ok := first.TimeFormatted()
	require.True(t, ok)
	assert.Equal(t, "12 AM", label)
	assert.Equal(t, "12°", first.TempFormatted())
}

func TestDecodeWeatherResponse_Malformed(t *testing.T) {
	_, err := weather.DecodeWeatherResponse([]byte(`{"data": {"current_condition": [{"temp_C": "16}]}}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrDecode)
}

func TestDecodeWeatherResponse_NoCurrentCondition(t *testing.T) {
	_, err := weather.DecodeWeatherResponse([]byte(`{"data": {"current_condition": [], "weather": []}}`))
	assert.ErrorIs(t, err, weather.ErrDecode)

	_, err = weather.DecodeWeatherResponse([]byte(`{"data": {"weather": []}}`))
	assert.ErrorIs(t, err, weather.ErrDecode)
}

func TestDecodeWeatherResponse_TwoCurrentConditions(t *testing.T) {
	body := `{"data": {"current_condition": [
		{"temp_C": "1", "weatherCode": "113"},
		{"temp_C": "2", "weatherCode": "113"}
	], "weather": []}}`
	_, err := weather.DecodeWeatherResponse([]byte(body))
	assert.ErrorIs(t, err, weather.ErrDecode)
}

func TestDecodeWeatherResponse_ProviderErrorEnvelope(t *testing.T) {
	_, err := weather.DecodeWeatherResponse(readFixture(t, "search_empty.json"))
	assert.ErrorIs(t, err, weather.ErrDecode)
}

func TestDecodeWeatherResponse_WrongShape(t *testing.T) {
	_, err := weather.DecodeWeatherResponse([]byte(`[1, 2, 3]`))
	assert.ErrorIs(t, err, weather.ErrDecode)

	_, err = weather.DecodeWeatherResponse([]byte(`{"data": {"current_condition": [{"temp_C": 16, "weatherCode": "113"}]}}`))
	assert.ErrorIs(t, err, weather.ErrDecode, "numbers are expected as strings")
}

func TestDecodeSearchResponse(t *testing.T) {
	places, err := weather.DecodeSearchResponse(readFixture(t, "search.json"))
	require.NoError(t, err)
	require.Len(t, places, 4)

	assert.Equal(t, "Athens", places[0].Name)
	assert.Equal(t, "Attica", places[0].RegionOrEmpty())
	assert.Equal(t, "Greece", places[0].CountryOrEmpty())
	assert.Equal(t, "Georgia", places[1].RegionOrEmpty())
}

func TestDecodeSearchResponse_NoMatch(t *testing.T) {
	places, err := weather.DecodeSearchResponse(readFixture(t, "search_empty.json"))
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestDecodeSearchResponse_Malformed(t *testing.T) {
	_, err := weather.DecodeSearchResponse([]byte(`{"data1"""}`))
	assert.ErrorIs(t, err, weather.ErrDecode)

	_, err = weather.DecodeSearchResponse([]byte(`{"unexpected": true}`))
	assert.ErrorIs(t, err, weather.ErrDecode)
}

func TestDecodePlaces(t *testing.T) {
	places, err := weather.DecodePlaces([]byte(`[{"areaName":[{"value":"Athens"}]},{"country":[{"value":"Greece"}]}]`))
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "Athens", places[0].Name)
	assert.Equal(t, weather.UnknownPlaceName, places[1].Name)

	places, err = weather.DecodePlaces([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, places)

	_, err = weather.DecodePlaces([]byte(`{"areaName"`))
	assert.ErrorIs(t, err, weather.ErrDecode)
}

func TestCurrentWeather_Icon(t *testing.T) {
	cur := weather.CurrentWeather{ObservationTime: "10:26 AM", WeatherCode: "116"}
	icon, ok := cur.Icon("07:07 AM", "05:13 PM")
	require.True(t, ok)
	assert.Equal(t, weather.IconPartlyCloudyDay, icon)

	cur.ObservationTime = "09:00 PM"
	icon, ok = cur.Icon("07:07 AM", "05:13 PM")
	require.True(t, ok)
	assert.Equal(t, weather.IconCloud, icon)

	_, ok = cur.Icon("", "05:13 PM")
	assert.False(t, ok, "no icon without a valid sunrise")
	_, ok = cur.Icon("07:07 AM", "later")
	assert.False(t, ok, "no icon without a valid sunset")

	cur.ObservationTime = "garbage"
	_, ok = cur.Icon("07:07 AM", "05:13 PM")
	assert.False(t, ok)
}

func TestHourly_Icon(t *testing.T) {
	h := weather.Hourly{Time: "1200", WeatherCode: "113"}
	icon, ok := h.Icon("07:07 AM", "05:13 PM")
	require.True(t, ok)
	assert.Equal(t, weather.IconClearDay, icon)

	h.Time = "700"
	icon, ok = h.Icon("07:07 AM", "05:13 PM")
	require.True(t, ok)
	assert.Equal(t, weather.IconClearNight, icon, "sunrise hour is night")

	_, ok = h.Icon("bad", "05:13 PM")
	assert.False(t, ok)
}

func TestWeatherElement_Icon(t *testing.T) {
	el := weather.WeatherElement{Hourly: []weather.Hourly{{Time: "0", WeatherCode: "113"}}}
	icon, ok := el.Icon()
	require.True(t, ok)
	assert.Equal(t, weather.IconClearDay, icon)

	_, ok = weather.WeatherElement{}.Icon()
	assert.False(t, ok)
}
