package weather

import "time"

// TodayLabel replaces the weekday name of the first forecast day.
const TodayLabel = "Today"

// Summary is a display-ready view of one place's weather.
type Summary struct {
	PlaceName     string        `json:"place_name"`
	Description   string        `json:"description"`
	Icon          Icon          `json:"icon,omitempty"`
	Temperature   string        `json:"temperature"`
	FeelsLike     string        `json:"feels_like"`
	UVIndex       string        `json:"uv_index"`
	Humidity      string        `json:"humidity"`
	WindSpeed     string        `json:"wind_speed"`
	WindDirection string        `json:"wind_direction"`
	Sunrise       string        `json:"sunrise"`
	Sunset        string        `json:"sunset"`
	Hours         []HourSummary `json:"hours"`
	Days          []DaySummary  `json:"days"`
}

// HourSummary is one upcoming hourly bucket.
type HourSummary struct {
	Time        string `json:"time"`
	Temperature string `json:"temperature"`
	Icon        Icon   `json:"icon,omitempty"`
}

// DaySummary is one forecast day.
type DaySummary struct {
	Day  string `json:"day"`
	High string `json:"high"`
	Low  string `json:"low"`
	Icon Icon   `json:"icon,omitempty"`
}

// Summarize derives the display values for lw at time now. Only hourly
// buckets of the first day later than now's hour are kept.
func Summarize(place Place, lw *LocalWeather, now time.Time) Summary {
	s := Summary{PlaceName: place.Name, Hours: []HourSummary{}, Days: []DaySummary{}}
	if lw == nil || len(lw.Current) == 0 {
		return s
	}

	var sun Astronomy
	today, hasToday := lw.Today()
	if hasToday {
		sun, _ = today.Sun()
	}
	s.Sunrise, _ = sun.SunriseFormatted()
	s.Sunset, _ = sun.SunsetFormatted()

	cur := lw.CurrentConditions()
	s.Description = cur.Description()
	s.Icon, _ = cur.Icon(sun.Sunrise, sun.Sunset)
	s.Temperature = cur.TempFormatted()
	s.FeelsLike = cur.FeelsLikeFormatted()
	s.UVIndex = cur.UVIndex
	s.Humidity = cur.HumidityFormatted()
	s.WindSpeed = cur.WindSpeedFormatted()
	s.WindDirection = cur.WindDirection

	if hasToday {
		for _, h := range today.Hourly {
			hour, ok := h.Hour()
			if !ok || hour <= now.Hour() {
				continue
			}
			label, _ := h.TimeFormatted()
			icon, _ := h.Icon(sun.Sunrise, sun.Sunset)
			s.Hours = append(s.Hours, HourSummary{Time: label, Temperature: h.TempFormatted(), Icon: icon})
		}
	}

	for i, d := range lw.Days {
		label := TodayLabel
		if i > 0 {
			label, _ = d.Day()
		}
		icon, _ := d.Icon()
		s.Days = append(s.Days, DaySummary{
			Day:  label,
			High: d.HighTempFormatted(),
			Low:  d.LowTempFormatted(),
			Icon: icon,
		})
	}

	return s
}
