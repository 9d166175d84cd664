package weather

import (
	"strconv"
	"time"
)

const (
	clockLayout     = "3:04 PM"
	hourLayout      = "3 PM"
	forecastDateFmt = "2006-01-02"
)

// ParseClock parses the provider's short time strings such as "07:06 AM".
func ParseClock(raw string) (time.Time, bool) {
	t, err := time.Parse(clockLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatAstronomyTime re-renders a sunrise/sunset string as "7:06 AM".
func FormatAstronomyTime(raw string) (string, bool) {
	t, ok := ParseClock(raw)
	if !ok {
		return "", false
	}
	return t.Format(clockLayout), true
}

// hourFromCode extracts the hour from an HHMM code like "700".
// A non-numeric code counts as midnight, as the provider treats it.
func hourFromCode(code string) (int, bool) {
	n, err := strconv.Atoi(code)
	if err != nil {
		n = 0
	}
	h := n / 100
	if h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}

// FormatHourlyTime renders an HHMM code on a 12-hour clock: "0" -> "12 AM".
func FormatHourlyTime(code string) (string, bool) {
	h, ok := hourFromCode(code)
	if !ok {
		return "", false
	}
	return time.Date(2000, time.January, 1, h, 0, 0, 0, time.UTC).Format(hourLayout), true
}

// DayOfWeek returns the English weekday name for a yyyy-MM-dd date.
func DayOfWeek(date string) (string, bool) {
	t, err := time.Parse(forecastDateFmt, date)
	if err != nil {
		return "", false
	}
	return t.Weekday().String(), true
}

// IsNight compares hours only. Both boundary hours count as night.
func IsNight(sunrise, sunset, t time.Time) bool {
	return isNightHour(sunrise.Hour(), sunset.Hour(), t.Hour())
}

func isNightHour(sunriseH, sunsetH, h int) bool {
	return h >= sunsetH || h <= sunriseH
}

// nightAt parses sunrise and sunset and classifies hour h. ok is false when
// either boundary is unparseable.
func nightAt(sunrise, sunset string, h int) (night, ok bool) {
	rise, ok := ParseClock(sunrise)
	if !ok {
		return false, false
	}
	set, ok := ParseClock(sunset)
	if !ok {
		return false, false
	}
	return isNightHour(rise.Hour(), set.Hour(), h), true
}
