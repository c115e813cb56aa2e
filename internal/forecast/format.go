package forecast

import (
	"math"
	"strconv"
	"time"
)

// Open-Meteo returns wall-clock times in the location's timezone without an offset.
const (
	localTimeLayout = "2006-01-02T15:04"
	localDateLayout = "2006-01-02"
)

// Round rounds half up toward +Inf, so -2.5 becomes -2 and 2.5 becomes 3.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Fixed1 formats v with one decimal place.
func Fixed1(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// ParseLocalTime parses an upstream "2006-01-02T15:04" timestamp.
func ParseLocalTime(s string) (time.Time, error) {
	return time.Parse(localTimeLayout, s)
}

// ParseLocalDate parses an upstream "2006-01-02" date.
func ParseLocalDate(s string) (time.Time, error) {
	return time.Parse(localDateLayout, s)
}

// FormatClock renders a local timestamp as "3:04 PM". Unparseable input is
// returned unchanged.
func FormatClock(s string) string {
	t, err := ParseLocalTime(s)
	if err != nil {
		return s
	}
	return t.Format("3:04 PM")
}

// FormatHour renders a local timestamp as "3 PM".
func FormatHour(s string) string {
	t, err := ParseLocalTime(s)
	if err != nil {
		return s
	}
	return t.Format("3 PM")
}

// FormatWeekday renders a date as "Mon".
func FormatWeekday(s string) string {
	t, err := ParseLocalDate(s)
	if err != nil {
		return s
	}
	return t.Format("Mon")
}

// FormatMonthDay renders a date as "Jan 2".
func FormatMonthDay(s string) string {
	t, err := ParseLocalDate(s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2")
}
