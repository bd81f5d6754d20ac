package reporting

import (
	"fmt"
	"time"
)

type Timeframe string

const (
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
)

func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case TimeframeWeek, TimeframeMonth:
		return Timeframe(s), nil
	}
	return "", fmt.Errorf("invalid timeframe %q: expected week or month", s)
}

// Range returns the inclusive bounds for the timeframe starting at start:
// a week covers start's day through six days later, a month covers the
// calendar month containing start. Bounds are whole days in start's location.
func (tf Timeframe) Range(start time.Time) (from, to time.Time) {
	day := StartOfDay(start)
	switch tf {
	case TimeframeMonth:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		last := first.AddDate(0, 1, -1)
		return first, EndOfDay(last)
	default:
		return day, EndOfDay(day.AddDate(0, 0, 6))
	}
}

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Millisecond), t.Location())
}
