package clock

import (
	"fmt"
	"strings"
	"time"
)

const ISODate = "2006-01-02"

var dayLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	ISODate,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseDay accepts dd/mm/yyyy or ISO 8601 (YYYY-MM-DD[THH:mm:ss]) and returns
// the calendar day at UTC midnight. Time of day is discarded.
func ParseDay(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q: %w", raw, ErrInvalidDate)
}

// Day truncates t to its calendar day in UTC, ignoring t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDay renders a day as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.Format(ISODate)
}

// DaysInRange returns every calendar day in [from, to], inclusive.
func DaysInRange(from, to time.Time) []time.Time {
	from, to = Day(from), Day(to)
	if to.Before(from) {
		return nil
	}
	days := make([]time.Time, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// WorkingDays counts Monday to Friday days in [from, to]. Holidays are not
// modelled.
func WorkingDays(from, to time.Time) int {
	n := 0
	for _, d := range DaysInRange(from, to) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}
