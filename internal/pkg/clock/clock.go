// Package clock implements naive "HH:mm" wall-clock arithmetic.
// Values carry no timezone; a day is 1440 minutes and overnight spans wrap
// exactly once.
package clock

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const MinutesPerDay = 24 * 60

var (
	ErrInvalidTimeFormat = errors.New("invalid time format, expected HH:mm")
	ErrInvalidDate       = errors.New("invalid date, expected dd/mm/yyyy or YYYY-MM-DD")
)

var canonicalRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// ToMinutes converts a canonical 24-hour "HH:mm" value to minutes from midnight.
func ToMinutes(hhmm string) (int, error) {
	m := canonicalRegex.FindStringSubmatch(hhmm)
	if m == nil {
		return 0, fmt.Errorf("%q: %w", hhmm, ErrInvalidTimeFormat)
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return h*60 + mm, nil
}

// FromMinutes renders minutes (any value, wrapped to one day) as "HH:mm".
func FromMinutes(minutes int) string {
	minutes = ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// HoursBetween returns the non-negative duration in hours from inTime to
// outTime. A full day is added when outNextDay is set or when the raw
// difference is negative.
func HoursBetween(inTime, outTime string, outNextDay bool) (float64, error) {
	in, err := ToMinutes(inTime)
	if err != nil {
		return 0, err
	}
	out, err := ToMinutes(outTime)
	if err != nil {
		return 0, err
	}
	return float64(spanMinutes(in, out, outNextDay)) / 60, nil
}

func spanMinutes(in, out int, outNextDay bool) int {
	diff := out - in
	if outNextDay || diff < 0 {
		diff += MinutesPerDay
	}
	return diff
}

// IsLate reports whether inTime is strictly after shiftStart.
func IsLate(inTime, shiftStart string) (bool, error) {
	in, err := ToMinutes(inTime)
	if err != nil {
		return false, err
	}
	start, err := ToMinutes(shiftStart)
	if err != nil {
		return false, err
	}
	return in > start, nil
}

var (
	colonRegex   = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})(?::\d{1,2})?$`)
	compactRegex = regexp.MustCompile(`^(\d{3,4})$`)
)

// NormalizeClock turns the loose forms found in punch exports into canonical
// "HH:mm": "9:5", "09:05:33", "905", "0905", "9:05 pm", "09:05PM", "12 am".
func NormalizeClock(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("empty time: %w", ErrInvalidTimeFormat)
	}

	meridiem := ""
	for _, suffix := range []string{"am", "pm", "a.m.", "p.m."} {
		if strings.HasSuffix(s, suffix) {
			meridiem = suffix[:1]
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	var h, m int
	switch {
	case colonRegex.MatchString(s):
		parts := colonRegex.FindStringSubmatch(s)
		h, _ = strconv.Atoi(parts[1])
		m, _ = strconv.Atoi(parts[2])
	case compactRegex.MatchString(s):
		n, _ := strconv.Atoi(s)
		h, m = n/100, n%100
	case meridiem != "" && len(s) <= 2 && isDigits(s):
		h, _ = strconv.Atoi(s)
	default:
		return "", fmt.Errorf("%q: %w", raw, ErrInvalidTimeFormat)
	}

	if meridiem != "" {
		if h < 1 || h > 12 {
			return "", fmt.Errorf("%q: %w", raw, ErrInvalidTimeFormat)
		}
		if h == 12 {
			h = 0
		}
		if meridiem == "p" {
			h += 12
		}
	}

	if h > 23 || m > 59 {
		return "", fmt.Errorf("%q: %w", raw, ErrInvalidTimeFormat)
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
