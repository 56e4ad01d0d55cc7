package validator

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// Add appends a field error.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// OrNil returns nil when no errors were collected.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// IsValidDate accepts dd/mm/yyyy or ISO 8601 and returns the calendar day.
func IsValidDate(dateStr string) (time.Time, bool) {
	day, err := clock.ParseDay(dateStr)
	return day, err == nil
}

// IsValidClock normalizes a loose clock value to "HH:mm".
func IsValidClock(raw string) (string, bool) {
	hhmm, err := clock.NormalizeClock(raw)
	return hhmm, err == nil
}

// IsNonNegative reports whether an optional number is absent or >= 0.
func IsNonNegative(v *float64) bool {
	return v == nil || *v >= 0
}
