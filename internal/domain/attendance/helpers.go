package attendance

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/validator"
)

// resolveTimePair normalizes optional in/out values. When outNextDay is not
// given it is inferred from the clock values wrapping past midnight.
func resolveTimePair(in, out *string, outNextDay *bool) (TimePair, validator.ValidationErrors) {
	var errs validator.ValidationErrors
	var pair TimePair

	if in != nil && !validator.IsEmpty(*in) {
		if hhmm, ok := validator.IsValidClock(*in); ok {
			pair.In = &hhmm
		} else {
			errs.Add("in_time", "in_time must be a valid time")
		}
	}
	if out != nil && !validator.IsEmpty(*out) {
		if hhmm, ok := validator.IsValidClock(*out); ok {
			pair.Out = &hhmm
		} else {
			errs.Add("out_time", "out_time must be a valid time")
		}
	}

	switch {
	case pair.Out == nil:
		pair.OutNextDay = false
	case outNextDay != nil:
		pair.OutNextDay = *outNextDay
	case pair.In != nil:
		pair.OutNextDay = WrapsMidnight(*pair.In, *pair.Out)
	}
	return pair, errs
}

// WrapsMidnight reports whether out is on the clock before in.
func WrapsMidnight(in, out string) bool {
	inMin, err1 := clock.ToMinutes(in)
	outMin, err2 := clock.ToMinutes(out)
	if err1 != nil || err2 != nil {
		return false
	}
	return outMin < inMin
}

func valueOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

func indexed(prefix string, i int, field string) string {
	if field == "" {
		return fmt.Sprintf("%s[%d]", prefix, i)
	}
	return fmt.Sprintf("%s[%d].%s", prefix, i, field)
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func nonNilDeductions(d []DeductionDetail) []DeductionDetail {
	if d == nil {
		return []DeductionDetail{}
	}
	return d
}

func nonNilOT(d []OTDetail) []OTDetail {
	if d == nil {
		return []OTDetail{}
	}
	return d
}
