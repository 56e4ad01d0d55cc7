package shift

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
)

var ErrInvalidShift = errors.New("invalid shift")

// Shift is a scheduled working window in naive local time. A shift whose
// end is earlier than its start crosses midnight.
type Shift struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (s Shift) Validate() error {
	if _, err := clock.ToMinutes(s.Start); err != nil {
		return fmt.Errorf("%w: start: %v", ErrInvalidShift, err)
	}
	if _, err := clock.ToMinutes(s.End); err != nil {
		return fmt.Errorf("%w: end: %v", ErrInvalidShift, err)
	}
	return nil
}

// IsNight reports whether the shift wraps past midnight.
func (s Shift) IsNight() bool {
	start, err1 := clock.ToMinutes(s.Start)
	end, err2 := clock.ToMinutes(s.End)
	if err1 != nil || err2 != nil {
		return false
	}
	return end < start
}

// ScheduledHours is the length of the shift. An invalid shift yields 0.
func (s Shift) ScheduledHours() float64 {
	h, err := clock.HoursBetween(s.Start, s.End, s.IsNight())
	if err != nil {
		return 0
	}
	return h
}

// StartMinutes returns the shift start as minutes from midnight.
func (s Shift) StartMinutes() (int, error) {
	return clock.ToMinutes(s.Start)
}
