package punch

import (
	"fmt"
	"sort"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
)

// PairingWindowHours bounds how far after the scheduled shift start a punch
// may still belong to that shift.
const PairingWindowHours = 14

type Mode string

const (
	// ModeWindow treats punches as untyped and applies the window rule.
	ModeWindow Mode = "window"
	// ModeTyped trusts the in/out flag: earliest in, latest out relative to
	// the shift start.
	ModeTyped Mode = "typed"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeWindow:
		return ModeWindow, nil
	case ModeTyped:
		return ModeTyped, nil
	}
	return "", fmt.Errorf("unknown pairing mode %q", s)
}

// Pair is the resolved in/out of one employee-day. Nil times mean the punch
// was not found.
type Pair struct {
	InTime     *string
	OutTime    *string
	OutNextDay bool
}

type Engine struct {
	Mode Mode
}

func NewEngine(mode Mode) Engine {
	if mode == "" {
		mode = ModeWindow
	}
	return Engine{Mode: mode}
}

// Resolve pairs one group's punches against the employee's shift.
func (e Engine) Resolve(s shift.Shift, punches []Punch) (Pair, error) {
	start, err := s.StartMinutes()
	if err != nil {
		return Pair{}, fmt.Errorf("failed to read shift start: %w", err)
	}
	if e.Mode == ModeTyped {
		return PairTyped(start, punches), nil
	}
	times := make([]string, 0, len(punches))
	for _, p := range punches {
		times = append(times, p.Time)
	}
	return PairWindow(start, times)
}

type normalizedPunch struct {
	raw  int
	norm int
}

// PairWindow applies the window rule anchored at the scheduled shift start
// (minutes from midnight). Punches before the start are placed on the next
// day so night shifts need no special case. The in punch is the earliest
// within [start, start+14h]; the out punch is the earliest strictly after it
// inside the same window.
func PairWindow(shiftStart int, times []string) (Pair, error) {
	windowEnd := shiftStart + PairingWindowHours*60

	points := make([]normalizedPunch, 0, len(times))
	for _, t := range times {
		m, err := clock.ToMinutes(t)
		if err != nil {
			return Pair{}, err
		}
		n := m
		if m < shiftStart {
			n += clock.MinutesPerDay
		}
		points = append(points, normalizedPunch{raw: m, norm: n})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].norm < points[j].norm })

	var pair Pair
	inIdx := -1
	for i, p := range points {
		if p.norm >= shiftStart && p.norm <= windowEnd {
			inIdx = i
			break
		}
	}
	if inIdx < 0 {
		return pair, nil
	}
	in := points[inIdx]
	inTime := clock.FromMinutes(in.raw)
	pair.InTime = &inTime

	for _, p := range points[inIdx+1:] {
		if p.norm > in.norm && p.norm <= windowEnd {
			outTime := clock.FromMinutes(p.raw)
			pair.OutTime = &outTime
			pair.OutNextDay = p.raw < in.raw
			break
		}
	}
	return pair, nil
}

// typedLeadMinutes is how long before the shift start the typed timeline
// begins. Check-ins that early still count as the same shift.
const typedLeadMinutes = (24 - PairingWindowHours) / 2 * 60

// PairTyped takes the earliest check-in and the latest check-out on a
// timeline that starts shortly before the shift, so a 05:45 check-out ranks
// after a 23:00 one on a night shift.
func PairTyped(shiftStart int, punches []Punch) Pair {
	origin := shiftStart - typedLeadMinutes
	position := func(m int) int {
		return ((m-origin)%clock.MinutesPerDay + clock.MinutesPerDay) % clock.MinutesPerDay
	}

	in, out := -1, -1
	for _, p := range punches {
		m, err := clock.ToMinutes(p.Time)
		if err != nil {
			continue
		}
		switch p.Direction {
		case DirectionIn:
			if in < 0 || position(m) < position(in) {
				in = m
			}
		case DirectionOut:
			if out < 0 || position(m) > position(out) {
				out = m
			}
		}
	}

	var pair Pair
	if in >= 0 {
		t := clock.FromMinutes(in)
		pair.InTime = &t
	}
	if out >= 0 {
		t := clock.FromMinutes(out)
		pair.OutTime = &t
		pair.OutNextDay = in >= 0 && out < in
	}
	return pair
}
