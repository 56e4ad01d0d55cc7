// Package financial is the single place a ledger row's pay is computed.
// Every write path calls Compute; nothing re-derives the formula.
package financial

import (
	"math"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
)

// PartialPunchFactor is the share of scheduled pay granted when only one of
// in/out was recorded.
var PartialPunchFactor = 0.5

// Case is the closed set of pay situations.
type Case int

const (
	CaseAbsent Case = iota
	CaseLeave
	CaseFullPair
	CasePartialPunch
)

func (c Case) String() string {
	switch c {
	case CaseLeave:
		return "leave"
	case CaseFullPair:
		return "full_pair"
	case CasePartialPunch:
		return "partial_punch"
	default:
		return "absent"
	}
}

// Input is everything Compute needs. Missing optional values are zero.
type Input struct {
	Status     attendance.Status
	InTime     *string
	OutTime    *string
	OutNextDay bool
	Shift      shift.Shift
	HourlyRate float64
	Adjustment attendance.Adjustment
}

// Classify picks the pay case. Leave and Absent are imposed by status; the
// others follow from which times are present.
func Classify(status attendance.Status, inTime, outTime *string) Case {
	switch status {
	case attendance.StatusLeave:
		return CaseLeave
	case attendance.StatusAbsent:
		return CaseAbsent
	}
	hasIn, hasOut := present(inTime), present(outTime)
	switch {
	case hasIn && hasOut:
		return CaseFullPair
	case hasIn || hasOut:
		return CasePartialPunch
	default:
		return CaseAbsent
	}
}

// Compute maps a day's inputs to its financials. It is pure: equal inputs
// give equal outputs.
func Compute(in Input) attendance.Financials {
	scheduled := in.Shift.ScheduledHours()
	rate := nonNegative(in.HourlyRate)

	var hours, base float64
	switch Classify(in.Status, in.InTime, in.OutTime) {
	case CaseLeave:
		// leave is always fully paid
		hours = scheduled
		base = scheduled * rate
	case CaseFullPair:
		h, err := clock.HoursBetween(*in.InTime, *in.OutTime, in.OutNextDay)
		if err != nil {
			h = 0
		}
		hours = h
		base = h * rate
	case CasePartialPunch:
		hours = scheduled
		base = scheduled * rate * PartialPunchFactor
	case CaseAbsent:
		// nothing earned
	}

	adj := in.Adjustment
	otAmount := OTAmount(adj, rate)
	deduction := DeductionAmount(adj)

	return attendance.Financials{
		HoursWorked:      hours,
		ScheduledHours:   scheduled,
		BasePay:          base,
		Deduction:        deduction,
		DeductionDetails: cloneDeductions(adj.DeductionDetails),
		OTMultiplier:     nonNegative(adj.OTMultiplier),
		OTHours:          nonNegative(adj.OTHours),
		OTAmount:         otAmount,
		OTDetails:        cloneOT(adj.OTDetails),
		FinalDayEarning:  math.Max(0, base-deduction+otAmount),
	}
}

// OTAmount sums itemized OT when present, otherwise falls back to the flat
// hours x hourly rate x multiplier.
func OTAmount(adj attendance.Adjustment, hourlyRate float64) float64 {
	if len(adj.OTDetails) > 0 {
		total := 0.0
		for _, d := range adj.OTDetails {
			switch d.Type {
			case attendance.OTDetailManual:
				total += nonNegative(d.Amount)
			case attendance.OTDetailCalculated:
				total += nonNegative(d.Hours) * nonNegative(d.Rate) * hourlyRate
			}
		}
		return total
	}
	return nonNegative(adj.OTHours) * hourlyRate * nonNegative(adj.OTMultiplier)
}

// DeductionAmount sums itemized deductions when present, otherwise returns
// the flat deduction.
func DeductionAmount(adj attendance.Adjustment) float64 {
	if len(adj.DeductionDetails) > 0 {
		total := 0.0
		for _, d := range adj.DeductionDetails {
			total += nonNegative(d.Amount)
		}
		return total
	}
	return nonNegative(adj.Deduction)
}

// OTHours returns the overtime hours a day contributes to period totals.
func OTHours(f attendance.Financials) float64 {
	if len(f.OTDetails) > 0 {
		total := 0.0
		for _, d := range f.OTDetails {
			total += nonNegative(d.Hours)
		}
		return total
	}
	return nonNegative(f.OTHours)
}

// DeriveStatus recomputes the status of a non-leave day from its times.
func DeriveStatus(inTime, outTime *string, s shift.Shift) attendance.Status {
	if !present(inTime) && !present(outTime) {
		return attendance.StatusAbsent
	}
	if present(inTime) {
		if late, err := clock.IsLate(*inTime, s.Start); err == nil && late {
			return attendance.StatusLate
		}
	}
	return attendance.StatusPresent
}

func present(s *string) bool {
	return s != nil && *s != ""
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

func cloneOT(d []attendance.OTDetail) []attendance.OTDetail {
	if len(d) == 0 {
		return nil
	}
	return append([]attendance.OTDetail(nil), d...)
}

func cloneDeductions(d []attendance.DeductionDetail) []attendance.DeductionDetail {
	if len(d) == 0 {
		return nil
	}
	return append([]attendance.DeductionDetail(nil), d...)
}
