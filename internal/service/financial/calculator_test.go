package financial

import (
	"testing"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/shift"
	"github.com/stretchr/testify/assert"
)

var dayShift = shift.Shift{Start: "09:00", End: "17:00"}

func str(s string) *string { return &s }

func TestClassify(t *testing.T) {
	assert.Equal(t, CaseLeave, Classify(attendance.StatusLeave, str("09:00"), nil))
	assert.Equal(t, CaseAbsent, Classify(attendance.StatusAbsent, str("09:00"), str("17:00")))
	assert.Equal(t, CaseFullPair, Classify(attendance.StatusLate, str("09:10"), str("17:00")))
	assert.Equal(t, CasePartialPunch, Classify(attendance.StatusPresent, str("09:00"), nil))
	assert.Equal(t, CasePartialPunch, Classify(attendance.StatusPresent, nil, str("17:00")))
	assert.Equal(t, CaseAbsent, Classify(attendance.StatusPresent, nil, str("")))
}

func TestCompute_FullPair(t *testing.T) {
	f := Compute(Input{
		Status:     attendance.StatusPresent,
		InTime:     str("09:00"),
		OutTime:    str("17:00"),
		Shift:      dayShift,
		HourlyRate: 100,
	})
	assert.Equal(t, 8.0, f.HoursWorked)
	assert.Equal(t, 8.0, f.ScheduledHours)
	assert.Equal(t, 800.0, f.BasePay)
	assert.Equal(t, 800.0, f.FinalDayEarning)
}

func TestCompute_NightShiftPair(t *testing.T) {
	f := Compute(Input{
		Status:     attendance.StatusLate,
		InTime:     str("22:10"),
		OutTime:    str("05:45"),
		OutNextDay: true,
		Shift:      shift.Shift{Start: "22:00", End: "06:00"},
		HourlyRate: 60,
	})
	assert.InDelta(t, 7.5833, f.HoursWorked, 0.001)
	assert.InDelta(t, 455.0, f.BasePay, 0.001)
}

func TestCompute_PartialPunchPenalty(t *testing.T) {
	f := Compute(Input{
		Status:     attendance.StatusPresent,
		InTime:     str("09:05"),
		Shift:      dayShift,
		HourlyRate: 100,
	})
	assert.Equal(t, 8.0, f.HoursWorked)
	assert.Equal(t, 400.0, f.BasePay)
}

func TestCompute_LeaveIsFullyPaid(t *testing.T) {
	f := Compute(Input{Status: attendance.StatusLeave, Shift: dayShift, HourlyRate: 50})
	assert.Equal(t, 8.0, f.HoursWorked)
	assert.Equal(t, 400.0, f.BasePay)
	assert.Equal(t, 400.0, f.FinalDayEarning)
}

func TestCompute_Absent(t *testing.T) {
	f := Compute(Input{Status: attendance.StatusAbsent, Shift: dayShift, HourlyRate: 50})
	assert.Zero(t, f.BasePay)
	assert.Zero(t, f.HoursWorked)
	assert.Zero(t, f.FinalDayEarning)
}

func TestCompute_OvertimeFlatAndItemized(t *testing.T) {
	base := Input{
		Status:     attendance.StatusPresent,
		InTime:     str("09:00"),
		OutTime:    str("17:00"),
		Shift:      dayShift,
		HourlyRate: 100,
	}

	flat := base
	flat.Adjustment = attendance.Adjustment{OTHours: 2, OTMultiplier: 1.5}
	f := Compute(flat)
	assert.Equal(t, 300.0, f.OTAmount)
	assert.Equal(t, 1100.0, f.FinalDayEarning)

	itemized := base
	itemized.Adjustment = attendance.Adjustment{
		OTHours:      10,
		OTMultiplier: 3,
		OTDetails: []attendance.OTDetail{
			{Type: attendance.OTDetailManual, Amount: 120, Reason: "weekend cover"},
			{Type: attendance.OTDetailCalculated, Hours: 1, Rate: 2, Reason: "late release"},
		},
	}
	f = Compute(itemized)
	assert.Equal(t, 320.0, f.OTAmount, "itemized detail wins over the flat entry")
	assert.Equal(t, 1120.0, f.FinalDayEarning)
}

func TestCompute_DeductionPrecedence(t *testing.T) {
	in := Input{
		Status:     attendance.StatusPresent,
		InTime:     str("09:00"),
		OutTime:    str("17:00"),
		Shift:      dayShift,
		HourlyRate: 100,
		Adjustment: attendance.Adjustment{
			Deduction: 500,
			DeductionDetails: []attendance.DeductionDetail{
				{Amount: 30, Reason: "uniform"},
				{Amount: 20, Reason: "meal"},
			},
		},
	}
	f := Compute(in)
	assert.Equal(t, 50.0, f.Deduction)
	assert.Equal(t, 750.0, f.FinalDayEarning)
}

func TestCompute_FinalEarningNeverNegative(t *testing.T) {
	f := Compute(Input{
		Status:     attendance.StatusPresent,
		InTime:     str("09:00"),
		OutTime:    str("10:00"),
		Shift:      dayShift,
		HourlyRate: 10,
		Adjustment: attendance.Adjustment{Deduction: 1000, OTHours: 1, OTMultiplier: 1},
	})
	assert.Equal(t, 0.0, f.FinalDayEarning)
	assert.Equal(t, 1000.0, f.Deduction)
}

func TestCompute_Idempotent(t *testing.T) {
	in := Input{
		Status:     attendance.StatusLate,
		InTime:     str("09:30"),
		OutTime:    str("18:00"),
		Shift:      dayShift,
		HourlyRate: 42.5,
		Adjustment: attendance.Adjustment{
			OTDetails:        []attendance.OTDetail{{Type: attendance.OTDetailCalculated, Hours: 1, Rate: 1.5}},
			DeductionDetails: []attendance.DeductionDetail{{Amount: 10}},
		},
	}
	assert.Equal(t, Compute(in), Compute(in))
}

func TestCompute_SparseInputDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		f := Compute(Input{})
		assert.Zero(t, f.FinalDayEarning)
	})
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, attendance.StatusPresent, DeriveStatus(str("09:00"), str("17:00"), dayShift))
	assert.Equal(t, attendance.StatusLate, DeriveStatus(str("09:01"), str("17:00"), dayShift))
	assert.Equal(t, attendance.StatusAbsent, DeriveStatus(nil, nil, dayShift))
	assert.Equal(t, attendance.StatusPresent, DeriveStatus(nil, str("17:00"), dayShift))
}

func TestOTHours(t *testing.T) {
	assert.Equal(t, 2.0, OTHours(attendance.Financials{OTHours: 2}))
	assert.Equal(t, 1.5, OTHours(attendance.Financials{
		OTHours:   9,
		OTDetails: []attendance.OTDetail{{Type: attendance.OTDetailCalculated, Hours: 1.5, Rate: 1}},
	}))
}
