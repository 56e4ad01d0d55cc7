// Package aggregation rolls ledger rows into period payroll and performance
// figures. It is pure: callers load the rows.
package aggregation

import (
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/service/financial"
	"github.com/shopspring/decimal"
)

// Policy holds the performance weighting and rating thresholds.
type Policy struct {
	AttendanceWeight  float64
	PunctualityWeight float64
	OTWeight          float64

	// OTHoursPerWorkingDay is the OT volume that saturates the OT score.
	OTHoursPerWorkingDay float64

	ExcellentMin int
	GoodMin      int
	AverageMin   int
}

var DefaultPolicy = Policy{
	AttendanceWeight:     0.5,
	PunctualityWeight:    0.3,
	OTWeight:             0.2,
	OTHoursPerWorkingDay: 1,
	ExcellentMin:         90,
	GoodMin:              75,
	AverageMin:           60,
}

type Engine struct {
	policy Policy
}

func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Rate maps a performance score to its rating band.
func (p Policy) Rate(score int) payroll.Rating {
	switch {
	case score >= p.ExcellentMin:
		return payroll.RatingExcellent
	case score >= p.GoodMin:
		return payroll.RatingGood
	case score >= p.AverageMin:
		return payroll.RatingAverage
	default:
		return payroll.RatingPoor
	}
}

// Summarize computes figures for emp over [start, end]. Rows belonging to
// other employees, outside the range or soft-deleted are ignored.
func (e *Engine) Summarize(emp employee.Employee, start, end time.Time, entries []attendance.Entry) payroll.Figures {
	start, end = clock.Day(start), clock.Day(end)

	var f payroll.Figures
	basePay := decimal.Zero
	deduction := decimal.Zero
	otAmount := decimal.Zero
	hours := decimal.Zero
	otHours := decimal.Zero

	for _, entry := range entries {
		if entry.IsDeleted || entry.EmployeeID != emp.ID {
			continue
		}
		day := clock.Day(entry.Date)
		if day.Before(start) || day.After(end) {
			continue
		}

		switch entry.Status {
		case attendance.StatusPresent:
			f.PresentDays++
		case attendance.StatusLate:
			f.PresentDays++
			f.LateDays++
		case attendance.StatusAbsent:
			f.AbsentDays++
		case attendance.StatusLeave:
			f.LeaveDays++
		}

		fin := entry.Financials
		basePay = basePay.Add(decimal.NewFromFloat(fin.BasePay))
		deduction = deduction.Add(decimal.NewFromFloat(fin.Deduction))
		otAmount = otAmount.Add(decimal.NewFromFloat(fin.OTAmount))
		hours = hours.Add(decimal.NewFromFloat(fin.HoursWorked))
		otHours = otHours.Add(decimal.NewFromFloat(financial.OTHours(fin)))
	}

	f.TotalWorkingDays = clock.WorkingDays(start, end)
	f.TotalHoursWorked = hours.InexactFloat64()
	f.TotalOTHours = otHours.InexactFloat64()
	f.TotalDeduction = deduction.InexactFloat64()
	f.TotalOTAmount = otAmount.InexactFloat64()

	paidDays := f.PresentDays + f.LeaveDays
	switch emp.SalaryType {
	case employee.SalaryTypeMonthly:
		if f.TotalWorkingDays > 0 {
			f.BaseSalary = decimal.NewFromFloat(emp.MonthlySalary).
				Mul(decimal.NewFromInt(int64(paidDays))).
				Div(decimal.NewFromInt(int64(f.TotalWorkingDays))).
				InexactFloat64()
		}
	default:
		f.BaseSalary = basePay.InexactFloat64()
	}

	net := decimal.NewFromFloat(f.BaseSalary).Sub(deduction).Add(otAmount)
	if net.IsNegative() {
		net = decimal.Zero
	}
	f.NetSalary = net.InexactFloat64()

	divisor := float64(max(1, f.TotalWorkingDays))
	f.AttendanceRate = math.Min(100, float64(paidDays)/divisor*100)
	if f.PresentDays > 0 {
		f.PunctualityRate = float64(f.PresentDays-f.LateDays) / float64(f.PresentDays) * 100
	} else {
		f.PunctualityRate = 100
	}
	saturation := divisor * e.policy.OTHoursPerWorkingDay
	if saturation > 0 {
		f.OTScore = math.Min(100, f.TotalOTHours/saturation*100)
	}

	f.PerformanceScore = int(math.Round(
		f.AttendanceRate*e.policy.AttendanceWeight +
			f.PunctualityRate*e.policy.PunctualityWeight +
			f.OTScore*e.policy.OTWeight,
	))
	f.Rating = e.policy.Rate(f.PerformanceScore)

	return f
}
