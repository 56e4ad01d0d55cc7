package payroll

import (
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/employee"
)

// Kind selects which report a stored summary belongs to.
type Kind string

const (
	KindPayroll     Kind = "payroll"
	KindPerformance Kind = "performance"
)

func (k Kind) Valid() bool {
	return k == KindPayroll || k == KindPerformance
}

// SummaryStatus enum
type SummaryStatus string

const (
	SummaryStatusDraft     SummaryStatus = "draft"
	SummaryStatusFinalized SummaryStatus = "finalized"
)

type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingAverage   Rating = "Average"
	RatingPoor      Rating = "Poor"
)

// Figures are the per-employee period aggregates derived from ledger rows.
type Figures struct {
	PresentDays      int
	LateDays         int
	AbsentDays       int
	LeaveDays        int
	TotalWorkingDays int

	TotalHoursWorked float64
	TotalOTHours     float64

	BaseSalary     float64
	TotalDeduction float64
	TotalOTAmount  float64
	NetSalary      float64

	AttendanceRate   float64
	PunctualityRate  float64
	OTScore          float64
	PerformanceScore int
	Rating           Rating
}

// PeriodSummary - Stored aggregate for one employee over one period
type PeriodSummary struct {
	ID             string
	EmployeeID     string
	EmployeeNumber string
	EmployeeName   string
	Kind           Kind
	PeriodStart    time.Time
	PeriodEnd      time.Time
	SalaryType     employee.SalaryType
	Figures        Figures
	ScoreOverride  bool
	OverrideNote   *string
	Status         SummaryStatus
	LastUpdatedBy  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Locked reports whether recomputation must leave the summary untouched.
func (s PeriodSummary) Locked() bool {
	return s.ScoreOverride || s.Status == SummaryStatusFinalized
}
