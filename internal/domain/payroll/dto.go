package payroll

import (
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/money"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/validator"
)

// ========== PERIOD DTOs ==========

type PeriodRequest struct {
	From string `json:"from"`
	To   string `json:"to"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *PeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	start, okFrom := validator.IsValidDate(r.From)
	if !okFrom {
		errs.Add("from", "from is required and must be dd/mm/yyyy or YYYY-MM-DD")
	}
	end, okTo := validator.IsValidDate(r.To)
	if !okTo {
		errs.Add("to", "to is required and must be dd/mm/yyyy or YYYY-MM-DD")
	}
	if okFrom && okTo && end.Before(start) {
		errs.Add("to", "to must not be before from")
	}
	r.Start, r.End = start, end

	return errs.OrNil()
}

// MonthOf returns the calendar month containing t as a resolved period.
func MonthOf(t time.Time) PeriodRequest {
	day := clock.Day(t)
	start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return PeriodRequest{
		From:  clock.FormatDay(start),
		To:    clock.FormatDay(end),
		Start: start,
		End:   end,
	}
}

// ========== OVERRIDE DTOs ==========

type OverrideRequest struct {
	ID               string   `json:"-"`
	BaseSalary       *float64 `json:"base_salary,omitempty"`
	TotalDeduction   *float64 `json:"total_deduction,omitempty"`
	TotalOTAmount    *float64 `json:"total_ot_amount,omitempty"`
	NetSalary        *float64 `json:"net_salary,omitempty"`
	PerformanceScore *int     `json:"performance_score,omitempty"`
	Rating           *string  `json:"rating,omitempty"`
	Note             *string  `json:"note,omitempty"`
}

func (r *OverrideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	amounts := []struct {
		field string
		value *float64
	}{
		{"base_salary", r.BaseSalary},
		{"total_deduction", r.TotalDeduction},
		{"total_ot_amount", r.TotalOTAmount},
		{"net_salary", r.NetSalary},
	}
	for _, a := range amounts {
		if !validator.IsNonNegative(a.value) {
			errs.Add(a.field, a.field+" must not be negative")
		}
	}
	if r.PerformanceScore != nil && (*r.PerformanceScore < 0 || *r.PerformanceScore > 100) {
		errs.Add("performance_score", "performance_score must be between 0 and 100")
	}
	if r.Rating != nil {
		valid := []string{string(RatingExcellent), string(RatingGood), string(RatingAverage), string(RatingPoor)}
		if !validator.IsInSlice(*r.Rating, valid) {
			errs.Add("rating", "rating must be one of: Excellent, Good, Average, Poor")
		}
	}
	if r.BaseSalary == nil && r.TotalDeduction == nil && r.TotalOTAmount == nil &&
		r.NetSalary == nil && r.PerformanceScore == nil && r.Rating == nil {
		errs.Add("body", "at least one field must be overridden")
	}

	return errs.OrNil()
}

// Apply writes the overridden values onto f.
func (r OverrideRequest) Apply(f *Figures) {
	if r.BaseSalary != nil {
		f.BaseSalary = *r.BaseSalary
	}
	if r.TotalDeduction != nil {
		f.TotalDeduction = *r.TotalDeduction
	}
	if r.TotalOTAmount != nil {
		f.TotalOTAmount = *r.TotalOTAmount
	}
	if r.NetSalary != nil {
		f.NetSalary = *r.NetSalary
	}
	if r.PerformanceScore != nil {
		f.PerformanceScore = *r.PerformanceScore
	}
	if r.Rating != nil {
		f.Rating = Rating(*r.Rating)
	}
}

// ========== RESPONSE DTOs ==========

type SummaryResponse struct {
	ID               string  `json:"id"`
	EmployeeID       string  `json:"employee_id"`
	EmployeeNumber   string  `json:"employee_number"`
	EmployeeName     string  `json:"employee_name"`
	Kind             Kind    `json:"kind"`
	PeriodStart      string  `json:"period_start"`
	PeriodEnd        string  `json:"period_end"`
	SalaryType       string  `json:"salary_type"`
	PresentDays      int     `json:"present_days"`
	LateDays         int     `json:"late_days"`
	AbsentDays       int     `json:"absent_days"`
	LeaveDays        int     `json:"leave_days"`
	TotalWorkingDays int     `json:"total_working_days"`
	TotalHoursWorked float64 `json:"total_hours_worked"`
	TotalOTHours     float64 `json:"total_ot_hours"`
	BaseSalary       float64 `json:"base_salary"`
	TotalDeduction   float64 `json:"total_deduction"`
	TotalOTAmount    float64 `json:"total_ot_amount"`
	NetSalary        float64 `json:"net_salary"`
	AttendanceRate   float64 `json:"attendance_rate"`
	PunctualityRate  float64 `json:"punctuality_rate"`
	OTScore          float64 `json:"ot_score"`
	PerformanceScore int     `json:"performance_score"`
	Rating           Rating  `json:"rating"`
	ScoreOverride    bool    `json:"score_override"`
	OverrideNote     *string `json:"override_note,omitempty"`
	Status           string  `json:"status"`
	LastUpdatedBy    string  `json:"last_updated_by,omitempty"`
}

type ReportTotals struct {
	Employees      int     `json:"employees"`
	BaseSalary     float64 `json:"base_salary"`
	TotalDeduction float64 `json:"total_deduction"`
	TotalOTAmount  float64 `json:"total_ot_amount"`
	NetSalary      float64 `json:"net_salary"`
	AverageScore   float64 `json:"average_score"`
}

type PeriodReport struct {
	Kind        Kind              `json:"kind"`
	PeriodStart string            `json:"period_start"`
	PeriodEnd   string            `json:"period_end"`
	Rows        []SummaryResponse `json:"rows"`
	Totals      ReportTotals      `json:"totals"`
}

type RecomputeResult struct {
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	Recomputed  int    `json:"recomputed"`
	Created     int    `json:"created"`
	Skipped     int    `json:"skipped"`
}

func MapSummaryToResponse(s PeriodSummary) SummaryResponse {
	f := s.Figures
	return SummaryResponse{
		ID:               s.ID,
		EmployeeID:       s.EmployeeID,
		EmployeeNumber:   s.EmployeeNumber,
		EmployeeName:     s.EmployeeName,
		Kind:             s.Kind,
		PeriodStart:      clock.FormatDay(s.PeriodStart),
		PeriodEnd:        clock.FormatDay(s.PeriodEnd),
		SalaryType:       string(s.SalaryType),
		PresentDays:      f.PresentDays,
		LateDays:         f.LateDays,
		AbsentDays:       f.AbsentDays,
		LeaveDays:        f.LeaveDays,
		TotalWorkingDays: f.TotalWorkingDays,
		TotalHoursWorked: money.Round2(f.TotalHoursWorked),
		TotalOTHours:     money.Round2(f.TotalOTHours),
		BaseSalary:       money.Round2(f.BaseSalary),
		TotalDeduction:   money.Round2(f.TotalDeduction),
		TotalOTAmount:    money.Round2(f.TotalOTAmount),
		NetSalary:        money.Round2(f.NetSalary),
		AttendanceRate:   money.Round2(f.AttendanceRate),
		PunctualityRate:  money.Round2(f.PunctualityRate),
		OTScore:          money.Round2(f.OTScore),
		PerformanceScore: f.PerformanceScore,
		Rating:           f.Rating,
		ScoreOverride:    s.ScoreOverride,
		OverrideNote:     s.OverrideNote,
		Status:           string(s.Status),
		LastUpdatedBy:    s.LastUpdatedBy,
	}
}
