package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type summaryRepository struct {
	db *database.DB
}

func NewSummaryRepository(db *database.DB) payroll.SummaryRepository {
	return &summaryRepository{db: db}
}

const summaryColumns = `
	id, employee_id, employee_number, employee_name, kind, period_start, period_end, salary_type,
	present_days, late_days, absent_days, leave_days, total_working_days,
	total_hours_worked, total_ot_hours, base_salary, total_deduction, total_ot_amount, net_salary,
	attendance_rate, punctuality_rate, ot_score, performance_score, rating,
	score_override, override_note, status, last_updated_by, created_at, updated_at`

func scanSummary(row pgx.Row) (payroll.PeriodSummary, error) {
	var s payroll.PeriodSummary
	f := &s.Figures
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.EmployeeNumber, &s.EmployeeName, &s.Kind, &s.PeriodStart, &s.PeriodEnd, &s.SalaryType,
		&f.PresentDays, &f.LateDays, &f.AbsentDays, &f.LeaveDays, &f.TotalWorkingDays,
		&f.TotalHoursWorked, &f.TotalOTHours, &f.BaseSalary, &f.TotalDeduction, &f.TotalOTAmount, &f.NetSalary,
		&f.AttendanceRate, &f.PunctualityRate, &f.OTScore, &f.PerformanceScore, &f.Rating,
		&s.ScoreOverride, &s.OverrideNote, &s.Status, &s.LastUpdatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return payroll.PeriodSummary{}, err
	}
	s.PeriodStart, s.PeriodEnd = clock.Day(s.PeriodStart), clock.Day(s.PeriodEnd)
	return s, nil
}

func (r *summaryRepository) GetByKey(ctx context.Context, employeeID string, kind payroll.Kind, start, end time.Time) (*payroll.PeriodSummary, error) {
	if !isUUID(employeeID) {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + summaryColumns + `
		FROM period_summaries
		WHERE employee_id = $1 AND kind = $2 AND period_start = $3 AND period_end = $4
	`

	s, err := scanSummary(q.QueryRow(ctx, query, employeeID, kind, clock.Day(start), clock.Day(end)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get period summary: %w", err)
	}
	return &s, nil
}

func (r *summaryRepository) GetByID(ctx context.Context, id string) (payroll.PeriodSummary, error) {
	if !isUUID(id) {
		return payroll.PeriodSummary{}, payroll.ErrSummaryNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + summaryColumns + `
		FROM period_summaries
		WHERE id = $1
	`

	s, err := scanSummary(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PeriodSummary{}, payroll.ErrSummaryNotFound
		}
		return payroll.PeriodSummary{}, fmt.Errorf("failed to get period summary with id %s: %w", id, err)
	}
	return s, nil
}

func (r *summaryRepository) Upsert(ctx context.Context, s payroll.PeriodSummary) (payroll.PeriodSummary, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.PeriodSummary{}, fmt.Errorf("failed to generate summary id: %w", err)
	}

	query := `
		INSERT INTO period_summaries (
			id, employee_id, employee_number, employee_name, kind, period_start, period_end, salary_type,
			present_days, late_days, absent_days, leave_days, total_working_days,
			total_hours_worked, total_ot_hours, base_salary, total_deduction, total_ot_amount, net_salary,
			attendance_rate, punctuality_rate, ot_score, performance_score, rating,
			score_override, override_note, status, last_updated_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24,
			$25, $26, $27, $28
		)
		ON CONFLICT (employee_id, kind, period_start, period_end) DO UPDATE SET
			employee_number = EXCLUDED.employee_number,
			employee_name = EXCLUDED.employee_name,
			salary_type = EXCLUDED.salary_type,
			present_days = EXCLUDED.present_days,
			late_days = EXCLUDED.late_days,
			absent_days = EXCLUDED.absent_days,
			leave_days = EXCLUDED.leave_days,
			total_working_days = EXCLUDED.total_working_days,
			total_hours_worked = EXCLUDED.total_hours_worked,
			total_ot_hours = EXCLUDED.total_ot_hours,
			base_salary = EXCLUDED.base_salary,
			total_deduction = EXCLUDED.total_deduction,
			total_ot_amount = EXCLUDED.total_ot_amount,
			net_salary = EXCLUDED.net_salary,
			attendance_rate = EXCLUDED.attendance_rate,
			punctuality_rate = EXCLUDED.punctuality_rate,
			ot_score = EXCLUDED.ot_score,
			performance_score = EXCLUDED.performance_score,
			rating = EXCLUDED.rating,
			score_override = EXCLUDED.score_override,
			override_note = EXCLUDED.override_note,
			status = EXCLUDED.status,
			last_updated_by = EXCLUDED.last_updated_by,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	f := s.Figures
	err = q.QueryRow(ctx, query,
		id, s.EmployeeID, s.EmployeeNumber, s.EmployeeName, s.Kind, clock.Day(s.PeriodStart), clock.Day(s.PeriodEnd), s.SalaryType,
		f.PresentDays, f.LateDays, f.AbsentDays, f.LeaveDays, f.TotalWorkingDays,
		f.TotalHoursWorked, f.TotalOTHours, f.BaseSalary, f.TotalDeduction, f.TotalOTAmount, f.NetSalary,
		f.AttendanceRate, f.PunctualityRate, f.OTScore, f.PerformanceScore, f.Rating,
		s.ScoreOverride, s.OverrideNote, s.Status, s.LastUpdatedBy,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return payroll.PeriodSummary{}, fmt.Errorf("failed to upsert period summary for employee %s: %w", s.EmployeeID, err)
	}

	s.PeriodStart, s.PeriodEnd = clock.Day(s.PeriodStart), clock.Day(s.PeriodEnd)
	return s, nil
}

func (r *summaryRepository) ListPeriod(ctx context.Context, kind payroll.Kind, start, end time.Time) ([]payroll.PeriodSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + summaryColumns + `
		FROM period_summaries
		WHERE kind = $1 AND period_start = $2 AND period_end = $3
		ORDER BY CASE WHEN employee_number ~ '^[0-9]+$' THEN LPAD(employee_number, 20, '0') ELSE employee_number END ASC
	`

	rows, err := q.Query(ctx, query, kind, clock.Day(start), clock.Day(end))
	if err != nil {
		return nil, fmt.Errorf("failed to list period summaries: %w", err)
	}
	defer rows.Close()

	summaries := make([]payroll.PeriodSummary, 0)
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan period summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}
