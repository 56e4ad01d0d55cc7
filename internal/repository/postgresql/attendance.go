package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type entryRepository struct {
	db *database.DB
}

func NewEntryRepository(db *database.DB) attendance.EntryRepository {
	return &entryRepository{db: db}
}

const entryColumns = `
	id, employee_id, employee_number, employee_name, date, status,
	in_time, out_time, out_next_day, shift_start, shift_end, hourly_rate,
	hours_worked, scheduled_hours, base_pay, deduction, deduction_details,
	ot_multiplier, ot_hours, ot_amount, ot_details, final_day_earning,
	ownership, source, last_updated_by, last_modified_at, is_deleted,
	created_at, updated_at`

func scanEntry(row pgx.Row) (attendance.Entry, error) {
	var (
		e                attendance.Entry
		deductionDetails []byte
		otDetails        []byte
	)
	err := row.Scan(
		&e.ID, &e.EmployeeID, &e.EmployeeNumber, &e.EmployeeName, &e.Date, &e.Status,
		&e.InTime, &e.OutTime, &e.OutNextDay, &e.Shift.Start, &e.Shift.End, &e.HourlyRate,
		&e.Financials.HoursWorked, &e.Financials.ScheduledHours, &e.Financials.BasePay,
		&e.Financials.Deduction, &deductionDetails,
		&e.Financials.OTMultiplier, &e.Financials.OTHours, &e.Financials.OTAmount,
		&otDetails, &e.Financials.FinalDayEarning,
		&e.Ownership, &e.Metadata.Source, &e.Metadata.LastUpdatedBy, &e.Metadata.LastModifiedAt,
		&e.IsDeleted, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return attendance.Entry{}, err
	}
	if err := unmarshalDetails(deductionDetails, &e.Financials.DeductionDetails); err != nil {
		return attendance.Entry{}, fmt.Errorf("failed to decode deduction_details: %w", err)
	}
	if err := unmarshalDetails(otDetails, &e.Financials.OTDetails); err != nil {
		return attendance.Entry{}, fmt.Errorf("failed to decode ot_details: %w", err)
	}
	e.Date = clock.Day(e.Date)
	return e, nil
}

// GetByKey implements attendance.EntryRepository.
func (r *entryRepository) GetByKey(ctx context.Context, employeeID string, date time.Time) (*attendance.Entry, error) {
	if !isUUID(employeeID) {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + entryColumns + `
		FROM attendance_entries
		WHERE employee_id = $1 AND date = $2
	`

	e, err := scanEntry(q.QueryRow(ctx, query, employeeID, clock.Day(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance entry: %w", err)
	}
	return &e, nil
}

// Upsert implements attendance.EntryRepository.
func (r *entryRepository) Upsert(ctx context.Context, e attendance.Entry) (attendance.Entry, bool, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Entry{}, false, fmt.Errorf("failed to generate entry id: %w", err)
	}
	deductionJSON, err := marshalDetails(e.Financials.DeductionDetails)
	if err != nil {
		return attendance.Entry{}, false, err
	}
	otJSON, err := marshalDetails(e.Financials.OTDetails)
	if err != nil {
		return attendance.Entry{}, false, err
	}

	query := `
		INSERT INTO attendance_entries (
			id, employee_id, employee_number, employee_name, date, status,
			in_time, out_time, out_next_day, shift_start, shift_end, hourly_rate,
			hours_worked, scheduled_hours, base_pay, deduction, deduction_details,
			ot_multiplier, ot_hours, ot_amount, ot_details, final_day_earning,
			ownership, source, last_updated_by, last_modified_at, is_deleted
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22,
			$23, $24, $25, $26, $27
		)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			employee_number = EXCLUDED.employee_number,
			employee_name = EXCLUDED.employee_name,
			status = EXCLUDED.status,
			in_time = EXCLUDED.in_time,
			out_time = EXCLUDED.out_time,
			out_next_day = EXCLUDED.out_next_day,
			shift_start = EXCLUDED.shift_start,
			shift_end = EXCLUDED.shift_end,
			hourly_rate = EXCLUDED.hourly_rate,
			hours_worked = EXCLUDED.hours_worked,
			scheduled_hours = EXCLUDED.scheduled_hours,
			base_pay = EXCLUDED.base_pay,
			deduction = EXCLUDED.deduction,
			deduction_details = EXCLUDED.deduction_details,
			ot_multiplier = EXCLUDED.ot_multiplier,
			ot_hours = EXCLUDED.ot_hours,
			ot_amount = EXCLUDED.ot_amount,
			ot_details = EXCLUDED.ot_details,
			final_day_earning = EXCLUDED.final_day_earning,
			ownership = EXCLUDED.ownership,
			source = EXCLUDED.source,
			last_updated_by = EXCLUDED.last_updated_by,
			last_modified_at = EXCLUDED.last_modified_at,
			is_deleted = EXCLUDED.is_deleted,
			updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted
	`

	f := e.Financials
	var inserted bool
	err = q.QueryRow(ctx, query,
		id, e.EmployeeID, e.EmployeeNumber, e.EmployeeName, clock.Day(e.Date), e.Status,
		e.InTime, e.OutTime, e.OutNextDay, e.Shift.Start, e.Shift.End, e.HourlyRate,
		f.HoursWorked, f.ScheduledHours, f.BasePay, f.Deduction, deductionJSON,
		f.OTMultiplier, f.OTHours, f.OTAmount, otJSON, f.FinalDayEarning,
		e.Ownership, e.Metadata.Source, e.Metadata.LastUpdatedBy, e.Metadata.LastModifiedAt, e.IsDeleted,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt, &inserted)
	if err != nil {
		return attendance.Entry{}, false, fmt.Errorf("failed to upsert attendance entry for employee %s on %s: %w",
			e.EmployeeID, clock.FormatDay(e.Date), err)
	}

	e.Date = clock.Day(e.Date)
	return e, inserted, nil
}

// ListRange implements attendance.EntryRepository.
func (r *entryRepository) ListRange(ctx context.Context, from, to time.Time, employeeID *string) ([]attendance.Entry, error) {
	if employeeID != nil && !isUUID(*employeeID) {
		return []attendance.Entry{}, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + entryColumns + `
		FROM attendance_entries
		WHERE date BETWEEN $1 AND $2
		  AND is_deleted = FALSE
		  AND ($3::uuid IS NULL OR employee_id = $3::uuid)
		ORDER BY date ASC,
			CASE WHEN employee_number ~ '^[0-9]+$' THEN LPAD(employee_number, 20, '0') ELSE employee_number END ASC
	`

	rows, err := q.Query(ctx, query, clock.Day(from), clock.Day(to), employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance entries: %w", err)
	}
	defer rows.Close()

	entries := make([]attendance.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// SoftDelete implements attendance.EntryRepository.
func (r *entryRepository) SoftDelete(ctx context.Context, employeeID string, date time.Time) error {
	if !isUUID(employeeID) {
		return attendance.ErrEntryNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_entries
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE employee_id = $1 AND date = $2 AND is_deleted = FALSE
	`

	tag, err := q.Exec(ctx, query, employeeID, clock.Day(date))
	if err != nil {
		return fmt.Errorf("failed to delete attendance entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrEntryNotFound
	}
	return nil
}

func marshalDetails[T any](details []T) ([]byte, error) {
	if details == nil {
		details = []T{}
	}
	b, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to encode details: %w", err)
	}
	return b, nil
}

func unmarshalDetails[T any](raw []byte, dst *[]T) error {
	if len(raw) == 0 {
		return nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	if len(out) > 0 {
		*dst = out
	}
	return nil
}
