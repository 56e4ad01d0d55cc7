package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	id, employee_number, first_name, last_name, shift_start, shift_end,
	hourly_rate, monthly_salary, salary_type, employment_status, is_archived,
	deleted_at IS NOT NULL`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.EmployeeNumber, &emp.FirstName, &emp.LastName, &emp.Shift.Start, &emp.Shift.End,
		&emp.HourlyRate, &emp.MonthlySalary, &emp.SalaryType, &emp.Status, &emp.IsArchived,
		&emp.IsDeleted,
	)
	return emp, err
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	if !isUUID(id) {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE id = $1 AND deleted_at IS NULL
	`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}
	return emp, nil
}

// GetByEmployeeNumber implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByEmployeeNumber(ctx context.Context, employeeNumber string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE employee_number = $1 AND deleted_at IS NULL
	`

	emp, err := scanEmployee(q.QueryRow(ctx, query, employeeNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with number %s: %w", employeeNumber, err)
	}
	return emp, nil
}

// ListActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE employment_status = $1 AND is_archived = FALSE AND deleted_at IS NULL
		ORDER BY CASE WHEN employee_number ~ '^[0-9]+$' THEN LPAD(employee_number, 20, '0') ELSE employee_number END ASC
	`

	rows, err := q.Query(ctx, query, employee.EmploymentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	employees := make([]employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

// UpsertEmployees writes directory rows keyed by id. The service layer only
// reads the directory; this is for seeding.
func UpsertEmployees(ctx context.Context, db *database.DB, emps []employee.Employee) error {
	return WithTransaction(ctx, db, func(ctx context.Context) error {
		q := GetQuerier(ctx, db)
		for _, emp := range emps {
			_, err := q.Exec(ctx, `
				INSERT INTO employees (
					id, employee_number, first_name, last_name, shift_start, shift_end,
					hourly_rate, monthly_salary, salary_type, employment_status, is_archived
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				ON CONFLICT (id) DO UPDATE SET
					employee_number = EXCLUDED.employee_number,
					first_name = EXCLUDED.first_name,
					last_name = EXCLUDED.last_name,
					shift_start = EXCLUDED.shift_start,
					shift_end = EXCLUDED.shift_end,
					hourly_rate = EXCLUDED.hourly_rate,
					monthly_salary = EXCLUDED.monthly_salary,
					salary_type = EXCLUDED.salary_type,
					employment_status = EXCLUDED.employment_status,
					is_archived = EXCLUDED.is_archived,
					deleted_at = NULL,
					updated_at = NOW()
			`,
				emp.ID, emp.EmployeeNumber, emp.FirstName, emp.LastName, emp.Shift.Start, emp.Shift.End,
				emp.HourlyRate, emp.MonthlySalary, string(emp.SalaryType), string(emp.Status), emp.IsArchived,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert employee %s: %w", emp.EmployeeNumber, err)
			}
		}
		return nil
	})
}
