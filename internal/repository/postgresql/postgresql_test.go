package postgresql_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/fixtures"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to TEST_DATABASE_URL and resets the ledger tables.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, postgresql.EnsureSchema(ctx, db))
	_, err = db.Exec(ctx, "TRUNCATE TABLE period_summaries, attendance_entries, employees CASCADE")
	require.NoError(t, err)
	return db
}

func createTestEmployee(t *testing.T, db *database.DB, number string) string {
	t.Helper()
	var id string
	err := db.QueryRow(context.Background(), `
		INSERT INTO employees (employee_number, first_name, last_name, hourly_rate, monthly_salary, salary_type)
		VALUES ($1, 'Test', 'Employee', 10, 0, 'hourly')
		RETURNING id
	`, number).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestEntryRepository_UpsertAndList(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewEntryRepository(db)
	empID := createTestEmployee(t, db, "1001")
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	in := "09:00"

	entry := attendance.Entry{
		EmployeeID:     empID,
		EmployeeNumber: "1001",
		EmployeeName:   "Test Employee",
		Date:           date,
		Status:         attendance.StatusPresent,
		InTime:         &in,
		HourlyRate:     10,
		Financials: attendance.Financials{
			BasePay:   40,
			OTDetails: []attendance.OTDetail{{Type: attendance.OTDetailManual, Amount: 25, Reason: "event"}},
		},
		Ownership: attendance.OwnershipSystem,
		Metadata:  attendance.Metadata{Source: attendance.SourceCSV, LastUpdatedBy: "system", LastModifiedAt: time.Now()},
	}
	entry.Shift.Start, entry.Shift.End = "09:00", "17:00"

	saved, created, err := repo.Upsert(ctx, entry)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, saved.ID)

	entry.Ownership = attendance.OwnershipHuman
	again, created, err := repo.Upsert(ctx, entry)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, saved.ID, again.ID)

	got, err := repo.GetByKey(ctx, empID, date)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.ManualOverride())
	require.Len(t, got.Financials.OTDetails, 1)
	assert.Equal(t, 25.0, got.Financials.OTDetails[0].Amount)

	rows, err := repo.ListRange(ctx, date, date, &empID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	require.NoError(t, repo.SoftDelete(ctx, empID, date))
	rows, err = repo.ListRange(ctx, date, date, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.ErrorIs(t, repo.SoftDelete(ctx, empID, date), attendance.ErrEntryNotFound)
}

func TestSummaryRepository_Upsert(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewSummaryRepository(db)
	empID := createTestEmployee(t, db, "1002")
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	s := payroll.PeriodSummary{
		EmployeeID:     empID,
		EmployeeNumber: "1002",
		EmployeeName:   "Test Employee",
		Kind:           payroll.KindPayroll,
		PeriodStart:    start,
		PeriodEnd:      end,
		SalaryType:     "hourly",
		Figures:        payroll.Figures{BaseSalary: 1000, NetSalary: 1000, Rating: payroll.RatingGood},
		Status:         payroll.SummaryStatusDraft,
		LastUpdatedBy:  "system",
	}
	saved, err := repo.Upsert(ctx, s)
	require.NoError(t, err)

	s.ScoreOverride = true
	_, err = repo.Upsert(ctx, s)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, got.ScoreOverride)
	assert.True(t, got.Locked())

	list, err := repo.ListPeriod(ctx, payroll.KindPayroll, start, end)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTransactor_RollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	tx := postgresql.NewTransactor(db)

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		createTestEmployeeTx(t, ctx, db)
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	var count int
	require.NoError(t, db.QueryRow(ctx, "SELECT COUNT(*) FROM employees").Scan(&count))
	assert.Equal(t, 0, count)
}

func createTestEmployeeTx(t *testing.T, ctx context.Context, db *database.DB) {
	t.Helper()
	_, err := postgresql.GetQuerier(ctx, db).Exec(ctx,
		`INSERT INTO employees (employee_number, first_name) VALUES ('tx-1', 'Tx')`)
	require.NoError(t, err)
}

func TestUpsertEmployees_SeedsDirectory(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	emps := fixtures.DemoEmployees()

	require.NoError(t, postgresql.UpsertEmployees(ctx, db, emps))
	// second run updates in place
	require.NoError(t, postgresql.UpsertEmployees(ctx, db, emps))

	repo := postgresql.NewEmployeeRepository(db)
	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, len(emps))

	got, err := repo.GetByEmployeeNumber(ctx, emps[1].EmployeeNumber)
	require.NoError(t, err)
	assert.Equal(t, emps[1].ID, got.ID)
	assert.True(t, got.Shift.IsNight())
}
