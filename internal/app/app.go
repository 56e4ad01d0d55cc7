// Package app assembles stores and services from configuration for the
// binaries under cmd/.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/config"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/fixtures"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/service/aggregation"
	attendanceService "github.com/cmlabs-hris/attendance-ledger-go/internal/service/attendance"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/service/punch"
	reportService "github.com/cmlabs-hris/attendance-ledger-go/internal/service/report"
	worksheetService "github.com/cmlabs-hris/attendance-ledger-go/internal/service/worksheet"
)

type Stores struct {
	Tx        database.Transactor
	Entries   attendance.EntryRepository
	Employees employee.EmployeeRepository
	Summaries payroll.SummaryRepository

	// PutEmployees writes directory rows. Only seeding uses it.
	PutEmployees func(ctx context.Context, emps []employee.Employee) error
	Close        func()
}

// OpenStores connects the configured storage driver.
func OpenStores(ctx context.Context, cfg *config.Config) (Stores, error) {
	switch cfg.Database.Driver {
	case config.StorageDriverMemory:
		employees := memory.NewEmployeeStore()
		return Stores{
			Tx:        database.NoTx{},
			Entries:   memory.NewEntryStore(),
			Employees: employees,
			Summaries: memory.NewSummaryStore(),
			PutEmployees: func(_ context.Context, emps []employee.Employee) error {
				for _, emp := range emps {
					employees.Put(emp)
				}
				return nil
			},
			Close: func() {},
		}, nil

	case config.StorageDriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return Stores{}, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := postgresql.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return Stores{}, err
		}
		return Stores{
			Tx:        postgresql.NewTransactor(db),
			Entries:   postgresql.NewEntryRepository(db),
			Employees: postgresql.NewEmployeeRepository(db),
			Summaries: postgresql.NewSummaryRepository(db),
			PutEmployees: func(ctx context.Context, emps []employee.Employee) error {
				return postgresql.UpsertEmployees(ctx, db, emps)
			},
			Close: db.Close,
		}, nil

	default:
		return Stores{}, fmt.Errorf("unsupported storage driver %q", cfg.Database.Driver)
	}
}

type Services struct {
	Attendance attendance.AttendanceService
	Worksheet  attendance.WorksheetService
	Reports    payroll.ReportService
}

func NewServices(cfg *config.Config, stores Stores) (Services, error) {
	mode, err := punch.ParseMode(cfg.Ledger.PunchPairingMode)
	if err != nil {
		return Services{}, err
	}

	return Services{
		Attendance: attendanceService.NewAttendanceService(stores.Tx, stores.Entries, stores.Employees, punch.NewEngine(mode)),
		Worksheet:  worksheetService.NewWorksheetService(stores.Entries, stores.Employees),
		Reports: reportService.NewReportService(stores.Tx, stores.Summaries, stores.Entries, stores.Employees,
			aggregation.NewEngine(aggregation.DefaultPolicy)),
	}, nil
}

// SeedResult counts what SeedDemo wrote.
type SeedResult struct {
	Employees int
	Records   int
	Locked    int
}

// SeedDemo writes the demo directory and a month of system records around
// anchor. Rows already carrying a manual override are left alone.
func SeedDemo(ctx context.Context, stores Stores, svc attendance.AttendanceService, anchor time.Time) (SeedResult, error) {
	emps := fixtures.DemoEmployees()
	if err := stores.PutEmployees(ctx, emps); err != nil {
		return SeedResult{}, err
	}

	result := SeedResult{Employees: len(emps)}
	for i, emp := range emps {
		for _, req := range fixtures.DemoMonth(emp, i, anchor) {
			_, err := svc.RecordSystem(ctx, req)
			switch {
			case err == nil:
				result.Records++
			case errors.Is(err, attendance.ErrEntryLocked):
				result.Locked++
			default:
				return result, fmt.Errorf("failed to seed %s on %s: %w", emp.EmployeeNumber, req.Date.Format(time.DateOnly), err)
			}
		}
	}

	slog.Info("Demo data seeded", "employees", result.Employees, "records", result.Records, "locked", result.Locked)
	return result, nil
}
