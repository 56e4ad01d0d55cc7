package worksheet

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
	"golang.org/x/sync/errgroup"
)

type WorksheetServiceImpl struct {
	entryRepo    attendance.EntryRepository
	employeeRepo employee.EmployeeRepository
}

func NewWorksheetService(entryRepo attendance.EntryRepository, employeeRepo employee.EmployeeRepository) attendance.WorksheetService {
	return &WorksheetServiceImpl{
		entryRepo:    entryRepo,
		employeeRepo: employeeRepo,
	}
}

// Build implements attendance.WorksheetService. Every active employee gets
// one row per calendar day; days without a stored entry become virtual
// absent rows.
func (s *WorksheetServiceImpl) Build(ctx context.Context, req attendance.WorksheetRequest) ([]attendance.WorksheetRow, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		employees []employee.Employee
		entries   []attendance.Entry
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.employeeRepo.ListActive(gCtx)
		if err != nil {
			return fmt.Errorf("failed to list active employees: %w", err)
		}
		employees = list
		return nil
	})
	g.Go(func() error {
		list, err := s.entryRepo.ListRange(gCtx, req.FromDay, req.ToDay, req.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to list attendance entries: %w", err)
		}
		entries = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if req.EmployeeID != nil {
		employees = slices.DeleteFunc(employees, func(e employee.Employee) bool {
			return e.ID != *req.EmployeeID
		})
	}

	index := make(map[attendance.Key]attendance.Entry, len(entries))
	for _, e := range entries {
		index[e.Key()] = e
	}

	days := clock.DaysInRange(req.FromDay, req.ToDay)
	rows := make([]attendance.WorksheetRow, 0, len(days)*len(employees))
	for _, day := range days {
		for _, emp := range employees {
			if e, ok := index[attendance.KeyOf(emp.ID, day)]; ok {
				rows = append(rows, attendance.WorksheetRow{EntryResponse: attendance.MapEntryToResponse(e)})
				continue
			}
			rows = append(rows, virtualRow(emp, day))
		}
	}

	slices.SortStableFunc(rows, func(a, b attendance.WorksheetRow) int {
		if a.Date != b.Date {
			if a.Date < b.Date {
				return -1
			}
			return 1
		}
		return employee.CompareNumbers(a.EmployeeNumber, b.EmployeeNumber)
	})
	return rows, nil
}

func virtualRow(emp employee.Employee, day time.Time) attendance.WorksheetRow {
	resp := attendance.MapEntryToResponse(attendance.Entry{
		EmployeeID:     emp.ID,
		EmployeeNumber: emp.EmployeeNumber,
		EmployeeName:   emp.FullName(),
		Date:           day,
		Status:         attendance.StatusAbsent,
		Shift:          emp.Shift,
		HourlyRate:     emp.HourlyRate,
		Ownership:      attendance.OwnershipSystem,
	})
	return attendance.WorksheetRow{EntryResponse: resp, IsVirtual: true}
}
