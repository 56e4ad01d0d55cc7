package attendance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/database"
	pkgjwt "github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/service/financial"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/service/punch"
	"golang.org/x/sync/errgroup"
)

// bulkConcurrency bounds the per-key upserts a bulk write keeps in flight.
const bulkConcurrency = 8

type AttendanceServiceImpl struct {
	tx           database.Transactor
	entryRepo    attendance.EntryRepository
	employeeRepo employee.EmployeeRepository
	pairing      punch.Engine
	now          func() time.Time
}

func NewAttendanceService(
	tx database.Transactor,
	entryRepo attendance.EntryRepository,
	employeeRepo employee.EmployeeRepository,
	pairing punch.Engine,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:           tx,
		entryRepo:    entryRepo,
		employeeRepo: employeeRepo,
		pairing:      pairing,
		now:          time.Now,
	}
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeUpdated
	outcomeSkipped
)

// snapshot is the employee data copied onto a row at write time.
type snapshot struct {
	number string
	name   string
	shift  shift.Shift
	rate   float64
}

func snapshotOf(emp employee.Employee) snapshot {
	return snapshot{number: emp.EmployeeNumber, name: emp.FullName(), shift: emp.Shift, rate: emp.HourlyRate}
}

func snapshotOfEntry(e attendance.Entry) snapshot {
	return snapshot{number: e.EmployeeNumber, name: e.EmployeeName, shift: e.Shift, rate: e.HourlyRate}
}

// draft is what a write path decides; apply turns it into a row.
type draft struct {
	// status is imposed when set (leave, absent) and derived from the times
	// otherwise.
	status     attendance.Status
	times      attendance.TimePair
	snapshot   snapshot
	adjustment attendance.Adjustment
	ownership  attendance.Ownership
}

// apply runs the check-then-write for one (employee, date) key. plan sees the
// live row, or nil when none exists or it was soft-deleted. Rows whose
// ownership rejects src are left untouched and reported as skipped.
func (s *AttendanceServiceImpl) apply(
	ctx context.Context,
	emp employee.Employee,
	date time.Time,
	src attendance.Source,
	plan func(existing *attendance.Entry) (draft, error),
) (attendance.Entry, outcome, error) {
	var (
		saved  attendance.Entry
		result outcome
	)
	actor := pkgjwt.ActorFromContext(ctx)
	date = clock.Day(date)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.entryRepo.GetByKey(ctx, emp.ID, date)
		if err != nil {
			return err
		}
		if existing != nil && existing.IsDeleted {
			existing = nil
		}
		if existing != nil && !existing.Ownership.Permits(src) {
			saved, result = *existing, outcomeSkipped
			return nil
		}

		d, err := plan(existing)
		if err != nil {
			return err
		}

		status := d.status
		if status == "" {
			status = financial.DeriveStatus(d.times.In, d.times.Out, d.snapshot.shift)
		}
		times := d.times
		if status == attendance.StatusLeave || status == attendance.StatusAbsent {
			times = attendance.TimePair{}
		}

		entry := attendance.Entry{
			EmployeeID:     emp.ID,
			EmployeeNumber: d.snapshot.number,
			EmployeeName:   d.snapshot.name,
			Date:           date,
			Status:         status,
			InTime:         times.In,
			OutTime:        times.Out,
			OutNextDay:     times.OutNextDay,
			Shift:          d.snapshot.shift,
			HourlyRate:     d.snapshot.rate,
			Financials: financial.Compute(financial.Input{
				Status:     status,
				InTime:     times.In,
				OutTime:    times.Out,
				OutNextDay: times.OutNextDay,
				Shift:      d.snapshot.shift,
				HourlyRate: d.snapshot.rate,
				Adjustment: d.adjustment,
			}),
			Ownership: d.ownership,
			Metadata: attendance.Metadata{
				Source:         src,
				LastUpdatedBy:  actor,
				LastModifiedAt: s.now().UTC(),
			},
		}
		if entry.Ownership == "" {
			entry.Ownership = attendance.OwnershipSystem
		}

		out, inserted, err := s.entryRepo.Upsert(ctx, entry)
		if err != nil {
			return err
		}
		saved = out
		if inserted || existing == nil {
			result = outcomeCreated
		} else {
			result = outcomeUpdated
		}
		return nil
	})
	if err != nil {
		return attendance.Entry{}, 0, err
	}
	return saved, result, nil
}

// ========================================
// CSV IMPORT
// ========================================

// ImportCSV implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ImportCSV(ctx context.Context, req attendance.ImportRequest) (attendance.ImportResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.ImportResult{}, err
	}

	result := attendance.ImportResult{ProcessingLog: []attendance.LogLine{}}
	logf := func(t attendance.LogType, format string, args ...any) {
		result.ProcessingLog = append(result.ProcessingLog, attendance.LogLine{Type: t, Message: fmt.Sprintf(format, args...)})
	}

	parsed, err := punch.Parse(bytes.NewReader(req.Content))
	if err != nil {
		logf(attendance.LogError, "Import aborted: %v", err)
		return result, fmt.Errorf("%w: %v", attendance.ErrUnreadableImport, err)
	}
	logf(attendance.LogInfo, "Parsed %d punch rows, rejected %d", len(parsed.Parsed), len(parsed.Errors))
	for _, rowErr := range parsed.Errors {
		logf(attendance.LogWarning, "Row %d rejected: %s", rowErr.Row, rowErr.Reason)
	}

	groups := punch.GroupByEmployeeAndDate(parsed.Parsed)
	summary := &result.Summary
	summary.Total = len(groups) + len(parsed.Errors)
	summary.Failed = len(parsed.Errors)
	logf(attendance.LogInfo, "Reconciling %d employee-days", len(groups))

	directory := make(map[string]*employee.Employee)
	for _, g := range groups {
		day := clock.FormatDay(g.Date)

		emp, err := s.lookupByNumber(ctx, directory, g.EmployeeNumber)
		if err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				summary.Skipped++
				logf(attendance.LogWarning, "Employee %s on %s skipped: unknown employee number", g.EmployeeNumber, day)
				continue
			}
			summary.Failed++
			logf(attendance.LogError, "Employee %s on %s failed: %v", g.EmployeeNumber, day, err)
			slog.Error("CSV import lookup failed", "employee_number", g.EmployeeNumber, "date", day, "error", err)
			continue
		}

		_, res, err := s.apply(ctx, *emp, g.Date, attendance.SourceCSV, func(existing *attendance.Entry) (draft, error) {
			pair, err := s.pairing.Resolve(emp.Shift, g.Punches)
			if err != nil {
				return draft{}, err
			}
			d := draft{
				times:     attendance.TimePair{In: pair.InTime, Out: pair.OutTime, OutNextDay: pair.OutNextDay},
				snapshot:  snapshotOf(*emp),
				ownership: attendance.OwnershipSystem,
			}
			if existing != nil {
				d.adjustment = attendance.AdjustmentOf(existing.Financials)
			}
			return d, nil
		})
		if err != nil {
			summary.Failed++
			logf(attendance.LogError, "Employee %s on %s failed: %v", g.EmployeeNumber, day, err)
			slog.Error("CSV import row failed", "employee_number", g.EmployeeNumber, "date", day, "error", err)
			continue
		}

		switch res {
		case outcomeSkipped:
			summary.Skipped++
			logf(attendance.LogWarning, "Employee %s on %s skipped: manual override in place", g.EmployeeNumber, day)
		case outcomeCreated:
			summary.Success++
			summary.RecordsCreated++
			logf(attendance.LogSuccess, "Employee %s on %s created", g.EmployeeNumber, day)
		case outcomeUpdated:
			summary.Success++
			summary.RecordsUpdated++
			logf(attendance.LogSuccess, "Employee %s on %s updated", g.EmployeeNumber, day)
		}
	}

	result.Success = summary.Failed == 0
	logf(attendance.LogInfo, "Import finished: %d succeeded, %d skipped, %d failed",
		summary.Success, summary.Skipped, summary.Failed)
	slog.Info("CSV import finished",
		"total", summary.Total, "success", summary.Success, "skipped", summary.Skipped, "failed", summary.Failed)

	return result, nil
}

func (s *AttendanceServiceImpl) lookupByNumber(ctx context.Context, cache map[string]*employee.Employee, number string) (*employee.Employee, error) {
	if emp, ok := cache[number]; ok {
		if emp == nil {
			return nil, employee.ErrEmployeeNotFound
		}
		return emp, nil
	}
	emp, err := s.employeeRepo.GetByEmployeeNumber(ctx, number)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			cache[number] = nil
		}
		return nil, err
	}
	cache[number] = &emp
	return &emp, nil
}

// ========================================
// MANUAL SAVE
// ========================================

// SaveManual implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) SaveManual(ctx context.Context, req attendance.ManualSaveRequest) (attendance.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EntryResponse{}, err
	}
	saved, _, err := s.saveManual(ctx, req)
	if err != nil {
		return attendance.EntryResponse{}, err
	}
	return attendance.MapEntryToResponse(saved), nil
}

// saveManual expects a validated request.
func (s *AttendanceServiceImpl) saveManual(ctx context.Context, req attendance.ManualSaveRequest) (attendance.Entry, outcome, error) {
	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.Entry{}, 0, err
	}

	return s.apply(ctx, emp, req.Day, attendance.SourceManual, func(_ *attendance.Entry) (draft, error) {
		d := draft{
			times:      req.Times,
			snapshot:   snapshotOf(emp),
			adjustment: req.Adjustment,
			ownership:  attendance.OwnershipHuman,
		}
		if req.Imposed != nil {
			d.status = *req.Imposed
		}
		return d, nil
	})
}

// SaveManualBatch implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) SaveManualBatch(ctx context.Context, req attendance.BatchManualSaveRequest) (attendance.BulkResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.BulkResult{}, err
	}

	tasks := make([]bulkTask, 0, len(req.Rows))
	for _, row := range req.Rows {
		tasks = append(tasks, bulkTask{
			employeeID: row.EmployeeID,
			date:       row.Day,
			run: func(ctx context.Context) (outcome, error) {
				_, result, err := s.saveManual(ctx, row)
				return result, err
			},
		})
	}
	return runBulk(ctx, tasks), nil
}

// ========================================
// LEAVE APPROVAL
// ========================================

// ApproveLeave implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ApproveLeave(ctx context.Context, req attendance.LeaveApprovalRequest) (attendance.BulkResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.BulkResult{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.BulkResult{}, err
	}

	days := clock.DaysInRange(req.From, req.To)
	tasks := make([]bulkTask, 0, len(days))
	for _, day := range days {
		tasks = append(tasks, bulkTask{
			employeeID: emp.ID,
			date:       day,
			run: func(ctx context.Context) (outcome, error) {
				_, result, err := s.apply(ctx, emp, day, attendance.SourceLeaveApproval, func(existing *attendance.Entry) (draft, error) {
					d := draft{
						status:    attendance.StatusLeave,
						snapshot:  snapshotOf(emp),
						ownership: attendance.OwnershipSystem,
					}
					if existing != nil {
						d.snapshot = snapshotOfEntry(*existing)
						d.ownership = existing.Ownership
					}
					return d, nil
				})
				return result, err
			},
		})
	}

	result := runBulk(ctx, tasks)
	slog.Info("Leave approval applied",
		"employee_id", emp.ID, "leave_request_id", req.LeaveRequestID,
		"from", clock.FormatDay(req.From), "to", clock.FormatDay(req.To),
		"applied", result.Applied, "failed", result.Failed)
	return result, nil
}

// ========================================
// CORRECTION APPROVAL
// ========================================

// ApproveCorrection implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ApproveCorrection(ctx context.Context, req attendance.CorrectionApprovalRequest) (attendance.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EntryResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.EntryResponse{}, err
	}

	saved, _, err := s.apply(ctx, emp, req.Day, attendance.SourceCorrectionApproval, func(existing *attendance.Entry) (draft, error) {
		d := draft{
			snapshot:  snapshotOf(emp),
			ownership: attendance.OwnershipHuman,
		}
		if existing != nil {
			d.snapshot = snapshotOfEntry(*existing)
			d.adjustment = attendance.AdjustmentOf(existing.Financials)
			d.times = attendance.TimePair{In: existing.InTime, Out: existing.OutTime, OutNextDay: existing.OutNextDay}
		}

		if req.Scope.TouchesIn() {
			d.times.In = req.InTime
		}
		if req.Scope.TouchesOut() {
			d.times.Out = req.OutTime
		}

		switch {
		case d.times.Out == nil:
			d.times.OutNextDay = false
		case req.OutNextDay != nil:
			d.times.OutNextDay = *req.OutNextDay
		case d.times.In != nil:
			d.times.OutNextDay = attendance.WrapsMidnight(*d.times.In, *d.times.Out)
		}
		return d, nil
	})
	if err != nil {
		return attendance.EntryResponse{}, err
	}

	slog.Info("Correction approval applied",
		"employee_id", emp.ID, "date", clock.FormatDay(req.Day), "scope", req.Scope, "correction_id", req.CorrectionID)
	return attendance.MapEntryToResponse(saved), nil
}

// ========================================
// SYSTEM WRITES
// ========================================

// RecordSystem implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecordSystem(ctx context.Context, req attendance.SystemRecordRequest) (attendance.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EntryResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.EntryResponse{}, err
	}

	saved, result, err := s.apply(ctx, emp, req.Date, attendance.SourceSystem, func(_ *attendance.Entry) (draft, error) {
		return draft{
			times:      req.Times,
			snapshot:   snapshotOf(emp),
			adjustment: req.Adjustment,
			ownership:  attendance.OwnershipSystem,
		}, nil
	})
	if err != nil {
		return attendance.EntryResponse{}, err
	}
	if result == outcomeSkipped {
		return attendance.EntryResponse{}, attendance.ErrEntryLocked
	}
	return attendance.MapEntryToResponse(saved), nil
}

// ========================================
// READS
// ========================================

// ListRange implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListRange(ctx context.Context, filter attendance.RangeFilter) ([]attendance.EntryResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.ListRange(ctx, filter.FromDay, filter.ToDay, filter.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance entries: %w", err)
	}

	responses := make([]attendance.EntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, attendance.MapEntryToResponse(e))
	}
	return responses, nil
}

// DeleteEntry implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteEntry(ctx context.Context, req attendance.DeleteEntryRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.entryRepo.SoftDelete(ctx, req.EmployeeID, req.Day); err != nil {
		return err
	}
	slog.Info("Attendance entry deleted",
		"employee_id", req.EmployeeID, "date", clock.FormatDay(req.Day), "by", pkgjwt.ActorFromContext(ctx))
	return nil
}

// ========================================
// BULK FAN-OUT
// ========================================

type bulkTask struct {
	employeeID string
	date       time.Time
	run        func(ctx context.Context) (outcome, error)
}

// runBulk issues every task and waits for all of them. A failed task does not
// stop or roll back the others.
func runBulk(ctx context.Context, tasks []bulkTask) attendance.BulkResult {
	result := attendance.BulkResult{Requested: len(tasks)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(bulkConcurrency)
	for _, task := range tasks {
		g.Go(func() error {
			res, err := task.run(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, attendance.BulkError{
					EmployeeID: task.employeeID,
					Date:       clock.FormatDay(task.date),
					Message:    err.Error(),
				})
				slog.Warn("Bulk attendance write failed",
					"employee_id", task.employeeID, "date", clock.FormatDay(task.date), "error", err)
				return nil
			}
			switch res {
			case outcomeCreated:
				result.Applied++
				result.Created++
			case outcomeUpdated:
				result.Applied++
				result.Updated++
			case outcomeSkipped:
				result.Skipped++
			}
			return nil
		})
	}
	_ = g.Wait()

	slices.SortFunc(result.Errors, func(a, b attendance.BulkError) int {
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return strings.Compare(a.EmployeeID, b.EmployeeID)
	})
	return result
}
