package attendance

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/service/punch"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	budi = employee.Employee{
		ID: "emp-budi", EmployeeNumber: "1001", FirstName: "Budi", LastName: "Santoso",
		Shift: shift.Shift{Start: "09:00", End: "17:00"}, HourlyRate: 10,
		SalaryType: employee.SalaryTypeHourly, Status: employee.EmploymentStatusActive,
	}
	citra = employee.Employee{
		ID: "emp-citra", EmployeeNumber: "1002", FirstName: "Citra", LastName: "Dewi",
		Shift: shift.Shift{Start: "22:00", End: "06:00"}, HourlyRate: 12,
		SalaryType: employee.SalaryTypeHourly, Status: employee.EmploymentStatusActive,
	}
	march4 = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc     *AttendanceServiceImpl
	entries *memory.EntryStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	entries := memory.NewEntryStore()
	svc := NewAttendanceService(database.NoTx{}, entries, memory.NewEmployeeStore(budi, citra), punch.NewEngine(punch.ModeWindow))
	impl := svc.(*AttendanceServiceImpl)
	impl.now = func() time.Time { return time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC) }
	return fixture{svc: impl, entries: entries}
}

func (f fixture) entry(t *testing.T, empID string, date time.Time) attendance.Entry {
	t.Helper()
	e, err := f.entries.GetByKey(context.Background(), empID, date)
	require.NoError(t, err)
	require.NotNil(t, e, "expected entry for %s on %s", empID, date)
	return *e
}

func ptr[T any](v T) *T { return &v }

const export = `NIK|First|Last|Date|Time|Flag
1001|Budi|Santoso|04/03/2024|09:05|0
1001|Budi|Santoso|04/03/2024|17:05|1
1002|Citra|Dewi|04/03/2024|22:10|0
1002|Citra|Dewi|04/03/2024|05:45|1
`

func TestImportCSV_CreatesRows(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.ImportCSV(context.Background(), attendance.ImportRequest{Content: []byte(export)})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, attendance.ImportSummary{Total: 2, Success: 2, RecordsCreated: 2}, result.Summary)
	assert.NotEmpty(t, result.ProcessingLog)

	b := f.entry(t, budi.ID, march4)
	assert.Equal(t, attendance.StatusLate, b.Status)
	assert.Equal(t, "09:05", *b.InTime)
	assert.Equal(t, "17:05", *b.OutTime)
	assert.InDelta(t, 80.0, b.Financials.BasePay, 1e-9)
	assert.False(t, b.ManualOverride())
	assert.Equal(t, attendance.SourceCSV, b.Metadata.Source)
	assert.Equal(t, "system", b.Metadata.LastUpdatedBy)

	c := f.entry(t, citra.ID, march4)
	assert.Equal(t, attendance.StatusLate, c.Status)
	assert.True(t, c.OutNextDay)
	assert.InDelta(t, 7.5833, c.Financials.HoursWorked, 1e-3)
}

func TestImportCSV_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ImportCSV(ctx, attendance.ImportRequest{Content: []byte(export)})
	require.NoError(t, err)
	first := f.entry(t, budi.ID, march4)

	result, err := f.svc.ImportCSV(ctx, attendance.ImportRequest{Content: []byte(export)})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Summary.RecordsUpdated)
	assert.Equal(t, 0, result.Summary.RecordsCreated)

	second := f.entry(t, budi.ID, march4)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Financials, second.Financials)
	assert.Equal(t, first.Status, second.Status)
}

func TestImportCSV_SkipsManualOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveManual(ctx, attendance.ManualSaveRequest{
		EmployeeID: budi.ID,
		Date:       "04/03/2024",
		InTime:     ptr("09:00"),
		OutTime:    ptr("18:00"),
	})
	require.NoError(t, err)

	result, err := f.svc.ImportCSV(ctx, attendance.ImportRequest{Content: []byte(export)})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.Skipped)
	assert.Equal(t, 1, result.Summary.Success)

	b := f.entry(t, budi.ID, march4)
	assert.Equal(t, "18:00", *b.OutTime)
	assert.Equal(t, attendance.SourceManual, b.Metadata.Source)
	assert.True(t, b.ManualOverride())

	var warned bool
	for _, line := range result.ProcessingLog {
		if line.Type == attendance.LogWarning && strings.Contains(line.Message, "manual override") {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestImportCSV_PreservesAdjustmentsOfUnlockedRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordSystem(ctx, attendance.SystemRecordRequest{
		EmployeeID: budi.ID,
		Date:       march4,
		InTime:     ptr("09:00"),
		OutTime:    ptr("17:00"),
		Adjustment: attendance.Adjustment{Deduction: 15, OTHours: 2, OTMultiplier: 1.5},
	})
	require.NoError(t, err)

	_, err = f.svc.ImportCSV(ctx, attendance.ImportRequest{Content: []byte(export)})
	require.NoError(t, err)

	b := f.entry(t, budi.ID, march4)
	assert.Equal(t, attendance.SourceCSV, b.Metadata.Source)
	assert.Equal(t, 15.0, b.Financials.Deduction)
	assert.Equal(t, 30.0, b.Financials.OTAmount)
}

func TestImportCSV_UnknownEmployeeAndBadRows(t *testing.T) {
	f := newFixture(t)

	content := "9999|Ghost|User|04/03/2024|09:00|0\n1001|Budi|Santoso|31/02/2024|09:00|0\n"
	result, err := f.svc.ImportCSV(context.Background(), attendance.ImportRequest{Content: []byte(content)})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, attendance.ImportSummary{Total: 2, Failed: 1, Skipped: 1}, result.Summary)
}

func TestImportCSV_RejectsEmptyAndOversized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ImportCSV(ctx, attendance.ImportRequest{Content: nil})
	assert.ErrorIs(t, err, attendance.ErrNilImportContent)

	_, err = f.svc.ImportCSV(ctx, attendance.ImportRequest{Content: []byte{}})
	assert.ErrorIs(t, err, attendance.ErrEmptyImport)

	_, err = f.svc.ImportCSV(ctx, attendance.ImportRequest{Content: []byte(export), MaxBytes: 10})
	assert.ErrorIs(t, err, attendance.ErrImportTooLarge)
}

func TestSaveManual_LocksAndDerivesStatus(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.SaveManual(context.Background(), attendance.ManualSaveRequest{
		EmployeeID: budi.ID,
		Date:       "2024-03-04",
		InTime:     ptr("9:30"),
		OutTime:    ptr("17:30"),
		OTHours:    ptr(1.0),
		Deduction:  ptr(5.0),
	})
	require.NoError(t, err)

	assert.Equal(t, attendance.StatusLate, resp.Status)
	assert.True(t, resp.ManualOverride)
	assert.Equal(t, attendance.SourceManual, resp.Source)
	assert.Equal(t, 80.0, resp.Financials.BasePay)
	assert.Equal(t, 10.0, resp.Financials.OTAmount)
	assert.Equal(t, 85.0, resp.Financials.FinalDayEarning)
}

func TestSaveManual_ImposedLeaveClearsTimes(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.SaveManual(context.Background(), attendance.ManualSaveRequest{
		EmployeeID: budi.ID,
		Date:       "04/03/2024",
		Status:     ptr("leave"),
		InTime:     ptr("09:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, attendance.StatusLeave, resp.Status)
	assert.Nil(t, resp.InTime)
	assert.Equal(t, 80.0, resp.Financials.BasePay)
}

func TestSaveManual_RecordsActorFromToken(t *testing.T) {
	f := newFixture(t)
	token := jwt.New()
	require.NoError(t, token.Set("user_id", "admin-7"))
	ctx := jwtauth.NewContext(context.Background(), token, nil)

	resp, err := f.svc.SaveManual(ctx, attendance.ManualSaveRequest{EmployeeID: budi.ID, Date: "04/03/2024"})
	require.NoError(t, err)
	assert.Equal(t, "admin-7", resp.LastUpdatedBy)
	assert.Equal(t, attendance.StatusAbsent, resp.Status)
}

func TestSaveManual_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SaveManual(context.Background(), attendance.ManualSaveRequest{
		Date:    "2024-13-01",
		InTime:  ptr("25:00"),
		OTHours: ptr(-1.0),
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "employee_id")
	assert.Contains(t, fields, "date")
	assert.Contains(t, fields, "in_time")
	assert.Contains(t, fields, "ot_hours")
}

func TestSaveManual_UnknownEmployee(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SaveManual(context.Background(), attendance.ManualSaveRequest{EmployeeID: "nobody", Date: "04/03/2024"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestSaveManualBatch_ReportsPartialFailure(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.SaveManualBatch(context.Background(), attendance.BatchManualSaveRequest{
		Rows: []attendance.ManualSaveRequest{
			{EmployeeID: budi.ID, Date: "04/03/2024", InTime: ptr("09:00"), OutTime: ptr("17:00")},
			{EmployeeID: citra.ID, Date: "04/03/2024", InTime: ptr("22:00"), OutTime: ptr("06:00")},
			{EmployeeID: "nobody", Date: "05/03/2024"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 2, result.Applied)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "nobody", result.Errors[0].EmployeeID)

	c := f.entry(t, citra.ID, march4)
	assert.True(t, c.OutNextDay)
	assert.Equal(t, 96.0, c.Financials.BasePay)
}

func TestSaveManualBatch_ValidatesEveryRow(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SaveManualBatch(context.Background(), attendance.BatchManualSaveRequest{
		Rows: []attendance.ManualSaveRequest{{EmployeeID: budi.ID, Date: "bad"}},
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "rows[0].date")
}

func TestApproveLeave_MarksEveryDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// an existing locked day keeps its lock but still becomes leave
	_, err := f.svc.SaveManual(ctx, attendance.ManualSaveRequest{
		EmployeeID: budi.ID, Date: "05/03/2024", InTime: ptr("09:00"), OutTime: ptr("12:00"),
	})
	require.NoError(t, err)

	result, err := f.svc.ApproveLeave(ctx, attendance.LeaveApprovalRequest{
		EmployeeID: budi.ID,
		FromDate:   "04/03/2024",
		ToDate:     "06/03/2024",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 3, result.Applied)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Zero(t, result.Failed)

	for d := 4; d <= 6; d++ {
		e := f.entry(t, budi.ID, time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, attendance.StatusLeave, e.Status)
		assert.Nil(t, e.InTime)
		assert.Nil(t, e.OutTime)
		assert.Equal(t, 80.0, e.Financials.BasePay)
		assert.Equal(t, 80.0, e.Financials.FinalDayEarning)
		assert.Equal(t, attendance.SourceLeaveApproval, e.Metadata.Source)
	}
	assert.True(t, f.entry(t, budi.ID, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)).ManualOverride())
	assert.False(t, f.entry(t, budi.ID, march4).ManualOverride())
}

func TestApproveLeave_InvalidRange(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ApproveLeave(context.Background(), attendance.LeaveApprovalRequest{
		EmployeeID: budi.ID, FromDate: "06/03/2024", ToDate: "04/03/2024",
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "to_date")
}

func TestApproveCorrection_PreservesAdjustments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordSystem(ctx, attendance.SystemRecordRequest{
		EmployeeID: budi.ID,
		Date:       march4,
		InTime:     ptr("09:30"),
		OutTime:    ptr("17:00"),
		Adjustment: attendance.Adjustment{
			DeductionDetails: []attendance.DeductionDetail{{Amount: 20, Reason: "uniform"}},
			OTDetails:        []attendance.OTDetail{{Type: attendance.OTDetailManual, Amount: 50, Reason: "event"}},
		},
	})
	require.NoError(t, err)
	before := f.entry(t, budi.ID, march4)
	require.Equal(t, attendance.StatusLate, before.Status)

	resp, err := f.svc.ApproveCorrection(ctx, attendance.CorrectionApprovalRequest{
		EmployeeID: budi.ID,
		Date:       "04/03/2024",
		Scope:      attendance.CorrectionIn,
		InTime:     ptr("09:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, attendance.StatusPresent, resp.Status)
	assert.Equal(t, "17:00", *resp.OutTime)
	assert.Equal(t, 8.0, resp.Financials.HoursWorked)
	assert.Equal(t, 80.0, resp.Financials.BasePay)
	assert.Equal(t, 20.0, resp.Financials.Deduction)
	assert.Equal(t, 50.0, resp.Financials.OTAmount)
	assert.Equal(t, 110.0, resp.Financials.FinalDayEarning)
	assert.True(t, resp.ManualOverride)
	assert.Equal(t, attendance.SourceCorrectionApproval, resp.Source)
}

func TestApproveCorrection_BuildsStub(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.ApproveCorrection(context.Background(), attendance.CorrectionApprovalRequest{
		EmployeeID: citra.ID,
		Date:       "04/03/2024",
		Scope:      attendance.CorrectionBoth,
		InTime:     ptr("22:00"),
		OutTime:    ptr("06:00"),
	})
	require.NoError(t, err)

	assert.True(t, resp.OutNextDay)
	assert.Equal(t, 8.0, resp.Financials.HoursWorked)
	assert.Equal(t, attendance.StatusPresent, resp.Status)
}

func TestApproveCorrection_ScopeRequiresTime(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ApproveCorrection(context.Background(), attendance.CorrectionApprovalRequest{
		EmployeeID: budi.ID, Date: "04/03/2024", Scope: "out",
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "out_time")
}

func TestRecordSystem_RejectedByLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveManual(ctx, attendance.ManualSaveRequest{EmployeeID: budi.ID, Date: "04/03/2024", InTime: ptr("09:00")})
	require.NoError(t, err)

	_, err = f.svc.RecordSystem(ctx, attendance.SystemRecordRequest{EmployeeID: budi.ID, Date: march4})
	assert.ErrorIs(t, err, attendance.ErrEntryLocked)
}

func TestDeleteEntry_HidesRowUntilNextWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveManual(ctx, attendance.ManualSaveRequest{EmployeeID: budi.ID, Date: "04/03/2024", InTime: ptr("09:00")})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteEntry(ctx, attendance.DeleteEntryRequest{EmployeeID: budi.ID, Date: "04/03/2024"}))

	rows, err := f.svc.ListRange(ctx, attendance.RangeFilter{From: "04/03/2024", To: "04/03/2024"})
	require.NoError(t, err)
	assert.Empty(t, rows)

	err = f.svc.DeleteEntry(ctx, attendance.DeleteEntryRequest{EmployeeID: budi.ID, Date: "04/03/2024"})
	assert.ErrorIs(t, err, attendance.ErrEntryNotFound)

	// a deleted row carries no lock: CSV may write it again
	result, err := f.svc.ImportCSV(ctx, attendance.ImportRequest{Content: []byte(export)})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Summary.RecordsCreated)

	rows, err = f.svc.ListRange(ctx, attendance.RangeFilter{From: "04/03/2024", To: "04/03/2024", EmployeeID: ptr(budi.ID)})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].ManualOverride)
}

func TestListRange_OrdersByDateThenEmployeeNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ApproveLeave(ctx, attendance.LeaveApprovalRequest{EmployeeID: citra.ID, FromDate: "04/03/2024", ToDate: "05/03/2024"})
	require.NoError(t, err)
	_, err = f.svc.ApproveLeave(ctx, attendance.LeaveApprovalRequest{EmployeeID: budi.ID, FromDate: "04/03/2024", ToDate: "05/03/2024"})
	require.NoError(t, err)

	rows, err := f.svc.ListRange(ctx, attendance.RangeFilter{From: "2024-03-04", To: "2024-03-05"})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	got := make([]string, 0, len(rows))
	for _, r := range rows {
		got = append(got, r.Date+"/"+r.EmployeeNumber)
	}
	assert.Equal(t, []string{"2024-03-04/1001", "2024-03-04/1002", "2024-03-05/1001", "2024-03-05/1002"}, got)
}
