package worksheet

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeEmployee(id, number string) employee.Employee {
	return employee.Employee{
		ID: id, EmployeeNumber: number, FirstName: "Emp", LastName: number,
		Shift: shift.Shift{Start: "09:00", End: "17:00"}, HourlyRate: 10,
		Status: employee.EmploymentStatusActive,
	}
}

func TestBuild_OneRowPerEmployeeDay(t *testing.T) {
	ctx := context.Background()
	entries := memory.NewEntryStore()
	employees := memory.NewEmployeeStore(
		activeEmployee("e10", "10"),
		activeEmployee("e2", "2"),
		employee.Employee{ID: "frozen", EmployeeNumber: "1", Status: employee.EmploymentStatusFrozen},
	)
	in, out := "09:00", "17:00"
	_, _, err := entries.Upsert(ctx, attendance.Entry{
		EmployeeID: "e10", EmployeeNumber: "10", Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Status: attendance.StatusPresent, InTime: &in, OutTime: &out,
		Financials: attendance.Financials{BasePay: 80, FinalDayEarning: 80},
	})
	require.NoError(t, err)

	rows, err := NewWorksheetService(entries, employees).Build(ctx, attendance.WorksheetRequest{
		RangeFilter: attendance.RangeFilter{From: "04/03/2024", To: "05/03/2024"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	var got []string
	for _, r := range rows {
		got = append(got, r.Date+"/"+r.EmployeeNumber)
	}
	assert.Equal(t, []string{"2024-03-04/2", "2024-03-04/10", "2024-03-05/2", "2024-03-05/10"}, got)

	assert.True(t, rows[0].IsVirtual)
	assert.Equal(t, attendance.StatusAbsent, rows[0].Status)
	assert.Zero(t, rows[0].Financials.FinalDayEarning)

	assert.False(t, rows[3].IsVirtual)
	assert.Equal(t, attendance.StatusPresent, rows[3].Status)
	assert.Equal(t, 80.0, rows[3].Financials.BasePay)
}

func TestBuild_SingleEmployee(t *testing.T) {
	entries := memory.NewEntryStore()
	employees := memory.NewEmployeeStore(activeEmployee("e1", "1"), activeEmployee("e2", "2"))
	only := "e2"

	rows, err := NewWorksheetService(entries, employees).Build(context.Background(), attendance.WorksheetRequest{
		RangeFilter: attendance.RangeFilter{From: "2024-03-01", To: "2024-03-03", EmployeeID: &only},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, "e2", r.EmployeeID)
		assert.True(t, r.IsVirtual)
	}
}

func TestBuild_InvalidRange(t *testing.T) {
	_, err := NewWorksheetService(memory.NewEntryStore(), memory.NewEmployeeStore()).Build(context.Background(), attendance.WorksheetRequest{
		RangeFilter: attendance.RangeFilter{From: "05/03/2024", To: "04/03/2024"},
	})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}
