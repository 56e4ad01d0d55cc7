// Package fixtures holds the demo employee directory and the generator for a
// month of plausible attendance used by cmd/seed and the in-memory store.
package fixtures

import (
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

// employeeID derives a stable UUID from the employee number so repeated
// seeding targets the same rows.
func employeeID(number string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("attendance-ledger/employee/"+number)).String()
}

// DemoEmployees returns the demo directory. It mixes day and night shifts
// and both salary types.
func DemoEmployees() []employee.Employee {
	day := shift.Shift{Start: "09:00", End: "17:00"}
	night := shift.Shift{Start: "22:00", End: "06:00"}

	emps := []employee.Employee{
		{EmployeeNumber: "1001", FirstName: "Budi", LastName: "Santoso", Shift: day, HourlyRate: 50000, SalaryType: employee.SalaryTypeHourly},
		{EmployeeNumber: "1002", FirstName: "Citra", LastName: "Dewi", Shift: night, HourlyRate: 60000, SalaryType: employee.SalaryTypeHourly},
		{EmployeeNumber: "1003", FirstName: "Dimas", LastName: "Pratama", Shift: day, MonthlySalary: 9000000, HourlyRate: 55000, SalaryType: employee.SalaryTypeMonthly},
		{EmployeeNumber: "1004", FirstName: "Eka", LastName: "Putri", Shift: shift.Shift{Start: "07:00", End: "15:00"}, HourlyRate: 48000, SalaryType: employee.SalaryTypeHourly},
		{EmployeeNumber: "1005", FirstName: "Fajar", LastName: "Nugroho", Shift: night, MonthlySalary: 11000000, HourlyRate: 65000, SalaryType: employee.SalaryTypeMonthly},
	}
	for i := range emps {
		emps[i].ID = employeeID(emps[i].EmployeeNumber)
		emps[i].Status = employee.EmploymentStatusActive
	}
	return emps
}

// DemoMonth generates one system record per working day of the month
// containing anchor for emp. The pattern is deterministic per employee
// index and day.
func DemoMonth(emp employee.Employee, index int, anchor time.Time) []attendance.SystemRecordRequest {
	anchor = clock.Day(anchor)
	start := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	var reqs []attendance.SystemRecordRequest
	for _, day := range clock.DaysInRange(start, end) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		req := attendance.SystemRecordRequest{EmployeeID: emp.ID, Date: day}

		in, out := emp.Shift.Start, emp.Shift.End
		switch (index + day.Day()) % 10 {
		case 0:
			// absent: no punches
			reqs = append(reqs, req)
			continue
		case 1, 2:
			in = shiftClock(in, 20)
		case 3:
			out = ""
		case 9:
			out = shiftClock(out, 120)
			req.Adjustment = attendance.Adjustment{OTHours: 2, OTMultiplier: 1.5}
		}

		req.InTime = strPtr(in)
		if out != "" {
			req.OutTime = strPtr(out)
		}
		reqs = append(reqs, req)
	}
	return reqs
}

func shiftClock(hhmm string, minutes int) string {
	m, err := clock.ToMinutes(hhmm)
	if err != nil {
		return hhmm
	}
	return clock.FromMinutes(m + minutes)
}
