package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/payroll"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Summary"

var payrollColumns = []string{
	"Employee No", "Name", "Salary Type", "Present", "Late", "Absent", "Leave", "Working Days",
	"Hours Worked", "OT Hours", "Base Salary", "Deduction", "OT Amount", "Net Salary", "Status",
}

var performanceColumns = []string{
	"Employee No", "Name", "Present", "Late", "Absent", "Leave", "Working Days",
	"Attendance %", "Punctuality %", "OT Score", "Score", "Rating", "Status",
}

// Export implements payroll.ReportService. The workbook has one sheet with a
// styled header row followed by one row per employee and a totals row.
func (s *ReportServiceImpl) Export(ctx context.Context, kind payroll.Kind, req payroll.PeriodRequest) ([]byte, error) {
	report, err := s.Report(ctx, kind, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	title := fmt.Sprintf("%s report %s to %s", kind, report.PeriodStart, report.PeriodEnd)
	f.SetCellValue(sheetName, "A1", title)

	columns := payrollColumns
	if kind == payroll.KindPerformance {
		columns = performanceColumns
	}
	const headerRow = 3
	if err := f.SetSheetRow(sheetName, cell(1, headerRow), &columns); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(sheetName, cell(1, headerRow), cell(len(columns), headerRow), headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	row := headerRow + 1
	for _, r := range report.Rows {
		values := rowValues(kind, r)
		if err := f.SetSheetRow(sheetName, cell(1, row), &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", row, err)
		}
		row++
	}

	totals := totalsRow(kind, report.Totals)
	if err := f.SetSheetRow(sheetName, cell(1, row), &totals); err != nil {
		return nil, fmt.Errorf("failed to write totals: %w", err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 28)
	f.SetColWidth(sheetName, "C", lastCol, 14)
	f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func rowValues(kind payroll.Kind, r payroll.SummaryResponse) []any {
	if kind == payroll.KindPerformance {
		return []any{
			r.EmployeeNumber, r.EmployeeName, r.PresentDays, r.LateDays, r.AbsentDays, r.LeaveDays,
			r.TotalWorkingDays, r.AttendanceRate, r.PunctualityRate, r.OTScore, r.PerformanceScore,
			string(r.Rating), r.Status,
		}
	}
	return []any{
		r.EmployeeNumber, r.EmployeeName, r.SalaryType, r.PresentDays, r.LateDays, r.AbsentDays,
		r.LeaveDays, r.TotalWorkingDays, r.TotalHoursWorked, r.TotalOTHours, r.BaseSalary,
		r.TotalDeduction, r.TotalOTAmount, r.NetSalary, r.Status,
	}
}

func totalsRow(kind payroll.Kind, t payroll.ReportTotals) []any {
	if kind == payroll.KindPerformance {
		// score column is the 11th
		row := make([]any, 11)
		row[0] = "Total"
		row[1] = fmt.Sprintf("%d employees", t.Employees)
		row[10] = t.AverageScore
		return row
	}
	row := make([]any, 14)
	row[0] = "Total"
	row[1] = fmt.Sprintf("%d employees", t.Employees)
	row[10] = t.BaseSalary
	row[11] = t.TotalDeduction
	row[12] = t.TotalOTAmount
	row[13] = t.NetSalary
	return row
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
