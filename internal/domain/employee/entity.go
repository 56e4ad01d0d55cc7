package employee

import (
	"strings"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/shift"
)

// Employee is the directory record this service reads. It is owned by the
// employee directory and never written here.
type Employee struct {
	ID             string
	EmployeeNumber string
	FirstName      string
	LastName       string
	Shift          shift.Shift
	HourlyRate     float64
	MonthlySalary  float64
	SalaryType     SalaryType
	Status         EmploymentStatus
	IsArchived     bool
	IsDeleted      bool
}

type SalaryType string

const (
	SalaryTypeHourly  SalaryType = "hourly"
	SalaryTypeMonthly SalaryType = "monthly"
)

type EmploymentStatus string

const (
	EmploymentStatusActive EmploymentStatus = "active"
	EmploymentStatusFrozen EmploymentStatus = "frozen"
)

// IsActive reports whether the employee takes part in worksheets and
// period recomputation.
func (e Employee) IsActive() bool {
	return e.Status == EmploymentStatusActive && !e.IsArchived && !e.IsDeleted
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}
