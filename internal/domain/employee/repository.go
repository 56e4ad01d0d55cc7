package employee

import "context"

// EmployeeRepository is a read-only view of the employee directory.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByEmployeeNumber(ctx context.Context, employeeNumber string) (Employee, error)

	// ListActive returns employees that are active, not archived and not deleted.
	ListActive(ctx context.Context) ([]Employee, error)
}
