package attendance

import (
	"context"
	"time"
)

// EntryRepository persists ledger rows. Rows are never physically removed.
type EntryRepository interface {
	// GetByKey returns the row for (employeeID, date), soft-deleted rows
	// included. It returns nil, nil when no row exists.
	GetByKey(ctx context.Context, employeeID string, date time.Time) (*Entry, error)

	// Upsert writes the row keyed by (EmployeeID, Date) and reports whether
	// it was inserted.
	Upsert(ctx context.Context, entry Entry) (Entry, bool, error)

	// ListRange returns non-deleted rows with from <= date <= to ordered by
	// date, then employee number. A nil employeeID means every employee.
	ListRange(ctx context.Context, from, to time.Time, employeeID *string) ([]Entry, error)

	SoftDelete(ctx context.Context, employeeID string, date time.Time) error
}
