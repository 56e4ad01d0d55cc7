package payroll

import (
	"context"
	"time"
)

// SummaryRepository persists period summaries keyed by
// (employee, kind, period start, period end).
type SummaryRepository interface {
	// GetByKey returns nil, nil when no summary exists for the key.
	GetByKey(ctx context.Context, employeeID string, kind Kind, start, end time.Time) (*PeriodSummary, error)
	GetByID(ctx context.Context, id string) (PeriodSummary, error)
	Upsert(ctx context.Context, summary PeriodSummary) (PeriodSummary, error)
	// ListPeriod returns summaries ordered by employee number.
	ListPeriod(ctx context.Context, kind Kind, start, end time.Time) ([]PeriodSummary, error)
}
