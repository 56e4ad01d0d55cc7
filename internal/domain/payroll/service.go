package payroll

import "context"

// ReportService aggregates the ledger into stored period summaries.
type ReportService interface {
	// Report recomputes unlocked summaries for the period and returns every
	// stored summary of the given kind.
	Report(ctx context.Context, kind Kind, req PeriodRequest) (PeriodReport, error)

	// Recompute is idempotent and leaves overridden or finalized rows alone.
	Recompute(ctx context.Context, req PeriodRequest) (RecomputeResult, error)

	Override(ctx context.Context, req OverrideRequest) (SummaryResponse, error)
	Finalize(ctx context.Context, id string) (SummaryResponse, error)

	// Export renders the report as an XLSX workbook.
	Export(ctx context.Context, kind Kind, req PeriodRequest) ([]byte, error)
}
