package attendance

import (
	"context"
)

// AttendanceService reconciles every write path into the ledger.
type AttendanceService interface {
	// ImportCSV parses a punch export and upserts one row per employee-day,
	// skipping rows that carry a manual override.
	ImportCSV(ctx context.Context, req ImportRequest) (ImportResult, error)

	// SaveManual writes an admin edit and locks the row against CSV imports.
	SaveManual(ctx context.Context, req ManualSaveRequest) (EntryResponse, error)

	// SaveManualBatch applies SaveManual to every row and reports counts.
	SaveManualBatch(ctx context.Context, req BatchManualSaveRequest) (BulkResult, error)

	// ApproveLeave marks every day in the approved range as paid leave.
	ApproveLeave(ctx context.Context, req LeaveApprovalRequest) (BulkResult, error)

	// ApproveCorrection applies an approved in/out correction.
	ApproveCorrection(ctx context.Context, req CorrectionApprovalRequest) (EntryResponse, error)

	// RecordSystem writes a system-generated row, e.g. demo data.
	RecordSystem(ctx context.Context, req SystemRecordRequest) (EntryResponse, error)

	ListRange(ctx context.Context, filter RangeFilter) ([]EntryResponse, error)

	DeleteEntry(ctx context.Context, req DeleteEntryRequest) error
}

// WorksheetService materializes the employee x day review grid.
type WorksheetService interface {
	Build(ctx context.Context, req WorksheetRequest) ([]WorksheetRow, error)
}
