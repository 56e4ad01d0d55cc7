package payroll

import "errors"

var (
	ErrSummaryNotFound   = errors.New("period summary not found")
	ErrSummaryFinalized  = errors.New("period summary already finalized, cannot modify")
	ErrInvalidReportKind = errors.New("report kind must be payroll or performance")
)
