package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/validator"
)

var development bool

// SetDevelopment controls whether unexpected error messages reach clients.
func SetDevelopment(on bool) {
	development = on
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrEntryNotFound):
		NotFound(w, "Attendance entry not found")
	case errors.Is(err, attendance.ErrEntryLocked):
		Conflict(w, "Attendance entry has a manual override")
	case errors.Is(err, attendance.ErrImportTooLarge):
		PayloadTooLarge(w, err.Error())
	case errors.Is(err, attendance.ErrEmptyImport),
		errors.Is(err, attendance.ErrNilImportContent),
		errors.Is(err, attendance.ErrUnreadableImport),
		errors.Is(err, attendance.ErrUnknownCorrection):
		BadRequest(w, err.Error(), nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrSummaryNotFound):
		NotFound(w, "Period summary not found")
	case errors.Is(err, payroll.ErrSummaryFinalized):
		Conflict(w, "Period summary is finalized")
	case errors.Is(err, payroll.ErrInvalidReportKind):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		if development {
			InternalServerError(w, err.Error())
			return
		}
		InternalServerError(w, "An unexpected error occurred")
	}
}
