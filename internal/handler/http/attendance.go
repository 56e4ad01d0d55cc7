package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/gocarina/gocsv"
)

// multipartOverhead is headroom for boundaries and part headers on top of
// the import size limit.
const multipartOverhead = 1 << 20

type AttendanceHandler interface {
	Import(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	SaveManual(w http.ResponseWriter, r *http.Request)
	SaveManualBatch(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	ApproveLeave(w http.ResponseWriter, r *http.Request)
	ApproveCorrection(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	importMaxBytes    int64
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, importMaxBytes int64) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		importMaxBytes:    importMaxBytes,
	}
}

// Import implements AttendanceHandler. It accepts a multipart "file" field or
// the raw export as the request body.
func (h *attendanceHandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	content, err := h.readImport(w, r)
	if err != nil {
		slog.Error("Failed to read import content", "error", err)
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ImportCSV(r.Context(), attendance.ImportRequest{
		Content:  content,
		MaxBytes: h.importMaxBytes,
	})
	if errors.Is(err, attendance.ErrUnreadableImport) {
		response.BadRequestWithData(w, err.Error(), result)
		return
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Import processed", result)
}

func (h *attendanceHandlerImpl) readImport(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	// one byte past the limit lets the request DTO report the overflow
	limit := h.importMaxBytes + 1

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.ReadAll(io.LimitReader(r.Body, limit))
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.importMaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.importMaxBytes); err != nil {
		if _, ok := err.(*http.MaxBytesError); ok {
			return nil, attendance.ErrImportTooLarge
		}
		return nil, fmt.Errorf("%w: %v", attendance.ErrNilImportContent, err)
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: field 'file' is required", attendance.ErrNilImportContent)
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, limit))
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := rangeFilterFromQuery(r)
	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	h.writeRange(w, r, filter)
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	employeeID := jwt.EmployeeIDFromContext(r.Context())
	if employeeID == "" {
		response.Forbidden(w, "Token is not linked to an employee")
		return
	}

	filter := rangeFilterFromQuery(r)
	filter.EmployeeID = &employeeID
	h.writeRange(w, r, filter)
}

func (h *attendanceHandlerImpl) writeRange(w http.ResponseWriter, r *http.Request, filter attendance.RangeFilter) {
	rows, err := h.attendanceService.ListRange(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		csvRows := make([]attendance.CSVRow, 0, len(rows))
		for _, row := range rows {
			csvRows = append(csvRows, attendance.MapEntryToCSVRow(row))
		}
		var buf bytes.Buffer
		if err := gocsv.Marshal(&csvRows, &buf); err != nil {
			response.HandleError(w, fmt.Errorf("failed to encode csv: %w", err))
			return
		}
		filename := fmt.Sprintf("attendance_%s_%s.csv", filter.From, filter.To)
		response.File(w, "text/csv; charset=utf-8", filename, buf.Bytes())
		return
	}

	response.SuccessWithMeta(w, rows, &response.Meta{
		TotalItems: int64(len(rows)),
		From:       filter.From,
		To:         filter.To,
	})
}

// SaveManual implements AttendanceHandler.
func (h *attendanceHandlerImpl) SaveManual(w http.ResponseWriter, r *http.Request) {
	var req attendance.ManualSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	entry, err := h.attendanceService.SaveManual(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance saved", entry)
}

// SaveManualBatch implements AttendanceHandler.
func (h *attendanceHandlerImpl) SaveManualBatch(w http.ResponseWriter, r *http.Request) {
	var req attendance.BatchManualSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.SaveManualBatch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Delete implements AttendanceHandler.
func (h *attendanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	req := attendance.DeleteEntryRequest{
		EmployeeID: chi.URLParam(r, "employeeID"),
		Date:       chi.URLParam(r, "date"),
	}

	if err := h.attendanceService.DeleteEntry(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance entry deleted", nil)
}

// ApproveLeave implements AttendanceHandler.
func (h *attendanceHandlerImpl) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	var req attendance.LeaveApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.ApproveLeave(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave applied to attendance", result)
}

// ApproveCorrection implements AttendanceHandler.
func (h *attendanceHandlerImpl) ApproveCorrection(w http.ResponseWriter, r *http.Request) {
	var req attendance.CorrectionApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	entry, err := h.attendanceService.ApproveCorrection(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Correction applied to attendance", entry)
}

func rangeFilterFromQuery(r *http.Request) attendance.RangeFilter {
	return attendance.RangeFilter{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
}
