package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler interface {
	GetPayrollReport(w http.ResponseWriter, r *http.Request)
	GetPerformanceReport(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	Recompute(w http.ResponseWriter, r *http.Request)
	Override(w http.ResponseWriter, r *http.Request)
	Finalize(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService payroll.ReportService
	now           func() time.Time
}

func NewReportHandler(reportService payroll.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
		now:           time.Now,
	}
}

// GetPayrollReport handles GET /reports/payroll
func (h *reportHandlerImpl) GetPayrollReport(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, payroll.KindPayroll)
}

// GetPerformanceReport handles GET /reports/performance
func (h *reportHandlerImpl) GetPerformanceReport(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, payroll.KindPerformance)
}

// report also refreshes draft summaries for the period; see ReportService.Report.
func (h *reportHandlerImpl) report(w http.ResponseWriter, r *http.Request, kind payroll.Kind) {
	result, err := h.reportService.Report(r.Context(), kind, h.periodFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export handles GET /reports/{kind}/export
func (h *reportHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	kind := payroll.Kind(chi.URLParam(r, "kind"))
	period := h.periodFromQuery(r)

	data, err := h.reportService.Export(r.Context(), kind, period)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("%s_report_%s_%s.xlsx", kind, period.From, period.To)
	response.File(w, xlsxContentType, filename, data)
}

// Recompute handles POST /reports/recompute. The period comes from the JSON
// body or the query string and defaults to the current month.
func (h *reportHandlerImpl) Recompute(w http.ResponseWriter, r *http.Request) {
	period := h.periodFromQuery(r)
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&period); err != nil {
			response.BadRequest(w, "Invalid request body", nil)
			return
		}
	}
	if period.From == "" && period.To == "" {
		period = payroll.MonthOf(h.now().UTC())
	}

	result, err := h.reportService.Recompute(r.Context(), period)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Period summaries recomputed", result)
}

// Override handles PUT /reports/summaries/{id}/override
func (h *reportHandlerImpl) Override(w http.ResponseWriter, r *http.Request) {
	var req payroll.OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.reportService.Override(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Period summary overridden", result)
}

// Finalize handles POST /reports/summaries/{id}/finalize
func (h *reportHandlerImpl) Finalize(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.Finalize(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Period summary finalized", result)
}

// periodFromQuery reads ?from&to, falling back to the current month when
// both are absent.
func (h *reportHandlerImpl) periodFromQuery(r *http.Request) payroll.PeriodRequest {
	period := payroll.PeriodRequest{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
	if period.From == "" && period.To == "" && r.Method == http.MethodGet {
		return payroll.MonthOf(h.now().UTC())
	}
	return period
}
