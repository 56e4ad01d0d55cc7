package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/handler/http/response"
)

type WorksheetHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
}

type worksheetHandlerImpl struct {
	worksheetService attendance.WorksheetService
}

func NewWorksheetHandler(worksheetService attendance.WorksheetService) WorksheetHandler {
	return &worksheetHandlerImpl{
		worksheetService: worksheetService,
	}
}

// Get handles GET /worksheet
func (h *worksheetHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	req := attendance.WorksheetRequest{RangeFilter: rangeFilterFromQuery(r)}
	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		req.EmployeeID = &employeeID
	}

	rows, err := h.worksheetService.Build(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, rows, &response.Meta{
		TotalItems: int64(len(rows)),
		From:       req.From,
		To:         req.To,
	})
}
