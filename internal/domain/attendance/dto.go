package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/money"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/validator"
)

// DefaultOTMultiplier applies when flat OT hours arrive without a multiplier.
const DefaultOTMultiplier = 1.0

// ========================================
// CSV IMPORT
// ========================================

type ImportRequest struct {
	Content  []byte
	MaxBytes int64
}

func (r *ImportRequest) Validate() error {
	if r.Content == nil {
		return ErrNilImportContent
	}
	if r.MaxBytes > 0 && int64(len(r.Content)) > r.MaxBytes {
		return ErrImportTooLarge
	}
	if len(r.Content) == 0 {
		return ErrEmptyImport
	}
	return nil
}

type LogType string

const (
	LogInfo    LogType = "info"
	LogSuccess LogType = "success"
	LogWarning LogType = "warning"
	LogError   LogType = "error"
)

type LogLine struct {
	Type    LogType `json:"type"`
	Message string  `json:"message"`
}

type ImportSummary struct {
	Total          int `json:"total"`
	Success        int `json:"success"`
	Failed         int `json:"failed"`
	Skipped        int `json:"skipped"`
	RecordsCreated int `json:"recordsCreated"`
	RecordsUpdated int `json:"recordsUpdated"`
}

type ImportResult struct {
	Success       bool          `json:"success"`
	ProcessingLog []LogLine     `json:"processingLog"`
	Summary       ImportSummary `json:"summary"`
}

// ========================================
// MANUAL SAVE
// ========================================

type OTDetailInput struct {
	Type   string   `json:"type"`
	Hours  *float64 `json:"hours,omitempty"`
	Rate   *float64 `json:"rate,omitempty"`
	Amount *float64 `json:"amount,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

type DeductionDetailInput struct {
	Amount *float64 `json:"amount"`
	Reason string   `json:"reason,omitempty"`
}

type ManualSaveRequest struct {
	EmployeeID       string                 `json:"employee_id"`
	Date             string                 `json:"date"`
	Status           *string                `json:"status,omitempty"`
	InTime           *string                `json:"in_time,omitempty"`
	OutTime          *string                `json:"out_time,omitempty"`
	OutNextDay       *bool                  `json:"out_next_day,omitempty"`
	OTMultiplier     *float64               `json:"ot_multiplier,omitempty"`
	OTHours          *float64               `json:"ot_hours,omitempty"`
	OTDetails        []OTDetailInput        `json:"ot_details,omitempty"`
	Deduction        *float64               `json:"deduction,omitempty"`
	DeductionDetails []DeductionDetailInput `json:"deduction_details,omitempty"`

	// Resolved by Validate.
	Day        time.Time  `json:"-"`
	Adjustment Adjustment `json:"-"`
	Times      TimePair   `json:"-"`
	Imposed    *Status    `json:"-"`
}

// TimePair is a validated in/out pair in canonical "HH:mm".
type TimePair struct {
	In         *string
	Out        *string
	OutNextDay bool
}

// Adjustment carries the OT and deduction inputs of a write with defaults
// resolved.
type Adjustment struct {
	OTMultiplier     float64
	OTHours          float64
	OTDetails        []OTDetail
	Deduction        float64
	DeductionDetails []DeductionDetail
}

// AdjustmentOf recovers the inputs that produced stored financials.
func AdjustmentOf(f Financials) Adjustment {
	return Adjustment{
		OTMultiplier:     f.OTMultiplier,
		OTHours:          f.OTHours,
		OTDetails:        f.OTDetails,
		Deduction:        f.Deduction,
		DeductionDetails: f.DeductionDetails,
	}
}

func (r *ManualSaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}

	day, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs.Add("date", "date must be dd/mm/yyyy or YYYY-MM-DD")
	}
	r.Day = day

	r.Imposed = nil
	if r.Status != nil && *r.Status != "" {
		st := Status(*r.Status)
		switch st {
		case StatusLeave, StatusAbsent:
			r.Imposed = &st
		case StatusPresent, StatusLate:
			// derived from the times
		default:
			errs.Add("status", "status must be one of: present, late, absent, leave")
		}
	}

	pair, pairErrs := resolveTimePair(r.InTime, r.OutTime, r.OutNextDay)
	errs = append(errs, pairErrs...)
	r.Times = pair
	if r.Imposed != nil {
		r.Times = TimePair{}
	}

	if !validator.IsNonNegative(r.OTMultiplier) {
		errs.Add("ot_multiplier", "ot_multiplier must not be negative")
	}
	if !validator.IsNonNegative(r.OTHours) {
		errs.Add("ot_hours", "ot_hours must not be negative")
	}
	if !validator.IsNonNegative(r.Deduction) {
		errs.Add("deduction", "deduction must not be negative")
	}

	adj := Adjustment{
		OTMultiplier: valueOr(r.OTMultiplier, 0),
		OTHours:      valueOr(r.OTHours, 0),
		Deduction:    valueOr(r.Deduction, 0),
	}
	if adj.OTHours > 0 && adj.OTMultiplier == 0 {
		adj.OTMultiplier = DefaultOTMultiplier
	}

	for i, d := range r.OTDetails {
		detail := OTDetail{
			Type:   OTDetailType(d.Type),
			Hours:  valueOr(d.Hours, 0),
			Rate:   valueOr(d.Rate, 0),
			Amount: valueOr(d.Amount, 0),
			Reason: d.Reason,
		}
		switch detail.Type {
		case OTDetailManual, OTDetailCalculated:
		default:
			errs.Add(indexed("ot_details", i, "type"), "type must be manual or calculated")
		}
		if detail.Hours < 0 || detail.Rate < 0 || detail.Amount < 0 {
			errs.Add(indexed("ot_details", i, "amount"), "values must not be negative")
		}
		adj.OTDetails = append(adj.OTDetails, detail)
	}

	for i, d := range r.DeductionDetails {
		amount := valueOr(d.Amount, 0)
		if amount < 0 {
			errs.Add(indexed("deduction_details", i, "amount"), "amount must not be negative")
		}
		adj.DeductionDetails = append(adj.DeductionDetails, DeductionDetail{Amount: amount, Reason: d.Reason})
	}
	r.Adjustment = adj

	return errs.OrNil()
}

type BatchManualSaveRequest struct {
	Rows []ManualSaveRequest `json:"rows"`
}

func (r *BatchManualSaveRequest) Validate() error {
	var errs validator.ValidationErrors
	if len(r.Rows) == 0 {
		errs.Add("rows", "at least one row is required")
	}
	for i := range r.Rows {
		if err := r.Rows[i].Validate(); err != nil {
			if verrs, ok := err.(validator.ValidationErrors); ok {
				for _, e := range verrs {
					errs.Add(indexed("rows", i, e.Field), e.Message)
				}
				continue
			}
			errs.Add(indexed("rows", i, ""), err.Error())
		}
	}
	return errs.OrNil()
}

// BulkResult reports a fan-out write. Failures do not roll back applied
// rows.
type BulkResult struct {
	Requested int         `json:"requested"`
	Applied   int         `json:"applied"`
	Created   int         `json:"created"`
	Updated   int         `json:"updated"`
	Skipped   int         `json:"skipped"`
	Failed    int         `json:"failed"`
	Errors    []BulkError `json:"errors,omitempty"`
}

type BulkError struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Message    string `json:"message"`
}

// ========================================
// LEAVE APPROVAL
// ========================================

type LeaveApprovalRequest struct {
	EmployeeID     string `json:"employee_id"`
	FromDate       string `json:"from_date"`
	ToDate         string `json:"to_date"`
	LeaveRequestID string `json:"leave_request_id,omitempty"`

	From time.Time `json:"-"`
	To   time.Time `json:"-"`
}

func (r *LeaveApprovalRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	from, okFrom := validator.IsValidDate(r.FromDate)
	if !okFrom {
		errs.Add("from_date", "from_date must be dd/mm/yyyy or YYYY-MM-DD")
	}
	to, okTo := validator.IsValidDate(r.ToDate)
	if !okTo {
		errs.Add("to_date", "to_date must be dd/mm/yyyy or YYYY-MM-DD")
	}
	if okFrom && okTo && to.Before(from) {
		errs.Add("to_date", "to_date must not be before from_date")
	}
	r.From, r.To = from, to

	return errs.OrNil()
}

// ========================================
// CORRECTION APPROVAL
// ========================================

type CorrectionScope string

const (
	CorrectionIn   CorrectionScope = "in"
	CorrectionOut  CorrectionScope = "out"
	CorrectionBoth CorrectionScope = "both"
)

func (s CorrectionScope) TouchesIn() bool  { return s == CorrectionIn || s == CorrectionBoth }
func (s CorrectionScope) TouchesOut() bool { return s == CorrectionOut || s == CorrectionBoth }

type CorrectionApprovalRequest struct {
	EmployeeID   string          `json:"employee_id"`
	Date         string          `json:"date"`
	Scope        CorrectionScope `json:"scope"`
	InTime       *string         `json:"in_time,omitempty"`
	OutTime      *string         `json:"out_time,omitempty"`
	OutNextDay   *bool           `json:"out_next_day,omitempty"`
	CorrectionID string          `json:"correction_id,omitempty"`

	Day time.Time `json:"-"`
}

func (r *CorrectionApprovalRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	day, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs.Add("date", "date must be dd/mm/yyyy or YYYY-MM-DD")
	}
	r.Day = day

	r.Scope = CorrectionScope(lower(string(r.Scope)))
	switch r.Scope {
	case CorrectionIn, CorrectionOut, CorrectionBoth:
	default:
		errs.Add("scope", ErrUnknownCorrection.Error())
	}

	if r.Scope.TouchesIn() {
		if r.InTime == nil {
			errs.Add("in_time", "in_time is required for this scope")
		} else if hhmm, ok := validator.IsValidClock(*r.InTime); ok {
			r.InTime = &hhmm
		} else {
			errs.Add("in_time", "in_time must be a valid time")
		}
	}
	if r.Scope.TouchesOut() {
		if r.OutTime == nil {
			errs.Add("out_time", "out_time is required for this scope")
		} else if hhmm, ok := validator.IsValidClock(*r.OutTime); ok {
			r.OutTime = &hhmm
		} else {
			errs.Add("out_time", "out_time must be a valid time")
		}
	}

	return errs.OrNil()
}

// ========================================
// SYSTEM WRITES
// ========================================

type SystemRecordRequest struct {
	EmployeeID string
	Date       time.Time
	InTime     *string
	OutTime    *string
	OutNextDay *bool
	Adjustment Adjustment

	Times TimePair `json:"-"`
}

func (r *SystemRecordRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if r.Date.IsZero() {
		errs.Add("date", "date is required")
	}
	pair, pairErrs := resolveTimePair(r.InTime, r.OutTime, r.OutNextDay)
	errs = append(errs, pairErrs...)
	r.Times = pair
	return errs.OrNil()
}

// ========================================
// READS
// ========================================

type RangeFilter struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	EmployeeID *string `json:"employee_id,omitempty"`

	FromDay time.Time `json:"-"`
	ToDay   time.Time `json:"-"`
}

func (f *RangeFilter) Validate() error {
	var errs validator.ValidationErrors
	from, okFrom := validator.IsValidDate(f.From)
	if !okFrom {
		errs.Add("from", "from is required and must be dd/mm/yyyy or YYYY-MM-DD")
	}
	to, okTo := validator.IsValidDate(f.To)
	if !okTo {
		errs.Add("to", "to is required and must be dd/mm/yyyy or YYYY-MM-DD")
	}
	if okFrom && okTo && to.Before(from) {
		errs.Add("to", "to must not be before from")
	}
	if f.EmployeeID != nil && validator.IsEmpty(*f.EmployeeID) {
		f.EmployeeID = nil
	}
	f.FromDay, f.ToDay = from, to
	return errs.OrNil()
}

type DeleteEntryRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`

	Day time.Time `json:"-"`
}

func (r *DeleteEntryRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	day, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs.Add("date", "date must be dd/mm/yyyy or YYYY-MM-DD")
	}
	r.Day = day
	return errs.OrNil()
}

type WorksheetRequest struct {
	RangeFilter
}

// ========================================
// RESPONSES
// ========================================

type FinancialsResponse struct {
	HoursWorked      float64           `json:"hours_worked"`
	ScheduledHours   float64           `json:"scheduled_hours"`
	BasePay          float64           `json:"base_pay"`
	Deduction        float64           `json:"deduction"`
	DeductionDetails []DeductionDetail `json:"deduction_details"`
	OTMultiplier     float64           `json:"ot_multiplier"`
	OTHours          float64           `json:"ot_hours"`
	OTAmount         float64           `json:"ot_amount"`
	OTDetails        []OTDetail        `json:"ot_details"`
	FinalDayEarning  float64           `json:"final_day_earning"`
}

type EntryResponse struct {
	ID             string             `json:"id,omitempty"`
	EmployeeID     string             `json:"employee_id"`
	EmployeeNumber string             `json:"employee_number"`
	EmployeeName   string             `json:"employee_name"`
	Date           string             `json:"date"`
	Status         Status             `json:"status"`
	InTime         *string            `json:"in_time"`
	OutTime        *string            `json:"out_time"`
	OutNextDay     bool               `json:"out_next_day"`
	Shift          shift.Shift        `json:"shift"`
	HourlyRate     float64            `json:"hourly_rate"`
	Financials     FinancialsResponse `json:"financials"`
	ManualOverride bool               `json:"manual_override"`
	Source         Source             `json:"source,omitempty"`
	LastUpdatedBy  string             `json:"last_updated_by,omitempty"`
	LastModifiedAt string             `json:"last_modified_at,omitempty"`
}

type WorksheetRow struct {
	EntryResponse
	IsVirtual bool `json:"is_virtual"`
}

// CSVRow is the flat export shape of a ledger row.
type CSVRow struct {
	Date            string  `csv:"date"`
	EmployeeNumber  string  `csv:"employee_number"`
	EmployeeName    string  `csv:"employee_name"`
	Status          string  `csv:"status"`
	InTime          string  `csv:"in_time"`
	OutTime         string  `csv:"out_time"`
	OutNextDay      bool    `csv:"out_next_day"`
	HoursWorked     float64 `csv:"hours_worked"`
	BasePay         float64 `csv:"base_pay"`
	Deduction       float64 `csv:"deduction"`
	OTAmount        float64 `csv:"ot_amount"`
	FinalDayEarning float64 `csv:"final_day_earning"`
	ManualOverride  bool    `csv:"manual_override"`
}

func MapEntryToResponse(e Entry) EntryResponse {
	f := e.Financials
	resp := EntryResponse{
		ID:             e.ID,
		EmployeeID:     e.EmployeeID,
		EmployeeNumber: e.EmployeeNumber,
		EmployeeName:   e.EmployeeName,
		Date:           clock.FormatDay(e.Date),
		Status:         e.Status,
		InTime:         e.InTime,
		OutTime:        e.OutTime,
		OutNextDay:     e.OutNextDay,
		Shift:          e.Shift,
		HourlyRate:     e.HourlyRate,
		Financials: FinancialsResponse{
			HoursWorked:      money.Round2(f.HoursWorked),
			ScheduledHours:   money.Round2(f.ScheduledHours),
			BasePay:          money.Round2(f.BasePay),
			Deduction:        money.Round2(f.Deduction),
			DeductionDetails: nonNilDeductions(f.DeductionDetails),
			OTMultiplier:     f.OTMultiplier,
			OTHours:          money.Round2(f.OTHours),
			OTAmount:         money.Round2(f.OTAmount),
			OTDetails:        nonNilOT(f.OTDetails),
			FinalDayEarning:  money.Round2(f.FinalDayEarning),
		},
		ManualOverride: e.ManualOverride(),
		Source:         e.Metadata.Source,
		LastUpdatedBy:  e.Metadata.LastUpdatedBy,
	}
	if !e.Metadata.LastModifiedAt.IsZero() {
		resp.LastModifiedAt = e.Metadata.LastModifiedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func MapEntryToCSVRow(r EntryResponse) CSVRow {
	return CSVRow{
		Date:            r.Date,
		EmployeeNumber:  r.EmployeeNumber,
		EmployeeName:    r.EmployeeName,
		Status:          string(r.Status),
		InTime:          valueOr(r.InTime, ""),
		OutTime:         valueOr(r.OutTime, ""),
		OutNextDay:      r.OutNextDay,
		HoursWorked:     r.Financials.HoursWorked,
		BasePay:         r.Financials.BasePay,
		Deduction:       r.Financials.Deduction,
		OTAmount:        r.Financials.OTAmount,
		FinalDayEarning: r.Financials.FinalDayEarning,
		ManualOverride:  r.ManualOverride,
	}
}
