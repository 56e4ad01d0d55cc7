package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
	StatusLeave   Status = "leave"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent, StatusLeave:
		return true
	}
	return false
}

// Attended reports whether the day counts as a present day.
func (s Status) Attended() bool {
	return s == StatusPresent || s == StatusLate
}

// Source names the write path that last touched an entry.
type Source string

const (
	SourceSystem             Source = "system"
	SourceManual             Source = "manual"
	SourceCSV                Source = "csv"
	SourceCorrectionApproval Source = "correction_approval"
	SourceLeaveApproval      Source = "leave_approval"
)

// Ownership is the manual-override lock. A human-locked entry only accepts
// writes that come from a person.
type Ownership string

const (
	OwnershipSystem Ownership = "system"
	OwnershipHuman  Ownership = "human"
)

// Permits reports whether a write from src may modify an entry with this
// ownership.
func (o Ownership) Permits(src Source) bool {
	if o != OwnershipHuman {
		return true
	}
	switch src {
	case SourceManual, SourceLeaveApproval, SourceCorrectionApproval:
		return true
	}
	return false
}

func (o Ownership) IsLocked() bool {
	return o == OwnershipHuman
}

type OTDetailType string

const (
	OTDetailManual     OTDetailType = "manual"
	OTDetailCalculated OTDetailType = "calculated"
)

// OTDetail is one itemized overtime adjustment. Manual items contribute
// Amount; calculated items contribute Hours x Rate x hourly rate.
type OTDetail struct {
	Type   OTDetailType `json:"type"`
	Hours  float64      `json:"hours,omitempty"`
	Rate   float64      `json:"rate,omitempty"`
	Amount float64      `json:"amount,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

type DeductionDetail struct {
	Amount float64 `json:"amount"`
	Reason string  `json:"reason,omitempty"`
}

type Financials struct {
	HoursWorked      float64
	ScheduledHours   float64
	BasePay          float64
	Deduction        float64
	DeductionDetails []DeductionDetail
	OTMultiplier     float64
	OTHours          float64
	OTAmount         float64
	OTDetails        []OTDetail
	FinalDayEarning  float64
}

type Metadata struct {
	Source         Source
	LastUpdatedBy  string
	LastModifiedAt time.Time
}

// Entry is the ledger row for one employee on one calendar day.
type Entry struct {
	ID             string
	EmployeeID     string
	EmployeeNumber string
	EmployeeName   string
	Date           time.Time
	Status         Status
	InTime         *string
	OutTime        *string
	OutNextDay     bool
	Shift          shift.Shift
	HourlyRate     float64
	Financials     Financials
	Ownership      Ownership
	Metadata       Metadata
	IsDeleted      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (e Entry) ManualOverride() bool {
	return e.Ownership.IsLocked()
}

func (e Entry) Key() Key {
	return KeyOf(e.EmployeeID, e.Date)
}

// Key identifies a ledger row.
type Key struct {
	EmployeeID string
	Date       time.Time
}

func KeyOf(employeeID string, date time.Time) Key {
	return Key{EmployeeID: employeeID, Date: clock.Day(date)}
}

func (k Key) String() string {
	return k.EmployeeID + "|" + clock.FormatDay(k.Date)
}

// Clone returns a copy that shares no pointers or slices with e.
func (e Entry) Clone() Entry {
	c := e
	c.InTime = cloneString(e.InTime)
	c.OutTime = cloneString(e.OutTime)
	if e.Financials.OTDetails != nil {
		c.Financials.OTDetails = append([]OTDetail(nil), e.Financials.OTDetails...)
	}
	if e.Financials.DeductionDetails != nil {
		c.Financials.DeductionDetails = append([]DeductionDetail(nil), e.Financials.DeductionDetails...)
	}
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
