package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
	"github.com/google/uuid"
)

type summaryKey struct {
	employeeID string
	kind       payroll.Kind
	start      time.Time
	end        time.Time
}

type SummaryStore struct {
	mu        sync.RWMutex
	summaries map[summaryKey]payroll.PeriodSummary
	now       func() time.Time
}

func NewSummaryStore() *SummaryStore {
	return &SummaryStore{
		summaries: make(map[summaryKey]payroll.PeriodSummary),
		now:       time.Now,
	}
}

func keyOf(employeeID string, kind payroll.Kind, start, end time.Time) summaryKey {
	return summaryKey{employeeID: employeeID, kind: kind, start: clock.Day(start), end: clock.Day(end)}
}

func (s *SummaryStore) GetByKey(_ context.Context, employeeID string, kind payroll.Kind, start, end time.Time) (*payroll.PeriodSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, ok := s.summaries[keyOf(employeeID, kind, start, end)]
	if !ok {
		return nil, nil
	}
	return &sum, nil
}

func (s *SummaryStore) GetByID(_ context.Context, id string) (payroll.PeriodSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sum := range s.summaries {
		if sum.ID == id {
			return sum, nil
		}
	}
	return payroll.PeriodSummary{}, payroll.ErrSummaryNotFound
}

func (s *SummaryStore) Upsert(_ context.Context, sum payroll.PeriodSummary) (payroll.PeriodSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum.PeriodStart, sum.PeriodEnd = clock.Day(sum.PeriodStart), clock.Day(sum.PeriodEnd)
	k := keyOf(sum.EmployeeID, sum.Kind, sum.PeriodStart, sum.PeriodEnd)
	now := s.now().UTC()

	if existing, ok := s.summaries[k]; ok {
		sum.ID = existing.ID
		sum.CreatedAt = existing.CreatedAt
	} else {
		id, err := uuid.NewV7()
		if err != nil {
			return payroll.PeriodSummary{}, err
		}
		sum.ID = id.String()
		sum.CreatedAt = now
	}
	sum.UpdatedAt = now
	s.summaries[k] = sum
	return sum, nil
}

func (s *SummaryStore) ListPeriod(_ context.Context, kind payroll.Kind, start, end time.Time) ([]payroll.PeriodSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start, end = clock.Day(start), clock.Day(end)
	result := make([]payroll.PeriodSummary, 0)
	for k, sum := range s.summaries {
		if k.kind == kind && k.start.Equal(start) && k.end.Equal(end) {
			result = append(result, sum)
		}
	}
	slices.SortFunc(result, func(a, b payroll.PeriodSummary) int {
		return employee.CompareNumbers(a.EmployeeNumber, b.EmployeeNumber)
	})
	return result, nil
}

var _ payroll.SummaryRepository = (*SummaryStore)(nil)
