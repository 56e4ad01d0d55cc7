package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/employee"
)

// EmployeeStore is a fixed employee directory.
type EmployeeStore struct {
	mu        sync.RWMutex
	employees map[string]employee.Employee
}

func NewEmployeeStore(employees ...employee.Employee) *EmployeeStore {
	s := &EmployeeStore{employees: make(map[string]employee.Employee)}
	for _, e := range employees {
		s.employees[e.ID] = e
	}
	return s
}

// Put adds or replaces a directory record.
func (s *EmployeeStore) Put(e employee.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
}

func (s *EmployeeStore) GetByID(_ context.Context, id string) (employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.employees[id]
	if !ok || e.IsDeleted {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (s *EmployeeStore) GetByEmployeeNumber(_ context.Context, employeeNumber string) (employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.employees {
		if e.EmployeeNumber == employeeNumber && !e.IsDeleted {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (s *EmployeeStore) ListActive(_ context.Context) ([]employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]employee.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		if e.IsActive() {
			result = append(result, e)
		}
	}
	slices.SortFunc(result, func(a, b employee.Employee) int {
		return employee.CompareNumbers(a.EmployeeNumber, b.EmployeeNumber)
	})
	return result, nil
}

var _ employee.EmployeeRepository = (*EmployeeStore)(nil)
