// Package memory provides in-process repositories for tests and for running
// without a database.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
	"github.com/google/uuid"
)

type EntryStore struct {
	mu      sync.RWMutex
	entries map[attendance.Key]attendance.Entry
	now     func() time.Time
}

func NewEntryStore() *EntryStore {
	return &EntryStore{
		entries: make(map[attendance.Key]attendance.Entry),
		now:     time.Now,
	}
}

// GetByKey implements attendance.EntryRepository.
func (s *EntryStore) GetByKey(_ context.Context, employeeID string, date time.Time) (*attendance.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[attendance.KeyOf(employeeID, date)]
	if !ok {
		return nil, nil
	}
	c := e.Clone()
	return &c, nil
}

// Upsert implements attendance.EntryRepository.
func (s *EntryStore) Upsert(_ context.Context, entry attendance.Entry) (attendance.Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry = entry.Clone()
	entry.Date = clock.Day(entry.Date)
	now := s.now().UTC()

	k := entry.Key()
	existing, found := s.entries[k]
	if found {
		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
	} else {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.Entry{}, false, err
		}
		entry.ID = id.String()
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	s.entries[k] = entry

	return entry.Clone(), !found, nil
}

// ListRange implements attendance.EntryRepository.
func (s *EntryStore) ListRange(_ context.Context, from, to time.Time, employeeID *string) ([]attendance.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to = clock.Day(from), clock.Day(to)
	result := make([]attendance.Entry, 0)
	for _, e := range s.entries {
		if e.IsDeleted || e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		if employeeID != nil && e.EmployeeID != *employeeID {
			continue
		}
		result = append(result, e.Clone())
	}

	slices.SortFunc(result, func(a, b attendance.Entry) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return employee.CompareNumbers(a.EmployeeNumber, b.EmployeeNumber)
	})
	return result, nil
}

// SoftDelete implements attendance.EntryRepository.
func (s *EntryStore) SoftDelete(_ context.Context, employeeID string, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := attendance.KeyOf(employeeID, date)
	e, ok := s.entries[k]
	if !ok || e.IsDeleted {
		return attendance.ErrEntryNotFound
	}
	e.IsDeleted = true
	e.UpdatedAt = s.now().UTC()
	s.entries[k] = e
	return nil
}

var _ attendance.EntryRepository = (*EntryStore)(nil)
