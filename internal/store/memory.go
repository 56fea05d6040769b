package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vyrodovalexey/employee-api/internal/model"
)

// MemoryStore implements Store interface with in-memory storage.
type MemoryStore struct {
	mu        sync.RWMutex
	employees map[int64]model.Employee
	lastID    int64
}

// NewMemoryStore creates a new MemoryStore instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		employees: make(map[int64]model.Employee),
	}
}

// FindAll returns all employees ordered by identifier.
func (s *MemoryStore) FindAll(ctx context.Context) ([]model.Employee, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("find all employees: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	employees := make([]model.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		employees = append(employees, e)
	}

	sort.Slice(employees, func(i, j int) bool {
		return employees[i].ID < employees[j].ID
	})

	return employees, nil
}

// FindByID retrieves an employee by its identifier.
func (s *MemoryStore) FindByID(ctx context.Context, id int64) (*model.Employee, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("find employee: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.employees[id]
	if !exists {
		return nil, &EmployeeNotFoundError{ID: id}
	}

	return &e, nil
}

// Save inserts a new employee or updates an existing one.
func (s *MemoryStore) Save(ctx context.Context, employee *model.Employee) (*model.Employee, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("save employee: %w", ctx.Err())
	default:
	}

	if employee == nil {
		return nil, fmt.Errorf("save employee: %w", ErrNilEmployee)
	}

	if employee.ID < 0 {
		return nil, fmt.Errorf("save employee: %w", ErrInvalidID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *employee
	if saved.ID == 0 {
		s.lastID++
		saved.ID = s.lastID
	} else if _, exists := s.employees[saved.ID]; !exists {
		return nil, &EmployeeNotFoundError{ID: saved.ID}
	}

	s.employees[saved.ID] = saved

	return &saved, nil
}

// DeleteByID removes an employee by its identifier.
func (s *MemoryStore) DeleteByID(ctx context.Context, id int64) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("delete employee: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.employees, id)

	return nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}
