// Package store provides data storage interfaces and implementations.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/vyrodovalexey/employee-api/internal/model"
)

//go:generate mockgen -destination=mock_store.go -package=store github.com/vyrodovalexey/employee-api/internal/store Store

// Store errors.
var (
	ErrNotFound    = errors.New("employee not found")
	ErrInvalidID   = errors.New("invalid employee ID")
	ErrNilEmployee = errors.New("employee cannot be nil")
)

// EmployeeNotFoundError reports a lookup for an identifier that the store
// does not hold. It matches ErrNotFound with errors.Is.
type EmployeeNotFoundError struct {
	ID int64
}

// Error implements the error interface.
func (e *EmployeeNotFoundError) Error() string {
	return fmt.Sprintf("could not find employee %d", e.ID)
}

// Is reports whether target is ErrNotFound.
func (e *EmployeeNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Store defines the persistence operations over Employee records.
type Store interface {
	// FindAll returns every employee ordered by identifier.
	FindAll(ctx context.Context) ([]model.Employee, error)

	// FindByID retrieves an employee by its identifier.
	FindByID(ctx context.Context, id int64) (*model.Employee, error)

	// Save persists the employee. A zero ID inserts a new record and
	// assigns the identifier; any other ID updates the existing record and
	// fails with *EmployeeNotFoundError when it does not exist.
	Save(ctx context.Context, employee *model.Employee) (*model.Employee, error)

	// DeleteByID removes the employee with the given identifier.
	// Deleting an unknown identifier is not an error.
	DeleteByID(ctx context.Context, id int64) error
}

// Pinger is implemented by stores backed by an external system.
type Pinger interface {
	Ping(ctx context.Context) error
}
