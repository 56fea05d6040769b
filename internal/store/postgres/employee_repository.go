package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vyrodovalexey/employee-api/internal/model"
	"github.com/vyrodovalexey/employee-api/internal/store"
)

const opTimeout = 5 * time.Second

// EmployeeRepository is the PostgreSQL implementation of store.Store.
type EmployeeRepository struct {
	db *DB
}

// NewEmployeeRepository creates a repository on top of an opened DB.
func NewEmployeeRepository(db *DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// FindAll returns all employees ordered by identifier.
func (r *EmployeeRepository) FindAll(ctx context.Context) ([]model.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.SQL().QueryContext(ctx, `
		SELECT id, name, role
		FROM employees
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]model.Employee, 0)
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Role); err != nil {
			return nil, fmt.Errorf("scan employee row: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employee rows: %w", err)
	}

	return employees, nil
}

// FindByID retrieves an employee by its identifier.
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*model.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var e model.Employee
	err := r.db.SQL().QueryRowContext(ctx, `
		SELECT id, name, role
		FROM employees
		WHERE id = $1
	`, id).Scan(&e.ID, &e.Name, &e.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &store.EmployeeNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("select employee: %w", err)
	}

	return &e, nil
}

// Save inserts a new employee when ID is zero, otherwise updates the row
// with the given identifier. Updating a missing row is reported as
// *store.EmployeeNotFoundError.
func (r *EmployeeRepository) Save(ctx context.Context, employee *model.Employee) (*model.Employee, error) {
	if employee == nil {
		return nil, fmt.Errorf("save employee: %w", store.ErrNilEmployee)
	}
	if employee.ID < 0 {
		return nil, fmt.Errorf("save employee: %w", store.ErrInvalidID)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	saved := *employee
	if saved.ID == 0 {
		if err := r.db.SQL().QueryRowContext(ctx, `
			INSERT INTO employees (name, role)
			VALUES ($1, $2)
			RETURNING id
		`, saved.Name, saved.Role).Scan(&saved.ID); err != nil {
			return nil, fmt.Errorf("insert employee: %w", err)
		}
		return &saved, nil
	}

	res, err := r.db.SQL().ExecContext(ctx, `
		UPDATE employees
		SET name = $2,
		    role = $3,
		    updated_at = NOW()
		WHERE id = $1
	`, saved.ID, saved.Name, saved.Role)
	if err != nil {
		return nil, fmt.Errorf("update employee %d: %w", saved.ID, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update employee %d: %w", saved.ID, err)
	}
	if rows == 0 {
		return nil, &store.EmployeeNotFoundError{ID: saved.ID}
	}

	return &saved, nil
}

// DeleteByID removes the employee row. A missing row is not an error.
func (r *EmployeeRepository) DeleteByID(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.db.SQL().ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete employee %d: %w", id, err)
	}

	return nil
}

// Ping checks database connectivity.
func (r *EmployeeRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

var (
	_ store.Store  = (*EmployeeRepository)(nil)
	_ store.Pinger = (*EmployeeRepository)(nil)
)
