// Package model defines data structures used throughout the application.
package model

import (
	"errors"
	"unicode/utf8"
)

// Validation errors for Employee.
var (
	ErrNameTooLong = errors.New("name cannot exceed 255 characters")
	ErrRoleTooLong = errors.New("role cannot exceed 255 characters")
)

// Validation constants.
const (
	MaxNameLength = 255
	MaxRoleLength = 255
)

// Employee is the only domain record of the service.
// ID is assigned by the store on creation and never changes afterwards.
type Employee struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// NewEmployee creates an Employee that has not been persisted yet.
func NewEmployee(name, role string) Employee {
	return Employee{Name: name, Role: role}
}

// Validate checks the column limits of the Employee fields.
// Empty values are allowed.
func (e *Employee) Validate() error {
	if utf8.RuneCountInString(e.Name) > MaxNameLength {
		return ErrNameTooLong
	}

	if utf8.RuneCountInString(e.Role) > MaxRoleLength {
		return ErrRoleTooLong
	}

	return nil
}

// Merge overwrites the mutable fields of e with the non-empty values of
// patch. The identifier is never touched.
func (e *Employee) Merge(patch Employee) {
	if patch.Name != "" {
		e.Name = patch.Name
	}
	if patch.Role != "" {
		e.Role = patch.Role
	}
}
