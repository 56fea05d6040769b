package store

import (
	"context"
	"fmt"

	"github.com/vyrodovalexey/employee-api/internal/model"
)

// DemoEmployees returns the records preloaded by Seed when demo data is enabled.
func DemoEmployees() []model.Employee {
	return []model.Employee{
		model.NewEmployee("Bilbo Baggins", "burglar"),
		model.NewEmployee("Frodo Baggins", "thief"),
	}
}

// Seed saves the given employees as new records and returns them with
// their assigned identifiers.
func Seed(ctx context.Context, s Store, employees ...model.Employee) ([]model.Employee, error) {
	seeded := make([]model.Employee, 0, len(employees))

	for i := range employees {
		e := employees[i]
		e.ID = 0

		saved, err := s.Save(ctx, &e)
		if err != nil {
			return seeded, fmt.Errorf("seeding employee %q: %w", e.Name, err)
		}
		seeded = append(seeded, *saved)
	}

	return seeded, nil
}

// SeedIfEmpty seeds the store only when it holds no employees, so that a
// persistent backend is not seeded again on restart. It returns the
// records it created, which is nil when seeding was skipped.
func SeedIfEmpty(ctx context.Context, s Store, employees ...model.Employee) ([]model.Employee, error) {
	existing, err := s.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking existing employees: %w", err)
	}
	if len(existing) > 0 {
		return nil, nil
	}

	return Seed(ctx, s, employees...)
}
