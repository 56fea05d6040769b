package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEmployee_Validate(t *testing.T) {
	tests := []struct {
		name     string
		employee Employee
		wantErr  error
	}{
		{
			name:     "valid employee",
			employee: Employee{Name: "Bilbo Baggins", Role: "burglar"},
			wantErr:  nil,
		},
		{
			name:     "empty fields are allowed",
			employee: Employee{},
			wantErr:  nil,
		},
		{
			name:     "max name length",
			employee: Employee{Name: strings.Repeat("a", MaxNameLength)},
			wantErr:  nil,
		},
		{
			name:     "multibyte name counted in runes",
			employee: Employee{Name: strings.Repeat("ä", MaxNameLength)},
			wantErr:  nil,
		},
		{
			name:     "name too long",
			employee: Employee{Name: strings.Repeat("a", MaxNameLength+1)},
			wantErr:  ErrNameTooLong,
		},
		{
			name:     "role too long",
			employee: Employee{Name: "Frodo", Role: strings.Repeat("r", MaxRoleLength+1)},
			wantErr:  ErrRoleTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := tt.employee.Validate()

			// Assert
			if err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEmployee_Merge(t *testing.T) {
	tests := []struct {
		name  string
		patch Employee
		want  Employee
	}{
		{
			name:  "name only",
			patch: Employee{Name: "altName"},
			want:  Employee{ID: 1, Name: "altName", Role: "burglar"},
		},
		{
			name:  "role only",
			patch: Employee{Role: "ring bearer"},
			want:  Employee{ID: 1, Name: "Bilbo Baggins", Role: "ring bearer"},
		},
		{
			name:  "both fields",
			patch: Employee{Name: "Samwise Gamgee", Role: "gardener"},
			want:  Employee{ID: 1, Name: "Samwise Gamgee", Role: "gardener"},
		},
		{
			name:  "patch id is ignored",
			patch: Employee{ID: 42, Name: "Gandalf"},
			want:  Employee{ID: 1, Name: "Gandalf", Role: "burglar"},
		},
		{
			name:  "empty patch",
			patch: Employee{},
			want:  Employee{ID: 1, Name: "Bilbo Baggins", Role: "burglar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			e := Employee{ID: 1, Name: "Bilbo Baggins", Role: "burglar"}

			// Act
			e.Merge(tt.patch)

			// Assert
			if e != tt.want {
				t.Errorf("Merge() = %+v, want %+v", e, tt.want)
			}
		})
	}
}

func TestEmployeeModel_JSONInlinesEmployee(t *testing.T) {
	// Arrange
	m := EmployeeModel{
		Employee: Employee{ID: 1, Name: "Bilbo Baggins", Role: "burglar"},
		Links: Links{
			RelSelf:      {Href: "/employees/1"},
			RelEmployees: {Href: "/employees"},
		},
	}

	// Act
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	// Assert
	if decoded["id"] != float64(1) {
		t.Errorf("id = %v, want 1", decoded["id"])
	}
	if decoded["name"] != "Bilbo Baggins" {
		t.Errorf("name = %v, want Bilbo Baggins", decoded["name"])
	}
	links, ok := decoded["_links"].(map[string]any)
	if !ok {
		t.Fatalf("_links missing in %s", data)
	}
	self, ok := links["self"].(map[string]any)
	if !ok || self["href"] != "/employees/1" {
		t.Errorf("self link = %v, want /employees/1", links["self"])
	}
}

func TestNewEmployeeCollection_NilBecomesEmptyArray(t *testing.T) {
	// Act
	c := NewEmployeeCollection(nil, "/employees")
	data, err := json.Marshal(c)

	// Assert
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"_embedded":{"employeeList":[]},"_links":{"self":{"href":"/employees"}}}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
