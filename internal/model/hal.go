package model

// HALContentType is the media type of hypermedia responses.
const HALContentType = "application/hal+json"

// Link relation names.
const (
	RelSelf      = "self"
	RelEmployees = "employees"
)

// Link is a single hypermedia reference.
type Link struct {
	Href string `json:"href"`
}

// Links maps relation names to links.
type Links map[string]Link

// EmployeeModel is an Employee together with its links. The employee
// fields are inlined next to "_links".
type EmployeeModel struct {
	Employee
	Links Links `json:"_links"`
}

// EmployeeCollection is the HAL representation of a list of employees.
type EmployeeCollection struct {
	Embedded EmbeddedEmployees `json:"_embedded"`
	Links    Links             `json:"_links"`
}

// EmbeddedEmployees holds the embedded employee models of a collection.
type EmbeddedEmployees struct {
	Employees []EmployeeModel `json:"employeeList"`
}

// NewEmployeeCollection wraps the given models. A nil slice is replaced
// with an empty one so that the JSON output always carries an array.
func NewEmployeeCollection(models []EmployeeModel, self string) EmployeeCollection {
	if models == nil {
		models = []EmployeeModel{}
	}

	return EmployeeCollection{
		Embedded: EmbeddedEmployees{Employees: models},
		Links:    Links{RelSelf: {Href: self}},
	}
}
