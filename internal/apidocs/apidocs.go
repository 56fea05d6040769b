// Package apidocs generates the OpenAPI description of the employee API
// and serves it together with a browsable Swagger UI page.
package apidocs

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

// Routes of the documentation endpoints.
const (
	SpecPath = "/v3/api-docs"
	UIPath   = "/swagger-ui"
)

const (
	openAPIVersion = "3.0.3"
	tagEmployees   = "employee-controller"
	mediaJSON      = "application/json"
	mediaHAL       = "application/hal+json"
)

// Info describes the API in the generated document.
type Info struct {
	Title       string
	Description string
	Version     string
}

// DefaultInfo returns the title and description used by the service.
func DefaultInfo(version string) Info {
	return Info{
		Title:       "Employee API",
		Description: "Employee Rest Server",
		Version:     version,
	}
}

// Build returns the OpenAPI document describing the employee endpoints.
// Only declared responses are listed.
func Build(info Info) *openapi3.T {
	paths := &openapi3.Paths{}
	paths.Set("/employees", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "listEmployees",
			Summary:     "List all employees",
			Tags:        []string{tagEmployees},
			Responses: responses(
				http.StatusOK, "All employees with self links", collectionSchema(), mediaHAL,
			),
		},
		Post: &openapi3.Operation{
			OperationID: "createEmployee",
			Summary:     "Create an employee",
			Tags:        []string{tagEmployees},
			RequestBody: employeeBody(),
			Responses: merge(
				responses(http.StatusCreated, "Created employee", employeeSchema(), mediaJSON),
				responses(http.StatusBadRequest, "Malformed employee", errorSchema(), mediaJSON),
			),
		},
	})
	paths.Set("/employees/{id}", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "getEmployee",
			Summary:     "Get one employee",
			Tags:        []string{tagEmployees},
			Parameters:  idParameter(),
			Responses: merge(
				responses(http.StatusOK, "Employee with links", modelSchema(), mediaHAL),
				responses(http.StatusNotFound, "Employee not found", errorSchema(), mediaJSON),
			),
		},
		Put: &openapi3.Operation{
			OperationID: "replaceEmployee",
			Summary:     "Replace an employee",
			Description: "Fields left empty keep their stored value. An unknown id yields 204 and creates nothing.",
			Tags:        []string{tagEmployees},
			Parameters:  idParameter(),
			RequestBody: employeeBody(),
			Responses: merge(
				responses(http.StatusOK, "Updated employee", employeeSchema(), mediaJSON),
				responses(http.StatusNoContent, "No employee with this id", nil, ""),
				responses(http.StatusBadRequest, "Malformed employee", errorSchema(), mediaJSON),
			),
		},
		Delete: &openapi3.Operation{
			OperationID: "deleteEmployee",
			Summary:     "Delete an employee",
			Tags:        []string{tagEmployees},
			Parameters:  idParameter(),
			Responses:   responses(http.StatusNoContent, "Deleted or absent", nil, ""),
		},
	})

	return &openapi3.T{
		OpenAPI: openAPIVersion,
		Info: &openapi3.Info{
			Title:       info.Title,
			Description: info.Description,
			Version:     info.Version,
		},
		Tags:  openapi3.Tags{{Name: tagEmployees, Description: "Employee resource"}},
		Paths: paths,
	}
}

// Validate checks the generated document against the OpenAPI rules.
func Validate(ctx context.Context, doc *openapi3.T) error {
	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("validating openapi document: %w", err)
	}
	return nil
}

func responses(status int, description string, schema *openapi3.Schema, media string) *openapi3.Responses {
	resp := openapi3.NewResponse().WithDescription(description)
	if schema != nil {
		resp.WithContent(openapi3.NewContentWithSchema(schema, []string{media}))
	}

	r := &openapi3.Responses{}
	r.Set(fmt.Sprint(status), &openapi3.ResponseRef{Value: resp})
	return r
}

func merge(all ...*openapi3.Responses) *openapi3.Responses {
	merged := &openapi3.Responses{}
	for _, r := range all {
		for code, ref := range r.Map() {
			merged.Set(code, ref)
		}
	}
	return merged
}

func idParameter() openapi3.Parameters {
	p := openapi3.NewPathParameter("id").WithSchema(openapi3.NewInt64Schema())
	p.Description = "Employee identifier"
	return openapi3.Parameters{{Value: p}}
}

func employeeBody() *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchema(employeeSchema()),
	}
}

func employeeSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewInt64Schema()).
		WithProperty("name", openapi3.NewStringSchema().WithMaxLength(255)).
		WithProperty("role", openapi3.NewStringSchema().WithMaxLength(255))
}

func linkSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().WithProperty("href", openapi3.NewStringSchema())
}

func linksSchema(rels ...string) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	for _, rel := range rels {
		s.WithProperty(rel, linkSchema())
	}
	return s
}

func modelSchema() *openapi3.Schema {
	return employeeSchema().WithProperty("_links", linksSchema("self", "employees"))
}

func collectionSchema() *openapi3.Schema {
	embedded := openapi3.NewObjectSchema().
		WithProperty("employeeList", openapi3.NewArraySchema().WithItems(modelSchema()))

	return openapi3.NewObjectSchema().
		WithProperty("_embedded", embedded).
		WithProperty("_links", linksSchema("self"))
}

func errorSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("code", openapi3.NewInt32Schema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("details", openapi3.NewStringSchema())
}
