// Package handler provides HTTP request handlers for the employee API.
package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/employee-api/internal/model"
)

// Route paths.
const (
	EmployeesPath = "/employees"
	EmployeePath  = "/employees/{id}"
	FeedPath      = "/employees/feed"
	HealthPath    = "/health"
	ReadyPath     = "/ready"
)

// Route names used to build links.
const (
	RouteEmployees = "employees"
	RouteEmployee  = "employee"
	RouteFeed      = "employee-feed"
)

const contentTypeJSON = "application/json"

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status string `json:"status"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	writeBody(w, logger, status, contentTypeJSON, data)
}

// writeHAL writes a hypermedia response with the given status code.
func writeHAL(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	writeBody(w, logger, status, model.HALContentType, data)
}

func writeBody(w http.ResponseWriter, logger *zap.Logger, status int, contentType string, data any) {
	if data == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, logger *zap.Logger, status int, message string) {
	writeJSON(w, logger, status, model.ErrorResponse{
		Code:    status,
		Message: message,
	})
}
