package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/employee-api/internal/auth"
	"github.com/vyrodovalexey/employee-api/internal/events"
	"github.com/vyrodovalexey/employee-api/internal/middleware"
	"github.com/vyrodovalexey/employee-api/internal/model"
	"github.com/vyrodovalexey/employee-api/internal/store"
)

// Options tunes the EmployeeHandler.
type Options struct {
	// LinkBaseURL is prepended to every generated href, e.g.
	// "https://api.example.com". Empty means relative links.
	LinkBaseURL string
}

// EmployeeHandler serves the employee collection and its items.
type EmployeeHandler struct {
	store     store.Store
	publisher events.Publisher
	logger    *zap.Logger
	baseURL   string
	router    *mux.Router
}

// NewEmployeeHandler creates a new EmployeeHandler instance.
func NewEmployeeHandler(s store.Store, publisher events.Publisher, logger *zap.Logger, opts Options) *EmployeeHandler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	return &EmployeeHandler{
		store:     s,
		publisher: publisher,
		logger:    logger,
		baseURL:   strings.TrimSuffix(opts.LinkBaseURL, "/"),
	}
}

// RegisterRoutes registers the employee routes with the router. Routes that
// share the /employees/ prefix, such as the change feed, must be registered
// before these.
func (h *EmployeeHandler) RegisterRoutes(router *mux.Router) {
	h.router = router

	router.HandleFunc(EmployeesPath, h.List).Methods(http.MethodGet).Name(RouteEmployees)
	router.HandleFunc(EmployeesPath, h.Create).Methods(http.MethodPost)
	router.HandleFunc(EmployeePath, h.One).Methods(http.MethodGet).Name(RouteEmployee)
	router.HandleFunc(EmployeePath, h.Replace).Methods(http.MethodPut)
	router.HandleFunc(EmployeePath, h.Delete).Methods(http.MethodDelete)
}

// List handles GET /employees requests.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.store.FindAll(r.Context())
	if err != nil {
		h.handleStoreError(w, r, err, "list employees")
		return
	}

	models := make([]model.EmployeeModel, 0, len(employees))
	for _, e := range employees {
		models = append(models, h.toModel(e))
	}

	writeHAL(w, h.logger, http.StatusOK, model.NewEmployeeCollection(models, h.collectionHref()))
}

// One handles GET /employees/{id} requests.
func (h *EmployeeHandler) One(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.handleStoreError(w, r, err, "get employee")
		return
	}

	employee, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		h.handleStoreError(w, r, err, "get employee")
		return
	}

	writeHAL(w, h.logger, http.StatusOK, h.toModel(*employee))
}

// Create handles POST /employees requests.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeEmployee(w, r)
	if !ok {
		return
	}

	// Identifiers are always assigned by the store.
	input.ID = 0

	saved, err := h.store.Save(r.Context(), input)
	if err != nil {
		h.handleStoreError(w, r, err, "create employee")
		return
	}

	h.publish(r.Context(), events.TypeCreated, saved)

	w.Header().Set("Location", h.itemHref(saved.ID))
	writeJSON(w, h.logger, http.StatusCreated, saved)
}

// Replace handles PUT /employees/{id} requests. Fields left empty in the
// body keep their stored value. An unknown id is answered with 204 and no
// record is created.
func (h *EmployeeHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.handleStoreError(w, r, err, "replace employee")
		return
	}

	input, ok := h.decodeEmployee(w, r)
	if !ok {
		return
	}

	current, err := h.store.FindByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.logger.Debug("replace skipped, employee not found", zap.Int64("id", id))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.handleStoreError(w, r, err, "replace employee")
		return
	}

	current.Merge(*input)

	// Save only updates, so a delete that won the race is not undone.
	saved, err := h.store.Save(r.Context(), current)
	if errors.Is(err, store.ErrNotFound) {
		h.requestLogger(r).Debug("replace skipped, employee deleted concurrently", zap.Int64("id", id))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.handleStoreError(w, r, err, "replace employee")
		return
	}

	h.publish(r.Context(), events.TypeReplaced, saved)

	writeJSON(w, h.logger, http.StatusOK, saved)
}

// Delete handles DELETE /employees/{id} requests.
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.handleStoreError(w, r, err, "delete employee")
		return
	}

	if err := h.store.DeleteByID(r.Context(), id); err != nil {
		h.handleStoreError(w, r, err, "delete employee")
		return
	}

	h.publish(r.Context(), events.TypeDeleted, &model.Employee{ID: id})

	w.WriteHeader(http.StatusNoContent)
}

func (h *EmployeeHandler) decodeEmployee(w http.ResponseWriter, r *http.Request) (*model.Employee, bool) {
	var input model.Employee
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	if err := input.Validate(); err != nil {
		h.logger.Warn("validation failed", zap.Error(err))
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return nil, false
	}

	return &input, true
}

func (h *EmployeeHandler) publish(ctx context.Context, t events.Type, employee *model.Employee) {
	snapshot := employee
	if t == events.TypeDeleted {
		snapshot = nil
	}

	if err := h.publisher.Publish(ctx, events.NewEvent(t, employee.ID, snapshot)); err != nil {
		h.contextLogger(ctx).Warn("failed to publish employee event",
			zap.String("event_type", string(t)),
			zap.Int64("id", employee.ID),
			zap.Error(err),
		)
	}
}

// requestLogger returns the handler logger annotated with the request ID
// and the authenticated subject, when known.
func (h *EmployeeHandler) requestLogger(r *http.Request) *zap.Logger {
	return h.contextLogger(r.Context())
}

func (h *EmployeeHandler) contextLogger(ctx context.Context) *zap.Logger {
	logger := h.logger
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		logger = logger.With(zap.String("request_id", id))
	}
	if info, ok := auth.FromContext(ctx); ok {
		logger = logger.With(zap.String("subject", info.Subject))
	}
	return logger
}

func (h *EmployeeHandler) toModel(e model.Employee) model.EmployeeModel {
	return model.EmployeeModel{
		Employee: e,
		Links: model.Links{
			model.RelSelf:      {Href: h.itemHref(e.ID)},
			model.RelEmployees: {Href: h.collectionHref()},
		},
	}
}

func (h *EmployeeHandler) collectionHref() string {
	return h.href(RouteEmployees, EmployeesPath)
}

func (h *EmployeeHandler) itemHref(id int64) string {
	raw := strconv.FormatInt(id, 10)
	return h.href(RouteEmployee, EmployeesPath+"/"+raw, "id", raw)
}

// href builds a link from the named route, falling back to path when the
// route is not registered.
func (h *EmployeeHandler) href(name, path string, pairs ...string) string {
	if h.router != nil {
		if route := h.router.Get(name); route != nil {
			u, err := route.URL(pairs...)
			if err == nil {
				return h.baseURL + u.String()
			}
			h.logger.Debug("failed to build link", zap.String("route", name), zap.Error(err))
		}
	}

	return h.baseURL + path
}

// handleStoreError handles store errors and writes appropriate HTTP responses.
func (h *EmployeeHandler) handleStoreError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	var notFound *store.EmployeeNotFoundError

	switch {
	case errors.As(err, &notFound):
		writeError(w, h.logger, http.StatusNotFound, notFound.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, h.logger, http.StatusNotFound, "employee not found")
	case errors.Is(err, store.ErrInvalidID):
		writeError(w, h.logger, http.StatusBadRequest, "invalid employee ID")
	default:
		h.requestLogger(r).Error("store operation failed", zap.String("operation", operation), zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "internal server error")
	}
}

func parseID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", store.ErrInvalidID, raw)
	}

	return id, nil
}
