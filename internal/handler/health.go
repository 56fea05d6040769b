package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/employee-api/internal/model"
	"github.com/vyrodovalexey/employee-api/internal/store"
)

const readyTimeout = 2 * time.Second

// HealthHandler serves liveness and readiness checks.
type HealthHandler struct {
	pinger  store.Pinger
	version string
	logger  *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. The store is pinged on
// readiness checks when it implements store.Pinger.
func NewHealthHandler(s store.Store, version string, logger *zap.Logger) *HealthHandler {
	pinger, _ := s.(store.Pinger)

	return &HealthHandler{
		pinger:  pinger,
		version: version,
		logger:  logger,
	}
}

// RegisterRoutes registers the health routes with the router.
func (h *HealthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc(HealthPath, h.Health).Methods(http.MethodGet)
	router.HandleFunc(ReadyPath, h.Ready).Methods(http.MethodGet)
}

// Health handles GET /health requests.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(HealthResponse{
		Status:  "healthy",
		Version: h.version,
	}))
}

// Ready handles GET /ready requests.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := h.pinger.Ping(ctx); err != nil {
			h.logger.Warn("readiness check failed", zap.Error(err))
			writeError(w, h.logger, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}

	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(ReadyResponse{Status: "ready"}))
}
