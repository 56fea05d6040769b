package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/employee-api/internal/model"
	"github.com/vyrodovalexey/employee-api/internal/store"
)

// pingingStore is a Store that also reports its connectivity.
type pingingStore struct {
	store.Store
	err error
}

func (s *pingingStore) Ping(_ context.Context) error {
	return s.err
}

func TestHealthHandler_Health(t *testing.T) {
	// Arrange
	handler := NewHealthHandler(store.NewMemoryStore(), "1.2.3", zap.NewNop())
	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	// Act
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, HealthPath, nil))

	// Assert
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var response model.APIResponse[HealthResponse]
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !response.Success {
		t.Error("response.Success = false, want true")
	}
	if response.Data.Status != "healthy" {
		t.Errorf("status = %q, want healthy", response.Data.Status)
	}
	if response.Data.Version != "1.2.3" {
		t.Errorf("version = %q, want 1.2.3", response.Data.Version)
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	ctrl := gomock.NewController(t)

	tests := []struct {
		name       string
		store      store.Store
		wantStatus int
	}{
		{
			name:       "store without ping",
			store:      store.NewMockStore(ctrl),
			wantStatus: http.StatusOK,
		},
		{
			name:       "memory store",
			store:      store.NewMemoryStore(),
			wantStatus: http.StatusOK,
		},
		{
			name:       "reachable store",
			store:      &pingingStore{Store: store.NewMockStore(ctrl)},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unreachable store",
			store:      &pingingStore{Store: store.NewMockStore(ctrl), err: errors.New("connection refused")},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			handler := NewHealthHandler(tt.store, "test", zap.NewNop())
			rr := httptest.NewRecorder()

			// Act
			handler.Ready(rr, httptest.NewRequest(http.MethodGet, ReadyPath, nil))

			// Assert
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if rr.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type = %q", rr.Header().Get("Content-Type"))
			}
		})
	}
}
