package store

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vyrodovalexey/employee-api/internal/model"
)

// Operation labels.
const (
	opFindAll    = "find_all"
	opFindByID   = "find_by_id"
	opSave       = "save"
	opDeleteByID = "delete_by_id"
)

// Result labels.
const (
	resultOK       = "ok"
	resultNotFound = "not_found"
	resultError    = "error"
)

var (
	storeOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "employee_api",
			Name:      "store_operations_total",
			Help:      "Total number of employee store operations",
		},
		[]string{"operation", "result"},
	)

	storeOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "employee_api",
			Name:      "store_operation_duration_seconds",
			Help:      "Employee store operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// InstrumentedStore records Prometheus metrics around another Store.
type InstrumentedStore struct {
	next Store
}

// NewInstrumentedStore wraps next with operation metrics.
func NewInstrumentedStore(next Store) *InstrumentedStore {
	return &InstrumentedStore{next: next}
}

// FindAll implements Store.
func (s *InstrumentedStore) FindAll(ctx context.Context) ([]model.Employee, error) {
	defer observe(opFindAll, time.Now())

	employees, err := s.next.FindAll(ctx)
	record(opFindAll, err)

	return employees, err
}

// FindByID implements Store.
func (s *InstrumentedStore) FindByID(ctx context.Context, id int64) (*model.Employee, error) {
	defer observe(opFindByID, time.Now())

	employee, err := s.next.FindByID(ctx, id)
	record(opFindByID, err)

	return employee, err
}

// Save implements Store.
func (s *InstrumentedStore) Save(ctx context.Context, employee *model.Employee) (*model.Employee, error) {
	defer observe(opSave, time.Now())

	saved, err := s.next.Save(ctx, employee)
	record(opSave, err)

	return saved, err
}

// DeleteByID implements Store.
func (s *InstrumentedStore) DeleteByID(ctx context.Context, id int64) error {
	defer observe(opDeleteByID, time.Now())

	err := s.next.DeleteByID(ctx, id)
	record(opDeleteByID, err)

	return err
}

// Ping forwards to the wrapped store when it supports pinging.
func (s *InstrumentedStore) Ping(ctx context.Context) error {
	if p, ok := s.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func observe(operation string, start time.Time) {
	storeOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func record(operation string, err error) {
	result := resultOK
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		result = resultNotFound
	default:
		result = resultError
	}

	storeOperationsTotal.WithLabelValues(operation, result).Inc()
}
