// Package events publishes employee change notifications.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vyrodovalexey/employee-api/internal/model"
)

// Type is the kind of change an Event describes.
type Type string

// Event types.
const (
	TypeCreated  Type = "employee.created"
	TypeReplaced Type = "employee.replaced"
	TypeDeleted  Type = "employee.deleted"
)

// Event describes a change applied to an employee.
type Event struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	EmployeeID int64           `json:"employee_id"`
	Employee   *model.Employee `json:"employee,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewEvent creates an event for the given employee. Deletions carry only
// the identifier.
func NewEvent(t Type, id int64, employee *model.Employee) Event {
	var snapshot *model.Employee
	if employee != nil {
		e := *employee
		snapshot = &e
	}

	return Event{
		ID:         uuid.New().String(),
		Type:       t,
		EmployeeID: id,
		Employee:   snapshot,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events to a destination.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

var eventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "employee_api",
		Name:      "events_published_total",
		Help:      "Total number of employee events handed to publishers",
	},
	[]string{"type", "result"},
)

// NopPublisher drops every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// MultiPublisher fans an event out to several publishers. Every publisher
// is attempted; failures are joined.
type MultiPublisher struct {
	publishers []Publisher
}

// NewMultiPublisher creates a MultiPublisher. Nil entries are skipped.
func NewMultiPublisher(publishers ...Publisher) *MultiPublisher {
	m := &MultiPublisher{}
	for _, p := range publishers {
		if p != nil {
			m.publishers = append(m.publishers, p)
		}
	}
	return m
}

// Publish implements Publisher.
func (m *MultiPublisher) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// CountingPublisher counts every event handed to the wrapped publisher by
// type and outcome.
type CountingPublisher struct {
	next Publisher
}

// Counted wraps next so that its deliveries are counted. A nil next
// counts events and drops them.
func Counted(next Publisher) *CountingPublisher {
	if next == nil {
		next = NopPublisher{}
	}
	return &CountingPublisher{next: next}
}

// Publish implements Publisher.
func (c *CountingPublisher) Publish(ctx context.Context, event Event) error {
	err := c.next.Publish(ctx, event)

	result := "ok"
	if err != nil {
		result = "error"
	}
	eventsPublishedTotal.WithLabelValues(string(event.Type), result).Inc()

	return err
}
