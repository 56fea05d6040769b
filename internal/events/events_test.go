package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/employee-api/internal/model"
)

type recordingPublisher struct {
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	p.events = append(p.events, e)
	return p.err
}

func TestNewEvent_CopiesEmployee(t *testing.T) {
	e := &model.Employee{ID: 1, Name: "Bilbo Baggins", Role: "burglar"}

	ev := NewEvent(TypeCreated, e.ID, e)
	e.Name = "changed"

	require.NotNil(t, ev.Employee)
	assert.Equal(t, "Bilbo Baggins", ev.Employee.Name)
	assert.Equal(t, int64(1), ev.EmployeeID)
	assert.Equal(t, TypeCreated, ev.Type)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.OccurredAt.IsZero())
}

func TestNewEvent_DeletedHasNoSnapshot(t *testing.T) {
	ev := NewEvent(TypeDeleted, 4, nil)

	data, err := json.Marshal(ev)

	require.NoError(t, err)
	assert.Nil(t, ev.Employee)
	assert.NotContains(t, string(data), `"employee":`)
}

func TestMultiPublisher_PublishesToAllAndJoinsErrors(t *testing.T) {
	first := &recordingPublisher{err: errors.New("first failed")}
	second := &recordingPublisher{}
	m := NewMultiPublisher(first, nil, second)

	err := m.Publish(context.Background(), NewEvent(TypeDeleted, 1, nil))

	assert.ErrorContains(t, err, "first failed")
	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
}

func TestCounted_CountsByTypeAndResult(t *testing.T) {
	failing := &recordingPublisher{err: errors.New("broker down")}
	ok := &recordingPublisher{}
	okCounter := eventsPublishedTotal.WithLabelValues(string(TypeCreated), "ok")
	errCounter := eventsPublishedTotal.WithLabelValues(string(TypeCreated), "error")
	okBefore := testutil.ToFloat64(okCounter)
	errBefore := testutil.ToFloat64(errCounter)

	require.NoError(t, Counted(ok).Publish(context.Background(), NewEvent(TypeCreated, 1, nil)))
	require.Error(t, Counted(failing).Publish(context.Background(), NewEvent(TypeCreated, 2, nil)))

	assert.Len(t, ok.events, 1)
	assert.Len(t, failing.events, 1)
	assert.Equal(t, okBefore+1, testutil.ToFloat64(okCounter))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(errCounter))
}

func TestCounted_NilPublisher(t *testing.T) {
	counter := eventsPublishedTotal.WithLabelValues(string(TypeDeleted), "ok")
	before := testutil.ToFloat64(counter)

	require.NoError(t, Counted(nil).Publish(context.Background(), NewEvent(TypeDeleted, 1, nil)))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), Event{}))
}

func TestHub_FanOut(t *testing.T) {
	hub := NewHub()
	a, unsubA := hub.Subscribe()
	b, unsubB := hub.Subscribe()
	defer unsubA()
	defer unsubB()

	ev := NewEvent(TypeCreated, 1, &model.Employee{ID: 1, Name: "Frodo Baggins"})
	require.NoError(t, hub.Publish(context.Background(), ev))

	for _, ch := range []<-chan Event{a, b} {
		select {
		case got := <-ch:
			assert.Equal(t, ev.ID, got.ID)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	ch, unsub := hub.Subscribe()
	assert.Equal(t, 1, hub.Subscribers())

	unsub()
	unsub()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.Subscribers())
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()
	_, unsub := hub.Subscribe()
	defer unsub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			_ = hub.Publish(context.Background(), NewEvent(TypeDeleted, int64(i), nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
}

func TestHub_Close(t *testing.T) {
	hub := NewHub()
	ch, unsub := hub.Subscribe()

	hub.Close()
	hub.Close()
	unsub()

	_, open := <-ch
	assert.False(t, open)

	late, _ := hub.Subscribe()
	_, open = <-late
	assert.False(t, open, "subscriptions after Close must be closed immediately")
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "hr" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "2" {
			return errors.New("unexpected key " + string(key))
		}
		value, _ := msg.Value.Encode()
		var ev Event
		if err := json.Unmarshal(value, &ev); err != nil {
			return err
		}
		if ev.Type != TypeReplaced || ev.Employee == nil || ev.Employee.Role != "thief" {
			return errors.New("unexpected payload " + string(value))
		}
		return nil
	})
	p := NewKafkaPublisher(producer, "hr", zap.NewNop())

	err := p.Publish(context.Background(), NewEvent(TypeReplaced, 2, &model.Employee{ID: 2, Name: "Frodo Baggins", Role: "thief"}))

	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	p := NewKafkaPublisher(producer, "", zap.NewNop())

	err := p.Publish(context.Background(), NewEvent(TypeDeleted, 1, nil))

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	assert.Equal(t, DefaultTopic, p.topic)
	require.NoError(t, p.Close())
}

func TestKafkaPublisher_Nil(t *testing.T) {
	var p *KafkaPublisher

	assert.ErrorIs(t, p.Publish(context.Background(), Event{}), ErrPublisherClosed)
	assert.NoError(t, p.Close())
}
