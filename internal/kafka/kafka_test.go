package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Domenick1991/flightinventory/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeReader struct {
	msgs []kafka.Message
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) Close() error { return nil }

func TestProducer_Publish(t *testing.T) {
	writer := &fakeWriter{}
	p := newProducer([]string{"localhost:9092"}, writer, nil)

	event := NewBookingEvent(EventBookingCreated, domain.Booking{
		ID: 3, UserID: 1, FlightID: 4, Class: domain.SeatClassBusiness, SeatNumber: "BUSINESS-2", FareCents: 900000,
	}, "asha@example.com", "AI101")

	require.NoError(t, p.Publish(context.Background(), "booking-events", event.Key(), event))
	require.Len(t, writer.msgs, 1)

	msg := writer.msgs[0]
	assert.Equal(t, "booking-events", msg.Topic)
	assert.Equal(t, "flight-4", string(msg.Key))

	decoded, err := DecodeBookingEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, "BUSINESS-2", decoded.SeatNumber)
	assert.Equal(t, "asha@example.com", decoded.Email)

	require.NoError(t, p.Close())
	assert.True(t, writer.closed)
}

func TestProducer_PublishWriteError(t *testing.T) {
	p := newProducer(nil, &fakeWriter{err: errors.New("broker down")}, nil)

	err := p.Publish(context.Background(), "flight-events", "k", map[string]string{"a": "b"})
	assert.ErrorContains(t, err, "broker down")
}

func TestProducer_PublishMarshalError(t *testing.T) {
	p := newProducer(nil, &fakeWriter{}, nil)

	err := p.Publish(context.Background(), "flight-events", "k", make(chan int))
	assert.ErrorContains(t, err, "marshal payload")
}

func TestNewFlightEvent(t *testing.T) {
	event := NewFlightEvent(EventFlightStatusChanged, domain.Flight{ID: 9, FlightNumber: "AB123", Status: domain.FlightStatusDelayed})

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "DELAYED", event.Status)
	assert.Equal(t, "flight-9", event.Key())
}

func TestConsumer_ConsumeStopsOnCancel(t *testing.T) {
	payload, err := json.Marshal(BookingEvent{Type: EventBookingCancelled, BookingID: 1})
	require.NoError(t, err)

	c := &Consumer{reader: &fakeReader{msgs: []kafka.Message{{Value: payload}, {Value: payload}}}}
	ctx, cancel := context.WithCancel(context.Background())

	var seen int
	err = c.Consume(ctx, func(_ context.Context, msg kafka.Message) error {
		seen++
		if seen == 2 {
			cancel()
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, seen)
}

func TestConsumer_ConsumeHandlerError(t *testing.T) {
	c := &Consumer{reader: &fakeReader{msgs: []kafka.Message{{Value: []byte("{}")}}}}

	err := c.Consume(context.Background(), func(context.Context, kafka.Message) error {
		return errors.New("handler failed")
	})
	assert.EqualError(t, err, "handler failed")
}

func TestConsumer_ConsumeBookingEventsSkipsBadPayloads(t *testing.T) {
	payload, err := json.Marshal(BookingEvent{Type: EventBookingCreated, BookingID: 9, Email: "asha@example.com"})
	require.NoError(t, err)

	c := &Consumer{reader: &fakeReader{msgs: []kafka.Message{{Value: []byte("not json"), Offset: 1}, {Value: payload, Offset: 2}}}}
	ctx, cancel := context.WithCancel(context.Background())

	var events []BookingEvent
	err = c.ConsumeBookingEvents(ctx, func(_ context.Context, event BookingEvent) error {
		events = append(events, event)
		cancel()
		return nil
	})
	assert.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(9), events[0].BookingID)
	assert.Equal(t, EventBookingCreated, events[0].Type)
}

func TestConsumer_ConsumeBookingEventsHandlerError(t *testing.T) {
	payload, err := json.Marshal(BookingEvent{Type: EventBookingCancelled, BookingID: 1})
	require.NoError(t, err)

	c := &Consumer{reader: &fakeReader{msgs: []kafka.Message{{Value: payload}}}}
	err = c.ConsumeBookingEvents(context.Background(), func(context.Context, BookingEvent) error {
		return errors.New("smtp down")
	})
	assert.EqualError(t, err, "smtp down")
}

func TestDecodeBookingEvent_Invalid(t *testing.T) {
	_, err := DecodeBookingEvent(kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)
}
