package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/flightinventory/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventBookingCreated      = "booking_created"
	EventBookingCancelled    = "booking_cancelled"
	EventFlightStatusChanged = "flight_status_changed"
)

type BookingEvent struct {
	EventID      string    `json:"event_id"`
	Type         string    `json:"type"`
	BookingID    int64     `json:"booking_id"`
	UserID       int64     `json:"user_id"`
	Email        string    `json:"email,omitempty"`
	FlightID     int64     `json:"flight_id"`
	FlightNumber string    `json:"flight_number,omitempty"`
	Class        string    `json:"class"`
	SeatNumber   string    `json:"seat_number"`
	FareCents    int64     `json:"fare_cents"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type FlightEvent struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	FlightID      int64     `json:"flight_id"`
	FlightNumber  string    `json:"flight_number"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, booking domain.Booking, email, flightNumber string) BookingEvent {
	return BookingEvent{
		EventID:      uuid.NewString(),
		Type:         eventType,
		BookingID:    booking.ID,
		UserID:       booking.UserID,
		Email:        email,
		FlightID:     booking.FlightID,
		FlightNumber: flightNumber,
		Class:        string(booking.Class),
		SeatNumber:   booking.SeatNumber,
		FareCents:    booking.FareCents,
		OccurredAt:   time.Now().UTC(),
	}
}

func NewFlightEvent(eventType string, flight domain.Flight) FlightEvent {
	return FlightEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		FlightID:      flight.ID,
		FlightNumber:  flight.FlightNumber,
		Origin:        flight.Origin,
		Destination:   flight.Destination,
		DepartureTime: flight.DepartureTime,
		Status:        string(flight.Status),
		OccurredAt:    time.Now().UTC(),
	}
}

// Key partitions booking events by flight so one flight's events stay ordered.
func (e BookingEvent) Key() string {
	return fmt.Sprintf("flight-%d", e.FlightID)
}

func (e FlightEvent) Key() string {
	return fmt.Sprintf("flight-%d", e.FlightID)
}

func DecodeBookingEvent(msg kafka.Message) (BookingEvent, error) {
	var event BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return BookingEvent{}, fmt.Errorf("decode booking event: %w", err)
	}
	return event, nil
}
