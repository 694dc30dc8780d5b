package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
)

type Booking struct {
	ID         int64
	UserID     int64
	FlightID   int64
	Class      SeatClassType
	SeatNumber string
	FareCents  int64
	Status     BookingStatus
	BookedAt   time.Time
	CreatedAt  time.Time
}

// BookingDetail is a booking together with the flight it belongs to.
type BookingDetail struct {
	Booking
	Flight Flight
}
