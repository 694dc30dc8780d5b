package api

import (
	"time"

	"github.com/Domenick1991/flightinventory/internal/domain"
)

type seatClassResponse struct {
	ID             int64  `json:"id"`
	FlightID       int64  `json:"flight_id"`
	Class          string `json:"class"`
	AvailableSeats int    `json:"available_seats"`
	Capacity       int    `json:"capacity"`
	FareCents      int64  `json:"fare_cents"`
}

type flightResponse struct {
	ID            int64               `json:"id"`
	FlightNumber  string              `json:"flight_number"`
	Origin        string              `json:"origin"`
	Destination   string              `json:"destination"`
	DepartureTime time.Time           `json:"departure_time"`
	Status        string              `json:"status"`
	SeatClasses   []seatClassResponse `json:"seat_classes"`
}

type bookingResponse struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	FlightID   int64           `json:"flight_id"`
	Class      string          `json:"class"`
	SeatNumber string          `json:"seat_number"`
	FareCents  int64           `json:"fare_cents"`
	Status     string          `json:"status"`
	BookedAt   time.Time       `json:"booked_at"`
	Flight     *flightResponse `json:"flight,omitempty"`
}

type userResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func toSeatClassResponse(sc domain.SeatClass) seatClassResponse {
	return seatClassResponse{
		ID:             sc.ID,
		FlightID:       sc.FlightID,
		Class:          string(sc.Class),
		AvailableSeats: sc.AvailableSeats,
		Capacity:       sc.Capacity,
		FareCents:      sc.FareCents,
	}
}

func toSeatClassResponses(classes []domain.SeatClass) []seatClassResponse {
	out := make([]seatClassResponse, 0, len(classes))
	for _, sc := range classes {
		out = append(out, toSeatClassResponse(sc))
	}
	return out
}

func toFlightResponse(f domain.Flight) flightResponse {
	return flightResponse{
		ID:            f.ID,
		FlightNumber:  f.FlightNumber,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureTime: f.DepartureTime,
		Status:        string(f.Status),
		SeatClasses:   toSeatClassResponses(f.SeatClasses),
	}
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:         b.ID,
		UserID:     b.UserID,
		FlightID:   b.FlightID,
		Class:      string(b.Class),
		SeatNumber: b.SeatNumber,
		FareCents:  b.FareCents,
		Status:     string(b.Status),
		BookedAt:   b.BookedAt,
	}
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}
