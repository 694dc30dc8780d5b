package repository

import (
	"context"

	"github.com/Domenick1991/flightinventory/internal/domain"
)

type BookingRepository interface {
	GetForUser(ctx context.Context, bookingID, userID int64) (*domain.Booking, error)
	// ListByUser returns the user's bookings with their flights, newest first.
	ListByUser(ctx context.Context, userID int64) ([]domain.BookingDetail, error)
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, user_id, flight_id, seat_class, seat_number, fare_cents, status, booked_at, created_at`

func scanBooking(row rowScanner) (domain.Booking, error) {
	var (
		b             domain.Booking
		class, status string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.FlightID, &class, &b.SeatNumber, &b.FareCents, &status, &b.BookedAt, &b.CreatedAt); err != nil {
		return domain.Booking{}, err
	}
	b.Class = domain.SeatClassType(class)
	b.Status = domain.BookingStatus(status)
	return b, nil
}

func getBooking(ctx context.Context, q querier, bookingID, userID int64, lock bool) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id=$1 AND user_id=$2`
	if lock {
		query += ` FOR UPDATE`
	}
	b, err := scanBooking(q.QueryRow(ctx, query, bookingID, userID))
	if err != nil {
		return nil, mapError(err, "booking")
	}
	return &b, nil
}

func (r *PGBookingRepository) GetForUser(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	return getBooking(ctx, r.db, bookingID, userID, false)
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.BookingDetail, error) {
	rows, err := r.db.Query(ctx, `SELECT b.id, b.user_id, b.flight_id, b.seat_class, b.seat_number, b.fare_cents, b.status, b.booked_at, b.created_at,
			f.id, f.flight_number, f.origin, f.destination, f.departure_time, f.status, f.created_at, f.updated_at
		FROM bookings b
		JOIN flights f ON f.id = b.flight_id
		WHERE b.user_id=$1
		ORDER BY b.booked_at DESC, b.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]domain.BookingDetail, 0)
	for rows.Next() {
		var d domain.BookingDetail
		var class, bookingStatus, flightStatus string
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.FlightID, &class, &d.SeatNumber, &d.FareCents, &bookingStatus, &d.BookedAt, &d.CreatedAt,
			&d.Flight.ID, &d.Flight.FlightNumber, &d.Flight.Origin, &d.Flight.Destination, &d.Flight.DepartureTime, &flightStatus, &d.Flight.CreatedAt, &d.Flight.UpdatedAt,
		); err != nil {
			return nil, err
		}
		d.Class = domain.SeatClassType(class)
		d.Status = domain.BookingStatus(bookingStatus)
		d.Flight.Status = domain.FlightStatus(flightStatus)
		details = append(details, d)
	}
	return details, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
