package repository

import (
	"context"

	"github.com/Domenick1991/flightinventory/internal/domain"
	"github.com/jackc/pgx/v5"
)

// TxManager runs fn inside a single transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx InventoryTx) error) error
}

// InventoryTx is the set of operations the booking protocol performs on
// inventory and ledger rows. Locks taken by the Lock* methods are held until
// the transaction ends. Callers lock the seat class before the booking.
type InventoryTx interface {
	LockSeatClass(ctx context.Context, flightID int64, class domain.SeatClassType) (*domain.SeatClass, error)
	SeatTaken(ctx context.Context, flightID int64, class domain.SeatClassType, seatNumber string) (bool, error)
	// DecrementSeats takes one seat only if the counter still equals expected.
	DecrementSeats(ctx context.Context, seatClassID int64, expected int) error
	// IncrementSeats gives one seat back, never beyond the configured capacity.
	IncrementSeats(ctx context.Context, seatClassID int64) error
	InsertBooking(ctx context.Context, booking *domain.Booking) error
	GetBooking(ctx context.Context, bookingID, userID int64) (*domain.Booking, error)
	LockBooking(ctx context.Context, bookingID, userID int64) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, bookingID int64) error
}

type PGTxManager struct {
	db DB
}

func NewTxManager(db DB) TxManager {
	return &PGTxManager{db: db}
}

func (m *PGTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx InventoryTx) error) (err error) {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if err = fn(ctx, &pgInventoryTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgInventoryTx struct {
	tx pgx.Tx
}

func (t *pgInventoryTx) LockSeatClass(ctx context.Context, flightID int64, class domain.SeatClassType) (*domain.SeatClass, error) {
	sc, err := scanSeatClass(t.tx.QueryRow(ctx, `SELECT `+seatClassColumns+` FROM seat_classes WHERE flight_id=$1 AND class=$2 FOR UPDATE`, flightID, string(class)))
	if err != nil {
		return nil, mapError(err, "seat class")
	}
	return &sc, nil
}

func (t *pgInventoryTx) SeatTaken(ctx context.Context, flightID int64, class domain.SeatClassType, seatNumber string) (bool, error) {
	var taken bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE flight_id=$1 AND seat_class=$2 AND seat_number=$3)`,
		flightID, string(class), seatNumber).Scan(&taken)
	return taken, err
}

func (t *pgInventoryTx) DecrementSeats(ctx context.Context, seatClassID int64, expected int) error {
	res, err := t.tx.Exec(ctx, `UPDATE seat_classes SET available_seats = available_seats - 1, updated_at = now()
		WHERE id=$1 AND available_seats=$2 AND available_seats > 0`, seatClassID, expected)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.Conflict("seat inventory changed, please retry")
	}
	return nil
}

func (t *pgInventoryTx) IncrementSeats(ctx context.Context, seatClassID int64) error {
	res, err := t.tx.Exec(ctx, `UPDATE seat_classes SET available_seats = LEAST(available_seats + 1, capacity), updated_at = now()
		WHERE id=$1`, seatClassID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NotFound("seat class not found")
	}
	return nil
}

func (t *pgInventoryTx) InsertBooking(ctx context.Context, booking *domain.Booking) error {
	if booking.Status == "" {
		booking.Status = domain.BookingStatusConfirmed
	}
	err := t.tx.QueryRow(ctx, `INSERT INTO bookings (user_id, flight_id, seat_class, seat_number, fare_cents, status, booked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		booking.UserID, booking.FlightID, string(booking.Class), booking.SeatNumber, booking.FareCents, string(booking.Status), booking.BookedAt).
		Scan(&booking.ID, &booking.CreatedAt)
	return mapError(err, "seat "+booking.SeatNumber)
}

func (t *pgInventoryTx) GetBooking(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	return getBooking(ctx, t.tx, bookingID, userID, false)
}

func (t *pgInventoryTx) LockBooking(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	return getBooking(ctx, t.tx, bookingID, userID, true)
}

func (t *pgInventoryTx) DeleteBooking(ctx context.Context, bookingID int64) error {
	res, err := t.tx.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, bookingID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NotFound("booking not found")
	}
	return nil
}

var (
	_ TxManager   = (*PGTxManager)(nil)
	_ InventoryTx = (*pgInventoryTx)(nil)
)
