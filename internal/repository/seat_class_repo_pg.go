package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightinventory/internal/domain"
	"github.com/jackc/pgx/v5"
)

type SeatClassRepository interface {
	// CreateMany inserts all rows or none. Capacity is taken from AvailableSeats.
	CreateMany(ctx context.Context, flightID int64, classes []domain.SeatClass) ([]domain.SeatClass, error)
	Get(ctx context.Context, flightID int64, class domain.SeatClassType) (*domain.SeatClass, error)
	ListByFlight(ctx context.Context, flightID int64) ([]domain.SeatClass, error)
	SetFare(ctx context.Context, flightID int64, class domain.SeatClassType, fareCents int64) (*domain.SeatClass, error)
	// Audit lists seat classes whose counter does not add up with the ledger.
	Audit(ctx context.Context) ([]domain.InventoryDrift, error)
}

type PGSeatClassRepository struct {
	db DB
}

func NewSeatClassRepository(db DB) SeatClassRepository {
	return &PGSeatClassRepository{db: db}
}

const seatClassColumns = `id, flight_id, class, available_seats, capacity, fare_cents, created_at, updated_at`

func scanSeatClass(row rowScanner) (domain.SeatClass, error) {
	var (
		sc    domain.SeatClass
		class string
	)
	if err := row.Scan(&sc.ID, &sc.FlightID, &class, &sc.AvailableSeats, &sc.Capacity, &sc.FareCents, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
		return domain.SeatClass{}, err
	}
	sc.Class = domain.SeatClassType(class)
	return sc, nil
}

func listSeatClasses(ctx context.Context, q querier, where string, args ...any) ([]domain.SeatClass, error) {
	rows, err := q.Query(ctx, `SELECT `+seatClassColumns+` FROM seat_classes `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := make([]domain.SeatClass, 0)
	for rows.Next() {
		sc, err := scanSeatClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, sc)
	}
	return classes, rows.Err()
}

func (r *PGSeatClassRepository) CreateMany(ctx context.Context, flightID int64, classes []domain.SeatClass) (_ []domain.SeatClass, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	created := make([]domain.SeatClass, 0, len(classes))
	for _, sc := range classes {
		sc.FlightID = flightID
		sc.Capacity = sc.AvailableSeats
		err = tx.QueryRow(ctx, `INSERT INTO seat_classes (flight_id, class, available_seats, capacity, fare_cents)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at`,
			flightID, string(sc.Class), sc.AvailableSeats, sc.Capacity, sc.FareCents).
			Scan(&sc.ID, &sc.CreatedAt, &sc.UpdatedAt)
		if err != nil {
			return nil, mapError(err, fmt.Sprintf("seat class %s", sc.Class))
		}
		created = append(created, sc)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *PGSeatClassRepository) Get(ctx context.Context, flightID int64, class domain.SeatClassType) (*domain.SeatClass, error) {
	sc, err := scanSeatClass(r.db.QueryRow(ctx, `SELECT `+seatClassColumns+` FROM seat_classes WHERE flight_id=$1 AND class=$2`, flightID, string(class)))
	if err != nil {
		return nil, mapError(err, "seat class")
	}
	return &sc, nil
}

func (r *PGSeatClassRepository) ListByFlight(ctx context.Context, flightID int64) ([]domain.SeatClass, error) {
	return listSeatClasses(ctx, r.db, `WHERE flight_id=$1 ORDER BY id`, flightID)
}

func (r *PGSeatClassRepository) SetFare(ctx context.Context, flightID int64, class domain.SeatClassType, fareCents int64) (*domain.SeatClass, error) {
	sc, err := scanSeatClass(r.db.QueryRow(ctx, `UPDATE seat_classes SET fare_cents=$1, updated_at=now()
		WHERE flight_id=$2 AND class=$3
		RETURNING `+seatClassColumns, fareCents, flightID, string(class)))
	if err != nil {
		return nil, mapError(err, "seat class")
	}
	return &sc, nil
}

func (r *PGSeatClassRepository) Audit(ctx context.Context) ([]domain.InventoryDrift, error) {
	rows, err := r.db.Query(ctx, `SELECT sc.id, sc.flight_id, sc.class, sc.available_seats, sc.capacity, COUNT(b.id)
		FROM seat_classes sc
		LEFT JOIN bookings b ON b.flight_id = sc.flight_id AND b.seat_class = sc.class
		GROUP BY sc.id
		HAVING sc.available_seats + COUNT(b.id) <> sc.capacity
		ORDER BY sc.flight_id, sc.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drifts := make([]domain.InventoryDrift, 0)
	for rows.Next() {
		var (
			d      domain.InventoryDrift
			class  string
			booked int64
		)
		if err := rows.Scan(&d.SeatClassID, &d.FlightID, &class, &d.AvailableSeats, &d.Capacity, &booked); err != nil {
			return nil, err
		}
		d.Class = domain.SeatClassType(class)
		d.ActiveBookings = int(booked)
		drifts = append(drifts, d)
	}
	return drifts, rows.Err()
}

var _ SeatClassRepository = (*PGSeatClassRepository)(nil)

var _ querier = (pgx.Tx)(nil)
