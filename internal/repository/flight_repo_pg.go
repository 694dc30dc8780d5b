package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/flightinventory/internal/domain"
)

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	// Search returns flights on the route departing during day (UTC), with their seat classes.
	Search(ctx context.Context, origin, destination string, day time.Time) ([]domain.Flight, error)
	UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) (*domain.Flight, error)
}

type PGFlightRepository struct {
	db DB
}

func NewFlightRepository(db DB) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, flight_number, origin, destination, departure_time, status, created_at, updated_at`

func scanFlight(row rowScanner) (domain.Flight, error) {
	var (
		f      domain.Flight
		status string
	)
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.Origin, &f.Destination, &f.DepartureTime, &status, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return domain.Flight{}, err
	}
	f.Status = domain.FlightStatus(status)
	return f, nil
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	if flight.Status == "" {
		flight.Status = domain.FlightStatusOnTime
	}
	err := r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, origin, destination, departure_time, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		flight.FlightNumber, flight.Origin, flight.Destination, flight.DepartureTime, string(flight.Status)).
		Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)
	return mapError(err, "flight")
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(err, "flight")
	}
	return &f, nil
}

func (r *PGFlightRepository) Search(ctx context.Context, origin, destination string, day time.Time) ([]domain.Flight, error) {
	from, to := dayBounds(day)
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE origin=$1 AND destination=$2 AND departure_time >= $3 AND departure_time < $4
		ORDER BY departure_time, id`, origin, destination, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	index := make(map[int64]int)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		f.SeatClasses = make([]domain.SeatClass, 0)
		index[f.ID] = len(flights)
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(flights) == 0 {
		return flights, nil
	}

	ids := make([]int64, 0, len(flights))
	for _, f := range flights {
		ids = append(ids, f.ID)
	}
	classes, err := listSeatClasses(ctx, r.db, `WHERE flight_id = ANY($1) ORDER BY flight_id, id`, ids)
	if err != nil {
		return nil, err
	}
	for _, sc := range classes {
		i := index[sc.FlightID]
		flights[i].SeatClasses = append(flights[i].SeatClasses, sc)
	}
	return flights, nil
}

func (r *PGFlightRepository) UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `UPDATE flights SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+flightColumns, string(status), id))
	if err != nil {
		return nil, mapError(err, "flight")
	}
	return &f, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
