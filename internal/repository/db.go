package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightinventory/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the part of *pgxpool.Pool the repositories use.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

//go:embed schema.sql
var schema string

// Migrate creates the tables and indexes when they do not exist yet.
func Migrate(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Store groups the repositories of one backend.
type Store struct {
	Users       UserRepository
	Flights     FlightRepository
	SeatClasses SeatClassRepository
	Bookings    BookingRepository
	Tx          TxManager
}

func NewPGStore(db DB) *Store {
	return &Store{
		Users:       NewUserRepository(db),
		Flights:     NewFlightRepository(db),
		SeatClasses: NewSeatClassRepository(db),
		Bookings:    NewBookingRepository(db),
		Tx:          NewTxManager(db),
	}
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// mapError turns driver errors with a domain meaning into domain errors.
// Anything else is returned unchanged.
func mapError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound("%s not found", entity)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return domain.Conflict("%s already exists", entity)
		case foreignKeyViolation:
			return domain.NotFound("%s references a missing record", entity)
		}
	}
	return err
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := domain.DayOf(day)
	return start, start.AddDate(0, 0, 1)
}
