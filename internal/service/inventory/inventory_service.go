package inventory

import (
	"context"
	"log/slog"
	"time"

	"github.com/Domenick1991/flightinventory/internal/domain"
	"github.com/Domenick1991/flightinventory/internal/repository"
	"github.com/Domenick1991/flightinventory/internal/service"
)

type InventoryUseCase interface {
	ConfigureSeatClasses(ctx context.Context, flightID int64, inputs []SeatClassInput) ([]domain.SeatClass, error)
	SetFare(ctx context.Context, flightID int64, class string, fareCents int64) (*domain.SeatClass, error)
	GetFare(ctx context.Context, flightID int64, class string) (*domain.SeatClass, error)
}

type CacheInvalidator interface {
	InvalidateSearch(ctx context.Context, origin, destination string, day time.Time) error
}

type SeatClassInput struct {
	Class          string
	AvailableSeats int
	FareCents      int64
}

type InventoryService struct {
	flights     repository.FlightRepository
	seatClasses repository.SeatClassRepository
	cache       CacheInvalidator
	log         *slog.Logger
}

type InventoryServiceOption func(*InventoryService)

func WithCache(cache CacheInvalidator) InventoryServiceOption {
	return func(s *InventoryService) {
		s.cache = cache
	}
}

func WithLogger(log *slog.Logger) InventoryServiceOption {
	return func(s *InventoryService) {
		s.log = log
	}
}

func NewInventoryService(flights repository.FlightRepository, seatClasses repository.SeatClassRepository, opts ...InventoryServiceOption) *InventoryService {
	s := &InventoryService{flights: flights, seatClasses: seatClasses, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConfigureSeatClasses creates one inventory row per entry, all or none.
// A class that is already configured for the flight is a conflict.
func (s *InventoryService) ConfigureSeatClasses(ctx context.Context, flightID int64, inputs []SeatClassInput) ([]domain.SeatClass, error) {
	if len(inputs) == 0 {
		return nil, domain.InvalidArgument("at least one seat class is required")
	}

	classes := make([]domain.SeatClass, 0, len(inputs))
	seen := make(map[domain.SeatClassType]bool, len(inputs))
	for _, in := range inputs {
		class, err := domain.ParseSeatClass(in.Class)
		if err != nil {
			return nil, err
		}
		if seen[class] {
			return nil, domain.InvalidArgument("seat class %s listed twice", class)
		}
		seen[class] = true
		if in.AvailableSeats < 0 {
			return nil, domain.InvalidArgument("available seats for %s must not be negative", class)
		}
		if in.FareCents <= 0 {
			return nil, domain.InvalidArgument("fare for %s must be positive", class)
		}
		classes = append(classes, domain.SeatClass{Class: class, AvailableSeats: in.AvailableSeats, FareCents: in.FareCents})
	}

	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, service.Failed(ctx, s.log, "configure seat classes", err, slog.Int64("flight_id", flightID))
	}

	created, err := s.seatClasses.CreateMany(ctx, flightID, classes)
	if err != nil {
		return nil, service.Failed(ctx, s.log, "configure seat classes", err, slog.Int64("flight_id", flightID))
	}
	s.invalidate(ctx, *flight)
	return created, nil
}

func (s *InventoryService) SetFare(ctx context.Context, flightID int64, class string, fareCents int64) (*domain.SeatClass, error) {
	parsed, err := domain.ParseSeatClass(class)
	if err != nil {
		return nil, err
	}
	if fareCents <= 0 {
		return nil, domain.InvalidArgument("fare must be positive")
	}

	sc, err := s.seatClasses.SetFare(ctx, flightID, parsed, fareCents)
	if err != nil {
		return nil, service.Failed(ctx, s.log, "set fare", err, slog.Int64("flight_id", flightID), slog.String("class", string(parsed)))
	}

	if flight, err := s.flights.GetByID(ctx, flightID); err == nil {
		s.invalidate(ctx, *flight)
	}
	return sc, nil
}

func (s *InventoryService) GetFare(ctx context.Context, flightID int64, class string) (*domain.SeatClass, error) {
	parsed, err := domain.ParseSeatClass(class)
	if err != nil {
		return nil, err
	}
	sc, err := s.seatClasses.Get(ctx, flightID, parsed)
	if err != nil {
		return nil, service.Failed(ctx, s.log, "get fare", err, slog.Int64("flight_id", flightID), slog.String("class", string(parsed)))
	}
	return sc, nil
}

func (s *InventoryService) invalidate(ctx context.Context, flight domain.Flight) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSearch(ctx, flight.Origin, flight.Destination, flight.DepartureDate()); err != nil {
		s.log.WarnContext(ctx, "search cache invalidation failed", slog.Int64("flight_id", flight.ID), slog.Any("error", err))
	}
}

var _ InventoryUseCase = (*InventoryService)(nil)
