package flights

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/flightinventory/internal/domain"
	"github.com/Domenick1991/flightinventory/internal/kafka"
	"github.com/Domenick1991/flightinventory/internal/repository"
	"github.com/Domenick1991/flightinventory/internal/service"
)

type FlightUseCase interface {
	AddFlight(ctx context.Context, input AddFlightInput) (*domain.Flight, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*domain.Flight, error)
	Search(ctx context.Context, origin, destination string, date time.Time) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

// SearchCache stores search results per route and day. GetSearch returns nil
// flights on a miss together with the version SetSearch must be given.
type SearchCache interface {
	GetSearch(ctx context.Context, origin, destination string, day time.Time) ([]domain.Flight, int64, error)
	SetSearch(ctx context.Context, origin, destination string, day time.Time, version int64, flights []domain.Flight) error
	InvalidateSearch(ctx context.Context, origin, destination string, day time.Time) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type AddFlightInput struct {
	FlightNumber  string
	Origin        string
	Destination   string
	DepartureTime time.Time
}

type FlightService struct {
	flights     repository.FlightRepository
	seatClasses repository.SeatClassRepository
	cache       SearchCache
	producer    Producer
	flightTopic string
	log         *slog.Logger
}

type FlightServiceOption func(*FlightService)

func WithCache(cache SearchCache) FlightServiceOption {
	return func(s *FlightService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, flightTopic string) FlightServiceOption {
	return func(s *FlightService) {
		s.producer = producer
		s.flightTopic = flightTopic
	}
}

func WithLogger(log *slog.Logger) FlightServiceOption {
	return func(s *FlightService) {
		s.log = log
	}
}

func NewFlightService(flights repository.FlightRepository, seatClasses repository.SeatClassRepository, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{flights: flights, seatClasses: seatClasses, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) AddFlight(ctx context.Context, input AddFlightInput) (*domain.Flight, error) {
	flight := &domain.Flight{
		FlightNumber:  strings.TrimSpace(input.FlightNumber),
		Origin:        NormalizeAirport(input.Origin),
		Destination:   NormalizeAirport(input.Destination),
		DepartureTime: input.DepartureTime.UTC(),
		Status:        domain.FlightStatusOnTime,
	}
	switch {
	case flight.FlightNumber == "":
		return nil, domain.InvalidArgument("flight number is required")
	case flight.Origin == "" || flight.Destination == "":
		return nil, domain.InvalidArgument("origin and destination are required")
	case flight.Origin == flight.Destination:
		return nil, domain.InvalidArgument("origin and destination must differ")
	case input.DepartureTime.IsZero():
		return nil, domain.InvalidArgument("departure time is required")
	}

	if err := s.flights.Create(ctx, flight); err != nil {
		return nil, service.Failed(ctx, s.log, "add flight", err, slog.String("flight_number", flight.FlightNumber))
	}
	s.invalidate(ctx, *flight)
	flight.SeatClasses = []domain.SeatClass{}
	return flight, nil
}

func (s *FlightService) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Flight, error) {
	parsed, err := domain.ParseFlightStatus(status)
	if err != nil {
		return nil, err
	}

	flight, err := s.flights.UpdateStatus(ctx, id, parsed)
	if err != nil {
		return nil, service.Failed(ctx, s.log, "update flight status", err, slog.Int64("flight_id", id))
	}
	s.invalidate(ctx, *flight)

	if s.producer != nil && s.flightTopic != "" {
		event := kafka.NewFlightEvent(kafka.EventFlightStatusChanged, *flight)
		if err := s.producer.Publish(ctx, s.flightTopic, event.Key(), event); err != nil {
			s.log.WarnContext(ctx, "failed to publish flight event", slog.Int64("flight_id", id), slog.Any("error", err))
		}
	}
	return flight, nil
}

// Search returns an empty slice, not an error, when nothing matches. Seat
// counts in the result are advisory: they may come from the cache, and Book
// checks availability again under the seat class lock.
func (s *FlightService) Search(ctx context.Context, origin, destination string, date time.Time) ([]domain.Flight, error) {
	origin, destination = NormalizeAirport(origin), NormalizeAirport(destination)
	if origin == "" || destination == "" {
		return nil, domain.InvalidArgument("origin and destination are required")
	}
	if date.IsZero() {
		return nil, domain.InvalidArgument("date is required")
	}
	day := domain.DayOf(date)

	var (
		version   int64
		cacheable bool
	)
	if s.cache != nil {
		cached, v, err := s.cache.GetSearch(ctx, origin, destination, day)
		switch {
		case err != nil:
			s.log.WarnContext(ctx, "search cache read failed", slog.Any("error", err))
		case cached != nil:
			return cached, nil
		default:
			version, cacheable = v, true
		}
	}

	flights, err := s.flights.Search(ctx, origin, destination, day)
	if err != nil {
		return nil, service.Failed(ctx, s.log, "search flights", err,
			slog.String("origin", origin), slog.String("destination", destination))
	}
	if cacheable {
		if err := s.cache.SetSearch(ctx, origin, destination, day, version, flights); err != nil {
			s.log.WarnContext(ctx, "search cache write failed", slog.Any("error", err))
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	flight, err := s.flights.GetByID(ctx, id)
	if err != nil {
		return nil, service.Failed(ctx, s.log, "get flight", err, slog.Int64("flight_id", id))
	}
	classes, err := s.seatClasses.ListByFlight(ctx, id)
	if err != nil {
		return nil, service.Failed(ctx, s.log, "get flight", err, slog.Int64("flight_id", id))
	}
	flight.SeatClasses = classes
	return flight, nil
}

func (s *FlightService) invalidate(ctx context.Context, flight domain.Flight) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSearch(ctx, flight.Origin, flight.Destination, flight.DepartureDate()); err != nil {
		s.log.WarnContext(ctx, "search cache invalidation failed", slog.Int64("flight_id", flight.ID), slog.Any("error", err))
	}
}

// NormalizeAirport trims and upper-cases an airport code.
func NormalizeAirport(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

var _ FlightUseCase = (*FlightService)(nil)
