package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Domenick1991/flightinventory/internal/domain"
	"github.com/Domenick1991/flightinventory/internal/kafka"
	"github.com/Domenick1991/flightinventory/internal/repository"
	"github.com/Domenick1991/flightinventory/internal/service"
)

type BookingUseCase interface {
	Book(ctx context.Context, userID, flightID int64, class string) (*domain.Booking, error)
	Cancel(ctx context.Context, userID, bookingID int64) (*domain.Booking, error)
	ViewBookings(ctx context.Context, userID int64) ([]domain.BookingDetail, error)
	AuditInventory(ctx context.Context) ([]domain.InventoryDrift, error)
}

type CacheInvalidator interface {
	InvalidateSearch(ctx context.Context, origin, destination string, day time.Time) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

const DefaultTxTimeout = 3 * time.Second

type BookingService struct {
	users              repository.UserRepository
	flights            repository.FlightRepository
	seatClasses        repository.SeatClassRepository
	bookings           repository.BookingRepository
	tx                 repository.TxManager
	cache              CacheInvalidator
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	txTimeout          time.Duration
	log                *slog.Logger
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithCache(cache CacheInvalidator) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithTxTimeout(timeout time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if timeout > 0 {
			s.txTimeout = timeout
		}
	}
}

func WithLogger(log *slog.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func NewBookingService(store *repository.Store, opts ...BookingServiceOption) *BookingService {
	s := &BookingService{
		users:       store.Users,
		flights:     store.Flights,
		seatClasses: store.SeatClasses,
		bookings:    store.Bookings,
		tx:          store.Tx,
		txTimeout:   DefaultTxTimeout,
		log:         slog.Default(),
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Book reserves one seat of class on the flight for the user. The seat class
// row stays locked from the availability check until the booking is stored.
func (s *BookingService) Book(ctx context.Context, userID, flightID int64, class string) (*domain.Booking, error) {
	seatClass, err := domain.ParseSeatClass(class)
	if err != nil {
		return nil, err
	}
	attrs := []any{slog.Int64("user_id", userID), slog.Int64("flight_id", flightID), slog.String("class", string(seatClass))}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, service.Failed(ctx, s.log, "book", err, attrs...)
	}
	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, service.Failed(ctx, s.log, "book", err, attrs...)
	}
	if flight.Status == domain.FlightStatusCancelled {
		return nil, domain.Conflict("flight %s is cancelled", flight.FlightNumber)
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var booking domain.Booking
	err = s.tx.WithinTx(txCtx, func(ctx context.Context, tx repository.InventoryTx) error {
		sc, err := tx.LockSeatClass(ctx, flightID, seatClass)
		if err != nil {
			return err
		}
		if sc.AvailableSeats <= 0 {
			return domain.Unavailable("no %s seats left on flight %s", seatClass, flight.FlightNumber)
		}

		seat := sc.NextSeatNumber()
		taken, err := tx.SeatTaken(ctx, flightID, seatClass, seat)
		if err != nil {
			return err
		}
		if taken {
			return domain.Conflict("seat %s is already booked", seat)
		}

		if err := tx.DecrementSeats(ctx, sc.ID, sc.AvailableSeats); err != nil {
			return err
		}

		booking = domain.Booking{
			UserID:     userID,
			FlightID:   flightID,
			Class:      seatClass,
			SeatNumber: seat,
			FareCents:  sc.FareCents,
			Status:     domain.BookingStatusConfirmed,
			BookedAt:   s.now(),
		}
		return tx.InsertBooking(ctx, &booking)
	})
	if err != nil {
		return nil, service.Failed(ctx, s.log, "book", err, attrs...)
	}

	s.log.InfoContext(ctx, "seat booked", append(attrs, slog.Int64("booking_id", booking.ID), slog.String("seat", booking.SeatNumber))...)
	s.invalidate(ctx, *flight)
	s.publish(ctx, kafka.NewBookingEvent(kafka.EventBookingCreated, booking, user.Email, flight.FlightNumber))
	return &booking, nil
}

// Cancel deletes the user's booking and gives its seat back to the class.
// Locks are taken inventory first, then the booking.
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	attrs := []any{slog.Int64("user_id", userID), slog.Int64("booking_id", bookingID)}

	current, err := s.bookings.GetForUser(ctx, bookingID, userID)
	if err != nil {
		return nil, service.Failed(ctx, s.log, "cancel booking", err, attrs...)
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var cancelled *domain.Booking
	err = s.tx.WithinTx(txCtx, func(ctx context.Context, tx repository.InventoryTx) error {
		sc, err := tx.LockSeatClass(ctx, current.FlightID, current.Class)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		cancelled, err = tx.LockBooking(ctx, bookingID, userID)
		if err != nil {
			return err
		}

		if sc != nil {
			if err := tx.IncrementSeats(ctx, sc.ID); err != nil {
				return err
			}
		}
		return tx.DeleteBooking(ctx, cancelled.ID)
	})
	if err != nil {
		return nil, service.Failed(ctx, s.log, "cancel booking", err, attrs...)
	}

	s.log.InfoContext(ctx, "booking cancelled", append(attrs, slog.Int64("flight_id", cancelled.FlightID), slog.String("seat", cancelled.SeatNumber))...)

	var email, flightNumber string
	if user, err := s.users.GetByID(ctx, userID); err == nil {
		email = user.Email
	}
	if flight, err := s.flights.GetByID(ctx, cancelled.FlightID); err == nil {
		flightNumber = flight.FlightNumber
		s.invalidate(ctx, *flight)
	}
	s.publish(ctx, kafka.NewBookingEvent(kafka.EventBookingCancelled, *cancelled, email, flightNumber))
	return cancelled, nil
}

// ViewBookings lists the user's bookings newest first. A user without
// bookings gets an empty slice.
func (s *BookingService) ViewBookings(ctx context.Context, userID int64) ([]domain.BookingDetail, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, service.Failed(ctx, s.log, "view bookings", err, slog.Int64("user_id", userID))
	}
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, service.Failed(ctx, s.log, "view bookings", err, slog.Int64("user_id", userID))
	}
	return bookings, nil
}

// AuditInventory reports seat classes where available seats plus active
// bookings no longer add up to the configured capacity.
func (s *BookingService) AuditInventory(ctx context.Context) ([]domain.InventoryDrift, error) {
	drifts, err := s.seatClasses.Audit(ctx)
	if err != nil {
		return nil, service.Failed(ctx, s.log, "audit inventory", err)
	}
	for _, d := range drifts {
		s.log.WarnContext(ctx, "inventory drift",
			slog.Int64("flight_id", d.FlightID),
			slog.String("class", string(d.Class)),
			slog.Int("available", d.AvailableSeats),
			slog.Int("active_bookings", d.ActiveBookings),
			slog.Int("capacity", d.Capacity),
			slog.Int("delta", d.Delta()),
		)
	}
	return drifts, nil
}

func (s *BookingService) invalidate(ctx context.Context, flight domain.Flight) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSearch(ctx, flight.Origin, flight.Destination, flight.DepartureDate()); err != nil {
		s.log.WarnContext(ctx, "search cache invalidation failed", slog.Int64("flight_id", flight.ID), slog.Any("error", err))
	}
}

// publish runs after commit. Delivery failures are logged and never undo
// the committed booking.
func (s *BookingService) publish(ctx context.Context, event kafka.BookingEvent) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, event.Key(), event); err != nil {
		s.log.WarnContext(ctx, "failed to publish booking event", slog.String("type", event.Type), slog.Int64("booking_id", event.BookingID), slog.Any("error", err))
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, event.Key(), event); err != nil {
			s.log.WarnContext(ctx, "failed to publish notification", slog.String("type", event.Type), slog.Int64("booking_id", event.BookingID), slog.Any("error", err))
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
