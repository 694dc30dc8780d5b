// Package memstore keeps flights, inventory and bookings in process memory.
// It honours the same contract as the PostgreSQL repositories, including
// per seat-class row locks, so it backs local runs and the concurrency tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/flightinventory/internal/domain"
	"github.com/Domenick1991/flightinventory/internal/repository"
)

type Store struct {
	// mu guards the tables. It is never held while waiting for a row lock.
	mu          sync.RWMutex
	lastID      int64
	users       map[int64]domain.User
	flights     map[int64]domain.Flight
	seatClasses map[int64]domain.SeatClass
	bookings    map[int64]domain.Booking

	locksMu  sync.Mutex
	rowLocks map[string]*rowLock

	now func() time.Time
}

func New() *Store {
	return &Store{
		users:       make(map[int64]domain.User),
		flights:     make(map[int64]domain.Flight),
		seatClasses: make(map[int64]domain.SeatClass),
		bookings:    make(map[int64]domain.Booking),
		rowLocks:    make(map[string]*rowLock),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Users:       &userRepo{s},
		Flights:     &flightRepo{s},
		SeatClasses: &seatClassRepo{s},
		Bookings:    &bookingRepo{s},
		Tx:          &txManager{s},
	}
}

// nextID must be called with mu held for writing.
func (s *Store) nextID() int64 {
	s.lastID++
	return s.lastID
}

// rowLock is dropped from the table once no transaction holds or waits for it.
type rowLock struct {
	ch   chan struct{}
	refs int
}

// lockRow blocks until the row identified by key is free or ctx is done.
func (s *Store) lockRow(ctx context.Context, key string) (func(), error) {
	s.locksMu.Lock()
	l, ok := s.rowLocks[key]
	if !ok {
		l = &rowLock{ch: make(chan struct{}, 1)}
		s.rowLocks[key] = l
	}
	l.refs++
	s.locksMu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return func() {
			<-l.ch
			s.dropRowLock(key, l)
		}, nil
	case <-ctx.Done():
		s.dropRowLock(key, l)
		return nil, ctx.Err()
	}
}

func (s *Store) dropRowLock(key string, l *rowLock) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.rowLocks, key)
	}
}

// heldRowLocks reports how many row locks are tracked.
func (s *Store) heldRowLocks() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.rowLocks)
}

func seatClassKey(flightID int64, class domain.SeatClassType) string {
	return fmt.Sprintf("seat_class:%d:%s", flightID, class)
}

func bookingKey(id int64) string {
	return fmt.Sprintf("booking:%d", id)
}

// findSeatClass must be called with mu held.
func (s *Store) findSeatClass(flightID int64, class domain.SeatClassType) (domain.SeatClass, bool) {
	for _, sc := range s.seatClasses {
		if sc.FlightID == flightID && sc.Class == class {
			return sc, true
		}
	}
	return domain.SeatClass{}, false
}

// seatTaken must be called with mu held.
func (s *Store) seatTaken(flightID int64, class domain.SeatClassType, seatNumber string) bool {
	for _, b := range s.bookings {
		if b.FlightID == flightID && b.Class == class && b.SeatNumber == seatNumber {
			return true
		}
	}
	return false
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.Conflict("user already exists")
		}
	}
	now := r.s.now()
	user.ID = r.s.nextID()
	user.IsActive = true
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.NotFound("user not found")
	}
	return &u, nil
}

type flightRepo struct{ s *Store }

func (r *flightRepo) Create(_ context.Context, flight *domain.Flight) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, f := range r.s.flights {
		if f.FlightNumber == flight.FlightNumber && f.DepartureTime.Equal(flight.DepartureTime) {
			return domain.Conflict("flight already exists")
		}
	}
	if flight.Status == "" {
		flight.Status = domain.FlightStatusOnTime
	}
	now := r.s.now()
	flight.ID = r.s.nextID()
	flight.CreatedAt, flight.UpdatedAt = now, now
	stored := *flight
	stored.SeatClasses = nil
	r.s.flights[flight.ID] = stored
	return nil
}

func (r *flightRepo) GetByID(_ context.Context, id int64) (*domain.Flight, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.flights[id]
	if !ok {
		return nil, domain.NotFound("flight not found")
	}
	return &f, nil
}

func (r *flightRepo) Search(_ context.Context, origin, destination string, day time.Time) ([]domain.Flight, error) {
	from := domain.DayOf(day)
	to := from.AddDate(0, 0, 1)

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	flights := make([]domain.Flight, 0)
	for _, f := range r.s.flights {
		if f.Origin != origin || f.Destination != destination {
			continue
		}
		if f.DepartureTime.Before(from) || !f.DepartureTime.Before(to) {
			continue
		}
		f.SeatClasses = r.s.listSeatClasses(f.ID)
		flights = append(flights, f)
	}
	sort.Slice(flights, func(i, j int) bool {
		if !flights[i].DepartureTime.Equal(flights[j].DepartureTime) {
			return flights[i].DepartureTime.Before(flights[j].DepartureTime)
		}
		return flights[i].ID < flights[j].ID
	})
	return flights, nil
}

func (r *flightRepo) UpdateStatus(_ context.Context, id int64, status domain.FlightStatus) (*domain.Flight, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.flights[id]
	if !ok {
		return nil, domain.NotFound("flight not found")
	}
	f.Status = status
	f.UpdatedAt = r.s.now()
	r.s.flights[id] = f
	return &f, nil
}

// listSeatClasses must be called with mu held.
func (s *Store) listSeatClasses(flightID int64) []domain.SeatClass {
	classes := make([]domain.SeatClass, 0)
	for _, sc := range s.seatClasses {
		if sc.FlightID == flightID {
			classes = append(classes, sc)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes
}

type seatClassRepo struct{ s *Store }

func (r *seatClassRepo) CreateMany(_ context.Context, flightID int64, classes []domain.SeatClass) ([]domain.SeatClass, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.flights[flightID]; !ok {
		return nil, domain.NotFound("flight not found")
	}
	seen := make(map[domain.SeatClassType]bool, len(classes))
	for _, sc := range classes {
		if _, exists := r.s.findSeatClass(flightID, sc.Class); exists || seen[sc.Class] {
			return nil, domain.Conflict("seat class %s already exists", sc.Class)
		}
		seen[sc.Class] = true
	}

	now := r.s.now()
	created := make([]domain.SeatClass, 0, len(classes))
	for _, sc := range classes {
		sc.ID = r.s.nextID()
		sc.FlightID = flightID
		sc.Capacity = sc.AvailableSeats
		sc.CreatedAt, sc.UpdatedAt = now, now
		r.s.seatClasses[sc.ID] = sc
		created = append(created, sc)
	}
	return created, nil
}

func (r *seatClassRepo) Get(_ context.Context, flightID int64, class domain.SeatClassType) (*domain.SeatClass, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sc, ok := r.s.findSeatClass(flightID, class)
	if !ok {
		return nil, domain.NotFound("seat class not found")
	}
	return &sc, nil
}

func (r *seatClassRepo) ListByFlight(_ context.Context, flightID int64) ([]domain.SeatClass, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.listSeatClasses(flightID), nil
}

func (r *seatClassRepo) SetFare(ctx context.Context, flightID int64, class domain.SeatClassType, fareCents int64) (*domain.SeatClass, error) {
	unlock, err := r.s.lockRow(ctx, seatClassKey(flightID, class))
	if err != nil {
		return nil, err
	}
	defer unlock()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sc, ok := r.s.findSeatClass(flightID, class)
	if !ok {
		return nil, domain.NotFound("seat class not found")
	}
	sc.FareCents = fareCents
	sc.UpdatedAt = r.s.now()
	r.s.seatClasses[sc.ID] = sc
	return &sc, nil
}

func (r *seatClassRepo) Audit(_ context.Context) ([]domain.InventoryDrift, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	booked := make(map[string]int)
	for _, b := range r.s.bookings {
		booked[seatClassKey(b.FlightID, b.Class)]++
	}

	drifts := make([]domain.InventoryDrift, 0)
	for _, sc := range r.s.seatClasses {
		active := booked[seatClassKey(sc.FlightID, sc.Class)]
		if sc.AvailableSeats+active == sc.Capacity {
			continue
		}
		drifts = append(drifts, domain.InventoryDrift{
			SeatClassID:    sc.ID,
			FlightID:       sc.FlightID,
			Class:          sc.Class,
			AvailableSeats: sc.AvailableSeats,
			ActiveBookings: active,
			Capacity:       sc.Capacity,
		})
	}
	sort.Slice(drifts, func(i, j int) bool { return drifts[i].SeatClassID < drifts[j].SeatClassID })
	return drifts, nil
}

type bookingRepo struct{ s *Store }

func (r *bookingRepo) GetForUser(_ context.Context, bookingID, userID int64) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bookings[bookingID]
	if !ok || b.UserID != userID {
		return nil, domain.NotFound("booking not found")
	}
	return &b, nil
}

func (r *bookingRepo) ListByUser(_ context.Context, userID int64) ([]domain.BookingDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	details := make([]domain.BookingDetail, 0)
	for _, b := range r.s.bookings {
		if b.UserID != userID {
			continue
		}
		details = append(details, domain.BookingDetail{Booking: b, Flight: r.s.flights[b.FlightID]})
	}
	sort.Slice(details, func(i, j int) bool {
		if !details[i].BookedAt.Equal(details[j].BookedAt) {
			return details[i].BookedAt.After(details[j].BookedAt)
		}
		return details[i].ID > details[j].ID
	})
	return details, nil
}

var (
	_ repository.UserRepository      = (*userRepo)(nil)
	_ repository.FlightRepository    = (*flightRepo)(nil)
	_ repository.SeatClassRepository = (*seatClassRepo)(nil)
	_ repository.BookingRepository   = (*bookingRepo)(nil)
)
