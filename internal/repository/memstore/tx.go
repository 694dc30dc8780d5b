package memstore

import (
	"context"

	"github.com/Domenick1991/flightinventory/internal/domain"
	"github.com/Domenick1991/flightinventory/internal/repository"
)

type txManager struct{ s *Store }

// WithinTx buffers writes and applies them at commit, so an aborted
// transaction leaves nothing behind. Reads see committed state only.
func (m *txManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.InventoryTx) error) error {
	t := &memTx{s: m.s, held: make(map[string]func())}
	defer t.release()

	if err := fn(ctx, t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.commit()
}

type pendingWrite struct {
	check func() error
	apply func()
}

type memTx struct {
	s      *Store
	held   map[string]func()
	writes []pendingWrite
}

func (t *memTx) lock(ctx context.Context, key string) error {
	if _, ok := t.held[key]; ok {
		return nil
	}
	unlock, err := t.s.lockRow(ctx, key)
	if err != nil {
		return err
	}
	t.held[key] = unlock
	return nil
}

func (t *memTx) release() {
	for key, unlock := range t.held {
		unlock()
		delete(t.held, key)
	}
}

func (t *memTx) commit() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for _, w := range t.writes {
		if w.check == nil {
			continue
		}
		if err := w.check(); err != nil {
			return err
		}
	}
	for _, w := range t.writes {
		w.apply()
	}
	return nil
}

func (t *memTx) LockSeatClass(ctx context.Context, flightID int64, class domain.SeatClassType) (*domain.SeatClass, error) {
	if err := t.lock(ctx, seatClassKey(flightID, class)); err != nil {
		return nil, err
	}

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	sc, ok := t.s.findSeatClass(flightID, class)
	if !ok {
		return nil, domain.NotFound("seat class not found")
	}
	return &sc, nil
}

func (t *memTx) SeatTaken(_ context.Context, flightID int64, class domain.SeatClassType, seatNumber string) (bool, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return t.s.seatTaken(flightID, class, seatNumber), nil
}

func (t *memTx) DecrementSeats(_ context.Context, seatClassID int64, expected int) error {
	check := func() error {
		sc, ok := t.s.seatClasses[seatClassID]
		if !ok || sc.AvailableSeats != expected || sc.AvailableSeats <= 0 {
			return domain.Conflict("seat inventory changed, please retry")
		}
		return nil
	}

	t.s.mu.RLock()
	err := check()
	t.s.mu.RUnlock()
	if err != nil {
		return err
	}

	t.writes = append(t.writes, pendingWrite{
		check: check,
		apply: func() {
			sc := t.s.seatClasses[seatClassID]
			sc.AvailableSeats--
			sc.UpdatedAt = t.s.now()
			t.s.seatClasses[seatClassID] = sc
		},
	})
	return nil
}

func (t *memTx) IncrementSeats(_ context.Context, seatClassID int64) error {
	check := func() error {
		if _, ok := t.s.seatClasses[seatClassID]; !ok {
			return domain.NotFound("seat class not found")
		}
		return nil
	}

	t.s.mu.RLock()
	err := check()
	t.s.mu.RUnlock()
	if err != nil {
		return err
	}

	t.writes = append(t.writes, pendingWrite{
		check: check,
		apply: func() {
			sc := t.s.seatClasses[seatClassID]
			sc.AvailableSeats = min(sc.AvailableSeats+1, sc.Capacity)
			sc.UpdatedAt = t.s.now()
			t.s.seatClasses[seatClassID] = sc
		},
	})
	return nil
}

func (t *memTx) InsertBooking(_ context.Context, booking *domain.Booking) error {
	check := func() error {
		if t.s.seatTaken(booking.FlightID, booking.Class, booking.SeatNumber) {
			return domain.Conflict("seat %s already exists", booking.SeatNumber)
		}
		return nil
	}

	t.s.mu.Lock()
	err := check()
	if err == nil {
		booking.ID = t.s.nextID()
	}
	t.s.mu.Unlock()
	if err != nil {
		return err
	}

	if booking.Status == "" {
		booking.Status = domain.BookingStatusConfirmed
	}
	booking.CreatedAt = t.s.now()
	row := *booking
	t.writes = append(t.writes, pendingWrite{
		check: check,
		apply: func() { t.s.bookings[row.ID] = row },
	})
	return nil
}

func (t *memTx) GetBooking(_ context.Context, bookingID, userID int64) (*domain.Booking, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	b, ok := t.s.bookings[bookingID]
	if !ok || b.UserID != userID {
		return nil, domain.NotFound("booking not found")
	}
	return &b, nil
}

func (t *memTx) LockBooking(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	if err := t.lock(ctx, bookingKey(bookingID)); err != nil {
		return nil, err
	}
	return t.GetBooking(ctx, bookingID, userID)
}

func (t *memTx) DeleteBooking(_ context.Context, bookingID int64) error {
	check := func() error {
		if _, ok := t.s.bookings[bookingID]; !ok {
			return domain.NotFound("booking not found")
		}
		return nil
	}

	t.s.mu.RLock()
	err := check()
	t.s.mu.RUnlock()
	if err != nil {
		return err
	}

	t.writes = append(t.writes, pendingWrite{
		check: check,
		apply: func() { delete(t.s.bookings, bookingID) },
	})
	return nil
}

var (
	_ repository.TxManager   = (*txManager)(nil)
	_ repository.InventoryTx = (*memTx)(nil)
)
