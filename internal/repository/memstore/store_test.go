package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/flightinventory/internal/domain"
	"github.com/Domenick1991/flightinventory/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var departure = time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)

func seedFlight(t *testing.T, repos *repository.Store, seats int) (*domain.Flight, domain.SeatClass) {
	t.Helper()
	ctx := context.Background()

	flight := &domain.Flight{FlightNumber: "AI101", Origin: "DEL", Destination: "BOM", DepartureTime: departure}
	require.NoError(t, repos.Flights.Create(ctx, flight))

	classes, err := repos.SeatClasses.CreateMany(ctx, flight.ID, []domain.SeatClass{
		{Class: domain.SeatClassEconomy, AvailableSeats: seats, FareCents: 450000},
	})
	require.NoError(t, err)
	return flight, classes[0]
}

func TestFlightRepo_CreateAndSearch(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	flight, sc := seedFlight(t, repos, 3)

	assert.Equal(t, domain.FlightStatusOnTime, flight.Status)
	assert.Equal(t, 3, sc.Capacity)

	err := repos.Flights.Create(ctx, &domain.Flight{FlightNumber: "AI101", Origin: "DEL", Destination: "BOM", DepartureTime: departure})
	assert.ErrorIs(t, err, domain.ErrConflict)

	found, err := repos.Flights.Search(ctx, "DEL", "BOM", departure)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, flight.ID, found[0].ID)
	require.Len(t, found[0].SeatClasses, 1)
	assert.Equal(t, domain.SeatClassEconomy, found[0].SeatClasses[0].Class)

	none, err := repos.Flights.Search(ctx, "DEL", "BOM", departure.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, none)

	none, err = repos.Flights.Search(ctx, "BOM", "DEL", departure)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFlightRepo_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	flight, _ := seedFlight(t, repos, 1)

	updated, err := repos.Flights.UpdateStatus(ctx, flight.ID, domain.FlightStatusDelayed)
	require.NoError(t, err)
	assert.Equal(t, domain.FlightStatusDelayed, updated.Status)

	_, err = repos.Flights.UpdateStatus(ctx, 999, domain.FlightStatusDelayed)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSeatClassRepo_CreateManyIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	flight, _ := seedFlight(t, repos, 1)

	_, err := repos.SeatClasses.CreateMany(ctx, flight.ID, []domain.SeatClass{
		{Class: domain.SeatClassBusiness, AvailableSeats: 2},
		{Class: domain.SeatClassEconomy, AvailableSeats: 5},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	classes, err := repos.SeatClasses.ListByFlight(ctx, flight.ID)
	require.NoError(t, err)
	assert.Len(t, classes, 1)

	_, err = repos.SeatClasses.CreateMany(ctx, 999, []domain.SeatClass{{Class: domain.SeatClassFirst, AvailableSeats: 1}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSeatClassRepo_SetFare(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	flight, _ := seedFlight(t, repos, 1)

	sc, err := repos.SeatClasses.SetFare(ctx, flight.ID, domain.SeatClassEconomy, 520000)
	require.NoError(t, err)
	assert.Equal(t, int64(520000), sc.FareCents)

	_, err = repos.SeatClasses.SetFare(ctx, flight.ID, domain.SeatClassFirst, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTx_BookAndCancel(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	flight, _ := seedFlight(t, repos, 2)

	var booking domain.Booking
	err := repos.Tx.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		sc, err := tx.LockSeatClass(ctx, flight.ID, domain.SeatClassEconomy)
		if err != nil {
			return err
		}
		if err := tx.DecrementSeats(ctx, sc.ID, sc.AvailableSeats); err != nil {
			return err
		}
		booking = domain.Booking{UserID: 7, FlightID: flight.ID, Class: sc.Class, SeatNumber: sc.NextSeatNumber(), FareCents: sc.FareCents, BookedAt: time.Now().UTC()}
		return tx.InsertBooking(ctx, &booking)
	})
	require.NoError(t, err)
	assert.Equal(t, "ECONOMY-2", booking.SeatNumber)
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)

	sc, err := repos.SeatClasses.Get(ctx, flight.ID, domain.SeatClassEconomy)
	require.NoError(t, err)
	assert.Equal(t, 1, sc.AvailableSeats)

	err = repos.Tx.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		sc, err := tx.LockSeatClass(ctx, flight.ID, domain.SeatClassEconomy)
		if err != nil {
			return err
		}
		if _, err := tx.LockBooking(ctx, booking.ID, 7); err != nil {
			return err
		}
		if err := tx.IncrementSeats(ctx, sc.ID); err != nil {
			return err
		}
		return tx.DeleteBooking(ctx, booking.ID)
	})
	require.NoError(t, err)

	sc, err = repos.SeatClasses.Get(ctx, flight.ID, domain.SeatClassEconomy)
	require.NoError(t, err)
	assert.Equal(t, 2, sc.AvailableSeats)

	_, err = repos.Bookings.GetForUser(ctx, booking.ID, 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTx_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	flight, _ := seedFlight(t, repos, 1)

	boom := errors.New("boom")
	err := repos.Tx.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		sc, err := tx.LockSeatClass(ctx, flight.ID, domain.SeatClassEconomy)
		if err != nil {
			return err
		}
		if err := tx.DecrementSeats(ctx, sc.ID, sc.AvailableSeats); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	sc, err := repos.SeatClasses.Get(ctx, flight.ID, domain.SeatClassEconomy)
	require.NoError(t, err)
	assert.Equal(t, 1, sc.AvailableSeats)
}

func TestTx_DecrementRejectsStaleCounter(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	flight, sc := seedFlight(t, repos, 1)

	err := repos.Tx.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		return tx.DecrementSeats(ctx, sc.ID, 5)
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = repos.Tx.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		if err := tx.DecrementSeats(ctx, sc.ID, 1); err != nil {
			return err
		}
		return nil
	})
	require.NoError(t, err)

	err = repos.Tx.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		return tx.DecrementSeats(ctx, sc.ID, 0)
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := repos.SeatClasses.Get(ctx, flight.ID, domain.SeatClassEconomy)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableSeats)
}

func TestTx_IncrementCapsAtCapacity(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	flight, sc := seedFlight(t, repos, 2)

	err := repos.Tx.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		return tx.IncrementSeats(ctx, sc.ID)
	})
	require.NoError(t, err)

	got, err := repos.SeatClasses.Get(ctx, flight.ID, domain.SeatClassEconomy)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableSeats)
}

func TestTx_LockWaitHonoursContext(t *testing.T) {
	store := New()
	repos := store.Repositories()
	flight, _ := seedFlight(t, repos, 1)

	locked := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = repos.Tx.WithinTx(context.Background(), func(ctx context.Context, tx repository.InventoryTx) error {
			if _, err := tx.LockSeatClass(ctx, flight.ID, domain.SeatClassEconomy); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := repos.Tx.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		_, err := tx.LockSeatClass(ctx, flight.ID, domain.SeatClassEconomy)
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	wg.Wait()
	assert.Zero(t, store.heldRowLocks())
}

func TestTx_RowLocksAreDroppedAfterCancel(t *testing.T) {
	ctx := context.Background()
	store := New()
	repos := store.Repositories()
	flight, _ := seedFlight(t, repos, 3)

	for range 3 {
		var booking domain.Booking
		err := repos.Tx.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
			sc, err := tx.LockSeatClass(ctx, flight.ID, domain.SeatClassEconomy)
			if err != nil {
				return err
			}
			if err := tx.DecrementSeats(ctx, sc.ID, sc.AvailableSeats); err != nil {
				return err
			}
			booking = domain.Booking{UserID: 7, FlightID: flight.ID, Class: sc.Class, SeatNumber: sc.NextSeatNumber(), FareCents: sc.FareCents}
			return tx.InsertBooking(ctx, &booking)
		})
		require.NoError(t, err)

		err = repos.Tx.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
			sc, err := tx.LockSeatClass(ctx, flight.ID, domain.SeatClassEconomy)
			if err != nil {
				return err
			}
			if _, err := tx.LockBooking(ctx, booking.ID, 7); err != nil {
				return err
			}
			if err := tx.IncrementSeats(ctx, sc.ID); err != nil {
				return err
			}
			return tx.DeleteBooking(ctx, booking.ID)
		})
		require.NoError(t, err)
	}

	assert.Zero(t, store.heldRowLocks())
}

func TestSeatClassRepo_AuditReportsDrift(t *testing.T) {
	ctx := context.Background()
	store := New()
	repos := store.Repositories()
	flight, sc := seedFlight(t, repos, 3)

	drifts, err := repos.SeatClasses.Audit(ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)

	store.mu.Lock()
	row := store.seatClasses[sc.ID]
	row.AvailableSeats = 1
	store.seatClasses[sc.ID] = row
	store.mu.Unlock()

	drifts, err = repos.SeatClasses.Audit(ctx)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, flight.ID, drifts[0].FlightID)
	assert.Equal(t, -2, drifts[0].Delta())
}

func TestUserRepo_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()

	user := &domain.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "x"}
	require.NoError(t, repos.Users.Create(ctx, user))
	assert.True(t, user.IsActive)

	err := repos.Users.Create(ctx, &domain.User{Name: "Other", Email: "asha@example.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := repos.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
}

func TestBookingRepo_ListByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	flight, _ := seedFlight(t, repos, 5)

	book := func(at time.Time) int64 {
		var id int64
		err := repos.Tx.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
			sc, err := tx.LockSeatClass(ctx, flight.ID, domain.SeatClassEconomy)
			if err != nil {
				return err
			}
			if err := tx.DecrementSeats(ctx, sc.ID, sc.AvailableSeats); err != nil {
				return err
			}
			b := domain.Booking{UserID: 1, FlightID: flight.ID, Class: sc.Class, SeatNumber: sc.NextSeatNumber(), BookedAt: at}
			if err := tx.InsertBooking(ctx, &b); err != nil {
				return err
			}
			id = b.ID
			return nil
		})
		require.NoError(t, err)
		return id
	}
	first := book(departure.Add(-48 * time.Hour))
	second := book(departure.Add(-24 * time.Hour))

	details, err := repos.Bookings.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, second, details[0].ID)
	assert.Equal(t, first, details[1].ID)
	assert.Equal(t, "AI101", details[0].Flight.FlightNumber)

	empty, err := repos.Bookings.ListByUser(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
