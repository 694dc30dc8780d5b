package api

import (
	"context"
	"time"

	"github.com/Domenick1991/flightinventory/internal/domain"
	"github.com/Domenick1991/flightinventory/internal/service/flights"
	"github.com/Domenick1991/flightinventory/internal/service/inventory"
	"github.com/Domenick1991/flightinventory/internal/service/users"
	"github.com/stretchr/testify/mock"
)

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) AddFlight(ctx context.Context, input flights.AddFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Flight, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Search(ctx context.Context, origin, destination string, date time.Time) ([]domain.Flight, error) {
	args := m.Called(ctx, origin, destination, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

type MockInventoryUseCase struct {
	mock.Mock
}

func (m *MockInventoryUseCase) ConfigureSeatClasses(ctx context.Context, flightID int64, inputs []inventory.SeatClassInput) ([]domain.SeatClass, error) {
	args := m.Called(ctx, flightID, inputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeatClass), args.Error(1)
}

func (m *MockInventoryUseCase) SetFare(ctx context.Context, flightID int64, class string, fareCents int64) (*domain.SeatClass, error) {
	args := m.Called(ctx, flightID, class, fareCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatClass), args.Error(1)
}

func (m *MockInventoryUseCase) GetFare(ctx context.Context, flightID int64, class string) (*domain.SeatClass, error) {
	args := m.Called(ctx, flightID, class)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatClass), args.Error(1)
}

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Book(ctx context.Context, userID, flightID int64, class string) (*domain.Booking, error) {
	args := m.Called(ctx, userID, flightID, class)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Cancel(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ViewBookings(ctx context.Context, userID int64) ([]domain.BookingDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingDetail), args.Error(1)
}

func (m *MockBookingUseCase) AuditInventory(ctx context.Context) ([]domain.InventoryDrift, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InventoryDrift), args.Error(1)
}

type MockUserUseCase struct {
	mock.Mock
}

func (m *MockUserUseCase) Register(ctx context.Context, input users.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUseCase) Get(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
