// Package mocks provides testify doubles for the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/Domenick1991/flightinventory/internal/domain"
	"github.com/Domenick1991/flightinventory/internal/repository"
	"github.com/stretchr/testify/mock"
)

type FlightRepository struct {
	mock.Mock
}

func (m *FlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *FlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *FlightRepository) Search(ctx context.Context, origin, destination string, day time.Time) ([]domain.Flight, error) {
	args := m.Called(ctx, origin, destination, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *FlightRepository) UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) (*domain.Flight, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

type SeatClassRepository struct {
	mock.Mock
}

func (m *SeatClassRepository) CreateMany(ctx context.Context, flightID int64, classes []domain.SeatClass) ([]domain.SeatClass, error) {
	args := m.Called(ctx, flightID, classes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeatClass), args.Error(1)
}

func (m *SeatClassRepository) Get(ctx context.Context, flightID int64, class domain.SeatClassType) (*domain.SeatClass, error) {
	args := m.Called(ctx, flightID, class)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatClass), args.Error(1)
}

func (m *SeatClassRepository) ListByFlight(ctx context.Context, flightID int64) ([]domain.SeatClass, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeatClass), args.Error(1)
}

func (m *SeatClassRepository) SetFare(ctx context.Context, flightID int64, class domain.SeatClassType, fareCents int64) (*domain.SeatClass, error) {
	args := m.Called(ctx, flightID, class, fareCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatClass), args.Error(1)
}

func (m *SeatClassRepository) Audit(ctx context.Context) ([]domain.InventoryDrift, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InventoryDrift), args.Error(1)
}

type BookingRepository struct {
	mock.Mock
}

func (m *BookingRepository) GetForUser(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *BookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.BookingDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingDetail), args.Error(1)
}

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var (
	_ repository.FlightRepository    = (*FlightRepository)(nil)
	_ repository.SeatClassRepository = (*SeatClassRepository)(nil)
	_ repository.BookingRepository   = (*BookingRepository)(nil)
	_ repository.UserRepository      = (*UserRepository)(nil)
)
