package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeatClass(t *testing.T) {
	class, err := ParseSeatClass(" economy ")
	require.NoError(t, err)
	assert.Equal(t, SeatClassEconomy, class)

	_, err = ParseSeatClass("PREMIUM")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParseFlightStatus(t *testing.T) {
	for _, s := range []string{"ON_TIME", "delayed", "Cancelled"} {
		_, err := ParseFlightStatus(s)
		assert.NoError(t, err, s)
	}

	_, err := ParseFlightStatus("BOARDING")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSeatClass_NextSeatNumber(t *testing.T) {
	sc := SeatClass{Class: SeatClassEconomy, AvailableSeats: 1}
	assert.Equal(t, "ECONOMY-1", sc.NextSeatNumber())
}

func TestDayOf(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	departure := time.Date(2026, 3, 2, 1, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), DayOf(departure))
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("book: %w", Unavailable("no seats left"))
	assert.Equal(t, ErrUnavailable, KindOf(err))
	assert.True(t, IsDomain(err))
	assert.Equal(t, "book: no seats left", err.Error())

	assert.Nil(t, KindOf(errors.New("connection reset")))
	assert.False(t, IsDomain(OperationFailed()))
}

func TestInventoryDrift_Delta(t *testing.T) {
	d := InventoryDrift{AvailableSeats: 3, ActiveBookings: 2, Capacity: 4}
	assert.Equal(t, 1, d.Delta())
}
