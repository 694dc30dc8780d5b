package bootstrap

import (
	"context"
	"testing"

	"github.com/Domenick1991/flightinventory/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_Memory(t *testing.T) {
	store, closeFn, err := OpenStore(context.Background(), config.DatabaseConfig{Driver: config.DriverMemory}, quietLogger())
	require.NoError(t, err)
	defer closeFn()

	assert.NotNil(t, store.Users)
	assert.NotNil(t, store.Flights)
	assert.NotNil(t, store.SeatClasses)
	assert.NotNil(t, store.Bookings)
	assert.NotNil(t, store.Tx)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, _, err := OpenStore(context.Background(), config.DatabaseConfig{Driver: "sqlite"}, quietLogger())
	assert.EqualError(t, err, `unknown database driver "sqlite"`)
}
