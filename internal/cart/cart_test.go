package cart

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTTL = 30 * time.Minute

func TestGetMissingCart(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewStoreWithClient(db, testTTL)
	ctx := context.Background()

	mock.ExpectGet("cart:1").RedisNil()

	_, err := store.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCart(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewStoreWithClient(db, testTTL)
	ctx := context.Background()

	stored := Cart{
		RentalStart: "2099-03-10",
		RentalEnd:   "2099-03-12",
		Selection: &Selection{
			VehicleID:  3,
			GovID:      "GOV123",
			License:    "DL456",
			StartPoint: "Airport",
			EndPoint:   "Downtown",
		},
	}
	data, err := json.Marshal(stored)
	require.NoError(t, err)

	mock.ExpectGet("cart:1").SetVal(string(data))

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "2099-03-10", got.RentalStart)
	assert.True(t, got.Complete())
	assert.Equal(t, 3, got.Selection.VehicleID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetDates(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewStoreWithClient(db, testTTL)
	ctx := context.Background()

	mock.Regexp().ExpectSet("cart:1", `.*`, testTTL).SetVal("OK")

	cart, err := store.SetDates(ctx, 1, "2099-03-10", "2099-03-12")
	require.NoError(t, err)
	assert.Equal(t, "2099-03-10", cart.RentalStart)
	assert.Equal(t, "2099-03-12", cart.RentalEnd)
	assert.Nil(t, cart.Selection, "fresh dates start a new cart without a selection")
	assert.False(t, cart.Complete())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetSelection(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewStoreWithClient(db, testTTL)
	ctx := context.Background()

	existing := Cart{RentalStart: "2099-03-10", RentalEnd: "2099-03-12"}
	data, err := json.Marshal(existing)
	require.NoError(t, err)

	mock.ExpectGet("cart:1").SetVal(string(data))
	mock.Regexp().ExpectSet("cart:1", `.*`, testTTL).SetVal("OK")

	cart, err := store.SetSelection(ctx, 1, Selection{
		VehicleID:  3,
		GovID:      "GOV123",
		License:    "DL456",
		StartPoint: "Airport",
		EndPoint:   "Downtown",
	})
	require.NoError(t, err)
	assert.True(t, cart.Complete())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetSelectionWithoutDates(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewStoreWithClient(db, testTTL)
	ctx := context.Background()

	mock.ExpectGet("cart:1").RedisNil()

	_, err := store.SetSelection(ctx, 1, Selection{VehicleID: 3})
	assert.ErrorIs(t, err, ErrNoDates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClear(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewStoreWithClient(db, testTTL)
	ctx := context.Background()

	mock.ExpectDel("cart:1").SetVal(1)

	err := store.Clear(ctx, 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteRequiresBothSteps(t *testing.T) {
	empty := Cart{}
	assert.False(t, empty.Complete())

	datesOnly := Cart{RentalStart: "2099-03-10", RentalEnd: "2099-03-12"}
	assert.False(t, datesOnly.Complete())

	full := datesOnly
	full.Selection = &Selection{VehicleID: 1}
	assert.True(t, full.Complete())
}
