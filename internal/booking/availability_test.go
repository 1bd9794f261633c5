package booking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func activeBooking(id, vehicleID int, start, end string) Booking {
	return Booking{
		ID:        id,
		VehicleID: vehicleID,
		StartDate: start,
		EndDate:   end,
		Status:    StatusConfirmed,
	}
}

func TestIsAvailableNoBookings(t *testing.T) {
	r := mustRange(t, "2026-03-10", "2026-03-12")
	require.True(t, IsAvailable(1, r, nil))
}

func TestIsAvailableConflict(t *testing.T) {
	r := mustRange(t, "2026-03-10", "2026-03-12")
	active := []Booking{activeBooking(1, 1, "2026-03-12", "2026-03-15")}

	require.False(t, IsAvailable(1, r, active))
}

func TestIsAvailableOtherVehicle(t *testing.T) {
	r := mustRange(t, "2026-03-10", "2026-03-12")
	active := []Booking{activeBooking(1, 2, "2026-03-10", "2026-03-12")}

	require.True(t, IsAvailable(1, r, active))
}

func TestIsAvailableIgnoresCancelled(t *testing.T) {
	r := mustRange(t, "2026-03-10", "2026-03-12")
	cancelled := activeBooking(1, 1, "2026-03-10", "2026-03-12")
	cancelled.Status = StatusCancelled

	require.True(t, IsAvailable(1, r, []Booking{cancelled}))
}

func TestIsAvailableSkipsMalformedDates(t *testing.T) {
	r := mustRange(t, "2026-03-10", "2026-03-12")
	active := []Booking{
		activeBooking(1, 1, "garbage", "2026-03-12"),
		activeBooking(2, 1, "2026-03-20", "2026-03-25"),
	}

	// The malformed row is skipped, the parseable one does not overlap.
	require.True(t, IsAvailable(1, r, active))
}

func TestUnavailableVehicleIDs(t *testing.T) {
	r := mustRange(t, "2026-03-10", "2026-03-12")
	active := []Booking{
		activeBooking(1, 1, "2026-03-01", "2026-03-05"), // before, free
		activeBooking(2, 2, "2026-03-12", "2026-03-20"), // boundary overlap
		activeBooking(3, 3, "2026-03-11", "2026-03-11"), // inside
		activeBooking(4, 4, "bad-date", "2026-03-11"),   // skipped
	}

	unavailable := UnavailableVehicleIDs(r, active)

	require.Len(t, unavailable, 2)
	require.Contains(t, unavailable, 2)
	require.Contains(t, unavailable, 3)
	require.NotContains(t, unavailable, 1)
	require.NotContains(t, unavailable, 4)
}

func TestUnavailableVehicleIDsIgnoresCancelled(t *testing.T) {
	r := mustRange(t, "2026-03-10", "2026-03-12")
	cancelled := activeBooking(1, 1, "2026-03-10", "2026-03-12")
	cancelled.Status = StatusCancelled

	unavailable := UnavailableVehicleIDs(r, []Booking{cancelled})
	require.Empty(t, unavailable)
}
