package booking

import "github.com/krishang-r/vehicle-rental/internal/logger"

// IsAvailable reports whether the vehicle is free for the requested range
// given the current set of active bookings. Bookings whose stored dates do
// not parse are skipped rather than failing the whole query; legacy rows
// must not block the catalog.
//
// Pure function of its inputs: safe to call speculatively for display. The
// authoritative re-check happens inside the reserve transaction.
func IsAvailable(vehicleID int, r DateRange, active []Booking) bool {
	for _, b := range active {
		if b.VehicleID != vehicleID || !b.Active() {
			continue
		}

		br, err := b.Range()
		if err != nil {
			logger.Errorf("Skipping booking %d with malformed dates (%q, %q): %v",
				b.ID, b.StartDate, b.EndDate, err)
			continue
		}

		if br.Overlaps(r) {
			return false
		}
	}

	return true
}

// UnavailableVehicleIDs returns the IDs of all vehicles with an active
// booking overlapping the requested range.
func UnavailableVehicleIDs(r DateRange, active []Booking) map[int]struct{} {
	unavailable := make(map[int]struct{})

	for _, b := range active {
		if !b.Active() {
			continue
		}

		br, err := b.Range()
		if err != nil {
			logger.Errorf("Skipping booking %d with malformed dates (%q, %q): %v",
				b.ID, b.StartDate, b.EndDate, err)
			continue
		}

		if br.Overlaps(r) {
			unavailable[b.VehicleID] = struct{}{}
		}
	}

	return unavailable
}
