package vehicle

import "time"

const (
	AvailabilityAvailable   = "Available"
	AvailabilityUnavailable = "Unavailable"
)

type Vehicle struct {
	ID              int       `db:"id" json:"id"`
	Code            string    `db:"code" json:"code"`
	Type            string    `db:"type" json:"type"`
	Make            string    `db:"make" json:"make"`
	Model           string    `db:"model" json:"model"`
	Year            int       `db:"year" json:"year"`
	Color           string    `db:"color" json:"color"`
	SeatingCapacity int       `db:"seating_capacity" json:"seating_capacity"`
	RatePerDay      int64     `db:"rate_per_day" json:"rate_per_day"`
	Availability    string    `db:"availability" json:"availability"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// VehicleWithAvailability augments a catalog row with the availability
// verdict for the caller's requested date range. The stored flag only says
// whether the vehicle is free today; the range verdict comes from the ledger.
type VehicleWithAvailability struct {
	Vehicle
	AvailableForRange bool `json:"available_for_range"`
}

type CreateVehicleRequest struct {
	Code            string `json:"code" binding:"required"`
	Type            string `json:"type" binding:"required"`
	Make            string `json:"make" binding:"required"`
	Model           string `json:"model" binding:"required"`
	Year            int    `json:"year" binding:"required,gte=1950"`
	Color           string `json:"color" binding:"required"`
	SeatingCapacity int    `json:"seating_capacity" binding:"required,min=1"`
	RatePerDay      int64  `json:"rate_per_day" binding:"required,min=1"`
}

type UpdateRateRequest struct {
	RatePerDay int64 `json:"rate_per_day" binding:"required,min=1"`
}
