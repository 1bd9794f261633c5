package booking

import "time"

const (
	StatusPending   = "Pending"
	StatusConfirmed = "Confirmed"
	StatusCancelled = "Cancelled"

	PaymentPending = "Pending"
	PaymentPaid    = "Paid"
)

type Booking struct {
	ID            int       `db:"id" json:"id"`
	UserID        int       `db:"user_id" json:"user_id"`
	VehicleID     int       `db:"vehicle_id" json:"vehicle_id"`
	GovID         string    `db:"gov_id" json:"gov_id"`
	License       string    `db:"license" json:"license"`
	StartPoint    string    `db:"start_point" json:"start_point"`
	EndPoint      string    `db:"end_point" json:"end_point"`
	StartDate     string    `db:"start_date" json:"start_date"`
	EndDate       string    `db:"end_date" json:"end_date"`
	Status        string    `db:"status" json:"status"`
	PaymentStatus string    `db:"payment_status" json:"payment_status"`
	AmountPaid    int64     `db:"amount_paid" json:"amount_paid"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Range parses the stored date strings. Legacy rows may hold malformed
// dates; callers scanning many bookings skip rows where this fails.
func (b Booking) Range() (DateRange, error) {
	return ParseRange(b.StartDate, b.EndDate)
}

func (b Booking) Active() bool {
	return b.Status != StatusCancelled
}

type BookingWithVehicle struct {
	Booking
	VehicleCode  string `db:"vehicle_code" json:"vehicle_code"`
	VehicleMake  string `db:"vehicle_make" json:"vehicle_make"`
	VehicleModel string `db:"vehicle_model" json:"vehicle_model"`
	UserName     string `db:"user_name" json:"user_name"`
	UserEmail    string `db:"user_email" json:"user_email"`
}

// PersonalDetails is collected in the second cart step and stored verbatim
// on the booking row.
type PersonalDetails struct {
	GovID      string `json:"gov_id" binding:"required"`
	License    string `json:"license" binding:"required"`
	StartPoint string `json:"start_point" binding:"required"`
	EndPoint   string `json:"end_point" binding:"required"`
}

type ReserveParams struct {
	UserID        int
	VehicleID     int
	Range         DateRange
	Details       PersonalDetails
	Status        string
	PaymentStatus string
	AmountPaid    int64
}
