package booking

import "context"

type Repository interface {
	Reserve(ctx context.Context, params ReserveParams) (*Booking, error)
	Cancel(ctx context.Context, bookingID int) error
	GetBookingByID(ctx context.Context, id int) (*Booking, error)
	GetUserBookings(ctx context.Context, userID int) ([]BookingWithVehicle, error)
	GetAllBookings(ctx context.Context) ([]BookingWithVehicle, error)
	GetBookingsByUserEmail(ctx context.Context, email string) ([]BookingWithVehicle, error)
	GetActiveBookings(ctx context.Context) ([]Booking, error)
	GetActiveBookingsForVehicle(ctx context.Context, vehicleID int) ([]Booking, error)
	RecomputeVehicleFlag(ctx context.Context, vehicleID int) error
}
