package booking

import "errors"

var (
	ErrVehicleNotFound  = errors.New("vehicle not found")
	ErrDateConflict     = errors.New("vehicle is not available for the selected dates")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrForbidden        = errors.New("not authorized to cancel this booking")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
)
