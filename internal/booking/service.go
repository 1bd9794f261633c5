package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/krishang-r/vehicle-rental/internal/email"
	"github.com/krishang-r/vehicle-rental/internal/metrics"
	"github.com/krishang-r/vehicle-rental/internal/user"
	"github.com/krishang-r/vehicle-rental/internal/vehicle"
)

type Service interface {
	UnavailableVehicleIDs(ctx context.Context, startStr, endStr string) (map[int]struct{}, error)
	CheckVehicle(ctx context.Context, vehicleID int, r DateRange) (bool, error)
	QuoteVehicle(ctx context.Context, vehicleID int, r DateRange) (int64, error)
	Reserve(ctx context.Context, userID, vehicleID int, r DateRange, details PersonalDetails) (*Booking, error)
	Cancel(ctx context.Context, bookingID, requestingUserID int, isAdmin bool) error
	GetUserBookings(ctx context.Context, userID int) ([]BookingWithVehicle, error)
	GetAllBookings(ctx context.Context) ([]BookingWithVehicle, error)
	GetBookingsByUserEmail(ctx context.Context, email string) ([]BookingWithVehicle, error)
	ReconcileVehicleFlag(ctx context.Context, vehicleID int) error
}

type service struct {
	repo         Repository
	vehicleRepo  vehicle.Repository
	userRepo     user.Repository
	emailService *email.Service
}

func NewService(
	repo Repository,
	vehicleRepo vehicle.Repository,
	userRepo user.Repository,
	emailService *email.Service,
) Service {
	return &service{
		repo:         repo,
		vehicleRepo:  vehicleRepo,
		userRepo:     userRepo,
		emailService: emailService,
	}
}

// UnavailableVehicleIDs is the advisory catalog-wide query: which vehicles
// already have an active booking overlapping the range. No locking; the
// binding check happens again inside Reserve.
func (s *service) UnavailableVehicleIDs(ctx context.Context, startStr, endStr string) (map[int]struct{}, error) {
	r, err := ParseRange(startStr, endStr)
	if err != nil {
		return nil, err
	}

	active, err := s.repo.GetActiveBookings(ctx)
	if err != nil {
		return nil, err
	}

	return UnavailableVehicleIDs(r, active), nil
}

func (s *service) CheckVehicle(ctx context.Context, vehicleID int, r DateRange) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}

	active, err := s.repo.GetActiveBookingsForVehicle(ctx, vehicleID)
	if err != nil {
		return false, err
	}

	return IsAvailable(vehicleID, r, active), nil
}

func (s *service) QuoteVehicle(ctx context.Context, vehicleID int, r DateRange) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}

	v, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, vehicle.ErrVehicleNotFound) {
			return 0, ErrVehicleNotFound
		}
		return 0, err
	}

	return Quote(v.RatePerDay, r)
}

// Reserve quotes the advance, commits the booking as Confirmed/Paid through
// the ledger, and queues a confirmation email. The overlap decision is made
// by the repository inside its transaction, not here.
func (s *service) Reserve(ctx context.Context, userID, vehicleID int, r DateRange, details PersonalDetails) (*Booking, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	v, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, vehicle.ErrVehicleNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	amount, err := Quote(v.RatePerDay, r)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.Reserve(ctx, ReserveParams{
		UserID:        userID,
		VehicleID:     vehicleID,
		Range:         r,
		Details:       details,
		Status:        StatusConfirmed,
		PaymentStatus: PaymentPaid,
		AmountPaid:    amount,
	})
	if err != nil {
		if errors.Is(err, ErrDateConflict) {
			metrics.RecordDateConflict()
		}
		return nil, err
	}

	metrics.RecordReservation("confirmed")

	if u, err := s.userRepo.FindByID(ctx, userID); err == nil {
		s.emailService.SendBookingConfirmation(
			ctx,
			u.Email,
			u.FullName,
			vehicleDesc(v),
			booking.StartDate,
			booking.EndDate,
			booking.AmountPaid,
		)
	}

	return booking, nil
}

// Cancel releases a booking. Only the owner or an admin may cancel, and a
// cancelled booking is terminal.
func (s *service) Cancel(ctx context.Context, bookingID, requestingUserID int, isAdmin bool) error {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if booking.UserID != requestingUserID && !isAdmin {
		return ErrForbidden
	}

	if err := s.repo.Cancel(ctx, bookingID); err != nil {
		return err
	}

	metrics.RecordCancellation()

	if u, err := s.userRepo.FindByID(ctx, booking.UserID); err == nil {
		desc := fmt.Sprintf("vehicle %d", booking.VehicleID)
		if v, err := s.vehicleRepo.GetByID(ctx, booking.VehicleID); err == nil {
			desc = vehicleDesc(v)
		}
		s.emailService.SendCancellation(ctx, u.Email, u.FullName, desc, booking.StartDate, booking.EndDate)
	}

	return nil
}

func (s *service) GetUserBookings(ctx context.Context, userID int) ([]BookingWithVehicle, error) {
	return s.repo.GetUserBookings(ctx, userID)
}

func (s *service) GetAllBookings(ctx context.Context) ([]BookingWithVehicle, error) {
	return s.repo.GetAllBookings(ctx)
}

func (s *service) GetBookingsByUserEmail(ctx context.Context, email string) ([]BookingWithVehicle, error) {
	return s.repo.GetBookingsByUserEmail(ctx, email)
}

// ReconcileVehicleFlag is the admin override for a drifted flag: instead of
// forcing "Available" blindly it re-derives the flag from the ledger.
func (s *service) ReconcileVehicleFlag(ctx context.Context, vehicleID int) error {
	return s.repo.RecomputeVehicleFlag(ctx, vehicleID)
}

func vehicleDesc(v *vehicle.Vehicle) string {
	return fmt.Sprintf("%s %s (%s)", v.Make, v.Model, v.Code)
}
