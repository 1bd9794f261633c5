package booking

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

const bookingColumns = `id, user_id, vehicle_id, gov_id, license, start_point, end_point,
		start_date, end_date, status, payment_status, amount_paid, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Reserve commits a new booking after re-checking overlap inside the same
// transaction. The vehicle row is locked FOR UPDATE first, so two concurrent
// reservations for the same vehicle serialize here: the loser re-reads the
// active set including the winner's insert and gets ErrDateConflict.
func (r *repository) Reserve(ctx context.Context, params ReserveParams) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var vehicleID int
	err = tx.GetContext(ctx, &vehicleID, `SELECT id FROM vehicles WHERE id = $1 FOR UPDATE`, params.VehicleID)
	if err == sql.ErrNoRows {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}

	active, err := activeForVehicleTx(ctx, tx, params.VehicleID)
	if err != nil {
		return nil, err
	}

	if !IsAvailable(params.VehicleID, params.Range, active) {
		return nil, ErrDateConflict
	}

	query := `
		INSERT INTO bookings (user_id, vehicle_id, gov_id, license, start_point, end_point,
			start_date, end_date, status, payment_status, amount_paid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + bookingColumns

	var booking Booking
	err = tx.GetContext(ctx, &booking, query,
		params.UserID, params.VehicleID,
		params.Details.GovID, params.Details.License,
		params.Details.StartPoint, params.Details.EndPoint,
		params.Range.StartString(), params.Range.EndString(),
		params.Status, params.PaymentStatus, params.AmountPaid,
	)
	if err != nil {
		return nil, err
	}

	if err := recomputeFlagTx(ctx, tx, params.VehicleID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &booking, nil
}

// Cancel marks the booking cancelled and reconciles the vehicle flag from
// the remaining active bookings, all in one transaction. Cancelled is
// terminal: a second cancel gets ErrAlreadyCancelled.
func (r *repository) Cancel(ctx context.Context, bookingID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var booking Booking
	err = tx.GetContext(ctx, &booking,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, bookingID)
	if err == sql.ErrNoRows {
		return ErrBookingNotFound
	}
	if err != nil {
		return err
	}

	// Same lock order as Reserve: vehicle row first.
	var vehicleID int
	err = tx.GetContext(ctx, &vehicleID, `SELECT id FROM vehicles WHERE id = $1 FOR UPDATE`, booking.VehicleID)
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = $1 WHERE id = $2 AND status <> $1`,
		StatusCancelled, bookingID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrAlreadyCancelled
	}

	if err := recomputeFlagTx(ctx, tx, booking.VehicleID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) GetBookingByID(ctx context.Context, id int) (*Booking, error) {
	var booking Booking
	err := r.db.GetContext(ctx, &booking,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

const bookingWithVehicleQuery = `
	SELECT
		b.id,
		b.user_id,
		b.vehicle_id,
		b.gov_id,
		b.license,
		b.start_point,
		b.end_point,
		b.start_date,
		b.end_date,
		b.status,
		b.payment_status,
		b.amount_paid,
		b.created_at,
		v.code AS vehicle_code,
		v.make AS vehicle_make,
		v.model AS vehicle_model,
		u.full_name AS user_name,
		u.email AS user_email
	FROM bookings b
	JOIN vehicles v ON b.vehicle_id = v.id
	JOIN users u ON b.user_id = u.id`

func (r *repository) GetUserBookings(ctx context.Context, userID int) ([]BookingWithVehicle, error) {
	query := bookingWithVehicleQuery + `
	WHERE b.user_id = $1
	ORDER BY b.created_at DESC`

	var bookings []BookingWithVehicle
	err := r.db.SelectContext(ctx, &bookings, query, userID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) GetAllBookings(ctx context.Context) ([]BookingWithVehicle, error) {
	query := bookingWithVehicleQuery + `
	ORDER BY b.created_at DESC`

	var bookings []BookingWithVehicle
	err := r.db.SelectContext(ctx, &bookings, query)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) GetBookingsByUserEmail(ctx context.Context, email string) ([]BookingWithVehicle, error) {
	query := bookingWithVehicleQuery + `
	WHERE u.email = $1
	ORDER BY b.created_at DESC`

	var bookings []BookingWithVehicle
	err := r.db.SelectContext(ctx, &bookings, query, email)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) GetActiveBookings(ctx context.Context) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status <> $1`

	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, query, StatusCancelled)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) GetActiveBookingsForVehicle(ctx context.Context, vehicleID int) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE vehicle_id = $1 AND status <> $2`

	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, query, vehicleID, StatusCancelled)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

// RecomputeVehicleFlag reconciles the denormalized availability flag with
// the ledger outside a reserve/cancel flow (admin force-available).
func (r *repository) RecomputeVehicleFlag(ctx context.Context, vehicleID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id int
	err = tx.GetContext(ctx, &id, `SELECT id FROM vehicles WHERE id = $1 FOR UPDATE`, vehicleID)
	if err == sql.ErrNoRows {
		return ErrVehicleNotFound
	}
	if err != nil {
		return err
	}

	if err := recomputeFlagTx(ctx, tx, vehicleID); err != nil {
		return err
	}

	return tx.Commit()
}

func activeForVehicleTx(ctx context.Context, tx *sqlx.Tx, vehicleID int) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE vehicle_id = $1 AND status <> $2`

	var bookings []Booking
	err := tx.SelectContext(ctx, &bookings, query, vehicleID, StatusCancelled)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

// recomputeFlagTx derives the vehicle availability flag from the ledger:
// Unavailable iff some active booking covers today. The flag is display
// state only; conflict decisions never read it.
func recomputeFlagTx(ctx context.Context, tx *sqlx.Tx, vehicleID int) error {
	active, err := activeForVehicleTx(ctx, tx, vehicleID)
	if err != nil {
		return err
	}

	flag := "Available"
	today := time.Now().UTC()
	for _, b := range active {
		br, err := b.Range()
		if err != nil {
			continue
		}
		if br.Contains(today) {
			flag = "Unavailable"
			break
		}
	}

	_, err = tx.ExecContext(ctx, `UPDATE vehicles SET availability = $1 WHERE id = $2`, flag, vehicleID)
	return err
}
