package vehicle

import (
	"context"
	"database/sql"
	"errors"

	"github.com/krishang-r/vehicle-rental/internal/db"

	"github.com/jmoiron/sqlx"
)

var ErrVehicleNotFound = errors.New("vehicle not found")

const vehicleColumns = `id, code, type, make, model, year, color, seating_capacity, rate_per_day, availability, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, params CreateVehicleRequest) (*Vehicle, error) {
	query := `
		INSERT INTO vehicles (code, type, make, model, year, color, seating_capacity, rate_per_day, availability)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + vehicleColumns

	var vehicle Vehicle
	err := r.db.GetContext(ctx, &vehicle, query,
		params.Code, params.Type, params.Make, params.Model,
		params.Year, params.Color, params.SeatingCapacity, params.RatePerDay,
		AvailabilityAvailable,
	)
	if err != nil {
		return nil, err
	}

	return &vehicle, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles
		ORDER BY id ASC`

	var vehicles []Vehicle
	err := r.db.SelectContext(ctx, &vehicles, query)
	if err != nil {
		return nil, err
	}

	return vehicles, nil
}

func (r *repository) GetByType(ctx context.Context, vehicleType string) ([]Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles
		WHERE type = $1
		ORDER BY id ASC`

	var vehicles []Vehicle
	err := r.db.SelectContext(ctx, &vehicles, query, vehicleType)
	if err != nil {
		return nil, err
	}

	return vehicles, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles
		WHERE id = $1`

	var vehicle Vehicle
	err := r.db.GetContext(ctx, &vehicle, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}

	return &vehicle, nil
}

func (r *repository) CodeExists(ctx context.Context, code string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM vehicles WHERE code = $1)`, code)
}

func (r *repository) UpdateRate(ctx context.Context, id int, ratePerDay int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE vehicles SET rate_per_day = $1 WHERE id = $2`, ratePerDay, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrVehicleNotFound
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrVehicleNotFound
	}

	return nil
}
