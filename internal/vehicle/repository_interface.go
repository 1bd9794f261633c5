package vehicle

import "context"

type Repository interface {
	Create(ctx context.Context, params CreateVehicleRequest) (*Vehicle, error)
	GetAll(ctx context.Context) ([]Vehicle, error)
	GetByType(ctx context.Context, vehicleType string) ([]Vehicle, error)
	GetByID(ctx context.Context, id int) (*Vehicle, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	UpdateRate(ctx context.Context, id int, ratePerDay int64) error
	Delete(ctx context.Context, id int) error
}
