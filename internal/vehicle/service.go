package vehicle

import (
	"context"
	"errors"
)

var ErrCodeExists = errors.New("vehicle code already exists")

type Service interface {
	AddVehicle(ctx context.Context, req CreateVehicleRequest) (*Vehicle, error)
	ListVehicles(ctx context.Context, vehicleType string) ([]Vehicle, error)
	GetVehicle(ctx context.Context, id int) (*Vehicle, error)
	UpdateRate(ctx context.Context, id int, ratePerDay int64) error
	RemoveVehicle(ctx context.Context, id int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) AddVehicle(ctx context.Context, req CreateVehicleRequest) (*Vehicle, error) {
	exists, err := s.repo.CodeExists(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrCodeExists
	}

	return s.repo.Create(ctx, req)
}

func (s *service) ListVehicles(ctx context.Context, vehicleType string) ([]Vehicle, error) {
	if vehicleType == "" || vehicleType == "all" {
		return s.repo.GetAll(ctx)
	}
	return s.repo.GetByType(ctx, vehicleType)
}

func (s *service) GetVehicle(ctx context.Context, id int) (*Vehicle, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateRate(ctx context.Context, id int, ratePerDay int64) error {
	return s.repo.UpdateRate(ctx, id, ratePerDay)
}

func (s *service) RemoveVehicle(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
