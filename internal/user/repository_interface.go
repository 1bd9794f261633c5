package user

import "context"

type Repository interface {
	Create(ctx context.Context, fullName, email, username, passwordHash, role string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateRole(ctx context.Context, id int, role string) error
}
