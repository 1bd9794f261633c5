package user

import (
	"context"
	"errors"

	"github.com/krishang-r/vehicle-rental/internal/auth"
)

var (
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrSelfDemotion       = errors.New("cannot demote yourself")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
	UsernameAvailable(ctx context.Context, username string) (bool, error)
	SetRole(ctx context.Context, requestingUserID, targetUserID int, role string) error
}

type service struct {
	repo      Repository
	jwtSecret string
}

func NewService(repo Repository, jwtSecret string) Service {
	return &service{
		repo:      repo,
		jwtSecret: jwtSecret,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	if req.Password != req.ConfirmPassword {
		return nil, "", "", ErrPasswordMismatch
	}

	taken, err := s.repo.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, "", "", err
	}
	if taken {
		return nil, "", "", ErrUsernameExists
	}

	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	user, err := s.repo.Create(ctx, req.FullName, req.Email, req.Username, passwordHash, RoleMember)
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(
		user.ID,
		user.Username,
		user.Role,
		s.jwtSecret,
		s.jwtSecret,
	)
	if err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := auth.GenerateTokens(
		user.ID,
		user.Username,
		user.Role,
		s.jwtSecret,
		s.jwtSecret,
	)
	if err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, ErrUserNotFound
	}

	newAccessToken, err := auth.GenerateAccessToken(user.ID, user.Username, user.Role, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return newAccessToken, user, nil
}

func (s *service) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	if len(username) < 8 || len(username) > 12 {
		return false, nil
	}

	taken, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return false, err
	}

	return !taken, nil
}

// SetRole promotes or demotes a user. Admins cannot demote themselves so a
// deployment always keeps at least the acting admin.
func (s *service) SetRole(ctx context.Context, requestingUserID, targetUserID int, role string) error {
	if role != RoleAdmin && role != RoleMember {
		return errors.New("unknown role")
	}

	if role == RoleMember && requestingUserID == targetUserID {
		return ErrSelfDemotion
	}

	return s.repo.UpdateRole(ctx, targetUserID, role)
}
