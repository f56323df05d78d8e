package service

import (
	"context"
	"errors"

	"code-review-assistant/backend/internal/models"
	"code-review-assistant/backend/internal/repository"
	"code-review-assistant/backend/pkg/jwt"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)

// UserService handles signup, login and profile lookups
type UserService struct {
	users  repository.UserRepository
	tokens *jwt.Service
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository, tokens *jwt.Service) *UserService {
	return &UserService{users: users, tokens: tokens}
}

// Signup creates a new user and returns a token for it
func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, string, error) {
	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, "", ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	user := models.User{
		Username: req.Username,
		Password: req.Password,
		Role:     jwt.Role(req.Role),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

// Login authenticates a user and returns a JWT token
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !models.CheckPasswordHash(req.Password, user.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
