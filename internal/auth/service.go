package auth

import (
	"context"
	"errors"
	"fmt"

	"prepwise/interview/internal/models"
	"prepwise/interview/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// UserStore is the subset of the user repository the auth service needs
type UserStore interface {
	CreateUser(user *models.User) error
	GetUserByID(userID string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
}

type Service struct {
	users  UserStore
	tokens *TokenManager
	logger *zap.Logger
}

func NewService(users UserStore, tokens *TokenManager, logger *zap.Logger) *Service {
	return &Service{users: users, tokens: tokens, logger: logger}
}

// Register creates an account and returns a token for it. A taken email
// yields repositories.ErrEmailTaken.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Name: req.Name, Email: req.Email, PasswordHash: string(hash)}
	if err := s.users.CreateUser(user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("userId", user.PublicID()))
	return s.authResponse(user)
}

func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetUserByEmail(req.Email)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.authResponse(user)
}

// Me returns the profile of an authenticated user
func (s *Service) Me(ctx context.Context, userID string) (*models.UserProfile, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

func (s *Service) authResponse(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Issue(user.PublicID())
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: user.Profile(), Token: token}, nil
}
