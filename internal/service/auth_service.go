package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/security"
	"vocabdrill/internal/validation"
)

// UserStore persists learner accounts
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService handles registration and login
type AuthService struct {
	users  UserStore
	tokens *security.TokenIssuer
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, tokens *security.TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a new learner account
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, username, email, passwordHash)
	if err != nil {
		// lost a race with another signup for the same name
		if errors.Is(err, repository.ErrIntegrityViolation) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login checks credentials and issues a bearer token
func (s *AuthService) Login(ctx context.Context, username, password string) (string, time.Time, *models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return "", time.Time{}, nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expiresAt, user, nil
}

// Authenticate resolves a bearer token to a user id
func (s *AuthService) Authenticate(token string) (int64, error) {
	return s.tokens.Parse(token)
}
