package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	accountdomain "github.com/ghuser/eggledger/services/account/domain"
	"github.com/ghuser/eggledger/services/account/domain/models"
	"github.com/ghuser/eggledger/services/account/domain/repositories"
)

// AccountService handles operator registration and credential checks.
// It issues no tokens or sessions itself; the HTTP layer owns those.
type AccountService struct {
	repo repositories.UserRepository
}

// NewAccountService returns an AccountService wired with the given repository.
func NewAccountService(repo repositories.UserRepository) *AccountService {
	return &AccountService{repo: repo}
}

// Register creates a user with a bcrypt-hashed password.
func (s *AccountService) Register(ctx context.Context, username, password, role string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := models.NewUser(username, string(hash), role)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", accountdomain.ErrInvalidUser, err)
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies the username/password pair. An unknown username and a
// wrong password both return ErrInvalidCredentials so the API surface leaks
// nothing about which accounts exist.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, accountdomain.ErrUserNotFound) {
			return nil, accountdomain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, accountdomain.ErrInvalidCredentials
	}
	return user, nil
}
