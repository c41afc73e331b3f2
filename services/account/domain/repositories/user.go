package repositories

import (
	"context"

	"github.com/ghuser/eggledger/services/account/domain/models"
)

// UserRepository is the persistence interface for operator accounts.
// The domain layer owns this interface; infrastructure implements it.
type UserRepository interface {
	// Save persists a new user. Returns ErrUsernameTaken on a username collision.
	Save(ctx context.Context, user *models.User) error

	// GetByUsername retrieves a user by username. Returns ErrUserNotFound if absent.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
