package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 64
)

// User is an operator account. The ledger treats it as an opaque principal;
// roles are informational labels, not an authorization policy.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// NewUser constructs a User with generated ID and current timestamp.
// The password must already be hashed; this layer never sees plaintext.
func NewUser(username, passwordHash, role string) (*User, error) {
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return nil, fmt.Errorf("username must be %d-%d characters", minUsernameLength, maxUsernameLength)
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("password hash must not be empty")
	}
	return &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
