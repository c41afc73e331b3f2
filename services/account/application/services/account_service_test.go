package services

import (
	"context"
	"errors"
	"testing"

	accountdomain "github.com/ghuser/eggledger/services/account/domain"
	"github.com/ghuser/eggledger/services/account/domain/models"
)

// fakeUserRepository is an in-memory UserRepository keyed by username.
type fakeUserRepository struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*models.User)}
}

func (f *fakeUserRepository) Save(_ context.Context, user *models.User) error {
	if _, ok := f.users[user.Username]; ok {
		return accountdomain.ErrUsernameTaken
	}
	f.users[user.Username] = user
	return nil
}

func (f *fakeUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, accountdomain.ErrUserNotFound
	}
	return u, nil
}

func TestRegister_HashesPassword(t *testing.T) {
	svc := NewAccountService(newFakeUserRepo())

	user, err := svc.Register(context.Background(), "mary", "correct horse battery", "operator")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.PasswordHash == "correct horse battery" {
		t.Fatal("password must not be stored in plaintext")
	}
	if user.Username != "mary" || user.Role != "operator" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestRegister_InvalidUsername(t *testing.T) {
	svc := NewAccountService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), "ab", "correct horse battery", "operator")
	if !errors.Is(err, accountdomain.ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser for short username, got %v", err)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := NewAccountService(newFakeUserRepo())

	if _, err := svc.Register(context.Background(), "mary", "correct horse battery", "operator"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), "mary", "another password", "operator")
	if !errors.Is(err, accountdomain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := NewAccountService(newFakeUserRepo())

	registered, err := svc.Register(context.Background(), "mary", "correct horse battery", "operator")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), "mary", "correct horse battery")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("expected user %v, got %v", registered.ID, user.ID)
	}
}

func TestAuthenticate_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	svc := NewAccountService(newFakeUserRepo())

	if _, err := svc.Register(context.Background(), "mary", "correct horse battery", "operator"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, errWrong := svc.Authenticate(context.Background(), "mary", "wrong password")
	_, errUnknown := svc.Authenticate(context.Background(), "nobody", "whatever")

	if !errors.Is(errWrong, accountdomain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", errWrong)
	}
	if !errors.Is(errUnknown, accountdomain.ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", errUnknown)
	}
	// Both failure modes surface the identical sentinel.
	if errWrong.Error() != errUnknown.Error() {
		t.Errorf("failure modes must be indistinguishable: %q vs %q", errWrong, errUnknown)
	}
}
