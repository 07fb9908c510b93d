package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openbid/auctionhouse/internal/apperrors"
	"github.com/openbid/auctionhouse/internal/auth"
	"github.com/openbid/auctionhouse/internal/models"
	"github.com/openbid/auctionhouse/internal/store"
)

func newAuthService() *AuthService {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewAuthService(store.NewMemoryStore(), auth.BcryptHasher{}, tokens)
}

func TestRegister(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "alice", "Alice@Example.COM", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, "alice@example.com", user.Email)
	require.Equal(t, models.RoleUser, user.Role)
	require.Equal(t, models.UserActive, user.Status)
	require.NotEqual(t, "secret123", user.Password)

	claims, err := svc.tokens.Parse(token)
	require.NoError(t, err)
	require.Equal(t, user.ID.Hex(), claims.UserID)
	require.Equal(t, models.RoleUser, claims.Role)
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short_username", "ab", "a@example.com", "secret123"},
		{"missing_email", "alice", "", "secret123"},
		{"malformed_email", "alice", "not-an-email", "secret123"},
		{"short_password", "alice", "a@example.com", "12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tt.username, tt.email, tt.password)
			require.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestRegisterConflicts(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	// Reused email with a fresh username: conflict names the email.
	_, _, err = svc.Register(ctx, "alice2", "alice@example.com", "secret123")
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.Contains(t, err.Error(), "email")

	// Email comparison is case-insensitive.
	_, _, err = svc.Register(ctx, "alice3", "ALICE@example.com", "secret123")
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.Contains(t, err.Error(), "email")

	_, _, err = svc.Register(ctx, "alice", "fresh@example.com", "secret123")
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.Contains(t, err.Error(), "username")
}

func TestLogin(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, "bob", "bob@example.com", "secret123")
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, "bob@example.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, registered.ID, user.ID)

	_, _, err = svc.Login(ctx, "bob@example.com", "wrong-password")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "secret123")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	st := store.NewMemoryStore()
	svc := NewAuthService(st, auth.BcryptHasher{}, tokens)
	ctx := context.Background()

	hash, err := auth.BcryptHasher{}.Hash("secret123")
	require.NoError(t, err)
	_, err = st.CreateUser(ctx, models.User{
		Username: "carol",
		Email:    "carol@example.com",
		Password: hash,
		Role:     models.RoleUser,
		Status:   models.UserInactive,
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "carol@example.com", "secret123")
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}
