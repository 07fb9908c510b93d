package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/openbid/auctionhouse/internal/apperrors"
	"github.com/openbid/auctionhouse/internal/auth"
	"github.com/openbid/auctionhouse/internal/models"
	"github.com/openbid/auctionhouse/internal/store"
)

// AuthService handles registration, login and session issuance. The
// credential hasher is a separate capability so the store never sees a
// plaintext password.
type AuthService struct {
	store  store.Store
	hasher auth.CredentialHasher
	tokens *auth.TokenManager
}

func NewAuthService(st store.Store, hasher auth.CredentialHasher, tokens *auth.TokenManager) *AuthService {
	return &AuthService{store: st, hasher: hasher, tokens: tokens}
}

// Register creates a new user account and returns it together with a
// fresh session token. New accounts always get the "user" role.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (models.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if len(username) < 3 {
		return models.User{}, "", fmt.Errorf("username must be at least 3 characters long: %w", apperrors.ErrValidation)
	}
	if email == "" || !strings.Contains(email, "@") {
		return models.User{}, "", fmt.Errorf("a valid email is required: %w", apperrors.ErrValidation)
	}
	if len(password) < 6 {
		return models.User{}, "", fmt.Errorf("password must be at least 6 characters long: %w", apperrors.ErrValidation)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Email:     email,
		Password:  hash,
		Role:      models.RoleUser,
		Status:    models.UserActive,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return models.User{}, "", err
	}

	token, err := s.tokens.Mint(user)
	if err != nil {
		logrus.WithError(err).Error("failed to mint session token")
		return models.User{}, "", fmt.Errorf("mint session token: %w", err)
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID.Hex(), "username": user.Username}).Info("user registered")
	return user, token, nil
}

// Login authenticates by email (or username) and returns the user with
// a fresh session token. Lookup and password failures are collapsed
// into one invalid-credentials error.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.FindUserByEmailOrUsername(ctx, email)
	if err != nil {
		return models.User{}, "", apperrors.ErrInvalidCredentials
	}
	if !s.hasher.Compare(password, user.Password) {
		return models.User{}, "", apperrors.ErrInvalidCredentials
	}
	if user.Status == models.UserInactive {
		return models.User{}, "", fmt.Errorf("account is inactive: %w", apperrors.ErrForbidden)
	}

	token, err := s.tokens.Mint(user)
	if err != nil {
		logrus.WithError(err).Error("failed to mint session token")
		return models.User{}, "", fmt.Errorf("mint session token: %w", err)
	}
	return user, token, nil
}

// CurrentUser resolves a session's user id to the stored record, so
// callers see the current role and status rather than what the token
// was minted with.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (models.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.User{}, fmt.Errorf("user %w", apperrors.ErrNotFound)
	}
	return s.store.GetUser(ctx, id)
}
