package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/openbid/auctionhouse/internal/models"
)

func testUser() models.User {
	return models.User{
		ID:       primitive.NewObjectID(),
		Username: "alice",
		Role:     models.RoleUser,
	}
}

func TestMintAndParse(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	user := testUser()

	token, err := m.Mint(user)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	require.Equal(t, user.ID.Hex(), claims.UserID)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, models.RoleUser, claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-one", time.Hour).Mint(testUser())
	require.NoError(t, err)

	_, err = NewTokenManager("secret-two", time.Hour).Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := NewTokenManager("test-secret", -time.Minute).Mint(testUser())
	require.NoError(t, err)

	_, err = NewTokenManager("test-secret", time.Hour).Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("test-secret", time.Hour).Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{}

	hash, err := h.Hash("secret123")
	require.NoError(t, err)
	require.NotEqual(t, "secret123", hash)
	require.True(t, h.Compare("secret123", hash))
	require.False(t, h.Compare("wrong", hash))
}
