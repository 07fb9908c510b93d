package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/openbid/auctionhouse/internal/models"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "auction_sid"

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the identity carried by a session token.
type Claims struct {
	UserID   string
	Username string
	Role     string
}

// TokenManager mints and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// TTL is the session lifetime, also used for the cookie expiry.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Mint generates a session token for the given user.
func (m *TokenManager) Mint(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID.Hex(),
		"username": user.Username,
		"role":     user.Role,
		"jti":      uuid.NewString(),
		"exp":      time.Now().Add(m.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse validates a session token and extracts the actor identity.
func (m *TokenManager) Parse(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	userID, userOK := mapClaims["user_id"].(string)
	username, nameOK := mapClaims["username"].(string)
	role, roleOK := mapClaims["role"].(string)
	if !userOK || !nameOK || !roleOK {
		return Claims{}, ErrInvalidToken
	}

	return Claims{UserID: userID, Username: username, Role: role}, nil
}
