package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/openbid/auctionhouse/internal/auth"
	"github.com/openbid/auctionhouse/internal/models"
	"github.com/openbid/auctionhouse/internal/services"
)

type AuthHandler struct {
	auth   *services.AuthService
	tokens *auth.TokenManager
}

func NewAuthHandler(authService *services.AuthService, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{auth: authService, tokens: tokens}
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(h.tokens.TTL()),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	user, token, err := h.auth.Register(c.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	h.setSessionCookie(c, token)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	user, token, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	h.setSessionCookie(c, token)
	return c.JSON(fiber.Map{"user": user})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// Check reports whether the request carries a valid session. It never
// fails; an anonymous visitor simply gets authenticated=false.
func (h *AuthHandler) Check(c *fiber.Ctx) error {
	tokenString := c.Cookies(auth.SessionCookie)
	if tokenString == "" {
		return c.JSON(fiber.Map{"authenticated": false})
	}
	claims, err := h.tokens.Parse(tokenString)
	if err != nil {
		return c.JSON(fiber.Map{"authenticated": false})
	}
	user, err := h.auth.CurrentUser(c.Context(), claims.UserID)
	if err != nil || user.Status != models.UserActive {
		return c.JSON(fiber.Map{"authenticated": false})
	}
	return c.JSON(fiber.Map{
		"authenticated": true,
		"user":          user,
	})
}
