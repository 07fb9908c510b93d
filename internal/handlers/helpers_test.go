package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/openbid/auctionhouse/internal/auth"
	"github.com/openbid/auctionhouse/internal/middleware"
	"github.com/openbid/auctionhouse/internal/models"
	"github.com/openbid/auctionhouse/internal/services"
	"github.com/openbid/auctionhouse/internal/store"
)

type fakeImages struct{}

func (fakeImages) Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	_, err := io.Copy(io.Discard, r)
	return err
}

func (fakeImages) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	return "http://images.local/" + objectName, nil
}

// newTestApp wires the full route table against an in-memory store,
// mirroring cmd/main.go.
func newTestApp(t *testing.T) (*fiber.App, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	authService := services.NewAuthService(st, auth.BcryptHasher{}, tokens)
	auctionService := services.NewAuctionService(st, fakeImages{})

	authHandler := NewAuthHandler(authService, tokens)
	auctionHandler := NewAuctionHandler(auctionService)
	adminHandler := NewAdminHandler(auctionService, st)

	app := fiber.New()
	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Get("/check", authHandler.Check)

	auctions := api.Group("/auctions")
	auctions.Get("/", auctionHandler.List)
	auctions.Get("/:id", auctionHandler.Get)
	auctions.Get("/:id/image", auctionHandler.ImageURL)
	auctions.Post("/", middleware.RequireAuth(tokens), auctionHandler.Create)
	auctions.Post("/:id/bid", middleware.RequireAuth(tokens), auctionHandler.Bid)
	auctions.Post("/:id/close", middleware.RequireAuth(tokens), auctionHandler.Close)
	auctions.Post("/:id/image", middleware.RequireAuth(tokens), auctionHandler.UploadImage)

	admin := api.Group("/admin", middleware.RequireAuth(tokens), middleware.RequireAdmin)
	admin.Get("/auctions", adminHandler.ListAuctions)
	admin.Get("/users", adminHandler.ListUsers)

	return app, st
}

func doJSON(t *testing.T, app *fiber.App, method, path, cookie string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: cookie})
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func sessionCookie(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookie {
			return c.Value
		}
	}
	t.Fatal("session cookie not set")
	return ""
}

// registerUser registers through the API and returns the session cookie.
func registerUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": username,
		"email":    fmt.Sprintf("%s@example.com", username),
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	resp.Body.Close()
	return cookie
}

// seedAdmin inserts an admin account directly and logs it in.
func seedAdmin(t *testing.T, app *fiber.App, st *store.MemoryStore) string {
	t.Helper()

	hash, err := auth.BcryptHasher{}.Hash("secret123")
	require.NoError(t, err)
	_, err = st.CreateUser(context.Background(), models.User{
		Username: "admin",
		Email:    "admin@example.com",
		Password: hash,
		Role:     models.RoleAdmin,
		Status:   models.UserActive,
	})
	require.NoError(t, err)

	resp := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "admin@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	resp.Body.Close()
	return cookie
}

// createAuction creates an auction through the API and returns its id.
func createAuction(t *testing.T, app *fiber.App, cookie string) string {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/auctions", cookie, fiber.Map{
		"title":       "Pocket watch",
		"description": "Runs fast",
		"startingBid": 10,
		"endDate":     time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	auction := decodeBody[models.Auction](t, resp)
	require.False(t, auction.ID.IsZero())
	return auction.ID.Hex()
}
