package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openbid/auctionhouse/internal/services"
	"github.com/openbid/auctionhouse/internal/store"
)

type AdminHandler struct {
	auctions *services.AuctionService
	store    store.Store
}

func NewAdminHandler(auctions *services.AuctionService, st store.Store) *AdminHandler {
	return &AdminHandler{auctions: auctions, store: st}
}

// ListAuctions returns every auction, ended ones included.
func (h *AdminHandler) ListAuctions(c *fiber.Ctx) error {
	auctions, err := h.auctions.ListAll(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(auctions)
}

// ListUsers returns all registered users. Password hashes are never
// serialized.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.store.ListUsers(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}
