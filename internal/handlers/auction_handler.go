package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/openbid/auctionhouse/internal/services"
)

type AuctionHandler struct {
	auctions *services.AuctionService
}

func NewAuctionHandler(auctions *services.AuctionService) *AuctionHandler {
	return &AuctionHandler{auctions: auctions}
}

// auctionID parses the :id route param. A malformed id is treated the
// same as an unknown one.
func auctionID(c *fiber.Ctx) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	return id, err == nil
}

// parseEndDate accepts RFC 3339 as well as the shorter datetime-local
// format browsers submit.
func parseEndDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04", value, time.Local)
}

func (h *AuctionHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication required"})
	}

	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		StartingBid float64 `json:"startingBid"`
		EndDate     string  `json:"endDate"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	endDate, err := parseEndDate(req.EndDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid end date"})
	}

	auction, err := h.auctions.Create(c.Context(), actor, services.CreateAuctionInput{
		Title:       req.Title,
		Description: req.Description,
		StartingBid: req.StartingBid,
		EndDate:     endDate,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(auction)
}

func (h *AuctionHandler) List(c *fiber.Ctx) error {
	auctions, err := h.auctions.ListActive(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(auctions)
}

func (h *AuctionHandler) Get(c *fiber.Ctx) error {
	id, ok := auctionID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Auction not found"})
	}
	auction, err := h.auctions.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(auction)
}

func (h *AuctionHandler) Bid(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication required"})
	}
	id, ok := auctionID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Auction not found"})
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	auction, err := h.auctions.PlaceBid(c.Context(), actor, id, req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(auction)
}

func (h *AuctionHandler) Close(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication required"})
	}
	id, ok := auctionID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Auction not found"})
	}

	auction, err := h.auctions.Close(c.Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(auction)
}

func (h *AuctionHandler) UploadImage(c *fiber.Ctx) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication required"})
	}
	id, ok := auctionID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Auction not found"})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Failed to retrieve image"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Failed to open image"})
	}
	defer file.Close()

	objectName, err := h.auctions.AttachImage(c.Context(), actor, id,
		fileHeader.Filename, file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Image uploaded successfully", "object": objectName})
}

func (h *AuctionHandler) ImageURL(c *fiber.Ctx) error {
	id, ok := auctionID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Auction not found"})
	}
	url, err := h.auctions.ImageURL(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"url": url, "expires_in": "15 minutes"})
}
