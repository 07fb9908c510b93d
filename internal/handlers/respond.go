package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/openbid/auctionhouse/internal/apperrors"
	"github.com/openbid/auctionhouse/internal/services"
)

// respondError maps the error taxonomy to HTTP statuses. Anything
// outside the taxonomy is an unexpected failure: logged, surfaced as a
// generic 500.
func respondError(c *fiber.Ctx, err error) error {
	var status int
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrAuctionClosed):
		status = fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		status = fiber.StatusConflict
	default:
		logrus.WithError(err).WithField("path", c.Path()).Error("unexpected error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Something went wrong"})
	}
	return c.Status(status).JSON(fiber.Map{"message": err.Error()})
}

// actorFromCtx rebuilds the actor identity stored by the auth middleware.
func actorFromCtx(c *fiber.Ctx) (services.Actor, error) {
	userID, _ := c.Locals("user_id").(string)
	username, _ := c.Locals("username").(string)
	role, _ := c.Locals("role").(string)

	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return services.Actor{}, errors.New("invalid actor identity")
	}
	return services.Actor{ID: id, Username: username, Role: role}, nil
}
