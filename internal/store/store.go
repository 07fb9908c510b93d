package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/openbid/auctionhouse/internal/apperrors"
	"github.com/openbid/auctionhouse/internal/models"
)

// ListFilter narrows the auctions returned by ListAuctions.
type ListFilter struct {
	// ActiveOnly keeps only auctions still open for bidding: status
	// "active" and an end date in the future. Auctions past their end
	// date are excluded even when nobody has closed them yet.
	ActiveOnly bool
}

// NewAuction carries the fields for auction creation.
type NewAuction struct {
	Title       string
	Description string
	StartingBid float64
	EndDate     time.Time
	Creator     primitive.ObjectID
	CreatorName string
}

func (in NewAuction) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("title is required: %w", apperrors.ErrValidation)
	}
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("description is required: %w", apperrors.ErrValidation)
	}
	if in.StartingBid < 0 {
		return fmt.Errorf("starting bid must not be negative: %w", apperrors.ErrValidation)
	}
	if in.EndDate.IsZero() {
		return fmt.Errorf("end date is required: %w", apperrors.ErrValidation)
	}
	if in.Creator.IsZero() {
		return fmt.Errorf("creator is required: %w", apperrors.ErrValidation)
	}
	return nil
}

// Store is the persistence boundary for users and auctions.
//
// AppendBid and CloseAuction are the only mutations that race: AppendBid
// commits a bid only if the auction's currentBid still equals prevBid
// (the value the caller based its decision on), executed as a single
// conditional update, and CloseAuction is idempotent under concurrent
// double-close.
type Store interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindUserByEmailOrUsername(ctx context.Context, q string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateAuction(ctx context.Context, in NewAuction) (models.Auction, error)
	GetAuction(ctx context.Context, id primitive.ObjectID) (models.Auction, error)
	ListAuctions(ctx context.Context, filter ListFilter) ([]models.Auction, error)
	AppendBid(ctx context.Context, auctionID primitive.ObjectID, bid models.Bid, prevBid float64) (models.Auction, error)
	CloseAuction(ctx context.Context, auctionID primitive.ObjectID) (models.Auction, error)
	SetAuctionImage(ctx context.Context, auctionID primitive.ObjectID, objectName string) error
}
