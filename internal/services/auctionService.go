package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/openbid/auctionhouse/internal/apperrors"
	"github.com/openbid/auctionhouse/internal/models"
	"github.com/openbid/auctionhouse/internal/store"
)

// Actor is the authenticated identity performing an operation, supplied
// by the transport layer per request.
type Actor struct {
	ID       primitive.ObjectID
	Username string
	Role     string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// CreateAuctionInput carries the caller-supplied fields for a new auction.
type CreateAuctionInput struct {
	Title       string
	Description string
	StartingBid float64
	EndDate     time.Time
}

// ImageStorage stores auction item images and hands out short-lived
// download links.
type ImageStorage interface {
	Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// AuctionService enforces the bidding workflow rules on top of the
// store: who may bid, when an auction is over, and which amounts are
// acceptable.
type AuctionService struct {
	store  store.Store
	images ImageStorage
}

func NewAuctionService(st store.Store, images ImageStorage) *AuctionService {
	return &AuctionService{store: st, images: images}
}

// Create opens a new auction. The starting bid must be positive and the
// end date strictly in the future; structural checks live in the store.
func (s *AuctionService) Create(ctx context.Context, actor Actor, in CreateAuctionInput) (models.Auction, error) {
	if in.StartingBid <= 0 || math.IsNaN(in.StartingBid) || math.IsInf(in.StartingBid, 0) {
		return models.Auction{}, fmt.Errorf("starting bid must be a positive amount: %w", apperrors.ErrValidation)
	}
	if !in.EndDate.After(time.Now()) {
		return models.Auction{}, fmt.Errorf("end date must be in the future: %w", apperrors.ErrValidation)
	}

	auction, err := s.store.CreateAuction(ctx, store.NewAuction{
		Title:       in.Title,
		Description: in.Description,
		StartingBid: in.StartingBid,
		EndDate:     in.EndDate,
		Creator:     actor.ID,
		CreatorName: actor.Username,
	})
	if err != nil {
		return models.Auction{}, err
	}

	logrus.WithFields(logrus.Fields{
		"auction_id": auction.ID.Hex(),
		"creator":    actor.Username,
	}).Info("auction created")
	return auction, nil
}

func (s *AuctionService) Get(ctx context.Context, id primitive.ObjectID) (models.Auction, error) {
	return s.store.GetAuction(ctx, id)
}

// ListActive returns auctions still open for bidding, newest first.
func (s *AuctionService) ListActive(ctx context.Context) ([]models.Auction, error) {
	return s.store.ListAuctions(ctx, store.ListFilter{ActiveOnly: true})
}

// ListAll returns every auction regardless of status, newest first.
func (s *AuctionService) ListAll(ctx context.Context) ([]models.Auction, error) {
	return s.store.ListAuctions(ctx, store.ListFilter{})
}

// PlaceBid validates and records a bid. The store commit is conditional
// on the currentBid observed here, so a concurrent bid that lands in
// between makes this one fail with a fresh validation error instead of
// corrupting the bid history.
func (s *AuctionService) PlaceBid(ctx context.Context, actor Actor, auctionID primitive.ObjectID, amount float64) (models.Auction, error) {
	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, err
	}

	now := time.Now().UTC()
	if auction.Ended(now) {
		return models.Auction{}, fmt.Errorf("bidding is over: %w", apperrors.ErrAuctionClosed)
	}
	if auction.Creator == actor.ID {
		return models.Auction{}, fmt.Errorf("you cannot bid on your own auction: %w", apperrors.ErrForbidden)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return models.Auction{}, fmt.Errorf("bid must be a positive amount: %w", apperrors.ErrValidation)
	}
	if amount <= auction.CurrentBid {
		return models.Auction{}, fmt.Errorf("bid of %.2f does not exceed current bid %.2f: %w",
			amount, auction.CurrentBid, apperrors.ErrValidation)
	}

	bid := models.Bid{
		Bidder:     actor.ID,
		BidderName: actor.Username,
		Amount:     amount,
		Timestamp:  now,
	}
	updated, err := s.store.AppendBid(ctx, auctionID, bid, auction.CurrentBid)
	if err != nil {
		return models.Auction{}, err
	}

	logrus.WithFields(logrus.Fields{
		"auction_id": auctionID.Hex(),
		"bidder":     actor.Username,
		"amount":     amount,
	}).Info("bid placed")
	return updated, nil
}

// Close ends an auction. Only the creator or an admin may close it.
// Closing an already ended auction returns the current state unchanged;
// closing one that expired by time persists the ended status.
func (s *AuctionService) Close(ctx context.Context, actor Actor, auctionID primitive.ObjectID) (models.Auction, error) {
	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, err
	}
	if auction.Creator != actor.ID && !actor.IsAdmin() {
		return models.Auction{}, fmt.Errorf("only the creator or an admin can close an auction: %w", apperrors.ErrForbidden)
	}
	if auction.Status == models.AuctionEnded {
		return auction, nil
	}
	return s.store.CloseAuction(ctx, auctionID)
}

// Winner returns the winning bid of an effectively ended auction: the
// last bid if any. There is no winner while bidding is still open.
func (s *AuctionService) Winner(auction models.Auction) (models.Bid, bool) {
	if !auction.Ended(time.Now().UTC()) || len(auction.Bids) == 0 {
		return models.Bid{}, false
	}
	return auction.Bids[len(auction.Bids)-1], true
}

// AttachImage uploads an item image for an auction. Only the creator
// (or an admin) may attach one.
func (s *AuctionService) AttachImage(ctx context.Context, actor Actor, auctionID primitive.ObjectID, filename string, r io.Reader, size int64, contentType string) (string, error) {
	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return "", err
	}
	if auction.Creator != actor.ID && !actor.IsAdmin() {
		return "", fmt.Errorf("only the creator can attach an image: %w", apperrors.ErrForbidden)
	}

	objectName := fmt.Sprintf("%s_%s", auctionID.Hex(), filename)
	if err := s.images.Upload(ctx, objectName, r, size, contentType); err != nil {
		logrus.WithError(err).WithField("auction_id", auctionID.Hex()).Error("image upload failed")
		return "", fmt.Errorf("upload image: %w", err)
	}
	if err := s.store.SetAuctionImage(ctx, auctionID, objectName); err != nil {
		return "", err
	}
	return objectName, nil
}

// ImageURL returns a presigned download link for the auction's image.
func (s *AuctionService) ImageURL(ctx context.Context, auctionID primitive.ObjectID) (string, error) {
	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return "", err
	}
	if auction.ImageObject == "" {
		return "", fmt.Errorf("auction image %w", apperrors.ErrNotFound)
	}
	url, err := s.images.PresignedURL(ctx, auction.ImageObject, 15*time.Minute)
	if err != nil {
		logrus.WithError(err).WithField("auction_id", auctionID.Hex()).Error("presign image failed")
		return "", fmt.Errorf("presign image: %w", err)
	}
	return url, nil
}
