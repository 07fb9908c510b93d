package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/openbid/auctionhouse/internal/apperrors"
	"github.com/openbid/auctionhouse/internal/models"
)

// MemoryStore is a concurrency-safe in-memory Store, used by tests and
// handy for local development without a MongoDB instance. The bid
// conditional update runs under the same lock as the read, so it gives
// the same commit-or-reject semantics as the Mongo implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[primitive.ObjectID]models.User
	auctions map[primitive.ObjectID]models.Auction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[primitive.ObjectID]models.User),
		auctions: make(map[primitive.ObjectID]models.Auction),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return models.User{}, fmt.Errorf("email %w", apperrors.ErrConflict)
		}
	}
	for _, u := range s.users {
		if u.Username == user.Username {
			return models.User{}, fmt.Errorf("username %w", apperrors.ErrConflict)
		}
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("user %w", apperrors.ErrNotFound)
	}
	return user, nil
}

func (s *MemoryStore) FindUserByEmailOrUsername(ctx context.Context, q string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == q || u.Username == q {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("user %w", apperrors.ErrNotFound)
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (s *MemoryStore) CreateAuction(ctx context.Context, in NewAuction) (models.Auction, error) {
	if err := in.validate(); err != nil {
		return models.Auction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	auction := models.Auction{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Description: in.Description,
		StartingBid: in.StartingBid,
		CurrentBid:  in.StartingBid,
		EndDate:     in.EndDate,
		Creator:     in.Creator,
		CreatorName: in.CreatorName,
		Status:      models.AuctionActive,
		Bids:        []models.Bid{},
		CreatedAt:   time.Now().UTC(),
	}
	s.auctions[auction.ID] = auction
	return auction, nil
}

func (s *MemoryStore) GetAuction(ctx context.Context, id primitive.ObjectID) (models.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getAuctionLocked(id)
}

func (s *MemoryStore) getAuctionLocked(id primitive.ObjectID) (models.Auction, error) {
	auction, ok := s.auctions[id]
	if !ok {
		return models.Auction{}, fmt.Errorf("auction %w", apperrors.ErrNotFound)
	}
	auction.Bids = append([]models.Bid(nil), auction.Bids...)
	return auction, nil
}

func (s *MemoryStore) ListAuctions(ctx context.Context, filter ListFilter) ([]models.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now().UTC()
	auctions := make([]models.Auction, 0, len(s.auctions))
	for id := range s.auctions {
		auction, _ := s.getAuctionLocked(id)
		if filter.ActiveOnly && auction.Ended(now) {
			continue
		}
		auctions = append(auctions, auction)
	}
	sort.Slice(auctions, func(i, j int) bool {
		return auctions[i].CreatedAt.After(auctions[j].CreatedAt)
	})
	return auctions, nil
}

func (s *MemoryStore) AppendBid(ctx context.Context, auctionID primitive.ObjectID, bid models.Bid, prevBid float64) (models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bid.Amount <= prevBid {
		return models.Auction{}, fmt.Errorf("bid of %.2f does not exceed current bid %.2f: %w",
			bid.Amount, prevBid, apperrors.ErrValidation)
	}

	auction, ok := s.auctions[auctionID]
	if !ok {
		return models.Auction{}, fmt.Errorf("auction %w", apperrors.ErrNotFound)
	}
	if auction.Ended(bid.Timestamp) {
		return models.Auction{}, fmt.Errorf("append bid: %w", apperrors.ErrAuctionClosed)
	}
	if auction.CurrentBid != prevBid {
		return models.Auction{}, fmt.Errorf("current bid is now %.2f, bid of %.2f is too low: %w",
			auction.CurrentBid, bid.Amount, apperrors.ErrValidation)
	}

	auction.Bids = append(append([]models.Bid(nil), auction.Bids...), bid)
	auction.CurrentBid = bid.Amount
	s.auctions[auctionID] = auction
	return auction, nil
}

func (s *MemoryStore) CloseAuction(ctx context.Context, auctionID primitive.ObjectID) (models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, ok := s.auctions[auctionID]
	if !ok {
		return models.Auction{}, fmt.Errorf("auction %w", apperrors.ErrNotFound)
	}
	auction.Status = models.AuctionEnded
	s.auctions[auctionID] = auction
	auction.Bids = append([]models.Bid(nil), auction.Bids...)
	return auction, nil
}

func (s *MemoryStore) SetAuctionImage(ctx context.Context, auctionID primitive.ObjectID, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, ok := s.auctions[auctionID]
	if !ok {
		return fmt.Errorf("auction %w", apperrors.ErrNotFound)
	}
	auction.ImageObject = objectName
	s.auctions[auctionID] = auction
	return nil
}
