package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openbid/auctionhouse/internal/apperrors"
	"github.com/openbid/auctionhouse/internal/models"
)

// MongoStore persists users and auctions in two MongoDB collections.
type MongoStore struct {
	users    *mongo.Collection
	auctions *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users:    db.Collection("users"),
		auctions: db.Collection("auctions"),
	}
}

func (s *MongoStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	// Email first: a taken email wins over a taken username in the
	// reported conflict.
	var existing models.User
	err := s.users.FindOne(ctx, bson.M{"email": user.Email}).Decode(&existing)
	if err == nil {
		return models.User{}, fmt.Errorf("email %w", apperrors.ErrConflict)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	err = s.users.FindOne(ctx, bson.M{"username": user.Username}).Decode(&existing)
	if err == nil {
		return models.User{}, fmt.Errorf("username %w", apperrors.ErrConflict)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *MongoStore) GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, fmt.Errorf("user %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// FindUserByEmailOrUsername matches q against either field. Emails are
// stored lowercased, so callers should lowercase q for email lookups.
func (s *MongoStore) FindUserByEmailOrUsername(ctx context.Context, q string) (models.User, error) {
	var user models.User
	filter := bson.M{"$or": []bson.M{{"email": q}, {"username": q}}}
	err := s.users.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, fmt.Errorf("user %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *MongoStore) CreateAuction(ctx context.Context, in NewAuction) (models.Auction, error) {
	if err := in.validate(); err != nil {
		return models.Auction{}, err
	}

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
	if _, err := s.auctions.InsertOne(ctx, auction); err != nil {
		return models.Auction{}, fmt.Errorf("create auction: %w", err)
	}
	return auction, nil
}

func (s *MongoStore) GetAuction(ctx context.Context, id primitive.ObjectID) (models.Auction, error) {
	var auction models.Auction
	err := s.auctions.FindOne(ctx, bson.M{"_id": id}).Decode(&auction)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Auction{}, fmt.Errorf("auction %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return models.Auction{}, fmt.Errorf("get auction: %w", err)
	}
	return auction, nil
}

func (s *MongoStore) ListAuctions(ctx context.Context, filter ListFilter) ([]models.Auction, error) {
	query := bson.M{}
	if filter.ActiveOnly {
		query["status"] = models.AuctionActive
		query["endDate"] = bson.M{"$gt": time.Now().UTC()}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.auctions.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	defer cursor.Close(ctx)

	var auctions []models.Auction
	if err := cursor.All(ctx, &auctions); err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	return auctions, nil
}

// AppendBid commits the bid as a single conditional update: it matches
// only while the auction is active, not past its end date, and its
// currentBid still equals prevBid. A concurrent bid that commits in
// between changes currentBid and makes this update miss, so losers of a
// race get a validation error instead of a stale append.
func (s *MongoStore) AppendBid(ctx context.Context, auctionID primitive.ObjectID, bid models.Bid, prevBid float64) (models.Auction, error) {
	if bid.Amount <= prevBid {
		return models.Auction{}, fmt.Errorf("bid of %.2f does not exceed current bid %.2f: %w",
			bid.Amount, prevBid, apperrors.ErrValidation)
	}

	filter := bson.M{
		"_id":        auctionID,
		"status":     models.AuctionActive,
		"endDate":    bson.M{"$gt": bid.Timestamp},
		"currentBid": prevBid,
	}
	update := bson.M{
		"$set":  bson.M{"currentBid": bid.Amount},
		"$push": bson.M{"bids": bid},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Auction
	err := s.auctions.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Auction{}, fmt.Errorf("append bid: %w", err)
	}

	// The conditional update missed; re-read once to tell the caller why.
	current, err := s.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, err
	}
	if current.Ended(time.Now().UTC()) {
		return models.Auction{}, fmt.Errorf("append bid: %w", apperrors.ErrAuctionClosed)
	}
	return models.Auction{}, fmt.Errorf("current bid is now %.2f, bid of %.2f is too low: %w",
		current.CurrentBid, bid.Amount, apperrors.ErrValidation)
}

// CloseAuction flips the auction to ended. Closing an already ended
// auction is a no-op that returns the current state.
func (s *MongoStore) CloseAuction(ctx context.Context, auctionID primitive.ObjectID) (models.Auction, error) {
	update := bson.M{"$set": bson.M{"status": models.AuctionEnded}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Auction
	err := s.auctions.FindOneAndUpdate(ctx, bson.M{"_id": auctionID}, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Auction{}, fmt.Errorf("auction %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return models.Auction{}, fmt.Errorf("close auction: %w", err)
	}
	return updated, nil
}

func (s *MongoStore) SetAuctionImage(ctx context.Context, auctionID primitive.ObjectID, objectName string) error {
	res, err := s.auctions.UpdateOne(ctx,
		bson.M{"_id": auctionID},
		bson.M{"$set": bson.M{"image_object": objectName}},
	)
	if err != nil {
		return fmt.Errorf("set auction image: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("auction %w", apperrors.ErrNotFound)
	}
	return nil
}
