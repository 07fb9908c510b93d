package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AuctionActive = "active"
	AuctionEnded  = "ended"
)

// Bid is an immutable offer on an auction. Bids are appended in
// chronological order; the last element is always the highest.
type Bid struct {
	Bidder     primitive.ObjectID `bson:"bidder" json:"bidder"`
	BidderName string             `bson:"bidder_name,omitempty" json:"bidderName,omitempty"`
	Amount     float64            `bson:"amount" json:"amount"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}

type Auction struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	StartingBid float64            `bson:"startingBid" json:"startingBid"`
	CurrentBid  float64            `bson:"currentBid" json:"currentBid"`
	EndDate     time.Time          `bson:"endDate" json:"endDate"`
	Creator     primitive.ObjectID `bson:"creator" json:"creator"`
	CreatorName string             `bson:"creator_name,omitempty" json:"creatorName,omitempty"`
	Status      string             `bson:"status" json:"status"`
	Bids        []Bid              `bson:"bids" json:"bids"`
	ImageObject string             `bson:"image_object,omitempty" json:"imageObject,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// Ended reports whether the auction is effectively over: either
// explicitly closed or past its end date, whichever comes first.
func (a Auction) Ended(now time.Time) bool {
	return a.Status == AuctionEnded || !now.Before(a.EndDate)
}
