package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ticket represents one entry in a room's round. Index is a dense
// zero-based position scoped to (room, round). Win is set exactly once, at
// reveal time, for every ticket whose number matches the winning number.
type Ticket struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RoomID      primitive.ObjectID `bson:"roomId" json:"roomId"`
	RoundNumber int64              `bson:"roundNumber" json:"roundNumber"`
	Index       int64              `bson:"index" json:"index"`
	OwnerID     primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Number      int                `bson:"number" json:"number"`
	Win         bool               `bson:"win" json:"win"`
	PurchasedAt time.Time          `bson:"purchasedAt" json:"purchasedAt"`
}

// IsWinner reports whether this ticket matches the winning number.
func (t *Ticket) IsWinner(winningNumber int) bool {
	return t.Number == winningNumber
}
