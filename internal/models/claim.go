package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClaimRecord marks a payout issued for one (room, round, ticket). It is
// the single source of truth for "already paid": it is written before the
// boundary transfer is attempted and never reverts once the payout lands.
type ClaimRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RoomID      primitive.ObjectID `bson:"roomId" json:"roomId"`
	RoundNumber int64              `bson:"roundNumber" json:"roundNumber"`
	TicketIndex int64              `bson:"ticketIndex" json:"ticketIndex"`
	OwnerID     primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Amount      int64              `bson:"amount" json:"amount"`
	ClaimedAt   time.Time          `bson:"claimedAt" json:"claimedAt"`
}
