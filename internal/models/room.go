package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoomState represents the lifecycle state of a room's current round
type RoomState string

const (
	RoomStateOpen          RoomState = "OPEN"
	RoomStatePendingReveal RoomState = "PENDING_REVEAL"
	RoomStateRevealed      RoomState = "REVEALED"
	RoomStateClosed        RoomState = "CLOSED"
)

// LotteryNumber bounds for the chosen number on a ticket
const (
	MinLotteryNumber = 0
	MaxLotteryNumber = 99
)

// Room represents a lottery room cycling through numbered rounds.
// Pool is the current balance in smallest units: entry fees paid into the
// round, minus the platform fee once booked, minus payouts already made.
type Room struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	OperatorID    primitive.ObjectID `bson:"operatorId" json:"operatorId"`
	EntryFee      int64              `bson:"entryFee" json:"entryFee"`
	DrawTime      time.Time          `bson:"drawTime" json:"drawTime"`
	Pool          int64              `bson:"pool" json:"pool"`
	Commitment    string             `bson:"commitment" json:"commitment"` // hex sha256 digest
	WinningNumber int                `bson:"winningNumber" json:"winningNumber"`
	Revealed      bool               `bson:"revealed" json:"revealed"`
	RevealTime    time.Time          `bson:"revealTime,omitempty" json:"revealTime,omitempty"`
	State         RoomState          `bson:"state" json:"state"`
	RoundNumber   int64              `bson:"roundNumber" json:"roundNumber"`
	FeesCollected bool               `bson:"feesCollected" json:"feesCollected"`
	PayoutPerWin  int64              `bson:"payoutPerWin" json:"payoutPerWin"` // fixed at first claim of the round
	TicketCount   int64              `bson:"ticketCount" json:"ticketCount"`   // tickets sold in the current round
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EffectiveState recomputes the state a room should be in at the given
// time. Stored state is advanced lazily, so an OPEN room whose draw time
// has passed must be treated as PENDING_REVEAL by every caller.
func (r *Room) EffectiveState(now time.Time) RoomState {
	if r.State == RoomStateOpen && !now.Before(r.DrawTime) {
		return RoomStatePendingReveal
	}
	return r.State
}
