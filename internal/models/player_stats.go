package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoomStats is the per-room breakdown inside a player's statistics.
type RoomStats struct {
	Tickets int64 `bson:"tickets" json:"tickets"`
	Wins    int64 `bson:"wins" json:"wins"`
}

// PlayerStats holds derived counters for one participant. Counters only
// ever increase; the authoritative data lives in the ticket ledger and
// claim records, from which these can be rebuilt.
type PlayerStats struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	PlayerID     primitive.ObjectID   `bson:"playerId" json:"playerId"`
	TotalTickets int64                `bson:"totalTickets" json:"totalTickets"`
	TotalWins    int64                `bson:"totalWins" json:"totalWins"`
	TotalClaims  int64                `bson:"totalClaims" json:"totalClaims"`
	ByRoom       map[string]RoomStats `bson:"byRoom" json:"byRoom"` // keyed by room ID hex
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}
