package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleOperator = "operator"
	RolePlayer   = "player"
)

// User represents an authenticated account: an operator running rooms or a
// player buying tickets. LedgerAccount is the account identifier the
// boundary token ledger knows this user by.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email         string             `bson:"email" json:"email"`
	Password      string             `bson:"password" json:"-"` // bcrypt hash
	Role          string             `bson:"role" json:"role"`
	LedgerAccount string             `bson:"ledgerAccount" json:"ledgerAccount"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
