package services

import (
	"context"
	"time"

	"github.com/lottoroom/lottoroom-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateRoomParams carries the operator's input for a new room. RoomID is
// optional and client-generated: the commitment binds the room identity,
// so an operator who wants round 1 verifiable picks the id up front and
// computes the commitment over it before calling.
type CreateRoomParams struct {
	RoomID      primitive.ObjectID
	Name        string
	Description string
	EntryFee    int64
	DrawTime    time.Time
	Commitment  string
}

// SettlementService defines the interface for the settlement core: the
// room/round lifecycle, ticket purchases, commit-reveal of the winning
// number, prize claims, and the administrative controls around them.
type SettlementService interface {
	// CreateRoom creates a room owned by the operator, opening round 1
	CreateRoom(ctx context.Context, operatorID primitive.ObjectID, params CreateRoomParams) (*models.Room, error)

	// BuyTicket sells the player a ticket on the chosen number, pulling the
	// entry fee from their pre-authorized ledger account into the pool
	BuyTicket(ctx context.Context, playerID, roomID primitive.ObjectID, number int) (*models.Ticket, error)

	// RevealWinningNumber verifies the operator's commitment and flags the
	// round's winning tickets in one pass
	RevealWinningNumber(ctx context.Context, operatorID, roomID primitive.ObjectID, number int, secret string) (*models.Room, error)

	// ClaimPrize pays out one winning, unclaimed ticket owned by the caller
	ClaimPrize(ctx context.Context, playerID, roomID primitive.ObjectID, ticketIndex int64) (*models.ClaimRecord, error)

	// ResetRoom opens the next round with a fresh commitment and draw time,
	// carrying over whatever remains in the pool
	ResetRoom(ctx context.Context, operatorID, roomID primitive.ObjectID, drawTime time.Time, newCommitment string) (*models.Room, error)

	// ForceCloseRoom closes an overdue round after its grace period
	ForceCloseRoom(ctx context.Context, operatorID, roomID primitive.ObjectID) (*models.Room, error)

	// EmergencyPause rejects further mutating operations until resumed
	EmergencyPause(ctx context.Context, operatorID primitive.ObjectID) error

	// ResumeOperations lifts the pause
	ResumeOperations(ctx context.Context, operatorID primitive.ObjectID) error

	// WithdrawFees pays collected platform fees out to the fee recipient.
	// A zero amount means withdraw everything tracked.
	WithdrawFees(ctx context.Context, operatorID primitive.ObjectID, amount int64) (int64, error)

	// SetFeeRecipient changes the ledger account fees are withdrawn to
	SetFeeRecipient(ctx context.Context, operatorID primitive.ObjectID, recipient string) error

	// Read-only queries
	GetRoom(ctx context.Context, roomID primitive.ObjectID) (*models.Room, error)
	ListRooms(ctx context.Context) ([]*models.Room, error)
	GetRoundTickets(ctx context.Context, roomID primitive.ObjectID, round int64) ([]*models.Ticket, error)
	GetPlayerTickets(ctx context.Context, roomID, playerID primitive.ObjectID) ([]*models.Ticket, error)
	GetClaimStatus(ctx context.Context, roomID primitive.ObjectID, round, ticketIndex int64) (*models.ClaimRecord, bool, error)
	GetPlayerStats(ctx context.Context, playerID primitive.ObjectID) (*models.PlayerStats, error)
	GetFeeAccount(ctx context.Context) (*models.FeeAccount, error)
	IsPaused(ctx context.Context) (bool, error)
}
