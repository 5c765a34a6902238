package repositories

import (
	"context"
	"errors"

	"github.com/lottoroom/lottoroom-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoomRepository defines the interface for room data operations
type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Room, error)
	Update(ctx context.Context, room *models.Room) error
	FindAll(ctx context.Context) ([]*models.Room, error)
	FindByState(ctx context.Context, state models.RoomState) ([]*models.Room, error)
}

// TicketRepository defines the interface for ticket ledger operations.
// Tickets are append-only; the only mutation after purchase is the win
// flag set at reveal time.
type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	FindByRoomAndRound(ctx context.Context, roomID primitive.ObjectID, round int64) ([]*models.Ticket, error)
	FindByRoomRoundAndIndex(ctx context.Context, roomID primitive.ObjectID, round, index int64) (*models.Ticket, error)
	FindByOwner(ctx context.Context, roomID primitive.ObjectID, round int64, ownerID primitive.ObjectID) ([]*models.Ticket, error)
	CountByRoomAndRound(ctx context.Context, roomID primitive.ObjectID, round int64) (int64, error)
	CountWinners(ctx context.Context, roomID primitive.ObjectID, round int64) (int64, error)
	MarkWinners(ctx context.Context, roomID primitive.ObjectID, round int64, number int) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ClaimRepository defines the interface for claim record operations
type ClaimRepository interface {
	Create(ctx context.Context, claim *models.ClaimRecord) error
	Find(ctx context.Context, roomID primitive.ObjectID, round, ticketIndex int64) (*models.ClaimRecord, error)
	CountByRoomAndRound(ctx context.Context, roomID primitive.ObjectID, round int64) (int64, error)
	Delete(ctx context.Context, roomID primitive.ObjectID, round, ticketIndex int64) error
}

// PlayerStatsRepository defines the interface for derived player counters
type PlayerStatsRepository interface {
	FindByPlayer(ctx context.Context, playerID primitive.ObjectID) (*models.PlayerStats, error)
	IncrementTickets(ctx context.Context, playerID, roomID primitive.ObjectID, delta int64) error
	IncrementWins(ctx context.Context, playerID, roomID primitive.ObjectID, delta int64) error
	IncrementClaims(ctx context.Context, playerID primitive.ObjectID, delta int64) error
}

// FeeRepository defines the interface for the aggregate fee account
type FeeRepository interface {
	Get(ctx context.Context) (*models.FeeAccount, error)
	AddCollected(ctx context.Context, amount int64) error
	AddWithdrawn(ctx context.Context, amount int64) error
	SetRecipient(ctx context.Context, recipient string) error
}

// SystemStatusRepository defines the interface for the global pause flag
type SystemStatusRepository interface {
	Get(ctx context.Context) (*models.SystemStatus, error)
	SetPaused(ctx context.Context, paused bool) error
}

// UserRepository defines the interface for user account operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// ErrNotFound is returned by all implementations when a lookup matches
// nothing, regardless of the backing store.
var ErrNotFound = errors.New("not found")
