package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/lottoroom/lottoroom-backend/internal/models"
	"github.com/lottoroom/lottoroom-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PlayerStatsRepository implements the repositories.PlayerStatsRepository interface
type PlayerStatsRepository struct {
	collection *mongo.Collection
}

// NewPlayerStatsRepository creates a new PlayerStatsRepository
func NewPlayerStatsRepository(db *mongo.Database) repositories.PlayerStatsRepository {
	return &PlayerStatsRepository{
		collection: db.Collection("player_stats"),
	}
}

// FindByPlayer finds a player's counters, returning zeroed counters for an
// unknown player rather than an error
func (r *PlayerStatsRepository) FindByPlayer(ctx context.Context, playerID primitive.ObjectID) (*models.PlayerStats, error) {
	var stats models.PlayerStats
	err := r.collection.FindOne(ctx, bson.M{"playerId": playerID}).Decode(&stats)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &models.PlayerStats{PlayerID: playerID, ByRoom: map[string]models.RoomStats{}}, nil
		}
		return nil, err
	}
	if stats.ByRoom == nil {
		stats.ByRoom = map[string]models.RoomStats{}
	}
	return &stats, nil
}

// IncrementTickets adds to a player's total and per-room ticket counters
func (r *PlayerStatsRepository) IncrementTickets(ctx context.Context, playerID, roomID primitive.ObjectID, delta int64) error {
	return r.increment(ctx, playerID, bson.M{
		"totalTickets":                    delta,
		"byRoom." + roomID.Hex() + ".tickets": delta,
	})
}

// IncrementWins adds to a player's total and per-room win counters
func (r *PlayerStatsRepository) IncrementWins(ctx context.Context, playerID, roomID primitive.ObjectID, delta int64) error {
	return r.increment(ctx, playerID, bson.M{
		"totalWins":                    delta,
		"byRoom." + roomID.Hex() + ".wins": delta,
	})
}

// IncrementClaims adds to a player's claim counter
func (r *PlayerStatsRepository) IncrementClaims(ctx context.Context, playerID primitive.ObjectID, delta int64) error {
	return r.increment(ctx, playerID, bson.M{"totalClaims": delta})
}

func (r *PlayerStatsRepository) increment(ctx context.Context, playerID primitive.ObjectID, fields bson.M) error {
	update := bson.M{
		"$inc": fields,
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"playerId": playerID}, update, opts)
	return err
}
