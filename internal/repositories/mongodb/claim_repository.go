package mongodb

import (
	"context"
	"errors"

	"github.com/lottoroom/lottoroom-backend/internal/models"
	"github.com/lottoroom/lottoroom-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ClaimRepository implements the repositories.ClaimRepository interface
type ClaimRepository struct {
	collection *mongo.Collection
}

// NewClaimRepository creates a new ClaimRepository
func NewClaimRepository(db *mongo.Database) repositories.ClaimRepository {
	return &ClaimRepository{
		collection: db.Collection("claims"),
	}
}

// Create records a payout for one (room, round, ticket)
func (r *ClaimRepository) Create(ctx context.Context, claim *models.ClaimRecord) error {
	res, err := r.collection.InsertOne(ctx, claim)
	if err != nil {
		return err
	}
	claim.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// Find looks up the claim record for a ticket, if any
func (r *ClaimRepository) Find(ctx context.Context, roomID primitive.ObjectID, round, ticketIndex int64) (*models.ClaimRecord, error) {
	filter := bson.M{"roomId": roomID, "roundNumber": round, "ticketIndex": ticketIndex}
	var claim models.ClaimRecord
	err := r.collection.FindOne(ctx, filter).Decode(&claim)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &claim, nil
}

// CountByRoomAndRound counts claims already paid in a round
func (r *ClaimRepository) CountByRoomAndRound(ctx context.Context, roomID primitive.ObjectID, round int64) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"roomId": roomID, "roundNumber": round})
}

// Delete removes a claim record. Only used to compensate a claim whose
// boundary fund push failed.
func (r *ClaimRepository) Delete(ctx context.Context, roomID primitive.ObjectID, round, ticketIndex int64) error {
	filter := bson.M{"roomId": roomID, "roundNumber": round, "ticketIndex": ticketIndex}
	_, err := r.collection.DeleteOne(ctx, filter)
	return err
}
