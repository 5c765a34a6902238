package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/lottoroom/lottoroom-backend/internal/models"
	"github.com/lottoroom/lottoroom-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const systemStatusKey = "status"

// SystemStatusRepository implements the repositories.SystemStatusRepository interface
type SystemStatusRepository struct {
	collection *mongo.Collection
}

// NewSystemStatusRepository creates a new SystemStatusRepository
func NewSystemStatusRepository(db *mongo.Database) repositories.SystemStatusRepository {
	return &SystemStatusRepository{
		collection: db.Collection("system_status"),
	}
}

// Get returns the global status, unpaused if never written
func (r *SystemStatusRepository) Get(ctx context.Context) (*models.SystemStatus, error) {
	var status models.SystemStatus
	err := r.collection.FindOne(ctx, bson.M{"_id": systemStatusKey}).Decode(&status)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &models.SystemStatus{}, nil
		}
		return nil, err
	}
	return &status, nil
}

// SetPaused flips the global pause flag
func (r *SystemStatusRepository) SetPaused(ctx context.Context, paused bool) error {
	update := bson.M{"$set": bson.M{"paused": paused, "updatedAt": time.Now()}}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": systemStatusKey}, update, opts)
	return err
}
