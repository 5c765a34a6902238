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

const feeAccountKey = "platform"

// FeeRepository implements the repositories.FeeRepository interface over a
// single aggregate fee account document.
type FeeRepository struct {
	collection *mongo.Collection
}

// NewFeeRepository creates a new FeeRepository
func NewFeeRepository(db *mongo.Database) repositories.FeeRepository {
	return &FeeRepository{
		collection: db.Collection("fee_account"),
	}
}

// Get returns the aggregate fee account, zeroed if never written
func (r *FeeRepository) Get(ctx context.Context) (*models.FeeAccount, error) {
	var account models.FeeAccount
	err := r.collection.FindOne(ctx, bson.M{"_id": feeAccountKey}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &models.FeeAccount{}, nil
		}
		return nil, err
	}
	return &account, nil
}

// AddCollected books a platform fee into the aggregate account
func (r *FeeRepository) AddCollected(ctx context.Context, amount int64) error {
	return r.update(ctx, bson.M{"$inc": bson.M{"collected": amount}})
}

// AddWithdrawn records a fee withdrawal
func (r *FeeRepository) AddWithdrawn(ctx context.Context, amount int64) error {
	return r.update(ctx, bson.M{"$inc": bson.M{"withdrawn": amount}})
}

// SetRecipient updates the ledger account fees are withdrawn to
func (r *FeeRepository) SetRecipient(ctx context.Context, recipient string) error {
	return r.update(ctx, bson.M{"$set": bson.M{"recipient": recipient}})
}

func (r *FeeRepository) update(ctx context.Context, update bson.M) error {
	set, ok := update["$set"].(bson.M)
	if !ok {
		set = bson.M{}
		update["$set"] = set
	}
	set["updatedAt"] = time.Now()
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": feeAccountKey}, update, opts)
	return err
}
