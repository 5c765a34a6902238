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

// RoomRepository implements the repositories.RoomRepository interface
type RoomRepository struct {
	collection *mongo.Collection
}

// NewRoomRepository creates a new RoomRepository
func NewRoomRepository(db *mongo.Database) repositories.RoomRepository {
	return &RoomRepository{
		collection: db.Collection("rooms"),
	}
}

// Create creates a new room
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	room.CreatedAt = time.Now()
	room.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, room)
	if err != nil {
		return err
	}
	room.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a room by ID
func (r *RoomRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Room, error) {
	var room models.Room
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

// Update replaces a room document
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": room.ID}, room)
	return err
}

// FindAll finds all rooms sorted by creation time descending
func (r *RoomRepository) FindAll(ctx context.Context) ([]*models.Room, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rooms []*models.Room
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []*models.Room{}
	}
	return rooms, nil
}

// FindByState finds rooms by stored lifecycle state
func (r *RoomRepository) FindByState(ctx context.Context, state models.RoomState) ([]*models.Room, error) {
	opts := options.Find().SetSort(bson.M{"drawTime": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"state": state}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rooms []*models.Room
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []*models.Room{}
	}
	return rooms, nil
}
