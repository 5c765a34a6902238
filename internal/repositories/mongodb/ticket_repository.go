package mongodb

import (
	"context"
	"errors"

	"github.com/lottoroom/lottoroom-backend/internal/models"
	"github.com/lottoroom/lottoroom-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TicketRepository implements the repositories.TicketRepository interface
type TicketRepository struct {
	collection *mongo.Collection
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(db *mongo.Database) repositories.TicketRepository {
	return &TicketRepository{
		collection: db.Collection("tickets"),
	}
}

// Create appends a ticket to the ledger
func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	res, err := r.collection.InsertOne(ctx, ticket)
	if err != nil {
		return err
	}
	ticket.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByRoomAndRound finds all tickets of a round, in purchase order
func (r *TicketRepository) FindByRoomAndRound(ctx context.Context, roomID primitive.ObjectID, round int64) ([]*models.Ticket, error) {
	filter := bson.M{"roomId": roomID, "roundNumber": round}
	opts := options.Find().SetSort(bson.M{"index": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tickets []*models.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []*models.Ticket{}
	}
	return tickets, nil
}

// FindByRoomRoundAndIndex finds one ticket by its dense index
func (r *TicketRepository) FindByRoomRoundAndIndex(ctx context.Context, roomID primitive.ObjectID, round, index int64) (*models.Ticket, error) {
	filter := bson.M{"roomId": roomID, "roundNumber": round, "index": index}
	var ticket models.Ticket
	err := r.collection.FindOne(ctx, filter).Decode(&ticket)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// FindByOwner finds a player's tickets within a round
func (r *TicketRepository) FindByOwner(ctx context.Context, roomID primitive.ObjectID, round int64, ownerID primitive.ObjectID) ([]*models.Ticket, error) {
	filter := bson.M{"roomId": roomID, "roundNumber": round, "ownerId": ownerID}
	opts := options.Find().SetSort(bson.M{"index": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tickets []*models.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []*models.Ticket{}
	}
	return tickets, nil
}

// CountByRoomAndRound counts tickets sold in a round
func (r *TicketRepository) CountByRoomAndRound(ctx context.Context, roomID primitive.ObjectID, round int64) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"roomId": roomID, "roundNumber": round})
}

// CountWinners counts tickets flagged as winners in a round
func (r *TicketRepository) CountWinners(ctx context.Context, roomID primitive.ObjectID, round int64) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"roomId": roomID, "roundNumber": round, "win": true})
}

// MarkWinners sets win=true on every ticket of the round matching the
// revealed number, in a single update. Returns the number flagged.
func (r *TicketRepository) MarkWinners(ctx context.Context, roomID primitive.ObjectID, round int64, number int) (int64, error) {
	filter := bson.M{"roomId": roomID, "roundNumber": round, "number": number}
	res, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"win": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Delete removes a ticket. Only used to compensate a purchase whose
// boundary fund pull failed.
func (r *TicketRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
