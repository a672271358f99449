package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/raffle-explorer/internal/models"
	"github.com/ArowuTest/raffle-explorer/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RaffleRepository implements the repositories.RaffleRepository interface
type RaffleRepository struct {
	collection *mongo.Collection
}

// NewRaffleRepository creates a new RaffleRepository
func NewRaffleRepository(db *mongo.Database) repositories.RaffleRepository {
	return &RaffleRepository{
		collection: db.Collection("raffles"),
	}
}

// FetchRaffles returns every stored raffle, latest-ending first
func (r *RaffleRepository) FetchRaffles(ctx context.Context) ([]models.Raffle, error) {
	opts := options.Find().SetSort(bson.D{{Key: "endTimestamp", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to execute find query: %w", err)
	}
	defer cursor.Close(ctx)

	var raffles []models.Raffle
	if err := cursor.All(ctx, &raffles); err != nil {
		return nil, fmt.Errorf("failed to decode raffles: %w", err)
	}
	if raffles == nil {
		raffles = []models.Raffle{}
	}
	return raffles, nil
}

// FindByID finds a raffle by its account address
func (r *RaffleRepository) FindByID(ctx context.Context, id string) (*models.Raffle, error) {
	var raffle models.Raffle
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&raffle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrRaffleNotFound
		}
		return nil, err
	}
	return &raffle, nil
}

// UpsertMany upserts raffles in one bulk write
func (r *RaffleRepository) UpsertMany(ctx context.Context, raffles []models.Raffle) error {
	if len(raffles) == 0 {
		return nil
	}

	now := time.Now()
	writes := make([]mongo.WriteModel, 0, len(raffles))
	for i := range raffles {
		raffles[i].UpdatedAt = now
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": raffles[i].ID}).
			SetReplacement(raffles[i]).
			SetUpsert(true))
	}

	_, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to upsert raffles: %w", err)
	}
	return nil
}

// Count returns the number of stored raffles
func (r *RaffleRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
