package repository

import (
	"context"
	"time"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoSignalRepository implements SignalRepository
type MongoSignalRepository struct {
	collection *mongo.Collection
}

// NewMongoSignalRepository creates a new signal repository
func NewMongoSignalRepository(db *mongo.Database) repository.SignalRepository {
	collection := db.Collection("signals")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Index for per-user history
	userIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "user", Value: 1},
			{Key: "createdAt", Value: -1},
		},
	}

	// Index on type for abuse reports
	typeIndex := mongo.IndexModel{
		Keys: bson.M{"type": 1},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{userIndex, typeIndex})

	return &MongoSignalRepository{
		collection: collection,
	}
}

// Save inserts a signal
func (r *MongoSignalRepository) Save(ctx context.Context, signal *entity.Signal) error {
	if signal.ID == "" {
		signal.ID = primitive.NewObjectID().Hex()
	}
	if signal.CreatedAt.IsZero() {
		signal.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, signal)
	return err
}
