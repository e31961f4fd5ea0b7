package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
)

// ProcessedEventRepository records which queue events have been applied.
// MarkProcessed fails with a duplicate-key error when the key was already
// recorded, which is how at-least-once delivery collapses to exactly-once.
type ProcessedEventRepository interface {
	MarkProcessed(ctx context.Context, eventKey string) error
}

const processedEventCollection = "processed_events"

type processedEventMongoRepository struct {
	db *mongo.Database
}

// NewProcessedEventMongoRepository creates a new MongoDB repository for processed-event markers.
func NewProcessedEventMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) ProcessedEventRepository {
	collection := db.Collection(processedEventCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create processed event indexes")
	}

	return &processedEventMongoRepository{db: db}
}

func (r *processedEventMongoRepository) MarkProcessed(ctx context.Context, eventKey string) error {
	_, err := r.db.Collection(processedEventCollection).InsertOne(ctx, &model.ProcessedEvent{
		EventKey:  eventKey,
		CreatedAt: time.Now(),
	})
	return err
}
