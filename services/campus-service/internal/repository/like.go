package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
)

// LikeRepository defines the interface for per-user like records. The
// existence of a record is the toggle state.
type LikeRepository interface {
	GetLike(ctx context.Context, answerID, userID string) (*model.Like, error)
	CreateLike(ctx context.Context, like *model.Like) (*model.Like, error)
	DeleteLike(ctx context.Context, answerID, userID string) error
}

const likeCollection = "likes"

type likeMongoRepository struct {
	db *mongo.Database
}

// NewLikeMongoRepository creates a new MongoDB repository for like records.
// The unique (answer_id, user_id) index makes concurrent duplicate toggles
// by the same user collide instead of double-counting.
func NewLikeMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) LikeRepository {
	collection := db.Collection(likeCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "answer_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create like indexes")
	}

	return &likeMongoRepository{db: db}
}

func (r *likeMongoRepository) GetLike(ctx context.Context, answerID, userID string) (*model.Like, error) {
	filter, err := likeFilter(answerID, userID)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(likeCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var like model.Like
	if err := result.Decode(&like); err != nil {
		return nil, err
	}

	return &like, nil
}

func (r *likeMongoRepository) CreateLike(ctx context.Context, like *model.Like) (*model.Like, error) {
	like.CreatedAt = time.Now()

	result, err := r.db.Collection(likeCollection).InsertOne(ctx, like)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		like.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return like, nil
}

func (r *likeMongoRepository) DeleteLike(ctx context.Context, answerID, userID string) error {
	filter, err := likeFilter(answerID, userID)
	if err != nil {
		return err
	}

	result, err := r.db.Collection(likeCollection).DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func likeFilter(answerID, userID string) (bson.M, error) {
	answerObjectID, err := bson.ObjectIDFromHex(answerID)
	if err != nil {
		return nil, err
	}

	userObjectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	return bson.M{
		"answer_id": answerObjectID,
		"user_id":   userObjectID,
	}, nil
}
