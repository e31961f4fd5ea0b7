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

// AnswerRepository defines the interface for answer-related database operations.
type AnswerRepository interface {
	CreateAnswer(ctx context.Context, answer *model.Answer) (*model.Answer, error)
	GetAnswer(ctx context.Context, id string) (*model.Answer, error)
	ListAnswersByQuestion(ctx context.Context, questionID string) ([]*model.Answer, error)

	// IncrementLikeCount adjusts the like counter by delta (+1 or -1).
	IncrementLikeCount(ctx context.Context, id string, delta int64) error

	// SetAccepted marks an answer as the accepted one.
	SetAccepted(ctx context.Context, id string) error

	// CountByAuthor returns the total and accepted answer counts for an author.
	CountByAuthor(ctx context.Context, authorID string) (total, accepted int64, err error)
}

const answerCollection = "answers"

type answerMongoRepository struct {
	db *mongo.Database
}

// NewAnswerMongoRepository creates a new MongoDB repository for answers.
func NewAnswerMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) AnswerRepository {
	collection := db.Collection(answerCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "question_id", Value: 1}, {Key: "created_at", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "author_id", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create answer indexes")
	}

	return &answerMongoRepository{db: db}
}

func (r *answerMongoRepository) CreateAnswer(ctx context.Context, answer *model.Answer) (*model.Answer, error) {
	now := time.Now()
	answer.CreatedAt = now
	answer.UpdatedAt = now

	result, err := r.db.Collection(answerCollection).InsertOne(ctx, answer)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		answer.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return answer, nil
}

func (r *answerMongoRepository) GetAnswer(ctx context.Context, id string) (*model.Answer, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(answerCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var answer model.Answer
	if err := result.Decode(&answer); err != nil {
		return nil, err
	}

	return &answer, nil
}

func (r *answerMongoRepository) ListAnswersByQuestion(
	ctx context.Context,
	questionID string,
) ([]*model.Answer, error) {
	objectID, err := bson.ObjectIDFromHex(questionID)
	if err != nil {
		return nil, err
	}

	findOptions := options.Find().SetSort(bson.D{
		{Key: "is_accepted", Value: -1},
		{Key: "like_count", Value: -1},
		{Key: "created_at", Value: 1},
	})

	cursor, err := r.db.Collection(answerCollection).Find(ctx, bson.M{"question_id": objectID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var answers []*model.Answer
	for cursor.Next(ctx) {
		var answer model.Answer
		if err := cursor.Decode(&answer); err != nil {
			return nil, err
		}
		answers = append(answers, &answer)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return answers, nil
}

func (r *answerMongoRepository) IncrementLikeCount(ctx context.Context, id string, delta int64) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$inc": bson.M{"like_count": delta},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := r.db.Collection(answerCollection).UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (r *answerMongoRepository) SetAccepted(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"is_accepted": true,
			"updated_at":  time.Now(),
		},
	}

	result, err := r.db.Collection(answerCollection).UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (r *answerMongoRepository) CountByAuthor(ctx context.Context, authorID string) (int64, int64, error) {
	objectID, err := bson.ObjectIDFromHex(authorID)
	if err != nil {
		return 0, 0, err
	}

	collection := r.db.Collection(answerCollection)

	total, err := collection.CountDocuments(ctx, bson.M{"author_id": objectID})
	if err != nil {
		return 0, 0, err
	}

	accepted, err := collection.CountDocuments(ctx, bson.M{"author_id": objectID, "is_accepted": true})
	if err != nil {
		return 0, 0, err
	}

	return total, accepted, nil
}
