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

// QuestionRepository defines the interface for question-related database operations.
type QuestionRepository interface {
	CreateQuestion(ctx context.Context, question *model.Question) (*model.Question, error)
	GetQuestion(ctx context.Context, id string) (*model.Question, error)
	ListQuestions(ctx context.Context, params ListQuestionsParams) ([]*model.Question, error)

	// ApplyAnswerCreated increments the answer counter and flips the
	// question to answered in a single update.
	ApplyAnswerCreated(ctx context.Context, id string) error
}

// ListQuestionsParams defines the parameters for filtering and paginating questions.
type ListQuestionsParams struct {
	Status *model.QuestionStatus
	Tag    *string
	Limit  uint64
	Offset uint64
}

const questionCollection = "questions"

type questionMongoRepository struct {
	db *mongo.Database
}

// NewQuestionMongoRepository creates a new MongoDB repository for questions.
func NewQuestionMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) QuestionRepository {
	collection := db.Collection(questionCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "tags", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "author_id", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create question indexes")
	}

	return &questionMongoRepository{db: db}
}

func (r *questionMongoRepository) CreateQuestion(
	ctx context.Context,
	question *model.Question,
) (*model.Question, error) {
	now := time.Now()
	question.CreatedAt = now
	question.UpdatedAt = now

	result, err := r.db.Collection(questionCollection).InsertOne(ctx, question)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		question.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return question, nil
}

func (r *questionMongoRepository) GetQuestion(ctx context.Context, id string) (*model.Question, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(questionCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var question model.Question
	if err := result.Decode(&question); err != nil {
		return nil, err
	}

	return &question, nil
}

func (r *questionMongoRepository) ListQuestions(
	ctx context.Context,
	params ListQuestionsParams,
) ([]*model.Question, error) {
	findOptions := options.Find()

	limit := params.Limit
	if limit == 0 {
		limit = 20
	}
	findOptions.SetLimit(int64(limit))

	if params.Offset > 0 {
		findOptions.SetSkip(int64(params.Offset))
	}

	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})

	filter := bson.M{}
	if params.Status != nil {
		filter["status"] = *params.Status
	}
	if params.Tag != nil {
		filter["tags"] = *params.Tag
	}

	cursor, err := r.db.Collection(questionCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []*model.Question
	for cursor.Next(ctx) {
		var question model.Question
		if err := cursor.Decode(&question); err != nil {
			return nil, err
		}
		questions = append(questions, &question)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionMongoRepository) ApplyAnswerCreated(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$inc": bson.M{"answer_count": 1},
		"$set": bson.M{
			"status":     model.QuestionAnswered,
			"updated_at": time.Now(),
		},
	}

	result, err := r.db.Collection(questionCollection).UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}
