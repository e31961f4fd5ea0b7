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

// VerificationTokenRepository defines the interface for email verification token operations.
type VerificationTokenRepository interface {
	// CreateToken creates a new verification token record.
	CreateToken(ctx context.Context, token *model.VerificationToken) (*model.VerificationToken, error)

	// GetToken retrieves a token record by its opaque value.
	GetToken(ctx context.Context, token string) (*model.VerificationToken, error)

	// MarkTokenAsUsed consumes a token. It returns mongo.ErrNoDocuments
	// when the token does not exist or was already consumed.
	MarkTokenAsUsed(ctx context.Context, token string) error

	// CountTokensSince counts the tokens created for an account after the
	// given instant, which is the rate-limit bookkeeping.
	CountTokensSince(ctx context.Context, accountID string, since time.Time) (int64, error)
}

const verificationTokenCollection = "verification_tokens"

type verificationTokenMongoRepository struct {
	db *mongo.Database
}

// NewVerificationTokenMongoRepository creates a new MongoDB repository for verification tokens.
// Tokens are never deleted inside their lifetime; they back the rate-limit
// window and the audit trail.
func NewVerificationTokenMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) VerificationTokenRepository {
	collection := db.Collection(verificationTokenCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create verification token indexes")
	}

	return &verificationTokenMongoRepository{db: db}
}

func (r *verificationTokenMongoRepository) CreateToken(
	ctx context.Context,
	token *model.VerificationToken,
) (*model.VerificationToken, error) {
	now := time.Now()
	token.CreatedAt = now
	token.UpdatedAt = now
	token.Used = false

	result, err := r.db.Collection(verificationTokenCollection).InsertOne(ctx, token)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		token.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return token, nil
}

func (r *verificationTokenMongoRepository) GetToken(
	ctx context.Context,
	token string,
) (*model.VerificationToken, error) {
	filter := bson.M{"token": token}

	var record model.VerificationToken
	err := r.db.Collection(verificationTokenCollection).FindOne(ctx, filter).Decode(&record)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *verificationTokenMongoRepository) MarkTokenAsUsed(ctx context.Context, token string) error {
	// Filtering on used:false makes the consume atomic: of two concurrent
	// redemptions, exactly one matches and the other sees no document.
	filter := bson.M{"token": token, "used": false}
	update := bson.M{
		"$set": bson.M{
			"used":       true,
			"updated_at": time.Now(),
		},
	}

	result, err := r.db.Collection(verificationTokenCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (r *verificationTokenMongoRepository) CountTokensSince(
	ctx context.Context,
	accountID string,
	since time.Time,
) (int64, error) {
	objectID, err := bson.ObjectIDFromHex(accountID)
	if err != nil {
		return 0, err
	}

	filter := bson.M{
		"account_id": objectID,
		"created_at": bson.M{"$gt": since},
	}

	return r.db.Collection(verificationTokenCollection).CountDocuments(ctx, filter)
}
