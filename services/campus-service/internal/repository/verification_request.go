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

// VerificationRequestRepository defines the interface for manual verification request operations.
type VerificationRequestRepository interface {
	// CreateRequest creates a new verification request.
	CreateRequest(ctx context.Context, request *model.VerificationRequest) (*model.VerificationRequest, error)

	// GetActiveRequestByAccount retrieves the account's current request,
	// i.e. the most recent one that has not been superseded.
	GetActiveRequestByAccount(ctx context.Context, accountID string) (*model.VerificationRequest, error)

	// UpdateRequest applies an admin decision or archival to a request.
	UpdateRequest(ctx context.Context, id string, params UpdateRequestParams) (*model.VerificationRequest, error)

	// ListPendingRequests pages through requests awaiting review, oldest first.
	ListPendingRequests(ctx context.Context, limit, offset uint64) ([]*model.VerificationRequest, error)
}

// UpdateRequestParams defines the optional parameters for updating a request.
// Only the fields that are not nil will be updated.
type UpdateRequestParams struct {
	Status          *model.RequestStatus
	ReviewerID      *string
	ReviewedAt      *time.Time
	RejectionReason *string
}

const verificationRequestCollection = "verification_requests"

type verificationRequestMongoRepository struct {
	db *mongo.Database
}

// NewVerificationRequestMongoRepository creates a new MongoDB repository for verification requests.
func NewVerificationRequestMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) VerificationRequestRepository {
	collection := db.Collection(verificationRequestCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create verification request indexes")
	}

	return &verificationRequestMongoRepository{db: db}
}

func (r *verificationRequestMongoRepository) CreateRequest(
	ctx context.Context,
	request *model.VerificationRequest,
) (*model.VerificationRequest, error) {
	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now

	result, err := r.db.Collection(verificationRequestCollection).InsertOne(ctx, request)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		request.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return request, nil
}

func (r *verificationRequestMongoRepository) GetActiveRequestByAccount(
	ctx context.Context,
	accountID string,
) (*model.VerificationRequest, error) {
	objectID, err := bson.ObjectIDFromHex(accountID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"account_id": objectID,
		"status":     bson.M{"$ne": model.RequestSuperseded},
	}

	result := r.db.Collection(verificationRequestCollection).FindOne(
		ctx,
		filter,
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var request model.VerificationRequest
	if err := result.Decode(&request); err != nil {
		return nil, err
	}

	return &request, nil
}

func (r *verificationRequestMongoRepository) UpdateRequest(
	ctx context.Context,
	id string,
	params UpdateRequestParams,
) (*model.VerificationRequest, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	// Build update query
	updateMap := bson.M{}
	if params.Status != nil {
		updateMap["status"] = *params.Status
	}
	if params.ReviewerID != nil {
		updateMap["reviewer_id"] = *params.ReviewerID
	}
	if params.ReviewedAt != nil {
		updateMap["reviewed_at"] = *params.ReviewedAt
	}
	if params.RejectionReason != nil {
		updateMap["rejection_reason"] = *params.RejectionReason
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no request fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(verificationRequestCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var request model.VerificationRequest
	if err := result.Decode(&request); err != nil {
		return nil, err
	}

	return &request, nil
}

func (r *verificationRequestMongoRepository) ListPendingRequests(
	ctx context.Context,
	limit, offset uint64,
) ([]*model.VerificationRequest, error) {
	findOptions := options.Find()

	if limit == 0 {
		limit = 20
	}
	findOptions.SetLimit(int64(limit))

	if offset > 0 {
		findOptions.SetSkip(int64(offset))
	}

	findOptions.SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.db.Collection(verificationRequestCollection).Find(
		ctx,
		bson.M{"status": model.RequestPending},
		findOptions,
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []*model.VerificationRequest
	for cursor.Next(ctx) {
		var request model.VerificationRequest
		if err := cursor.Decode(&request); err != nil {
			return nil, err
		}
		requests = append(requests, &request)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}
