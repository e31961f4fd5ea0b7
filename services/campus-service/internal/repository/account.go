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

// AccountRepository defines the interface for account-related database operations.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error)
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	UpdateAccount(ctx context.Context, id string, params UpdateAccountParams) (*model.Account, error)
	ListAlumni(ctx context.Context, params ListAlumniParams) ([]*model.Account, error)
}

// UpdateAccountParams defines the optional parameters for updating an account.
// Only the fields that are not nil will be updated.
type UpdateAccountParams struct {
	Role               *model.Role
	VerificationStatus *model.VerificationStatus
	VerificationMethod *model.VerificationMethod
	AccountStatus      *model.AccountStatus
	ProfileCompleted   *bool
	InstitutionalEmail *string
	VerifiedAt         *time.Time
	VerifiedBy         *string
	StudentProfile     *model.StudentProfile
	AlumniProfile      *model.AlumniProfile
	FacultyProfile     *model.FacultyProfile
	RecruiterProfile   *model.RecruiterProfile
}

// ListAlumniParams filters the verified-alumni directory.
type ListAlumniParams struct {
	Branch         *string
	GraduationYear *int
	Limit          uint64
	Offset         uint64
}

const accountCollection = "accounts"

type accountMongoRepository struct {
	db *mongo.Database
}

// NewAccountMongoRepository creates a new MongoDB repository for accounts.
func NewAccountMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) AccountRepository {
	collection := db.Collection(accountCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "personal_email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}, {Key: "verification_status", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create account indexes")
	}

	return &accountMongoRepository{db: db}
}

func (r *accountMongoRepository) CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error) {
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	result, err := r.db.Collection(accountCollection).InsertOne(ctx, account)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		account.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return account, nil
}

func (r *accountMongoRepository) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(accountCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var account model.Account
	if err := result.Decode(&account); err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountMongoRepository) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	result := r.db.Collection(accountCollection).FindOne(ctx, bson.M{"personal_email": email})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var account model.Account
	if err := result.Decode(&account); err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountMongoRepository) UpdateAccount(
	ctx context.Context,
	id string,
	params UpdateAccountParams,
) (*model.Account, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	// Build update query
	updateMap := bson.M{}
	if params.Role != nil {
		updateMap["role"] = *params.Role
	}
	if params.VerificationStatus != nil {
		updateMap["verification_status"] = *params.VerificationStatus
	}
	if params.VerificationMethod != nil {
		updateMap["verification_method"] = *params.VerificationMethod
	}
	if params.AccountStatus != nil {
		updateMap["account_status"] = *params.AccountStatus
	}
	if params.ProfileCompleted != nil {
		updateMap["profile_completed"] = *params.ProfileCompleted
	}
	if params.InstitutionalEmail != nil {
		updateMap["institutional_email"] = *params.InstitutionalEmail
	}
	if params.VerifiedAt != nil {
		updateMap["verified_at"] = *params.VerifiedAt
	}
	if params.VerifiedBy != nil {
		updateMap["verified_by"] = *params.VerifiedBy
	}
	if params.StudentProfile != nil {
		updateMap["student_profile"] = params.StudentProfile
	}
	if params.AlumniProfile != nil {
		updateMap["alumni_profile"] = params.AlumniProfile
	}
	if params.FacultyProfile != nil {
		updateMap["faculty_profile"] = params.FacultyProfile
	}
	if params.RecruiterProfile != nil {
		updateMap["recruiter_profile"] = params.RecruiterProfile
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no account fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(accountCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var account model.Account
	if err := result.Decode(&account); err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountMongoRepository) ListAlumni(
	ctx context.Context,
	params ListAlumniParams,
) ([]*model.Account, error) {
	findOptions := options.Find()

	limit := params.Limit
	if limit == 0 {
		limit = 20
	}
	findOptions.SetLimit(int64(limit))

	if params.Offset > 0 {
		findOptions.SetSkip(int64(params.Offset))
	}

	findOptions.SetSort(bson.D{{Key: "display_name", Value: 1}})

	filter := bson.M{
		"role":                model.RoleAlumni,
		"verification_status": model.VerificationVerified,
	}
	if params.Branch != nil {
		filter["alumni_profile.branch"] = *params.Branch
	}
	if params.GraduationYear != nil {
		filter["alumni_profile.graduation_year"] = *params.GraduationYear
	}

	cursor, err := r.db.Collection(accountCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var accounts []*model.Account
	for cursor.Next(ctx) {
		var account model.Account
		if err := cursor.Decode(&account); err != nil {
			return nil, err
		}
		accounts = append(accounts, &account)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}
