package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
)

// AuditLogRepository appends entries to the append-only audit trail.
type AuditLogRepository interface {
	AppendEntry(ctx context.Context, entry *model.AuditEntry) (*model.AuditEntry, error)
	ListEntriesByEntity(ctx context.Context, entity, entityID string) ([]*model.AuditEntry, error)
}

const auditLogCollection = "audit_log"

type auditLogMongoRepository struct {
	db *mongo.Database
}

// NewAuditLogMongoRepository creates a new MongoDB repository for the audit trail.
func NewAuditLogMongoRepository(db *mongo.Database) AuditLogRepository {
	return &auditLogMongoRepository{db: db}
}

func (r *auditLogMongoRepository) AppendEntry(
	ctx context.Context,
	entry *model.AuditEntry,
) (*model.AuditEntry, error) {
	entry.CreatedAt = time.Now()

	result, err := r.db.Collection(auditLogCollection).InsertOne(ctx, entry)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		entry.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return entry, nil
}

func (r *auditLogMongoRepository) ListEntriesByEntity(
	ctx context.Context,
	entity, entityID string,
) ([]*model.AuditEntry, error) {
	cursor, err := r.db.Collection(auditLogCollection).Find(ctx, bson.M{
		"entity":    entity,
		"entity_id": entityID,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*model.AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}
