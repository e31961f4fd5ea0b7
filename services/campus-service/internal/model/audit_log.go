package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// AuditEntry is an append-only record of a privileged mutation. Entries are
// written in the same transaction as the mutation they describe.
type AuditEntry struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	ActorID   string        `bson:"actor_id"`
	Action    string        `bson:"action"`
	Entity    string        `bson:"entity"`
	EntityID  string        `bson:"entity_id"`
	Note      *string       `bson:"note,omitempty"`
	CreatedAt time.Time     `bson:"created_at"`
}

// ProcessedEvent marks a queue event as already applied, keyed by the event's
// idempotency key (e.g. the answer id for answer-created events).
type ProcessedEvent struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	EventKey  string        `bson:"event_key"`
	CreatedAt time.Time     `bson:"created_at"`
}
