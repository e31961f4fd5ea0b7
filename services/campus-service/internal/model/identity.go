package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Identity maps an external or local credential to an account. The
// (provider, provider_id) pair is unique, which is what makes account
// creation idempotent across duplicate sign-in events.
type Identity struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	AccountID   string        `bson:"account_id"`
	Provider    string        `bson:"provider"`
	ProviderID  string        `bson:"provider_id"`
	Email       string        `bson:"email"`
	LastLoginAt time.Time     `bson:"last_login_at"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}
