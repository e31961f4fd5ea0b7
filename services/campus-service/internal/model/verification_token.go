package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// VerificationToken is a single-use secret proving control of an
// institutional email address. Tokens are kept after use for the
// rate-limit window and audit history.
type VerificationToken struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Token       string        `bson:"token"`
	AccountID   bson.ObjectID `bson:"account_id"`
	TargetEmail string        `bson:"target_email"`
	Used        bool          `bson:"used"`
	ExpiresAt   time.Time     `bson:"expires_at"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}
