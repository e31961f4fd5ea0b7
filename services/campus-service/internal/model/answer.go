package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Answer is an answer to a question. LikeCount is maintained by the
// engagement counters and must always equal the number of Like records
// for the answer.
type Answer struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	QuestionID bson.ObjectID `bson:"question_id"`
	Body       string        `bson:"body"`
	AuthorID   bson.ObjectID `bson:"author_id"`
	AuthorRole Role          `bson:"author_role"`
	IsAccepted bool          `bson:"is_accepted"`
	LikeCount  int64         `bson:"like_count"`
	CreatedAt  time.Time     `bson:"created_at"`
	UpdatedAt  time.Time     `bson:"updated_at"`
}

// Like marks that a user currently likes an answer. Presence of the record
// is the toggle state; there is no boolean flag on the answer.
type Like struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	AnswerID  bson.ObjectID `bson:"answer_id"`
	UserID    bson.ObjectID `bson:"user_id"`
	CreatedAt time.Time     `bson:"created_at"`
}
