package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// QuestionStatus follows the answering lifecycle of a question.
type QuestionStatus string

const (
	QuestionOpen     QuestionStatus = "open"
	QuestionAnswered QuestionStatus = "answered"
	QuestionClosed   QuestionStatus = "closed"
)

// Question is a community question. AnswerCount is maintained by the
// engagement counters, never written directly by callers.
type Question struct {
	ID          bson.ObjectID  `bson:"_id,omitempty"`
	Title       string         `bson:"title"`
	Body        string         `bson:"body"`
	AuthorID    bson.ObjectID  `bson:"author_id"`
	AuthorRole  Role           `bson:"author_role"`
	Tags        []string       `bson:"tags"`
	Status      QuestionStatus `bson:"status"`
	AnswerCount int64          `bson:"answer_count"`
	CreatedAt   time.Time      `bson:"created_at"`
	UpdatedAt   time.Time      `bson:"updated_at"`
}
