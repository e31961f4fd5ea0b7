package payload

import (
	"time"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
)

type AskQuestionRequest struct {
	Title string   `json:"title" validate:"required,min=5,max=200"`
	Body  string   `json:"body"  validate:"required"`
	Tags  []string `json:"tags"  validate:"required,min=1,max=5,dive,required"`
}

type PostAnswerRequest struct {
	Body string `json:"body" validate:"required"`
}

type QuestionResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	AuthorID    string    `json:"author_id"`
	AuthorRole  string    `json:"author_role"`
	Tags        []string  `json:"tags"`
	Status      string    `json:"status"`
	AnswerCount int64     `json:"answer_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type AnswerResponse struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"question_id"`
	Body       string    `json:"body"`
	AuthorID   string    `json:"author_id"`
	AuthorRole string    `json:"author_role"`
	IsAccepted bool      `json:"is_accepted"`
	LikeCount  int64     `json:"like_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type ToggleLikeResponse struct {
	Liked bool `json:"liked"`
}

type AlumniProfileResponse struct {
	Account             AccountResponse `json:"account"`
	AnswerCount         int64           `json:"answer_count"`
	AcceptedAnswerCount int64           `json:"accepted_answer_count"`
}

// NewQuestionResponse converts the question record to its API shape.
func NewQuestionResponse(question *model.Question) QuestionResponse {
	return QuestionResponse{
		ID:          question.ID.Hex(),
		Title:       question.Title,
		Body:        question.Body,
		AuthorID:    question.AuthorID.Hex(),
		AuthorRole:  string(question.AuthorRole),
		Tags:        question.Tags,
		Status:      string(question.Status),
		AnswerCount: question.AnswerCount,
		CreatedAt:   question.CreatedAt,
	}
}

// NewAnswerResponse converts the answer record to its API shape.
func NewAnswerResponse(answer *model.Answer) AnswerResponse {
	return AnswerResponse{
		ID:         answer.ID.Hex(),
		QuestionID: answer.QuestionID.Hex(),
		Body:       answer.Body,
		AuthorID:   answer.AuthorID.Hex(),
		AuthorRole: string(answer.AuthorRole),
		IsAccepted: answer.IsAccepted,
		LikeCount:  answer.LikeCount,
		CreatedAt:  answer.CreatedAt,
	}
}

// NewAnswerListResponse converts a list of answer records to API shape.
func NewAnswerListResponse(answers []*model.Answer) []AnswerResponse {
	out := make([]AnswerResponse, 0, len(answers))
	for _, answer := range answers {
		out = append(out, NewAnswerResponse(answer))
	}
	return out
}
