package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/queue"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/repository"
)

// QAUsecase covers questions, answers, acceptance and the alumni directory.
type QAUsecase interface {
	AskQuestion(ctx context.Context, callerID string, params AskQuestionParams) (*model.Question, error)
	GetQuestion(ctx context.Context, id string) (*model.Question, error)
	ListQuestions(ctx context.Context, params repository.ListQuestionsParams) ([]*model.Question, error)

	PostAnswer(ctx context.Context, callerID, questionID, body string) (*model.Answer, error)
	ListAnswers(ctx context.Context, questionID string) ([]*model.Answer, error)
	AcceptAnswer(ctx context.Context, callerID, questionID, answerID string) error

	ListAlumni(ctx context.Context, params repository.ListAlumniParams) ([]*model.Account, error)
	GetAlumniProfile(ctx context.Context, id string) (*AlumniProfileView, error)
}

// AskQuestionParams defines the parameters for creating a question.
type AskQuestionParams struct {
	Title string
	Body  string
	Tags  []string
}

// AlumniProfileView is an alumni account enriched with answer statistics.
type AlumniProfileView struct {
	Account             *model.Account
	AnswerCount         int64
	AcceptedAnswerCount int64
}

var (
	ErrPermissionDenied  = errors.New("role is not allowed to perform this action")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrAnswerNotFound    = errors.New("answer not found")
	ErrNotQuestionAuthor = errors.New("only the question author may accept an answer")
	ErrInvalidTags       = errors.New("questions require between 1 and 5 tags")
)

type qaUsecase struct {
	accountRepo  repository.AccountRepository
	questionRepo repository.QuestionRepository
	answerRepo   repository.AnswerRepository
	producer     Producer
	streams      *AnswerStreams
	logger       *zerolog.Logger
}

// NewQAUsecase creates a new instance of QAUsecase.
func NewQAUsecase(
	accountRepo repository.AccountRepository,
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
	producer Producer,
	streams *AnswerStreams,
	logger *zerolog.Logger,
) QAUsecase {
	return &qaUsecase{
		accountRepo:  accountRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		producer:     producer,
		streams:      streams,
		logger:       logger,
	}
}

func (u *qaUsecase) AskQuestion(
	ctx context.Context,
	callerID string,
	params AskQuestionParams,
) (*model.Question, error) {
	if len(params.Tags) < 1 || len(params.Tags) > 5 {
		return nil, ErrInvalidTags
	}

	actor, err := u.loadActor(ctx, callerID, PermAskQuestion)
	if err != nil {
		return nil, err
	}

	return u.questionRepo.CreateQuestion(ctx, &model.Question{
		Title:      params.Title,
		Body:       params.Body,
		AuthorID:   actor.ID,
		AuthorRole: actor.Role,
		Tags:       params.Tags,
		Status:     model.QuestionOpen,
	})
}

func (u *qaUsecase) GetQuestion(ctx context.Context, id string) (*model.Question, error) {
	question, err := u.questionRepo.GetQuestion(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	return question, nil
}

func (u *qaUsecase) ListQuestions(
	ctx context.Context,
	params repository.ListQuestionsParams,
) ([]*model.Question, error) {
	return u.questionRepo.ListQuestions(ctx, params)
}

func (u *qaUsecase) PostAnswer(
	ctx context.Context,
	callerID, questionID, body string,
) (*model.Answer, error) {
	actor, err := u.loadActor(ctx, callerID, PermAnswerQuestion)
	if err != nil {
		return nil, err
	}

	question, err := u.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	answer, err := u.answerRepo.CreateAnswer(ctx, &model.Answer{
		QuestionID: question.ID,
		Body:       body,
		AuthorID:   actor.ID,
		AuthorRole: actor.Role,
	})
	if err != nil {
		return nil, err
	}

	u.publishAnswerCreated(question.ID.Hex(), answer)
	u.streams.Notify(ctx, question.ID.Hex())

	return answer, nil
}

func (u *qaUsecase) ListAnswers(ctx context.Context, questionID string) ([]*model.Answer, error) {
	return u.answerRepo.ListAnswersByQuestion(ctx, questionID)
}

func (u *qaUsecase) AcceptAnswer(ctx context.Context, callerID, questionID, answerID string) error {
	question, err := u.GetQuestion(ctx, questionID)
	if err != nil {
		return err
	}

	if question.AuthorID.Hex() != callerID {
		return ErrNotQuestionAuthor
	}

	answer, err := u.answerRepo.GetAnswer(ctx, answerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrAnswerNotFound
		}
		return err
	}

	if answer.QuestionID != question.ID {
		return ErrAnswerNotFound
	}

	if err := u.answerRepo.SetAccepted(ctx, answerID); err != nil {
		return err
	}

	u.streams.Notify(ctx, questionID)

	return nil
}

func (u *qaUsecase) ListAlumni(
	ctx context.Context,
	params repository.ListAlumniParams,
) ([]*model.Account, error) {
	return u.accountRepo.ListAlumni(ctx, params)
}

func (u *qaUsecase) GetAlumniProfile(ctx context.Context, id string) (*AlumniProfileView, error) {
	account, err := u.accountRepo.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if account.Role != model.RoleAlumni || account.VerificationStatus != model.VerificationVerified {
		return nil, ErrAccountNotFound
	}

	total, accepted, err := u.answerRepo.CountByAuthor(ctx, id)
	if err != nil {
		return nil, err
	}

	return &AlumniProfileView{
		Account:             account,
		AnswerCount:         total,
		AcceptedAnswerCount: accepted,
	}, nil
}

// loadActor fetches the caller and re-checks what the flow guard should
// already have enforced: an active, verified account whose role carries the
// permission.
func (u *qaUsecase) loadActor(ctx context.Context, callerID string, permission Permission) (*model.Account, error) {
	account, err := u.accountRepo.GetAccount(ctx, callerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if err := ensureActive(account); err != nil {
		return nil, err
	}

	if account.VerificationStatus != model.VerificationVerified {
		return nil, ErrNotVerified
	}

	if !HasPermission(account.Role, permission) {
		return nil, ErrPermissionDenied
	}

	return account, nil
}

func (u *qaUsecase) publishAnswerCreated(questionID string, answer *model.Answer) {
	payload, err := json.Marshal(queue.AnswerCreatedEvent{
		QuestionID: questionID,
		AnswerID:   answer.ID.Hex(),
		AuthorID:   answer.AuthorID.Hex(),
	})
	if err != nil {
		u.logger.Error().Err(err).Msg("failed to encode answer event")
		return
	}

	if err := u.producer.PublishMessage([]byte(questionID), payload); err != nil {
		u.logger.Error().Err(err).Str("answer_id", answer.ID.Hex()).Msg("failed to publish answer event")
	}
}
