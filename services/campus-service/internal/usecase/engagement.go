package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/repository"
)

var ErrLikeConflict = errors.New("concurrent like toggle, retry")

// EngagementUsecase maintains the denormalized like and answer counters.
// Every counter change happens in a transaction with the record that
// justifies it, so the counters never drift from the underlying documents.
type EngagementUsecase interface {
	// ToggleLike flips the caller's like on an answer and returns the
	// resulting state: true when the like now exists.
	ToggleLike(ctx context.Context, callerID, questionID, answerID string) (bool, error)

	// HandleAnswerCreated applies the answer counter update for a consumed
	// answer event. Replays of an already-applied event are a no-op.
	HandleAnswerCreated(ctx context.Context, questionID, answerID string) error
}

type engagementUsecase struct {
	accountRepo        repository.AccountRepository
	questionRepo       repository.QuestionRepository
	answerRepo         repository.AnswerRepository
	likeRepo           repository.LikeRepository
	processedEventRepo repository.ProcessedEventRepository
	transactor         repository.Transactor
	logger             *zerolog.Logger
}

// NewEngagementUsecase creates a new instance of EngagementUsecase.
func NewEngagementUsecase(
	accountRepo repository.AccountRepository,
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
	likeRepo repository.LikeRepository,
	processedEventRepo repository.ProcessedEventRepository,
	transactor repository.Transactor,
	logger *zerolog.Logger,
) EngagementUsecase {
	return &engagementUsecase{
		accountRepo:        accountRepo,
		questionRepo:       questionRepo,
		answerRepo:         answerRepo,
		likeRepo:           likeRepo,
		processedEventRepo: processedEventRepo,
		transactor:         transactor,
		logger:             logger,
	}
}

func (u *engagementUsecase) ToggleLike(
	ctx context.Context,
	callerID, questionID, answerID string,
) (bool, error) {
	account, err := u.accountRepo.GetAccount(ctx, callerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, ErrAccountNotFound
		}
		return false, err
	}

	if err := ensureActive(account); err != nil {
		return false, err
	}

	if account.VerificationStatus != model.VerificationVerified {
		return false, ErrNotVerified
	}

	answer, err := u.answerRepo.GetAnswer(ctx, answerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, ErrAnswerNotFound
		}
		return false, err
	}

	if answer.QuestionID.Hex() != questionID {
		return false, ErrAnswerNotFound
	}

	var liked bool
	err = u.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		_, err := u.likeRepo.GetLike(ctx, answerID, callerID)
		switch {
		case err == nil:
			if err := u.likeRepo.DeleteLike(ctx, answerID, callerID); err != nil {
				return err
			}
			liked = false
			return u.answerRepo.IncrementLikeCount(ctx, answerID, -1)

		case errors.Is(err, mongo.ErrNoDocuments):
			if _, err := u.likeRepo.CreateLike(ctx, &model.Like{
				AnswerID: answer.ID,
				UserID:   account.ID,
			}); err != nil {
				return err
			}
			liked = true
			return u.answerRepo.IncrementLikeCount(ctx, answerID, 1)

		default:
			return err
		}
	})
	if err != nil {
		// Two toggles from the same user raced; the loser's insert hit the
		// unique index and the whole transaction rolled back.
		if mongo.IsDuplicateKeyError(err) {
			return false, ErrLikeConflict
		}
		return false, err
	}

	return liked, nil
}

func (u *engagementUsecase) HandleAnswerCreated(ctx context.Context, questionID, answerID string) error {
	eventKey := fmt.Sprintf("answer_created:%s", answerID)

	err := u.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if err := u.processedEventRepo.MarkProcessed(ctx, eventKey); err != nil {
			return err
		}
		return u.questionRepo.ApplyAnswerCreated(ctx, questionID)
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			u.logger.Debug().Str("event_key", eventKey).Msg("answer event already applied, skipping")
			return nil
		}
		return err
	}

	return nil
}
