package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
)

type engagementFixture struct {
	usecase      EngagementUsecase
	accountRepo  *fakeAccountRepo
	questionRepo *fakeQuestionRepo
	answerRepo   *fakeAnswerRepo
	likeRepo     *fakeLikeRepo
}

func newEngagementFixture(t *testing.T) *engagementFixture {
	t.Helper()

	accountRepo := newFakeAccountRepo()
	questionRepo := newFakeQuestionRepo()
	answerRepo := newFakeAnswerRepo()
	likeRepo := newFakeLikeRepo()

	uc := NewEngagementUsecase(
		accountRepo, questionRepo, answerRepo, likeRepo,
		newFakeProcessedEventRepo(), &fakeTransactor{}, testLogger())

	return &engagementFixture{
		usecase:      uc,
		accountRepo:  accountRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		likeRepo:     likeRepo,
	}
}

func (f *engagementFixture) seedQuestionWithAnswer(t *testing.T) (*model.Question, *model.Answer) {
	t.Helper()

	author := seedVerifiedAccount(t, f.accountRepo, bson.NewObjectID().Hex()+"@gmail.com", model.RoleAlumni)

	question, err := f.questionRepo.CreateQuestion(context.Background(), &model.Question{
		Title:    "How to prepare for backend interviews?",
		AuthorID: author.ID,
		Status:   model.QuestionOpen,
	})
	require.NoError(t, err)

	answer, err := f.answerRepo.CreateAnswer(context.Background(), &model.Answer{
		QuestionID: question.ID,
		Body:       "Practice system design.",
		AuthorID:   author.ID,
		AuthorRole: model.RoleAlumni,
	})
	require.NoError(t, err)

	return question, answer
}

func TestToggleLike(t *testing.T) {
	t.Run("first toggle likes, second unlikes", func(t *testing.T) {
		f := newEngagementFixture(t)
		question, answer := f.seedQuestionWithAnswer(t)
		user := seedVerifiedAccount(t, f.accountRepo, "amit@gmail.com", model.RoleStudent)

		liked, err := f.usecase.ToggleLike(context.Background(), user.ID.Hex(), question.ID.Hex(), answer.ID.Hex())
		require.NoError(t, err)
		assert.True(t, liked)

		stored, err := f.answerRepo.GetAnswer(context.Background(), answer.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.LikeCount)

		liked, err = f.usecase.ToggleLike(context.Background(), user.ID.Hex(), question.ID.Hex(), answer.ID.Hex())
		require.NoError(t, err)
		assert.False(t, liked)

		stored, err = f.answerRepo.GetAnswer(context.Background(), answer.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, int64(0), stored.LikeCount)
		assert.Empty(t, f.likeRepo.likes)
	})

	t.Run("rejects unverified users", func(t *testing.T) {
		f := newEngagementFixture(t)
		question, answer := f.seedQuestionWithAnswer(t)
		user := seedAccount(t, f.accountRepo, &model.Account{
			PersonalEmail: "amit@gmail.com",
			Role:          model.RoleStudent,
		})

		_, err := f.usecase.ToggleLike(context.Background(), user.ID.Hex(), question.ID.Hex(), answer.ID.Hex())
		assert.ErrorIs(t, err, ErrNotVerified)
	})

	t.Run("rejects an answer from a different question", func(t *testing.T) {
		f := newEngagementFixture(t)
		_, answer := f.seedQuestionWithAnswer(t)
		otherQuestion, _ := f.seedQuestionWithAnswer(t)
		user := seedVerifiedAccount(t, f.accountRepo, "amit@gmail.com", model.RoleStudent)

		_, err := f.usecase.ToggleLike(context.Background(), user.ID.Hex(), otherQuestion.ID.Hex(), answer.ID.Hex())
		assert.ErrorIs(t, err, ErrAnswerNotFound)
	})

	t.Run("concurrent toggles by distinct users all count", func(t *testing.T) {
		f := newEngagementFixture(t)
		question, answer := f.seedQuestionWithAnswer(t)

		const users = 20
		ids := make([]string, 0, users)
		for i := 0; i < users; i++ {
			user := seedVerifiedAccount(t, f.accountRepo,
				string(rune('a'+i))+"@gmail.com", model.RoleStudent)
			ids = append(ids, user.ID.Hex())
		}

		var wg sync.WaitGroup
		for _, id := range ids {
			wg.Add(1)
			go func(callerID string) {
				defer wg.Done()
				_, err := f.usecase.ToggleLike(context.Background(), callerID, question.ID.Hex(), answer.ID.Hex())
				assert.NoError(t, err)
			}(id)
		}
		wg.Wait()

		stored, err := f.answerRepo.GetAnswer(context.Background(), answer.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, int64(users), stored.LikeCount)
		assert.Len(t, f.likeRepo.likes, users)
	})

	t.Run("concurrent toggles by the same user stay consistent", func(t *testing.T) {
		f := newEngagementFixture(t)
		question, answer := f.seedQuestionWithAnswer(t)
		user := seedVerifiedAccount(t, f.accountRepo, "amit@gmail.com", model.RoleStudent)

		const toggles = 10
		var wg sync.WaitGroup
		for i := 0; i < toggles; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.usecase.ToggleLike(context.Background(), user.ID.Hex(), question.ID.Hex(), answer.ID.Hex())
				if err != nil {
					assert.ErrorIs(t, err, ErrLikeConflict)
				}
			}()
		}
		wg.Wait()

		// Whatever the interleaving, the counter and the like records
		// must agree, and one user holds at most one like.
		stored, err := f.answerRepo.GetAnswer(context.Background(), answer.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, int64(len(f.likeRepo.likes)), stored.LikeCount)
		assert.LessOrEqual(t, stored.LikeCount, int64(1))
		assert.GreaterOrEqual(t, stored.LikeCount, int64(0))
	})

	t.Run("a duplicate insert from a raced toggle surfaces a conflict", func(t *testing.T) {
		accountRepo := newFakeAccountRepo()
		questionRepo := newFakeQuestionRepo()
		answerRepo := newFakeAnswerRepo()
		likeRepo := newFakeLikeRepo()

		uc := NewEngagementUsecase(
			accountRepo, questionRepo, answerRepo, &staleReadLikeRepo{likeRepo},
			newFakeProcessedEventRepo(), &fakeTransactor{}, testLogger())

		author := seedVerifiedAccount(t, accountRepo, "author@gmail.com", model.RoleAlumni)
		question, err := questionRepo.CreateQuestion(context.Background(), &model.Question{
			Title:    "How to prepare for backend interviews?",
			AuthorID: author.ID,
			Status:   model.QuestionOpen,
		})
		require.NoError(t, err)
		answer, err := answerRepo.CreateAnswer(context.Background(), &model.Answer{
			QuestionID: question.ID,
			Body:       "Practice system design.",
			AuthorID:   author.ID,
			AuthorRole: model.RoleAlumni,
		})
		require.NoError(t, err)
		user := seedVerifiedAccount(t, accountRepo, "amit@gmail.com", model.RoleStudent)

		liked, err := uc.ToggleLike(context.Background(), user.ID.Hex(), question.ID.Hex(), answer.ID.Hex())
		require.NoError(t, err)
		assert.True(t, liked)

		// The stale read misses the committed like, so the replayed
		// toggle inserts again and hits the unique index.
		_, err = uc.ToggleLike(context.Background(), user.ID.Hex(), question.ID.Hex(), answer.ID.Hex())
		assert.ErrorIs(t, err, ErrLikeConflict)

		stored, err := answerRepo.GetAnswer(context.Background(), answer.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.LikeCount)
		assert.Len(t, likeRepo.likes, 1)
	})

	t.Run("an even number of toggles by one user nets zero", func(t *testing.T) {
		f := newEngagementFixture(t)
		question, answer := f.seedQuestionWithAnswer(t)
		user := seedVerifiedAccount(t, f.accountRepo, "amit@gmail.com", model.RoleStudent)

		for i := 0; i < 6; i++ {
			_, err := f.usecase.ToggleLike(context.Background(), user.ID.Hex(), question.ID.Hex(), answer.ID.Hex())
			require.NoError(t, err)
		}

		stored, err := f.answerRepo.GetAnswer(context.Background(), answer.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, int64(0), stored.LikeCount)
	})
}

func TestHandleAnswerCreated(t *testing.T) {
	t.Run("increments the counter and flips the question to answered", func(t *testing.T) {
		f := newEngagementFixture(t)
		question, answer := f.seedQuestionWithAnswer(t)

		err := f.usecase.HandleAnswerCreated(context.Background(), question.ID.Hex(), answer.ID.Hex())
		require.NoError(t, err)

		stored, err := f.questionRepo.GetQuestion(context.Background(), question.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.AnswerCount)
		assert.Equal(t, model.QuestionAnswered, stored.Status)
	})

	t.Run("redelivered events are applied exactly once", func(t *testing.T) {
		f := newEngagementFixture(t)
		question, answer := f.seedQuestionWithAnswer(t)

		for i := 0; i < 3; i++ {
			err := f.usecase.HandleAnswerCreated(context.Background(), question.ID.Hex(), answer.ID.Hex())
			require.NoError(t, err)
		}

		stored, err := f.questionRepo.GetQuestion(context.Background(), question.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.AnswerCount)
	})

	t.Run("concurrent redeliveries still apply once", func(t *testing.T) {
		f := newEngagementFixture(t)
		question, answer := f.seedQuestionWithAnswer(t)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := f.usecase.HandleAnswerCreated(context.Background(), question.ID.Hex(), answer.ID.Hex())
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		stored, err := f.questionRepo.GetQuestion(context.Background(), question.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.AnswerCount)
	})
}

// staleReadLikeRepo never sees a like on read, replaying the window where a
// concurrent toggle has committed its insert but the reader missed it.
type staleReadLikeRepo struct {
	*fakeLikeRepo
}

func (r *staleReadLikeRepo) GetLike(context.Context, string, string) (*model.Like, error) {
	return nil, mongo.ErrNoDocuments
}
