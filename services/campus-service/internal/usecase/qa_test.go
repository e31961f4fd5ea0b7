package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/repository"
)

type qaFixture struct {
	usecase      QAUsecase
	accountRepo  *fakeAccountRepo
	questionRepo *fakeQuestionRepo
	answerRepo   *fakeAnswerRepo
	producer     *fakeProducer
	streams      *AnswerStreams
}

func newQAFixture(t *testing.T) *qaFixture {
	t.Helper()

	accountRepo := newFakeAccountRepo()
	questionRepo := newFakeQuestionRepo()
	answerRepo := newFakeAnswerRepo()
	producer := &fakeProducer{}
	streams := NewAnswerStreams(answerRepo, testLogger())

	uc := NewQAUsecase(accountRepo, questionRepo, answerRepo, producer, streams, testLogger())

	return &qaFixture{
		usecase:      uc,
		accountRepo:  accountRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		producer:     producer,
		streams:      streams,
	}
}

func TestAskQuestion(t *testing.T) {
	t.Run("creates an open question", func(t *testing.T) {
		f := newQAFixture(t)
		student := seedVerifiedAccount(t, f.accountRepo, "amit@gmail.com", model.RoleStudent)

		question, err := f.usecase.AskQuestion(context.Background(), student.ID.Hex(), AskQuestionParams{
			Title: "How to prepare for backend interviews?",
			Body:  "Targeting product companies.",
			Tags:  []string{"career", "backend"},
		})
		require.NoError(t, err)
		assert.Equal(t, model.QuestionOpen, question.Status)
		assert.Equal(t, model.RoleStudent, question.AuthorRole)
		assert.Equal(t, int64(0), question.AnswerCount)
	})

	t.Run("enforces the tag bounds", func(t *testing.T) {
		f := newQAFixture(t)
		student := seedVerifiedAccount(t, f.accountRepo, "amit@gmail.com", model.RoleStudent)

		_, err := f.usecase.AskQuestion(context.Background(), student.ID.Hex(), AskQuestionParams{
			Title: "No tags", Body: "...", Tags: nil,
		})
		assert.ErrorIs(t, err, ErrInvalidTags)

		_, err = f.usecase.AskQuestion(context.Background(), student.ID.Hex(), AskQuestionParams{
			Title: "Too many tags", Body: "...",
			Tags: []string{"a", "b", "c", "d", "e", "f"},
		})
		assert.ErrorIs(t, err, ErrInvalidTags)
	})

	t.Run("requires a verified account", func(t *testing.T) {
		f := newQAFixture(t)
		student := seedAccount(t, f.accountRepo, &model.Account{
			PersonalEmail: "amit@gmail.com",
			Role:          model.RoleStudent,
		})

		_, err := f.usecase.AskQuestion(context.Background(), student.ID.Hex(), AskQuestionParams{
			Title: "Question", Body: "...", Tags: []string{"career"},
		})
		assert.ErrorIs(t, err, ErrNotVerified)
	})
}

func TestPostAnswer(t *testing.T) {
	seedQuestion := func(t *testing.T, f *qaFixture) *model.Question {
		t.Helper()
		student := seedVerifiedAccount(t, f.accountRepo, "asker@gmail.com", model.RoleStudent)
		question, err := f.usecase.AskQuestion(context.Background(), student.ID.Hex(), AskQuestionParams{
			Title: "How to switch to data engineering?", Body: "...", Tags: []string{"career"},
		})
		require.NoError(t, err)
		return question
	}

	t.Run("alumni can answer and an event is published", func(t *testing.T) {
		f := newQAFixture(t)
		question := seedQuestion(t, f)
		alumni := seedVerifiedAccount(t, f.accountRepo, "priya@gmail.com", model.RoleAlumni)

		answer, err := f.usecase.PostAnswer(context.Background(), alumni.ID.Hex(), question.ID.Hex(), "Start with SQL.")
		require.NoError(t, err)
		assert.Equal(t, model.RoleAlumni, answer.AuthorRole)
		assert.Equal(t, 1, f.producer.published())
	})

	t.Run("students cannot answer", func(t *testing.T) {
		f := newQAFixture(t)
		question := seedQuestion(t, f)
		student := seedVerifiedAccount(t, f.accountRepo, "amit@gmail.com", model.RoleStudent)

		_, err := f.usecase.PostAnswer(context.Background(), student.ID.Hex(), question.ID.Hex(), "Me too.")
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("recruiters cannot answer", func(t *testing.T) {
		f := newQAFixture(t)
		question := seedQuestion(t, f)
		recruiter := seedVerifiedAccount(t, f.accountRepo, "hr@bigco.example", model.RoleRecruiter)

		_, err := f.usecase.PostAnswer(context.Background(), recruiter.ID.Hex(), question.ID.Hex(), "Apply here.")
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("subscribers receive a fresh snapshot", func(t *testing.T) {
		f := newQAFixture(t)
		question := seedQuestion(t, f)
		alumni := seedVerifiedAccount(t, f.accountRepo, "priya@gmail.com", model.RoleAlumni)

		snapshots, cancel, err := f.streams.Subscribe(context.Background(), question.ID.Hex())
		require.NoError(t, err)
		defer cancel()

		// Initial snapshot is empty.
		assert.Empty(t, <-snapshots)

		_, err = f.usecase.PostAnswer(context.Background(), alumni.ID.Hex(), question.ID.Hex(), "Start with SQL.")
		require.NoError(t, err)

		assert.Len(t, <-snapshots, 1)
	})
}

func TestAcceptAnswer(t *testing.T) {
	setup := func(t *testing.T, f *qaFixture) (asker *model.Account, question *model.Question, answer *model.Answer) {
		t.Helper()

		asker = seedVerifiedAccount(t, f.accountRepo, "asker@gmail.com", model.RoleStudent)
		var err error
		question, err = f.usecase.AskQuestion(context.Background(), asker.ID.Hex(), AskQuestionParams{
			Title: "Which cloud certification first?", Body: "...", Tags: []string{"cloud"},
		})
		require.NoError(t, err)

		alumni := seedVerifiedAccount(t, f.accountRepo, "priya@gmail.com", model.RoleAlumni)
		answer, err = f.usecase.PostAnswer(context.Background(), alumni.ID.Hex(), question.ID.Hex(), "Start small.")
		require.NoError(t, err)

		return asker, question, answer
	}

	t.Run("the question author accepts an answer", func(t *testing.T) {
		f := newQAFixture(t)
		asker, question, answer := setup(t, f)

		err := f.usecase.AcceptAnswer(context.Background(), asker.ID.Hex(), question.ID.Hex(), answer.ID.Hex())
		require.NoError(t, err)

		stored, err := f.answerRepo.GetAnswer(context.Background(), answer.ID.Hex())
		require.NoError(t, err)
		assert.True(t, stored.IsAccepted)
	})

	t.Run("anyone else is rejected", func(t *testing.T) {
		f := newQAFixture(t)
		_, question, answer := setup(t, f)
		other := seedVerifiedAccount(t, f.accountRepo, "other@gmail.com", model.RoleStudent)

		err := f.usecase.AcceptAnswer(context.Background(), other.ID.Hex(), question.ID.Hex(), answer.ID.Hex())
		assert.ErrorIs(t, err, ErrNotQuestionAuthor)
	})
}

func TestGetAlumniProfile(t *testing.T) {
	t.Run("returns answer statistics", func(t *testing.T) {
		f := newQAFixture(t)
		asker := seedVerifiedAccount(t, f.accountRepo, "asker@gmail.com", model.RoleStudent)
		alumni := seedVerifiedAccount(t, f.accountRepo, "priya@gmail.com", model.RoleAlumni)

		question, err := f.usecase.AskQuestion(context.Background(), asker.ID.Hex(), AskQuestionParams{
			Title: "Worth doing a masters?", Body: "...", Tags: []string{"career"},
		})
		require.NoError(t, err)

		first, err := f.usecase.PostAnswer(context.Background(), alumni.ID.Hex(), question.ID.Hex(), "Depends.")
		require.NoError(t, err)
		_, err = f.usecase.PostAnswer(context.Background(), alumni.ID.Hex(), question.ID.Hex(), "More detail.")
		require.NoError(t, err)

		require.NoError(t, f.usecase.AcceptAnswer(context.Background(), asker.ID.Hex(), question.ID.Hex(), first.ID.Hex()))

		view, err := f.usecase.GetAlumniProfile(context.Background(), alumni.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, int64(2), view.AnswerCount)
		assert.Equal(t, int64(1), view.AcceptedAnswerCount)
	})

	t.Run("hides non-alumni accounts", func(t *testing.T) {
		f := newQAFixture(t)
		student := seedVerifiedAccount(t, f.accountRepo, "amit@gmail.com", model.RoleStudent)

		_, err := f.usecase.GetAlumniProfile(context.Background(), student.ID.Hex())
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestListAlumni(t *testing.T) {
	t.Run("filters by branch", func(t *testing.T) {
		f := newQAFixture(t)

		cse := seedVerifiedAccount(t, f.accountRepo, "cse@gmail.com", model.RoleAlumni)
		_, err := f.accountRepo.UpdateAccount(context.Background(), cse.ID.Hex(), repository.UpdateAccountParams{
			AlumniProfile: &model.AlumniProfile{Branch: "CSE", GraduationYear: 2019},
		})
		require.NoError(t, err)

		ece := seedVerifiedAccount(t, f.accountRepo, "ece@gmail.com", model.RoleAlumni)
		_, err = f.accountRepo.UpdateAccount(context.Background(), ece.ID.Hex(), repository.UpdateAccountParams{
			AlumniProfile: &model.AlumniProfile{Branch: "ECE", GraduationYear: 2020},
		})
		require.NoError(t, err)

		branch := "CSE"
		result, err := f.usecase.ListAlumni(context.Background(), repository.ListAlumniParams{Branch: &branch})
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, cse.ID, result[0].ID)
	})
}
