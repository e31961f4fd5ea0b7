package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
)

func TestAnswerStreams(t *testing.T) {
	questionID := bson.NewObjectID()

	addAnswer := func(t *testing.T, repo *fakeAnswerRepo, body string) {
		t.Helper()
		_, err := repo.CreateAnswer(context.Background(), &model.Answer{
			QuestionID: questionID,
			AuthorID:   bson.NewObjectID(),
			AuthorRole: model.RoleAlumni,
			Body:       body,
		})
		require.NoError(t, err)
	}

	t.Run("delivers the current snapshot on subscribe", func(t *testing.T) {
		answerRepo := newFakeAnswerRepo()
		addAnswer(t, answerRepo, "first")
		streams := NewAnswerStreams(answerRepo, testLogger())

		snapshots, cancel, err := streams.Subscribe(context.Background(), questionID.Hex())
		require.NoError(t, err)
		defer cancel()

		assert.Len(t, <-snapshots, 1)
	})

	t.Run("a slow subscriber only sees the latest snapshot", func(t *testing.T) {
		answerRepo := newFakeAnswerRepo()
		streams := NewAnswerStreams(answerRepo, testLogger())

		snapshots, cancel, err := streams.Subscribe(context.Background(), questionID.Hex())
		require.NoError(t, err)
		defer cancel()

		// The subscriber never drains, so each Notify replaces the
		// pending snapshot instead of blocking.
		addAnswer(t, answerRepo, "first")
		streams.Notify(context.Background(), questionID.Hex())
		addAnswer(t, answerRepo, "second")
		streams.Notify(context.Background(), questionID.Hex())

		assert.Len(t, <-snapshots, 2)
	})

	t.Run("cancel closes the channel", func(t *testing.T) {
		answerRepo := newFakeAnswerRepo()
		streams := NewAnswerStreams(answerRepo, testLogger())

		snapshots, cancel, err := streams.Subscribe(context.Background(), questionID.Hex())
		require.NoError(t, err)

		<-snapshots
		cancel()

		_, open := <-snapshots
		assert.False(t, open)

		// Notifying after cancel is a no-op.
		streams.Notify(context.Background(), questionID.Hex())
	})

	t.Run("cancel is safe to call twice", func(t *testing.T) {
		answerRepo := newFakeAnswerRepo()
		streams := NewAnswerStreams(answerRepo, testLogger())

		_, cancel, err := streams.Subscribe(context.Background(), questionID.Hex())
		require.NoError(t, err)

		cancel()
		cancel()
	})
}
