package queue

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// AnswerEventHandler applies an answer-created event. Delivery is
// at-least-once; the handler is responsible for idempotency.
type AnswerEventHandler interface {
	HandleAnswerCreated(ctx context.Context, questionID, answerID string) error
}

// AnswerEventConsumer reads answer-created events and hands them to the
// engagement counters.
type AnswerEventConsumer struct {
	reader  *kafka.Reader
	handler AnswerEventHandler
	logger  *zerolog.Logger
}

// NewAnswerEventConsumer creates a consumer for the answer event topic.
func NewAnswerEventConsumer(
	logger *zerolog.Logger,
	broker, topic, groupID string,
	handler AnswerEventHandler,
) *AnswerEventConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{broker},
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})

	return &AnswerEventConsumer{
		reader:  reader,
		handler: handler,
		logger:  logger,
	}
}

// Listen reads messages until the context is canceled.
func (c *AnswerEventConsumer) Listen(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error().Err(err).Msg("failed to read answer event")
			continue
		}

		var event AnswerCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Error().Err(err).Msg("failed to decode answer event")
			continue
		}

		if err := c.handler.HandleAnswerCreated(ctx, event.QuestionID, event.AnswerID); err != nil {
			c.logger.Error().Err(err).Str("answer_id", event.AnswerID).Msg("failed to apply answer event")
		}
	}
}

// Close closes the underlying reader.
func (c *AnswerEventConsumer) Close() error {
	return c.reader.Close()
}
