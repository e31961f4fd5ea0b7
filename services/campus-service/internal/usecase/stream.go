package usecase

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/repository"
)

// AnswerStreams fans out answer-list snapshots to subscribers of a question.
// Each notification carries the full current answer list, so a subscriber
// that misses an intermediate update still converges on the latest state.
type AnswerStreams struct {
	answerRepo repository.AnswerRepository
	logger     *zerolog.Logger

	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

type subscriber struct {
	ch chan []*model.Answer
}

// NewAnswerStreams creates a new stream broker backed by the answer repository.
func NewAnswerStreams(answerRepo repository.AnswerRepository, logger *zerolog.Logger) *AnswerStreams {
	return &AnswerStreams{
		answerRepo: answerRepo,
		logger:     logger,
		subs:       make(map[string]map[*subscriber]struct{}),
	}
}

// Subscribe registers for answer snapshots of a question. The initial
// snapshot is delivered immediately. The returned cancel func must be called
// when the subscriber is done; the channel is closed by it.
func (s *AnswerStreams) Subscribe(ctx context.Context, questionID string) (<-chan []*model.Answer, func(), error) {
	answers, err := s.answerRepo.ListAnswersByQuestion(ctx, questionID)
	if err != nil {
		return nil, nil, err
	}

	sub := &subscriber{ch: make(chan []*model.Answer, 1)}
	sub.ch <- answers

	s.mu.Lock()
	if s.subs[questionID] == nil {
		s.subs[questionID] = make(map[*subscriber]struct{})
	}
	s.subs[questionID][sub] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if set, ok := s.subs[questionID]; ok {
			if _, ok := set[sub]; ok {
				delete(set, sub)
				close(sub.ch)
			}
			if len(set) == 0 {
				delete(s.subs, questionID)
			}
		}
	}

	return sub.ch, cancel, nil
}

// Notify loads the current answer list for a question and delivers it to all
// subscribers. A slow subscriber has its stale pending snapshot replaced
// rather than blocking the publisher.
func (s *AnswerStreams) Notify(ctx context.Context, questionID string) {
	s.mu.Lock()
	if len(s.subs[questionID]) == 0 {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	answers, err := s.answerRepo.ListAnswersByQuestion(ctx, questionID)
	if err != nil {
		s.logger.Error().Err(err).Str("question_id", questionID).Msg("failed to load answers for stream")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for sub := range s.subs[questionID] {
		select {
		case sub.ch <- answers:
		default:
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- answers
		}
	}
}
