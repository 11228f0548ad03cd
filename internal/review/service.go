// Package review derives the per-question review list from a user's wrong
// answers. Nothing is materialized: every read folds the answers again.
package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/quizdeck/backend/internal/apperr"
	"github.com/quizdeck/backend/internal/logger"
	"github.com/quizdeck/backend/internal/models"
	"github.com/quizdeck/backend/internal/store"
)

type Service struct {
	store store.AnswerStore
	log   *logger.Logger
}

func NewService(st store.AnswerStore, log *logger.Logger) *Service {
	return &Service{store: st, log: log.With("service", "ReviewService")}
}

func (s *Service) BuildReview(ctx context.Context, userID uuid.UUID, filter models.ReviewFilter) (*models.ReviewReport, error) {
	const op = "build review"

	if userID == uuid.Nil {
		return nil, apperr.Auth(op)
	}
	if !filter.ErrorType.Valid() {
		return nil, apperr.Validation(op, "unknown error type filter %q", filter.ErrorType)
	}

	answers, err := s.store.ListIncorrectAnswers(ctx, userID, filter)
	if err != nil {
		return nil, store.Wrap(op, err)
	}
	// A failed count only degrades the error rate to 0.
	total, err := s.store.CountAnswers(ctx, userID)
	if err != nil {
		s.log.Warn("count answers failed", "user_id", userID, "error", err)
		total = 0
	}

	entries := Fold(answers)
	return &models.ReviewReport{
		Entries: entries,
		Groups:  Group(entries),
		Summary: Summarize(entries, len(answers), total),
	}, nil
}

// RemoveFromReview deletes every wrong answer the user gave to the question.
// A later wrong answer puts it back on the list.
func (s *Service) RemoveFromReview(ctx context.Context, userID, questionID uuid.UUID) (int, error) {
	const op = "remove from review"

	if userID == uuid.Nil {
		return 0, apperr.Auth(op)
	}
	n, err := s.store.DeleteIncorrectAnswers(ctx, userID, questionID)
	if err != nil {
		return 0, store.Wrap(op, err)
	}
	s.log.Debug("removed from review", "user_id", userID, "question_id", questionID, "answers", n)
	return n, nil
}
