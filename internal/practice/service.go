// Package practice runs quiz sessions, records answers within them and
// aggregates completed sessions into statistics.
package practice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quizdeck/backend/internal/apperr"
	"github.com/quizdeck/backend/internal/logger"
	"github.com/quizdeck/backend/internal/models"
	"github.com/quizdeck/backend/internal/store"
)

const defaultRecentLimit = 5

type Store interface {
	store.SessionStore
	UpsertAnswer(ctx context.Context, a *models.Answer) (uuid.UUID, error)
	SetErrorType(ctx context.Context, userID, answerID uuid.UUID, t models.ErrorType) error
}

type Service struct {
	store Store
	now   func() time.Time
	log   *logger.Logger
}

func NewService(st Store, log *logger.Logger) *Service {
	return &Service{store: st, now: time.Now, log: log.With("service", "PracticeService")}
}

// ── Session lifecycle ───────────────────────────────────

func (s *Service) Start(ctx context.Context, userID, subjectID uuid.UUID) (uuid.UUID, error) {
	const op = "start session"

	if userID == uuid.Nil {
		return uuid.Nil, apperr.Auth(op)
	}
	id, err := s.store.InsertSession(ctx, userID, subjectID, s.now())
	if err != nil {
		return uuid.Nil, store.Wrap(op, err)
	}
	s.log.Debug("session started", "session_id", id, "user_id", userID, "subject_id", subjectID)
	return id, nil
}

// Finish stamps the session as completed with its final score. Calling it
// again overwrites the previous result.
func (s *Service) Finish(ctx context.Context, userID, sessionID uuid.UUID, score, totalQuestions int) error {
	const op = "finish session"

	if userID == uuid.Nil {
		return apperr.Auth(op)
	}
	if totalQuestions < 0 || score < 0 || score > totalQuestions {
		return apperr.Validation(op, "score %d must be between 0 and total_questions %d", score, totalQuestions)
	}
	if err := s.store.CompleteSession(ctx, userID, sessionID, score, totalQuestions, s.now()); err != nil {
		return store.Wrap(op, err)
	}
	s.log.Debug("session finished", "session_id", sessionID, "score", score, "total", totalQuestions)
	return nil
}

// ── Answers ─────────────────────────────────────────────

// Record stores the user's answer to a question within a session. A second
// answer to the same question in the same session replaces the first.
func (s *Service) Record(ctx context.Context, userID uuid.UUID, req models.RecordAnswerRequest) (uuid.UUID, error) {
	const op = "record answer"

	if userID == uuid.Nil {
		return uuid.Nil, apperr.Auth(op)
	}
	if req.QuestionID == uuid.Nil || req.SelectedOptionID == uuid.Nil || req.SessionID == uuid.Nil {
		return uuid.Nil, apperr.Validation(op, "question_id, selected_option_id and session_id are required")
	}

	id, err := s.store.UpsertAnswer(ctx, &models.Answer{
		UserID:           userID,
		QuestionID:       req.QuestionID,
		SelectedOptionID: req.SelectedOptionID,
		IsCorrect:        req.IsCorrect,
		SessionID:        req.SessionID,
		CreatedAt:        s.now(),
	})
	if err != nil {
		return uuid.Nil, store.Wrap(op, err)
	}
	return id, nil
}

// Classify tags an answer with the kind of mistake the user made. It does not
// check that the answer was wrong or unclassified.
func (s *Service) Classify(ctx context.Context, userID, answerID uuid.UUID, t models.ErrorType) error {
	const op = "classify answer"

	if userID == uuid.Nil {
		return apperr.Auth(op)
	}
	if !t.Valid() {
		return apperr.Validation(op, "error_type must be %q or %q", models.ErrorAttention, models.ErrorKnowledge)
	}
	if err := s.store.SetErrorType(ctx, userID, answerID, t); err != nil {
		return store.Wrap(op, err)
	}
	return nil
}

// ── Statistics ──────────────────────────────────────────

// Performance summarizes completed sessions. Open sessions are ignored.
func (s *Service) Performance(ctx context.Context, userID uuid.UUID) (*models.PerformanceStats, error) {
	const op = "performance"

	if userID == uuid.Nil {
		return nil, apperr.Auth(op)
	}
	sessions, err := s.store.ListCompletedSessions(ctx, userID, 0)
	if err != nil {
		return nil, store.Wrap(op, err)
	}

	stats := &models.PerformanceStats{TotalSessions: len(sessions)}
	for _, sess := range sessions {
		stats.TotalQuestionsAnswered += deref(sess.TotalQuestions)
		stats.TotalCorrect += deref(sess.Score)
	}
	stats.Accuracy = models.Percent(stats.TotalCorrect, stats.TotalQuestionsAnswered)
	return stats, nil
}

func (s *Service) RecentSessions(ctx context.Context, userID uuid.UUID, limit int) ([]models.RecentSession, error) {
	const op = "recent sessions"

	if userID == uuid.Nil {
		return nil, apperr.Auth(op)
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	sessions, err := s.store.ListCompletedSessions(ctx, userID, limit)
	if err != nil {
		return nil, store.Wrap(op, err)
	}

	out := make([]models.RecentSession, 0, len(sessions))
	for _, sess := range sessions {
		score, total := deref(sess.Score), deref(sess.TotalQuestions)
		acc := models.Percent(score, total)
		out = append(out, models.RecentSession{
			ID:             sess.ID,
			SubjectID:      sess.SubjectID,
			SubjectName:    sess.SubjectName,
			CompletedAt:    *sess.CompletedAt,
			Score:          score,
			TotalQuestions: total,
			Accuracy:       acc,
			Tier:           models.TierFor(acc),
		})
	}
	return out, nil
}

// SubjectStats lists every subject with the caller's completed-session accuracy in it.
func (s *Service) SubjectStats(ctx context.Context, userID uuid.UUID) ([]models.SubjectStats, error) {
	const op = "subject stats"

	if userID == uuid.Nil {
		return nil, apperr.Auth(op)
	}
	counts, err := s.store.SubjectCounts(ctx, userID)
	if err != nil {
		return nil, store.Wrap(op, err)
	}

	out := make([]models.SubjectStats, 0, len(counts))
	for _, c := range counts {
		acc := models.Percent(c.ScoreSum, c.TotalQuestions)
		out = append(out, models.SubjectStats{
			ID:              c.SubjectID,
			Name:            c.SubjectName,
			QuestionCount:   c.QuestionCount,
			SessionCount:    c.SessionCount,
			AverageAccuracy: acc,
			Tier:            models.TierFor(acc),
		})
	}
	return out, nil
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
