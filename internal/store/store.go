// Package store defines the persistence contracts the services depend on.
// Implementations live in store/postgres and store/memory.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quizdeck/backend/internal/apperr"
	"github.com/quizdeck/backend/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

type TaxonomyStore interface {
	FindSubjectByName(ctx context.Context, name string) (*models.Subject, error)
	InsertSubject(ctx context.Context, name string) (*models.Subject, error)
	FindTopicByName(ctx context.Context, subjectID uuid.UUID, name string) (*models.Topic, error)
	InsertTopic(ctx context.Context, subjectID uuid.UUID, name string) (*models.Topic, error)
	GetSubject(ctx context.Context, id uuid.UUID) (*models.Subject, error)
	DeleteSubject(ctx context.Context, id uuid.UUID) error
}

type QuestionStore interface {
	// CreateQuestion writes the question and its options in one transaction.
	CreateQuestion(ctx context.Context, q *models.Question, opts []models.NewOption) (uuid.UUID, error)
	// ReplaceQuestion updates the row and swaps its full option set atomically.
	ReplaceQuestion(ctx context.Context, q *models.Question, opts []models.NewOption) error
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
	GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error)
	ListQuestions(ctx context.Context, limit, offset int) ([]models.Question, int, error)
	ListSubjectQuestions(ctx context.Context, subjectID uuid.UUID) ([]models.Question, error)
	AdminStats(ctx context.Context) (*models.AdminStats, error)
}

type SessionStore interface {
	InsertSession(ctx context.Context, userID, subjectID uuid.UUID, startedAt time.Time) (uuid.UUID, error)
	CompleteSession(ctx context.Context, userID, sessionID uuid.UUID, score, total int, at time.Time) error
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*models.QuizSession, error)
	// ListCompletedSessions returns completed sessions newest first. limit <= 0 means no limit.
	ListCompletedSessions(ctx context.Context, userID uuid.UUID, limit int) ([]models.QuizSession, error)
	SubjectCounts(ctx context.Context, userID uuid.UUID) ([]models.SubjectCounts, error)
}

type AnswerStore interface {
	// UpsertAnswer inserts an answer or replaces the one already recorded for
	// the same (session, question) pair, clearing its classification.
	UpsertAnswer(ctx context.Context, a *models.Answer) (uuid.UUID, error)
	SetErrorType(ctx context.Context, userID, answerID uuid.UUID, t models.ErrorType) error
	// ListIncorrectAnswers returns wrong answers ordered created_at DESC, id DESC.
	ListIncorrectAnswers(ctx context.Context, userID uuid.UUID, filter models.ReviewFilter) ([]models.IncorrectAnswer, error)
	CountAnswers(ctx context.Context, userID uuid.UUID) (int, error)
	DeleteIncorrectAnswers(ctx context.Context, userID, questionID uuid.UUID) (int, error)
}

type NotebookStore interface {
	InsertNotebookEntry(ctx context.Context, e *models.NotebookEntry) (uuid.UUID, error)
	ListNotebookEntries(ctx context.Context, userID uuid.UUID) ([]models.NotebookEntry, error)
	DeleteNotebookEntry(ctx context.Context, userID, id uuid.UUID) error
}

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Store interface {
	TaxonomyStore
	QuestionStore
	SessionStore
	AnswerStore
	NotebookStore
	UserStore
}

// Wrap classifies a store error for the service layer. Errors that are
// already classified pass through unchanged.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if apperr.KindOf(err) != "" {
		return err
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound(op, err)
	case errors.Is(err, ErrConflict):
		return apperr.Validation(op, "%w", err)
	default:
		return apperr.Persistence(op, err)
	}
}
