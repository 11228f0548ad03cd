package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quizdeck/backend/internal/models"
	"github.com/quizdeck/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedQuestion(t *testing.T, s *Store) (models.Subject, uuid.UUID, []models.Option) {
	t.Helper()
	ctx := context.Background()
	sub, err := s.InsertSubject(ctx, "Math")
	require.NoError(t, err)
	topic, err := s.InsertTopic(ctx, sub.ID, "Algebra")
	require.NoError(t, err)
	qid, err := s.CreateQuestion(ctx, &models.Question{SubjectID: sub.ID, TopicID: topic.ID, Statement: "2+2?"},
		[]models.NewOption{{Text: "3"}, {Text: "4", IsCorrect: true}})
	require.NoError(t, err)
	q, err := s.GetQuestion(ctx, qid)
	require.NoError(t, err)
	return *sub, qid, q.Options
}

func TestSubjectNamesAreCaseInsensitive(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.InsertSubject(ctx, "Math")
	require.NoError(t, err)

	_, err = s.InsertSubject(ctx, "MATH")
	assert.ErrorIs(t, err, store.ErrConflict)

	found, err := s.FindSubjectByName(ctx, "math")
	require.NoError(t, err)
	assert.Equal(t, "Math", found.Name)
}

func TestUpsertAnswerReplacesWithinSession(t *testing.T) {
	s := New()
	ctx := context.Background()
	sub, qid, opts := seedQuestion(t, s)
	user := uuid.New()
	sid, err := s.InsertSession(ctx, user, sub.ID, time.Now())
	require.NoError(t, err)

	first, err := s.UpsertAnswer(ctx, &models.Answer{UserID: user, QuestionID: qid, SessionID: sid, SelectedOptionID: opts[0].ID, CreatedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, s.SetErrorType(ctx, user, first, models.ErrorKnowledge))

	second, err := s.UpsertAnswer(ctx, &models.Answer{UserID: user, QuestionID: qid, SessionID: sid, SelectedOptionID: opts[1].ID, IsCorrect: true, CreatedAt: time.Now()})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	n, err := s.CountAnswers(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Nil(t, s.answers[first].ErrorType)
	assert.True(t, s.answers[first].IsCorrect)
}

func TestUpsertAnswerRejectsForeignSession(t *testing.T) {
	s := New()
	ctx := context.Background()
	sub, qid, opts := seedQuestion(t, s)
	sid, err := s.InsertSession(ctx, uuid.New(), sub.ID, time.Now())
	require.NoError(t, err)

	_, err = s.UpsertAnswer(ctx, &models.Answer{UserID: uuid.New(), QuestionID: qid, SessionID: sid, SelectedOptionID: opts[0].ID})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteSubjectCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	sub, qid, opts := seedQuestion(t, s)
	user := uuid.New()
	sid, err := s.InsertSession(ctx, user, sub.ID, time.Now())
	require.NoError(t, err)
	_, err = s.UpsertAnswer(ctx, &models.Answer{UserID: user, QuestionID: qid, SessionID: sid, SelectedOptionID: opts[0].ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteSubject(ctx, sub.ID))

	_, err = s.GetQuestion(ctx, qid)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetSession(ctx, user, sid)
	assert.ErrorIs(t, err, store.ErrNotFound)
	stats, err := s.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.AdminStats{}, *stats)

	assert.ErrorIs(t, s.DeleteSubject(ctx, sub.ID), store.ErrNotFound)
}

func TestFailIfMatchesPredicate(t *testing.T) {
	s := New()
	boom := errors.New("boom")
	s.FailIf("InsertSubject", func(arg any) bool { return arg.(string) == "Bad" }, boom)

	_, err := s.InsertSubject(context.Background(), "Good")
	assert.NoError(t, err)
	_, err = s.InsertSubject(context.Background(), "Bad")
	assert.ErrorIs(t, err, boom)

	s.ClearFailures()
	_, err = s.InsertSubject(context.Background(), "Bad")
	assert.NoError(t, err)
}

func TestListIncorrectAnswersOrdersNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	sub, qid, opts := seedQuestion(t, s)
	user := uuid.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		sid, err := s.InsertSession(ctx, user, sub.ID, base)
		require.NoError(t, err)
		_, err = s.UpsertAnswer(ctx, &models.Answer{UserID: user, QuestionID: qid, SessionID: sid,
			SelectedOptionID: opts[0].ID, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}

	rows, err := s.ListIncorrectAnswers(ctx, user, models.ReviewFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, base.Add(2*time.Hour), rows[0].CreatedAt)
	assert.Equal(t, base, rows[2].CreatedAt)
	assert.Equal(t, "Math", rows[0].SubjectName)
	assert.Equal(t, "Algebra", rows[0].TopicName)
	assert.Len(t, rows[0].Options, 2)
}
