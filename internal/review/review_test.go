package review

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/quizdeck/backend/internal/apperr"
	"github.com/quizdeck/backend/internal/auth"
	"github.com/quizdeck/backend/internal/logger"
	"github.com/quizdeck/backend/internal/models"
	"github.com/quizdeck/backend/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errType(t models.ErrorType) *models.ErrorType { return &t }

func TestFold(t *testing.T) {
	q1, q2 := uuid.New(), uuid.New()
	recent, older := uuid.New(), uuid.New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	entries := Fold([]models.IncorrectAnswer{
		{QuestionID: q1, SelectedOptionID: recent, CreatedAt: base.Add(3 * time.Hour), SubjectName: "Math"},
		{QuestionID: q2, SelectedOptionID: uuid.New(), CreatedAt: base.Add(2 * time.Hour), ErrorType: errType(models.ErrorAttention)},
		{QuestionID: q1, SelectedOptionID: older, CreatedAt: base.Add(time.Hour), ErrorType: errType(models.ErrorKnowledge)},
		{QuestionID: q1, SelectedOptionID: older, CreatedAt: base, ErrorType: errType(models.ErrorKnowledge)},
	})

	require.Len(t, entries, 2)
	assert.Equal(t, q1, entries[0].QuestionID)
	assert.Equal(t, 3, entries[0].ErrorCount)
	assert.Equal(t, []models.ErrorType{models.ErrorKnowledge}, entries[0].ErrorTypes)
	assert.Equal(t, recent, entries[0].LastSelectedOptionID)
	assert.Equal(t, base.Add(3*time.Hour), entries[0].LastAnsweredAt)
	assert.Equal(t, q2, entries[1].QuestionID)
	assert.Equal(t, 1, entries[1].ErrorCount)
}

func TestFoldEmpty(t *testing.T) {
	entries := Fold(nil)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		pct  int
		want models.Severity
	}{
		{0, models.SeverityLow},
		{19, models.SeverityLow},
		{20, models.SeverityMedium},
		{39, models.SeverityMedium},
		{40, models.SeverityHigh},
		{100, models.SeverityHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SeverityFor(tt.pct), "pct %d", tt.pct)
	}
}

func TestSummarize(t *testing.T) {
	entries := []models.ReviewEntry{
		{ErrorTypes: []models.ErrorType{models.ErrorKnowledge, models.ErrorAttention}},
		{ErrorTypes: []models.ErrorType{models.ErrorKnowledge}},
		{ErrorTypes: []models.ErrorType{}},
	}
	sum := Summarize(entries, 4, 10)

	assert.Equal(t, 3, sum.TotalToReview)
	assert.Equal(t, 2, sum.KnowledgeCount)
	assert.Equal(t, 1, sum.AttentionCount)
	assert.Equal(t, 30, sum.ErrorRate)
	assert.Equal(t, models.SeverityMedium, sum.Severity)
	assert.Equal(t, 50, sum.KnowledgePct)
	assert.Equal(t, models.SeverityHigh, sum.KnowledgeSeverity)
	assert.Equal(t, 25, sum.AttentionPct)
	assert.Equal(t, models.SeverityMedium, sum.AttentionSeverity)

	empty := Summarize(nil, 0, 0)
	assert.Zero(t, empty.ErrorRate)
	assert.Equal(t, models.SeverityLow, empty.Severity)
}

func TestGroupSortsBySubject(t *testing.T) {
	groups := Group([]models.ReviewEntry{
		{SubjectName: "Português", ErrorCount: 1},
		{SubjectName: "Direito", ErrorCount: 2},
		{SubjectName: "Português", ErrorCount: 3},
	})
	require.Len(t, groups, 2)
	assert.Equal(t, "Direito", groups[0].SubjectName)
	assert.Equal(t, "Português", groups[1].SubjectName)
	require.Len(t, groups[1].Entries, 2)
	assert.Equal(t, 1, groups[1].Entries[0].ErrorCount)
}

type fixture struct {
	store   *memory.Store
	svc     *Service
	user    uuid.UUID
	subject uuid.UUID
	qid     uuid.UUID
	options []models.Option
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	sub, err := st.InsertSubject(ctx, "Math")
	require.NoError(t, err)
	topic, err := st.InsertTopic(ctx, sub.ID, "Algebra")
	require.NoError(t, err)
	qid, err := st.CreateQuestion(ctx, &models.Question{SubjectID: sub.ID, TopicID: topic.ID, Statement: "x + 1 = 3?"},
		[]models.NewOption{{Text: "1"}, {Text: "2", IsCorrect: true}, {Text: "3"}})
	require.NoError(t, err)
	q, err := st.GetQuestion(ctx, qid)
	require.NoError(t, err)
	return &fixture{store: st, svc: NewService(st, logger.Nop()), user: uuid.New(), subject: sub.ID, qid: qid, options: q.Options}
}

// answer records an answer in a fresh session, the way a repeat attempt would.
func (f *fixture) answer(t *testing.T, opt int, correct bool, at time.Time, et *models.ErrorType) {
	t.Helper()
	ctx := context.Background()
	sid, err := f.store.InsertSession(ctx, f.user, f.subject, at)
	require.NoError(t, err)
	id, err := f.store.UpsertAnswer(ctx, &models.Answer{
		UserID: f.user, QuestionID: f.qid, SessionID: sid,
		SelectedOptionID: f.options[opt].ID, IsCorrect: correct, CreatedAt: at,
	})
	require.NoError(t, err)
	if et != nil {
		require.NoError(t, f.store.SetErrorType(ctx, f.user, id, *et))
	}
}

func TestBuildReviewFoldsHistory(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.answer(t, 0, false, base.Add(3*time.Hour), nil)
	f.answer(t, 2, false, base.Add(time.Hour), errType(models.ErrorKnowledge))
	f.answer(t, 1, true, base.Add(2*time.Hour), nil)

	report, err := f.svc.BuildReview(context.Background(), f.user, models.ReviewFilter{})
	require.NoError(t, err)

	require.Len(t, report.Entries, 1)
	e := report.Entries[0]
	assert.Equal(t, 2, e.ErrorCount)
	assert.Equal(t, []models.ErrorType{models.ErrorKnowledge}, e.ErrorTypes)
	assert.Equal(t, f.options[0].ID, e.LastSelectedOptionID)
	assert.Len(t, e.Options, 3)

	assert.Equal(t, 2, report.Summary.TotalIncorrect)
	assert.Equal(t, 3, report.Summary.TotalAnswers)
	assert.Equal(t, 33, report.Summary.ErrorRate)
	require.Len(t, report.Groups, 1)
	assert.Equal(t, "Math", report.Groups[0].SubjectName)
}

func TestBuildReviewFilters(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.answer(t, 0, false, base, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter models.ReviewFilter
		want   int
	}{
		{"all", models.ReviewFilter{ErrorType: models.FilterAll}, 1},
		{"unclassified", models.ReviewFilter{ErrorType: models.FilterUnclassified}, 1},
		{"knowledge", models.ReviewFilter{ErrorType: models.FilterKnowledge}, 0},
		{"other subject", models.ReviewFilter{SubjectID: new(uuid.UUID)}, 0},
		{"own subject", models.ReviewFilter{SubjectID: &f.subject}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := f.svc.BuildReview(ctx, f.user, tt.filter)
			require.NoError(t, err)
			assert.Len(t, report.Entries, tt.want)
		})
	}

	_, err := f.svc.BuildReview(ctx, f.user, models.ReviewFilter{ErrorType: "sloppy"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.svc.BuildReview(ctx, uuid.Nil, models.ReviewFilter{})
	assert.True(t, apperr.Is(err, apperr.KindAuth))
}

func TestBuildReviewSurvivesCountFailure(t *testing.T) {
	f := newFixture(t)
	f.answer(t, 0, false, time.Now(), nil)
	f.store.FailOn("CountAnswers", errors.New("timeout"))

	report, err := f.svc.BuildReview(context.Background(), f.user, models.ReviewFilter{})
	require.NoError(t, err)
	assert.Len(t, report.Entries, 1)
	assert.Zero(t, report.Summary.TotalAnswers)
	assert.Zero(t, report.Summary.ErrorRate)
}

func TestBuildReviewListFailure(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("ListIncorrectAnswers", errors.New("timeout"))

	_, err := f.svc.BuildReview(context.Background(), f.user, models.ReviewFilter{})
	assert.True(t, apperr.Is(err, apperr.KindPersistence))
}

func TestRemoveThenAnswerWrongAgain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.answer(t, 0, false, base, nil)
	f.answer(t, 2, false, base.Add(time.Hour), nil)
	f.answer(t, 1, true, base.Add(2*time.Hour), nil)

	n, err := f.svc.RemoveFromReview(ctx, f.user, f.qid)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	report, err := f.svc.BuildReview(ctx, f.user, models.ReviewFilter{})
	require.NoError(t, err)
	assert.Empty(t, report.Entries)
	assert.Equal(t, 1, report.Summary.TotalAnswers, "correct answers are kept")

	f.answer(t, 0, false, base.Add(3*time.Hour), nil)
	report, err = f.svc.BuildReview(ctx, f.user, models.ReviewFilter{})
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, 1, report.Entries[0].ErrorCount)
}

func TestReviewHandler(t *testing.T) {
	f := newFixture(t)
	f.answer(t, 0, false, time.Now(), nil)
	r := mux.NewRouter()
	NewHandler(f.svc, logger.Nop()).RegisterRoutes(r)

	serve := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: f.user, Role: models.RoleStudent}))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/review?errorType=unclassified&subject="+f.subject.String()).Code)
	assert.Equal(t, http.StatusBadRequest, serve(http.MethodGet, "/review?subject=abc").Code)
	assert.Equal(t, http.StatusBadRequest, serve(http.MethodGet, "/review?errorType=nope").Code)
	assert.Equal(t, http.StatusBadRequest, serve(http.MethodDelete, "/review/abc").Code)

	rec := serve(http.MethodDelete, "/review/"+f.qid.String())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":1}`, rec.Body.String())
}
