package notebook

import (
	"bytes"
	"context"
	"encoding/json"
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

func setup(t *testing.T) (*Service, uuid.UUID, uuid.UUID) {
	t.Helper()
	st := memory.New()
	svc := NewService(st, logger.Nop())
	clock := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	a, err := st.InsertSubject(context.Background(), "Informática")
	require.NoError(t, err)
	b, err := st.InsertSubject(context.Background(), "Administração")
	require.NoError(t, err)
	return svc, a.ID, b.ID
}

func TestListGroupsAndCounts(t *testing.T) {
	svc, infoID, admID := setup(t)
	ctx := context.Background()
	user := uuid.New()

	first, err := svc.AddNote(ctx, user, infoID, "  RAM é volátil ")
	require.NoError(t, err)
	_, err = svc.AddHighlight(ctx, user, uuid.New(), infoID, "memória cache")
	require.NoError(t, err)
	_, err = svc.AddNote(ctx, user, admID, "LIMPE")
	require.NoError(t, err)
	_, err = svc.AddNote(ctx, uuid.New(), admID, "someone else")
	require.NoError(t, err)

	view, err := svc.List(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, 1, view.HighlightCount)
	assert.Equal(t, 2, view.NoteCount)

	require.Len(t, view.Groups, 2)
	assert.Equal(t, "Administração", view.Groups[0].SubjectName)
	info := view.Groups[1]
	require.Len(t, info.Entries, 2)
	assert.Equal(t, models.EntryHighlight, info.Entries[0].EntryType, "newest first")
	assert.NotNil(t, info.Entries[0].SourceQuestionID)
	assert.Equal(t, first, info.Entries[1].ID)
	assert.Equal(t, "RAM é volátil", info.Entries[1].Content)
}

func TestAddValidation(t *testing.T) {
	svc, subjectID, _ := setup(t)
	ctx := context.Background()
	user := uuid.New()

	_, err := svc.AddNote(ctx, user, subjectID, "   ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.AddNote(ctx, user, uuid.Nil, "text")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.AddHighlight(ctx, user, uuid.Nil, subjectID, "text")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.AddNote(ctx, uuid.Nil, subjectID, "text")
	assert.True(t, apperr.Is(err, apperr.KindAuth))
	_, err = svc.AddNote(ctx, user, uuid.New(), "text")
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "unknown subject")
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	svc, subjectID, _ := setup(t)
	ctx := context.Background()
	owner := uuid.New()
	id, err := svc.AddNote(ctx, owner, subjectID, "mine")
	require.NoError(t, err)

	err = svc.Delete(ctx, uuid.New(), id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, svc.Delete(ctx, owner, id))
	view, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, view.Total)
	assert.Empty(t, view.Groups)
}

func TestNotebookHandler(t *testing.T) {
	svc, subjectID, _ := setup(t)
	user := uuid.New()
	r := mux.NewRouter()
	NewHandler(svc, logger.Nop()).RegisterRoutes(r)

	serve := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: user, Role: models.RoleStudent}))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := serve(http.MethodPost, "/notebook/notes", models.AddNoteRequest{SubjectID: subjectID, Content: "nota"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.CreatedResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = serve(http.MethodPost, "/notebook/highlights", models.AddHighlightRequest{QuestionID: uuid.New(), SubjectID: subjectID, Text: "trecho"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(http.MethodGet, "/notebook", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view models.NotebookView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, 2, view.Total)

	assert.Equal(t, http.StatusBadRequest, serve(http.MethodDelete, "/notebook/xyz", nil).Code)
	assert.Equal(t, http.StatusNoContent, serve(http.MethodDelete, "/notebook/"+created.ID.String(), nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(http.MethodDelete, "/notebook/"+created.ID.String(), nil).Code)
}
