// Package notebook keeps a user's study notes and the passages they
// highlighted while answering questions.
package notebook

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quizdeck/backend/internal/apperr"
	"github.com/quizdeck/backend/internal/logger"
	"github.com/quizdeck/backend/internal/models"
	"github.com/quizdeck/backend/internal/store"
)

type Service struct {
	store store.NotebookStore
	now   func() time.Time
	log   *logger.Logger
}

func NewService(st store.NotebookStore, log *logger.Logger) *Service {
	return &Service{store: st, now: time.Now, log: log.With("service", "NotebookService")}
}

func (s *Service) AddNote(ctx context.Context, userID, subjectID uuid.UUID, content string) (uuid.UUID, error) {
	const op = "add note"

	if userID == uuid.Nil {
		return uuid.Nil, apperr.Auth(op)
	}
	content = strings.TrimSpace(content)
	if subjectID == uuid.Nil || content == "" {
		return uuid.Nil, apperr.Validation(op, "subject_id and content are required")
	}
	return s.insert(ctx, op, &models.NotebookEntry{
		UserID:    userID,
		SubjectID: subjectID,
		Content:   content,
		EntryType: models.EntryUserNote,
	})
}

// AddHighlight saves text the user marked in a question's statement.
func (s *Service) AddHighlight(ctx context.Context, userID, questionID, subjectID uuid.UUID, text string) (uuid.UUID, error) {
	const op = "add highlight"

	if userID == uuid.Nil {
		return uuid.Nil, apperr.Auth(op)
	}
	text = strings.TrimSpace(text)
	if questionID == uuid.Nil || subjectID == uuid.Nil || text == "" {
		return uuid.Nil, apperr.Validation(op, "question_id, subject_id and text are required")
	}
	return s.insert(ctx, op, &models.NotebookEntry{
		UserID:           userID,
		SubjectID:        subjectID,
		Content:          text,
		EntryType:        models.EntryHighlight,
		SourceQuestionID: &questionID,
	})
}

func (s *Service) insert(ctx context.Context, op string, e *models.NotebookEntry) (uuid.UUID, error) {
	e.CreatedAt = s.now()
	id, err := s.store.InsertNotebookEntry(ctx, e)
	if err != nil {
		return uuid.Nil, store.Wrap(op, err)
	}
	s.log.Debug("notebook entry added", "entry_id", id, "type", e.EntryType, "user_id", e.UserID)
	return id, nil
}

// List returns the user's entries grouped by subject name, newest first
// within each group.
func (s *Service) List(ctx context.Context, userID uuid.UUID) (*models.NotebookView, error) {
	const op = "list notebook"

	if userID == uuid.Nil {
		return nil, apperr.Auth(op)
	}
	entries, err := s.store.ListNotebookEntries(ctx, userID)
	if err != nil {
		return nil, store.Wrap(op, err)
	}

	view := &models.NotebookView{Groups: []models.NotebookGroup{}, Total: len(entries)}
	bySubject := make(map[string][]models.NotebookEntry)
	for _, e := range entries {
		switch e.EntryType {
		case models.EntryHighlight:
			view.HighlightCount++
		case models.EntryUserNote:
			view.NoteCount++
		}
		bySubject[e.SubjectName] = append(bySubject[e.SubjectName], e)
	}
	for name, es := range bySubject {
		view.Groups = append(view.Groups, models.NotebookGroup{SubjectName: name, Entries: es})
	}
	sort.Slice(view.Groups, func(i, j int) bool { return view.Groups[i].SubjectName < view.Groups[j].SubjectName })
	return view, nil
}

func (s *Service) Delete(ctx context.Context, userID, entryID uuid.UUID) error {
	const op = "delete notebook entry"

	if userID == uuid.Nil {
		return apperr.Auth(op)
	}
	if err := s.store.DeleteNotebookEntry(ctx, userID, entryID); err != nil {
		return store.Wrap(op, err)
	}
	return nil
}
