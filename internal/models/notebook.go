package models

import (
	"time"

	"github.com/google/uuid"
)

type EntryType string

const (
	EntryHighlight EntryType = "highlight"
	EntryUserNote  EntryType = "user_note"
)

type NotebookEntry struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	SubjectID        uuid.UUID  `json:"subject_id"`
	Content          string     `json:"content"`
	EntryType        EntryType  `json:"entry_type"`
	SourceQuestionID *uuid.UUID `json:"source_question_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`

	SubjectName string `json:"subject_name,omitempty"`
}

type AddNoteRequest struct {
	SubjectID uuid.UUID `json:"subject_id"`
	Content   string    `json:"content"`
}

type AddHighlightRequest struct {
	QuestionID uuid.UUID `json:"question_id"`
	SubjectID  uuid.UUID `json:"subject_id"`
	Text       string    `json:"text"`
}

type NotebookGroup struct {
	SubjectName string          `json:"subject_name"`
	Entries     []NotebookEntry `json:"entries"`
}

type NotebookView struct {
	Groups         []NotebookGroup `json:"groups"`
	Total          int             `json:"total"`
	HighlightCount int             `json:"highlight_count"`
	NoteCount      int             `json:"note_count"`
}
