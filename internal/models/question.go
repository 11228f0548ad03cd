package models

import (
	"time"

	"github.com/google/uuid"
)

// ── Stored entities ─────────────────────────────────────

type Question struct {
	ID          uuid.UUID `json:"id"`
	SubjectID   uuid.UUID `json:"subject_id"`
	TopicID     uuid.UUID `json:"topic_id"`
	Statement   string    `json:"statement"`
	Explanation *string   `json:"explanation,omitempty"`
	Tips        *string   `json:"tips,omitempty"`
	Banca       *string   `json:"banca,omitempty"`
	Ano         *int      `json:"ano,omitempty"`
	Orgao       *string   `json:"orgao,omitempty"`
	Cargo       *string   `json:"cargo,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// Populated by joins
	SubjectName string   `json:"subject_name,omitempty"`
	TopicName   string   `json:"topic_name,omitempty"`
	Options     []Option `json:"options,omitempty"`
}

type Option struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	Text       string    `json:"option_text"`
	IsCorrect  bool      `json:"is_correct"`
	Position   int       `json:"position"`
}

// NewOption is an option before it has been written.
type NewOption struct {
	Text      string `json:"option_text"`
	IsCorrect bool   `json:"is_correct"`
}

// ── Ingestion payloads ──────────────────────────────────

// QuestionMeta holds the optional exam metadata shared by single and batch ingestion.
type QuestionMeta struct {
	Banca *string `json:"banca,omitempty"`
	Ano   *int    `json:"ano,omitempty"`
	Orgao *string `json:"orgao,omitempty"`
	Cargo *string `json:"cargo,omitempty"`
}

type QuestionPayload struct {
	Subject            string   `json:"subject"`
	Topic              string   `json:"topic"`
	Statement          string   `json:"statement"`
	Explanation        *string  `json:"explanation,omitempty"`
	Tips               *string  `json:"tips,omitempty"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
	QuestionMeta
}

// BatchShared is applied to every question of a batch.
type BatchShared struct {
	Subject string `json:"subject"`
	Topic   string `json:"topic"`
	QuestionMeta
}

type BatchQuestion struct {
	Statement          string   `json:"statement"`
	Explanation        *string  `json:"explanation,omitempty"`
	Tips               *string  `json:"tips,omitempty"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
}

type BatchPayload struct {
	Shared    BatchShared     `json:"shared"`
	Questions []BatchQuestion `json:"questions"`
}

type BatchItemResult struct {
	Index      int        `json:"index"`
	QuestionID *uuid.UUID `json:"question_id,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type BatchResult struct {
	CreatedCount   int               `json:"created_count"`
	TotalAttempted int               `json:"total_attempted"`
	Items          []BatchItemResult `json:"items"`
}

// ── Admin views ─────────────────────────────────────────

type QuestionPage struct {
	Questions []Question `json:"questions"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
}

type AdminStats struct {
	TotalQuestions    int `json:"total_questions"`
	TotalSubjects     int `json:"total_subjects"`
	TotalUsers        int `json:"total_users"`
	TotalSessions     int `json:"total_sessions"`
	CompletedSessions int `json:"completed_sessions"`
	TotalAnswers      int `json:"total_answers"`
}

type CreatedResponse struct {
	ID uuid.UUID `json:"id"`
}
