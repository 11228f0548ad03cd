package models

import (
	"time"

	"github.com/google/uuid"
)

type ErrorType string

const (
	ErrorAttention ErrorType = "attention"
	ErrorKnowledge ErrorType = "knowledge"
)

func (t ErrorType) Valid() bool {
	return t == ErrorAttention || t == ErrorKnowledge
}

type Answer struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	QuestionID       uuid.UUID  `json:"question_id"`
	SelectedOptionID uuid.UUID  `json:"selected_option_id"`
	IsCorrect        bool       `json:"is_correct"`
	SessionID        uuid.UUID  `json:"session_id"`
	ErrorType        *ErrorType `json:"error_type,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type RecordAnswerRequest struct {
	QuestionID       uuid.UUID `json:"question_id"`
	SelectedOptionID uuid.UUID `json:"selected_option_id"`
	IsCorrect        bool      `json:"is_correct"`
	SessionID        uuid.UUID `json:"session_id"`
}

type RecordAnswerResponse struct {
	AnswerID *uuid.UUID `json:"answer_id"`
}

type ClassifyRequest struct {
	ErrorType ErrorType `json:"error_type"`
}
