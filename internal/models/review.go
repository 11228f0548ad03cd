package models

import (
	"time"

	"github.com/google/uuid"
)

// ErrorTypeFilter narrows the review to one classification.
// "unclassified" selects answers with no classification; "" or "all" selects everything.
type ErrorTypeFilter string

const (
	FilterAll          ErrorTypeFilter = "all"
	FilterAttention    ErrorTypeFilter = "attention"
	FilterKnowledge    ErrorTypeFilter = "knowledge"
	FilterUnclassified ErrorTypeFilter = "unclassified"
)

func (f ErrorTypeFilter) Valid() bool {
	switch f {
	case "", FilterAll, FilterAttention, FilterKnowledge, FilterUnclassified:
		return true
	}
	return false
}

type ReviewFilter struct {
	SubjectID *uuid.UUID
	ErrorType ErrorTypeFilter
}

// IncorrectAnswer is one wrong answer joined with the question it belongs to.
type IncorrectAnswer struct {
	AnswerID         uuid.UUID
	QuestionID       uuid.UUID
	SelectedOptionID uuid.UUID
	ErrorType        *ErrorType
	CreatedAt        time.Time

	Statement   string
	Explanation *string
	Tips        *string
	SubjectID   uuid.UUID
	SubjectName string
	TopicName   string
	Options     []Option
}

type ReviewEntry struct {
	QuestionID           uuid.UUID   `json:"question_id"`
	Statement            string      `json:"statement"`
	Explanation          *string     `json:"explanation,omitempty"`
	Tips                 *string     `json:"tips,omitempty"`
	SubjectID            uuid.UUID   `json:"subject_id"`
	SubjectName          string      `json:"subject_name"`
	TopicName            string      `json:"topic_name"`
	Options              []Option    `json:"options"`
	ErrorCount           int         `json:"error_count"`
	ErrorTypes           []ErrorType `json:"error_types"`
	LastSelectedOptionID uuid.UUID   `json:"last_selected_option_id"`
	LastAnsweredAt       time.Time   `json:"last_answered_at"`
}

// HasErrorType reports whether any folded answer carried t.
func (e ReviewEntry) HasErrorType(t ErrorType) bool {
	for _, et := range e.ErrorTypes {
		if et == t {
			return true
		}
	}
	return false
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type ReviewSummary struct {
	TotalToReview     int      `json:"total_to_review"`
	KnowledgeCount    int      `json:"knowledge_count"`
	AttentionCount    int      `json:"attention_count"`
	TotalIncorrect    int      `json:"total_incorrect"`
	TotalAnswers      int      `json:"total_answers"`
	ErrorRate         int      `json:"error_rate"`
	Severity          Severity `json:"severity"`
	KnowledgePct      int      `json:"knowledge_pct"`
	KnowledgeSeverity Severity `json:"knowledge_severity"`
	AttentionPct      int      `json:"attention_pct"`
	AttentionSeverity Severity `json:"attention_severity"`
}

type ReviewGroup struct {
	SubjectName string        `json:"subject_name"`
	Entries     []ReviewEntry `json:"entries"`
}

type ReviewReport struct {
	Entries []ReviewEntry `json:"entries"`
	Groups  []ReviewGroup `json:"groups"`
	Summary ReviewSummary `json:"summary"`
}

type RemoveFromReviewResponse struct {
	Removed int `json:"removed"`
}
