package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type QuizSession struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	SubjectID      uuid.UUID  `json:"subject_id"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	Score          *int       `json:"score,omitempty"`
	TotalQuestions *int       `json:"total_questions,omitempty"`

	SubjectName string `json:"subject_name,omitempty"`
}

// Completed reports whether Finish has been called on the session.
func (s QuizSession) Completed() bool {
	return s.CompletedAt != nil
}

type StartSessionRequest struct {
	SubjectID uuid.UUID `json:"subject_id"`
}

type FinishSessionRequest struct {
	Score          int `json:"score"`
	TotalQuestions int `json:"total_questions"`
}

// AccuracyTier buckets an accuracy percentage for dashboard badges.
type AccuracyTier string

const (
	TierGood AccuracyTier = "good"
	TierFair AccuracyTier = "fair"
	TierPoor AccuracyTier = "poor"
)

// Percent returns round(100*part/whole) clamped to [0, 100], or 0 when whole is 0.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(part) / float64(whole)))
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

func TierFor(accuracy int) AccuracyTier {
	switch {
	case accuracy >= 80:
		return TierGood
	case accuracy >= 60:
		return TierFair
	default:
		return TierPoor
	}
}

type RecentSession struct {
	ID             uuid.UUID    `json:"id"`
	SubjectID      uuid.UUID    `json:"subject_id"`
	SubjectName    string       `json:"subject_name"`
	CompletedAt    time.Time    `json:"completed_at"`
	Score          int          `json:"score"`
	TotalQuestions int          `json:"total_questions"`
	Accuracy       int          `json:"accuracy"`
	Tier           AccuracyTier `json:"tier"`
}

type PerformanceStats struct {
	TotalSessions          int `json:"total_sessions"`
	TotalQuestionsAnswered int `json:"total_questions_answered"`
	TotalCorrect           int `json:"total_correct"`
	Accuracy               int `json:"accuracy"`
}

// SubjectCounts is the raw per-subject aggregate read from the store.
type SubjectCounts struct {
	SubjectID      uuid.UUID
	SubjectName    string
	QuestionCount  int
	SessionCount   int
	ScoreSum       int
	TotalQuestions int
}

type SubjectStats struct {
	ID              uuid.UUID    `json:"id"`
	Name            string       `json:"name"`
	QuestionCount   int          `json:"question_count"`
	SessionCount    int          `json:"session_count"`
	AverageAccuracy int          `json:"average_accuracy"`
	Tier            AccuracyTier `json:"tier"`
}

// PracticeQuestion is a question as served to a student for a session.
type PracticeQuestion struct {
	ID          uuid.UUID `json:"id"`
	Statement   string    `json:"statement"`
	Explanation *string   `json:"explanation,omitempty"`
	Tips        *string   `json:"tips,omitempty"`
	TopicName   string    `json:"topic_name"`
	Options     []Option  `json:"options"`
	QuestionMeta
}

type PracticeSet struct {
	Subject   Subject            `json:"subject"`
	Questions []PracticeQuestion `json:"questions"`
}
