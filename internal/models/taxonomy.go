package models

import "github.com/google/uuid"

// DefaultTopicName is used when a question is filed without a topic.
const DefaultTopicName = "Geral"

type Subject struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Topic struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SubjectID uuid.UUID `json:"subject_id"`
}

// Taxonomy is the resolved (subject, topic) pair a question is filed under.
type Taxonomy struct {
	SubjectID uuid.UUID `json:"subject_id"`
	TopicID   uuid.UUID `json:"topic_id"`
}

type ResolveTaxonomyRequest struct {
	Subject string `json:"subject"`
	Topic   string `json:"topic"`
}
