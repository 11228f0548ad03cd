package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/quizdeck/backend/internal/models"
)

func (s *Store) FindSubjectByName(ctx context.Context, name string) (*models.Subject, error) {
	var sub models.Subject
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM subjects WHERE lower(name) = lower($1)`, name,
	).Scan(&sub.ID, &sub.Name)
	if err != nil {
		return nil, mapErr("find subject", err)
	}
	return &sub, nil
}

func (s *Store) InsertSubject(ctx context.Context, name string) (*models.Subject, error) {
	var sub models.Subject
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO subjects (name) VALUES ($1) RETURNING id, name`, name,
	).Scan(&sub.ID, &sub.Name)
	if err != nil {
		return nil, mapErr("insert subject", err)
	}
	return &sub, nil
}

func (s *Store) FindTopicByName(ctx context.Context, subjectID uuid.UUID, name string) (*models.Topic, error) {
	var t models.Topic
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, subject_id FROM topics WHERE subject_id = $1 AND lower(name) = lower($2)`,
		subjectID, name,
	).Scan(&t.ID, &t.Name, &t.SubjectID)
	if err != nil {
		return nil, mapErr("find topic", err)
	}
	return &t, nil
}

func (s *Store) InsertTopic(ctx context.Context, subjectID uuid.UUID, name string) (*models.Topic, error) {
	var t models.Topic
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO topics (subject_id, name) VALUES ($1, $2) RETURNING id, name, subject_id`,
		subjectID, name,
	).Scan(&t.ID, &t.Name, &t.SubjectID)
	if err != nil {
		return nil, mapErr("insert topic", err)
	}
	return &t, nil
}

func (s *Store) GetSubject(ctx context.Context, id uuid.UUID) (*models.Subject, error) {
	var sub models.Subject
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM subjects WHERE id = $1`, id,
	).Scan(&sub.ID, &sub.Name)
	if err != nil {
		return nil, mapErr("get subject", err)
	}
	return &sub, nil
}

// DeleteSubject relies on ON DELETE CASCADE for topics, questions and sessions.
func (s *Store) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return mapErr("delete subject", err)
	}
	return requireAffected("delete subject", res)
}
