package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/quizdeck/backend/internal/models"
)

func (s *Store) InsertNotebookEntry(ctx context.Context, e *models.NotebookEntry) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO notebook_entries (user_id, subject_id, content, entry_type, source_question_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
		 RETURNING id`,
		e.UserID, e.SubjectID, e.Content, string(e.EntryType), e.SourceQuestionID, nullTime(e),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, mapErr("insert notebook entry", err)
	}
	return id, nil
}

func nullTime(e *models.NotebookEntry) any {
	if e.CreatedAt.IsZero() {
		return nil
	}
	return e.CreatedAt
}

func (s *Store) ListNotebookEntries(ctx context.Context, userID uuid.UUID) ([]models.NotebookEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT n.id, n.user_id, n.subject_id, n.content, n.entry_type, n.source_question_id,
		        n.created_at, s.name
		 FROM notebook_entries n JOIN subjects s ON s.id = n.subject_id
		 WHERE n.user_id = $1
		 ORDER BY n.created_at DESC, n.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notebook entries: %w", err)
	}
	defer rows.Close()

	var entries []models.NotebookEntry
	for rows.Next() {
		var e models.NotebookEntry
		var source uuid.NullUUID
		if err := rows.Scan(&e.ID, &e.UserID, &e.SubjectID, &e.Content, &e.EntryType,
			&source, &e.CreatedAt, &e.SubjectName); err != nil {
			return nil, fmt.Errorf("scan notebook entry: %w", err)
		}
		if source.Valid {
			id := source.UUID
			e.SourceQuestionID = &id
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) DeleteNotebookEntry(ctx context.Context, userID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notebook_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapErr("delete notebook entry", err)
	}
	return requireAffected("delete notebook entry", res)
}
