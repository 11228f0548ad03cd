// Package postgres implements store.Store over database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/quizdeck/backend/internal/models"
	"github.com/quizdeck/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// mapErr translates driver errors into store sentinels and adds op context.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", op, store.ErrConflict)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", op, store.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	return nil
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// optionsFor loads the options of every listed question, ordered by position.
func (s *Store) optionsFor(ctx context.Context, questionIDs []uuid.UUID) (map[uuid.UUID][]models.Option, error) {
	out := make(map[uuid.UUID][]models.Option, len(questionIDs))
	if len(questionIDs) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question_id, option_text, is_correct, position
		 FROM options WHERE question_id = ANY($1::uuid[])
		 ORDER BY question_id, position`,
		pq.Array(idStrings(questionIDs)),
	)
	if err != nil {
		return nil, fmt.Errorf("query options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect, &o.Position); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		out[o.QuestionID] = append(out[o.QuestionID], o)
	}
	return out, rows.Err()
}
