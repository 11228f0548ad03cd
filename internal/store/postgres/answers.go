package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/quizdeck/backend/internal/models"
)

// UpsertAnswer only writes when the session belongs to the answering user;
// otherwise no row is returned and the call reports not found.
func (s *Store) UpsertAnswer(ctx context.Context, a *models.Answer) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO answers (user_id, question_id, selected_option_id, is_correct, session_id, created_at)
		 SELECT $1::uuid, $2::uuid, $3::uuid, $4::boolean, $5::uuid, $6::timestamptz
		 WHERE EXISTS (SELECT 1 FROM quiz_sessions WHERE id = $5::uuid AND user_id = $1::uuid)
		 ON CONFLICT (session_id, question_id) DO UPDATE
		 SET selected_option_id = EXCLUDED.selected_option_id,
		     is_correct = EXCLUDED.is_correct,
		     error_type = NULL,
		     created_at = EXCLUDED.created_at
		 RETURNING id`,
		a.UserID, a.QuestionID, nullUUID(a.SelectedOptionID), a.IsCorrect, a.SessionID, a.CreatedAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, mapErr("upsert answer", err)
	}
	return id, nil
}

func (s *Store) SetErrorType(ctx context.Context, userID, answerID uuid.UUID, t models.ErrorType) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE answers SET error_type = $1 WHERE id = $2 AND user_id = $3`,
		string(t), answerID, userID,
	)
	if err != nil {
		return mapErr("set error type", err)
	}
	return requireAffected("set error type", res)
}

func (s *Store) ListIncorrectAnswers(ctx context.Context, userID uuid.UUID, filter models.ReviewFilter) ([]models.IncorrectAnswer, error) {
	where := []string{"a.user_id = $1", "a.is_correct = FALSE"}
	args := []any{userID}

	if filter.SubjectID != nil {
		args = append(args, *filter.SubjectID)
		where = append(where, fmt.Sprintf("q.subject_id = $%d", len(args)))
	}
	switch filter.ErrorType {
	case "", models.FilterAll:
	case models.FilterUnclassified:
		where = append(where, "a.error_type IS NULL")
	default:
		args = append(args, string(filter.ErrorType))
		where = append(where, fmt.Sprintf("a.error_type = $%d", len(args)))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.question_id, a.selected_option_id, a.error_type, a.created_at,
		        q.statement, q.explanation, q.tips, q.subject_id, s.name, t.name
		 FROM answers a
		 JOIN questions q ON q.id = a.question_id
		 JOIN subjects s ON s.id = q.subject_id
		 JOIN topics t ON t.id = q.topic_id
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY a.created_at DESC, a.id DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list incorrect answers: %w", err)
	}
	defer rows.Close()

	var out []models.IncorrectAnswer
	seen := make(map[uuid.UUID]bool)
	var questionIDs []uuid.UUID
	for rows.Next() {
		var ia models.IncorrectAnswer
		var selected uuid.NullUUID
		var errType sql.NullString
		if err := rows.Scan(&ia.AnswerID, &ia.QuestionID, &selected, &errType, &ia.CreatedAt,
			&ia.Statement, &ia.Explanation, &ia.Tips, &ia.SubjectID, &ia.SubjectName, &ia.TopicName); err != nil {
			return nil, fmt.Errorf("scan incorrect answer: %w", err)
		}
		ia.SelectedOptionID = selected.UUID
		if errType.Valid {
			et := models.ErrorType(errType.String)
			ia.ErrorType = &et
		}
		if !seen[ia.QuestionID] {
			seen[ia.QuestionID] = true
			questionIDs = append(questionIDs, ia.QuestionID)
		}
		out = append(out, ia)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	opts, err := s.optionsFor(ctx, questionIDs)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Options = opts[out[i].QuestionID]
	}
	return out, nil
}

func (s *Store) CountAnswers(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM answers WHERE user_id = $1`, userID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count answers: %w", err)
	}
	return n, nil
}

func (s *Store) DeleteIncorrectAnswers(ctx context.Context, userID, questionID uuid.UUID) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM answers WHERE user_id = $1 AND question_id = $2 AND is_correct = FALSE`,
		userID, questionID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete incorrect answers: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete incorrect answers: %w", err)
	}
	return int(n), nil
}
