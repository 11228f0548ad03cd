package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quizdeck/backend/internal/models"
)

func (s *Store) InsertSession(ctx context.Context, userID, subjectID uuid.UUID, startedAt time.Time) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO quiz_sessions (user_id, subject_id, started_at)
		 VALUES ($1, $2, $3) RETURNING id`,
		userID, subjectID, startedAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, mapErr("insert session", err)
	}
	return id, nil
}

func (s *Store) CompleteSession(ctx context.Context, userID, sessionID uuid.UUID, score, total int, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE quiz_sessions
		 SET completed_at = $1, score = $2, total_questions = $3
		 WHERE id = $4 AND user_id = $5`,
		at, score, total, sessionID, userID,
	)
	if err != nil {
		return mapErr("complete session", err)
	}
	return requireAffected("complete session", res)
}

const sessionColumns = `qs.id, qs.user_id, qs.subject_id, qs.started_at, qs.completed_at,
	qs.score, qs.total_questions, s.name`

func scanSession(row rowScanner) (models.QuizSession, error) {
	var sess models.QuizSession
	err := row.Scan(&sess.ID, &sess.UserID, &sess.SubjectID, &sess.StartedAt, &sess.CompletedAt,
		&sess.Score, &sess.TotalQuestions, &sess.SubjectName)
	return sess, err
}

func (s *Store) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*models.QuizSession, error) {
	sess, err := scanSession(s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+`
		 FROM quiz_sessions qs JOIN subjects s ON s.id = qs.subject_id
		 WHERE qs.id = $1 AND qs.user_id = $2`,
		sessionID, userID,
	))
	if err != nil {
		return nil, mapErr("get session", err)
	}
	return &sess, nil
}

func (s *Store) ListCompletedSessions(ctx context.Context, userID uuid.UUID, limit int) ([]models.QuizSession, error) {
	var lim sql.NullInt64
	if limit > 0 {
		lim = sql.NullInt64{Int64: int64(limit), Valid: true}
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+`
		 FROM quiz_sessions qs JOIN subjects s ON s.id = qs.subject_id
		 WHERE qs.user_id = $1 AND qs.completed_at IS NOT NULL
		 ORDER BY qs.completed_at DESC, qs.id DESC
		 LIMIT $2`,
		userID, lim,
	)
	if err != nil {
		return nil, fmt.Errorf("list completed sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.QuizSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *Store) SubjectCounts(ctx context.Context, userID uuid.UUID) ([]models.SubjectCounts, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.name,
		        (SELECT COUNT(*) FROM questions q WHERE q.subject_id = s.id),
		        COUNT(qs.id),
		        COALESCE(SUM(qs.score), 0),
		        COALESCE(SUM(qs.total_questions), 0)
		 FROM subjects s
		 LEFT JOIN quiz_sessions qs
		        ON qs.subject_id = s.id AND qs.user_id = $1 AND qs.completed_at IS NOT NULL
		 GROUP BY s.id, s.name
		 ORDER BY s.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("subject counts: %w", err)
	}
	defer rows.Close()

	var out []models.SubjectCounts
	for rows.Next() {
		var c models.SubjectCounts
		if err := rows.Scan(&c.SubjectID, &c.SubjectName, &c.QuestionCount,
			&c.SessionCount, &c.ScoreSum, &c.TotalQuestions); err != nil {
			return nil, fmt.Errorf("scan subject counts: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
