package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/quizdeck/backend/internal/models"
)

const questionColumns = `q.id, q.subject_id, q.topic_id, q.statement, q.explanation, q.tips,
	q.banca, q.ano, q.orgao, q.cargo, q.created_at, s.name, t.name`

const questionFrom = `FROM questions q
	JOIN subjects s ON s.id = q.subject_id
	JOIN topics t ON t.id = q.topic_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (models.Question, error) {
	var q models.Question
	err := row.Scan(&q.ID, &q.SubjectID, &q.TopicID, &q.Statement, &q.Explanation, &q.Tips,
		&q.Banca, &q.Ano, &q.Orgao, &q.Cargo, &q.CreatedAt, &q.SubjectName, &q.TopicName)
	return q, err
}

func insertOptions(ctx context.Context, tx *sql.Tx, questionID uuid.UUID, opts []models.NewOption) error {
	for i, o := range opts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO options (question_id, option_text, is_correct, position)
			 VALUES ($1, $2, $3, $4)`,
			questionID, o.Text, o.IsCorrect, i,
		)
		if err != nil {
			return mapErr("insert option", err)
		}
	}
	return nil
}

func (s *Store) CreateQuestion(ctx context.Context, q *models.Question, opts []models.NewOption) (uuid.UUID, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var id uuid.UUID
	err = tx.QueryRowContext(ctx,
		`INSERT INTO questions
		 (subject_id, topic_id, statement, explanation, tips, banca, ano, orgao, cargo)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		q.SubjectID, q.TopicID, q.Statement, q.Explanation, q.Tips,
		q.Banca, q.Ano, q.Orgao, q.Cargo,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, mapErr("insert question", err)
	}

	if err := insertOptions(ctx, tx, id, opts); err != nil {
		return uuid.Nil, err
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit question: %w", err)
	}
	return id, nil
}

func (s *Store) ReplaceQuestion(ctx context.Context, q *models.Question, opts []models.NewOption) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE questions
		 SET subject_id = $2, topic_id = $3, statement = $4, explanation = $5, tips = $6,
		     banca = $7, ano = $8, orgao = $9, cargo = $10
		 WHERE id = $1`,
		q.ID, q.SubjectID, q.TopicID, q.Statement, q.Explanation, q.Tips,
		q.Banca, q.Ano, q.Orgao, q.Cargo,
	)
	if err != nil {
		return mapErr("update question", err)
	}
	if err := requireAffected("update question", res); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM options WHERE question_id = $1`, q.ID); err != nil {
		return mapErr("delete options", err)
	}
	if err := insertOptions(ctx, tx, q.ID, opts); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit question: %w", err)
	}
	return nil
}

func (s *Store) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return mapErr("delete question", err)
	}
	return requireAffected("delete question", res)
}

func (s *Store) GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	q, err := scanQuestion(s.db.QueryRowContext(ctx,
		`SELECT `+questionColumns+` `+questionFrom+` WHERE q.id = $1`, id))
	if err != nil {
		return nil, mapErr("get question", err)
	}
	opts, err := s.optionsFor(ctx, []uuid.UUID{q.ID})
	if err != nil {
		return nil, err
	}
	q.Options = opts[q.ID]
	return &q, nil
}

func (s *Store) ListQuestions(ctx context.Context, limit, offset int) ([]models.Question, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+questionColumns+` `+questionFrom+`
		 ORDER BY q.created_at DESC, q.id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, total, rows.Err()
}

func (s *Store) ListSubjectQuestions(ctx context.Context, subjectID uuid.UUID) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+questionColumns+` `+questionFrom+`
		 WHERE q.subject_id = $1
		 ORDER BY q.created_at DESC, q.id DESC`,
		subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list subject questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	var ids []uuid.UUID
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
		ids = append(ids, q.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	opts, err := s.optionsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].Options = opts[questions[i].ID]
	}
	return questions, nil
}

func (s *Store) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	var st models.AdminStats
	err := s.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM questions),
			(SELECT COUNT(*) FROM subjects),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM quiz_sessions),
			(SELECT COUNT(*) FROM quiz_sessions WHERE completed_at IS NOT NULL),
			(SELECT COUNT(*) FROM answers)`,
	).Scan(&st.TotalQuestions, &st.TotalSubjects, &st.TotalUsers,
		&st.TotalSessions, &st.CompletedSessions, &st.TotalAnswers)
	if err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	return &st, nil
}
