package questions

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/quizdeck/backend/internal/apperr"
	"github.com/quizdeck/backend/internal/logger"
	"github.com/quizdeck/backend/internal/models"
	"github.com/quizdeck/backend/internal/store"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Store is the slice of persistence the ingestion pipeline needs.
type Store interface {
	store.QuestionStore
	GetSubject(ctx context.Context, id uuid.UUID) (*models.Subject, error)
	DeleteSubject(ctx context.Context, id uuid.UUID) error
}

type TaxonomyResolver interface {
	Resolve(ctx context.Context, subjectName, topicName string) (models.Taxonomy, error)
}

type Service struct {
	store    Store
	taxonomy TaxonomyResolver
	log      *logger.Logger
}

func NewService(st Store, taxonomy TaxonomyResolver, log *logger.Logger) *Service {
	return &Service{store: st, taxonomy: taxonomy, log: log.With("service", "QuestionService")}
}

// draft is a validated question ready to be written under some taxonomy.
type draft struct {
	question models.Question
	options  []models.NewOption
}

func buildDraft(op, statement string, explanation, tips *string, texts []string, correct int, meta models.QuestionMeta) (*draft, error) {
	statement = strings.TrimSpace(statement)
	if statement == "" {
		return nil, apperr.Validation(op, "statement is required")
	}
	opts, err := BuildOptions(texts, correct)
	if err != nil {
		return nil, err
	}
	return &draft{
		question: models.Question{
			Statement:   statement,
			Explanation: trimPtr(explanation),
			Tips:        trimPtr(tips),
			Banca:       trimPtr(meta.Banca),
			Ano:         meta.Ano,
			Orgao:       trimPtr(meta.Orgao),
			Cargo:       trimPtr(meta.Cargo),
		},
		options: opts,
	}, nil
}

// ── Single-question writes ──────────────────────────────

func (s *Service) CreateQuestion(ctx context.Context, p models.QuestionPayload) (uuid.UUID, error) {
	const op = "create question"

	d, err := buildDraft(op, p.Statement, p.Explanation, p.Tips, p.Options, p.CorrectOptionIndex, p.QuestionMeta)
	if err != nil {
		return uuid.Nil, err
	}
	tax, err := s.taxonomy.Resolve(ctx, p.Subject, p.Topic)
	if err != nil {
		return uuid.Nil, err
	}
	d.question.SubjectID, d.question.TopicID = tax.SubjectID, tax.TopicID

	id, err := s.store.CreateQuestion(ctx, &d.question, d.options)
	if err != nil {
		s.log.Error("create question failed", "error", err)
		return uuid.Nil, store.Wrap(op, err)
	}
	s.log.Info("question created", "question_id", id, "subject_id", tax.SubjectID, "options", len(d.options))
	return id, nil
}

// UpdateQuestion re-resolves the taxonomy and replaces the row and all of its
// options in one write.
func (s *Service) UpdateQuestion(ctx context.Context, id uuid.UUID, p models.QuestionPayload) error {
	const op = "update question"

	d, err := buildDraft(op, p.Statement, p.Explanation, p.Tips, p.Options, p.CorrectOptionIndex, p.QuestionMeta)
	if err != nil {
		return err
	}
	tax, err := s.taxonomy.Resolve(ctx, p.Subject, p.Topic)
	if err != nil {
		return err
	}
	d.question.ID = id
	d.question.SubjectID, d.question.TopicID = tax.SubjectID, tax.TopicID

	if err := s.store.ReplaceQuestion(ctx, &d.question, d.options); err != nil {
		return store.Wrap(op, err)
	}
	s.log.Info("question updated", "question_id", id)
	return nil
}

func (s *Service) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteQuestion(ctx, id); err != nil {
		return store.Wrap("delete question", err)
	}
	s.log.Info("question deleted", "question_id", id)
	return nil
}

// DeleteSubject removes the subject with its topics, questions and sessions.
func (s *Service) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteSubject(ctx, id); err != nil {
		return store.Wrap("delete subject", err)
	}
	s.log.Info("subject deleted", "subject_id", id)
	return nil
}

// ── Batch ingestion ─────────────────────────────────────

// CreateBatch writes each question independently under one shared taxonomy.
// Only a taxonomy failure fails the call; per-question failures are reported
// in the item at the question's index.
func (s *Service) CreateBatch(ctx context.Context, shared models.BatchShared, questions []models.BatchQuestion) (*models.BatchResult, error) {
	const op = "create batch"

	if len(questions) == 0 {
		return nil, apperr.Validation(op, "batch has no questions")
	}
	tax, err := s.taxonomy.Resolve(ctx, shared.Subject, shared.Topic)
	if err != nil {
		return nil, err
	}

	result := &models.BatchResult{
		TotalAttempted: len(questions),
		Items:          make([]models.BatchItemResult, len(questions)),
	}
	for i, bq := range questions {
		item := &result.Items[i]
		item.Index = i

		d, err := buildDraft(op, bq.Statement, bq.Explanation, bq.Tips, bq.Options, bq.CorrectOptionIndex, shared.QuestionMeta)
		if err != nil {
			s.log.Warn("batch item skipped", "index", i, "error", err)
			item.Error = apperr.Message(err)
			continue
		}
		d.question.SubjectID, d.question.TopicID = tax.SubjectID, tax.TopicID

		id, err := s.store.CreateQuestion(ctx, &d.question, d.options)
		if err != nil {
			s.log.Warn("batch item failed", "index", i, "error", err)
			item.Error = apperr.Message(store.Wrap(op, err))
			continue
		}
		item.QuestionID = &id
		result.CreatedCount++
	}

	s.log.Info("batch ingested",
		"subject_id", tax.SubjectID,
		"created", result.CreatedCount,
		"attempted", result.TotalAttempted,
	)
	return result, nil
}

// ── Reads ───────────────────────────────────────────────

func (s *Service) GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	q, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return nil, store.Wrap("get question", err)
	}
	return q, nil
}

func (s *Service) ListQuestions(ctx context.Context, page, pageSize int) (*models.QuestionPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	questions, total, err := s.store.ListQuestions(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, store.Wrap("list questions", err)
	}
	if questions == nil {
		questions = []models.Question{}
	}
	return &models.QuestionPage{Questions: questions, Total: total, Page: page, PageSize: pageSize}, nil
}

// PracticeSet returns the subject's questions that can be answered, meaning
// those with at least two options.
func (s *Service) PracticeSet(ctx context.Context, subjectID uuid.UUID) (*models.PracticeSet, error) {
	const op = "practice set"

	subject, err := s.store.GetSubject(ctx, subjectID)
	if err != nil {
		return nil, store.Wrap(op, err)
	}
	questions, err := s.store.ListSubjectQuestions(ctx, subjectID)
	if err != nil {
		return nil, store.Wrap(op, err)
	}

	set := &models.PracticeSet{Subject: *subject, Questions: []models.PracticeQuestion{}}
	for _, q := range questions {
		if len(q.Options) < minOptions {
			continue
		}
		set.Questions = append(set.Questions, models.PracticeQuestion{
			ID:          q.ID,
			Statement:   q.Statement,
			Explanation: q.Explanation,
			Tips:        q.Tips,
			TopicName:   q.TopicName,
			Options:     q.Options,
			QuestionMeta: models.QuestionMeta{
				Banca: q.Banca,
				Ano:   q.Ano,
				Orgao: q.Orgao,
				Cargo: q.Cargo,
			},
		})
	}
	return set, nil
}

func (s *Service) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	st, err := s.store.AdminStats(ctx)
	if err != nil {
		return nil, store.Wrap("admin stats", err)
	}
	return st, nil
}
