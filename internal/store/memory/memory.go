// Package memory is an in-process implementation of store.Store. It backs the
// dev server when no database is configured and every service test.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quizdeck/backend/internal/models"
	"github.com/quizdeck/backend/internal/store"
)

type answerRow struct {
	models.Answer
	seq int64
}

type failure struct {
	pred func(arg any) bool
	err  error
}

type Store struct {
	mu        sync.RWMutex
	subjects  map[uuid.UUID]models.Subject
	topics    map[uuid.UUID]models.Topic
	questions map[uuid.UUID]models.Question
	options   map[uuid.UUID][]models.Option
	sessions  map[uuid.UUID]models.QuizSession
	answers   map[uuid.UUID]*answerRow
	notebook  map[uuid.UUID]models.NotebookEntry
	users     map[uuid.UUID]models.User
	order     map[uuid.UUID]int64
	seq       int64

	failMu   sync.Mutex
	failures map[string][]failure

	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		subjects:  make(map[uuid.UUID]models.Subject),
		topics:    make(map[uuid.UUID]models.Topic),
		questions: make(map[uuid.UUID]models.Question),
		options:   make(map[uuid.UUID][]models.Option),
		sessions:  make(map[uuid.UUID]models.QuizSession),
		answers:   make(map[uuid.UUID]*answerRow),
		notebook:  make(map[uuid.UUID]models.NotebookEntry),
		users:     make(map[uuid.UUID]models.User),
		order:     make(map[uuid.UUID]int64),
		failures:  make(map[string][]failure),
		now:       time.Now,
	}
}

// ── Failure injection ───────────────────────────────────

// FailOn makes every call to the named method return err.
func (s *Store) FailOn(op string, err error) {
	s.FailIf(op, nil, err)
}

// FailIf makes calls to the named method return err when pred accepts the
// call's primary argument. A nil pred matches every call.
func (s *Store) FailIf(op string, pred func(arg any) bool, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.failures[op] = append(s.failures[op], failure{pred: pred, err: err})
}

func (s *Store) ClearFailures() {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.failures = make(map[string][]failure)
}

func (s *Store) injected(op string, arg any) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	for _, f := range s.failures[op] {
		if f.pred == nil || f.pred(arg) {
			return f.err
		}
	}
	return nil
}

func (s *Store) nextID() uuid.UUID {
	id := uuid.New()
	s.seq++
	s.order[id] = s.seq
	return id
}

// ── Taxonomy ────────────────────────────────────────────

func (s *Store) FindSubjectByName(ctx context.Context, name string) (*models.Subject, error) {
	if err := s.injected("FindSubjectByName", name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subjects {
		if strings.EqualFold(sub.Name, name) {
			return &sub, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) InsertSubject(ctx context.Context, name string) (*models.Subject, error) {
	if err := s.injected("InsertSubject", name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subjects {
		if strings.EqualFold(sub.Name, name) {
			return nil, fmt.Errorf("insert subject %q: %w", name, store.ErrConflict)
		}
	}
	sub := models.Subject{ID: s.nextID(), Name: name}
	s.subjects[sub.ID] = sub
	return &sub, nil
}

func (s *Store) FindTopicByName(ctx context.Context, subjectID uuid.UUID, name string) (*models.Topic, error) {
	if err := s.injected("FindTopicByName", name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.topics {
		if t.SubjectID == subjectID && strings.EqualFold(t.Name, name) {
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) InsertTopic(ctx context.Context, subjectID uuid.UUID, name string) (*models.Topic, error) {
	if err := s.injected("InsertTopic", name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subjects[subjectID]; !ok {
		return nil, fmt.Errorf("insert topic: subject %s: %w", subjectID, store.ErrNotFound)
	}
	for _, t := range s.topics {
		if t.SubjectID == subjectID && strings.EqualFold(t.Name, name) {
			return nil, fmt.Errorf("insert topic %q: %w", name, store.ErrConflict)
		}
	}
	t := models.Topic{ID: s.nextID(), Name: name, SubjectID: subjectID}
	s.topics[t.ID] = t
	return &t, nil
}

func (s *Store) GetSubject(ctx context.Context, id uuid.UUID) (*models.Subject, error) {
	if err := s.injected("GetSubject", id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subjects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sub, nil
}

func (s *Store) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	if err := s.injected("DeleteSubject", id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subjects[id]; !ok {
		return store.ErrNotFound
	}
	for qid, q := range s.questions {
		if q.SubjectID == id {
			s.deleteQuestionLocked(qid)
		}
	}
	for tid, t := range s.topics {
		if t.SubjectID == id {
			delete(s.topics, tid)
		}
	}
	for sid, sess := range s.sessions {
		if sess.SubjectID == id {
			delete(s.sessions, sid)
			for aid, a := range s.answers {
				if a.SessionID == sid {
					delete(s.answers, aid)
				}
			}
		}
	}
	for eid, e := range s.notebook {
		if e.SubjectID == id {
			delete(s.notebook, eid)
		}
	}
	delete(s.subjects, id)
	return nil
}

// ── Questions ───────────────────────────────────────────

func (s *Store) CreateQuestion(ctx context.Context, q *models.Question, opts []models.NewOption) (uuid.UUID, error) {
	if err := s.injected("CreateQuestion", q); err != nil {
		return uuid.Nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTaxonomyLocked(q); err != nil {
		return uuid.Nil, fmt.Errorf("insert question: %w", err)
	}
	row := *q
	row.ID = s.nextID()
	row.CreatedAt = s.now()
	row.Options = nil
	s.questions[row.ID] = row
	s.options[row.ID] = s.buildOptionsLocked(row.ID, opts)
	return row.ID, nil
}

func (s *Store) ReplaceQuestion(ctx context.Context, q *models.Question, opts []models.NewOption) error {
	if err := s.injected("ReplaceQuestion", q); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.questions[q.ID]
	if !ok {
		return store.ErrNotFound
	}
	if err := s.checkTaxonomyLocked(q); err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	row := *q
	row.CreatedAt = existing.CreatedAt
	row.Options = nil
	s.questions[row.ID] = row
	s.options[row.ID] = s.buildOptionsLocked(row.ID, opts)
	// Replaced options no longer exist; answers keep their row but lose the selection.
	for _, a := range s.answers {
		if a.QuestionID == row.ID {
			a.SelectedOptionID = uuid.Nil
		}
	}
	return nil
}

func (s *Store) checkTaxonomyLocked(q *models.Question) error {
	if _, ok := s.subjects[q.SubjectID]; !ok {
		return fmt.Errorf("subject %s: %w", q.SubjectID, store.ErrNotFound)
	}
	if t, ok := s.topics[q.TopicID]; !ok || t.SubjectID != q.SubjectID {
		return fmt.Errorf("topic %s: %w", q.TopicID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) buildOptionsLocked(questionID uuid.UUID, opts []models.NewOption) []models.Option {
	out := make([]models.Option, len(opts))
	for i, o := range opts {
		out[i] = models.Option{
			ID:         s.nextID(),
			QuestionID: questionID,
			Text:       o.Text,
			IsCorrect:  o.IsCorrect,
			Position:   i,
		}
	}
	return out
}

func (s *Store) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	if err := s.injected("DeleteQuestion", id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return store.ErrNotFound
	}
	s.deleteQuestionLocked(id)
	return nil
}

func (s *Store) deleteQuestionLocked(id uuid.UUID) {
	delete(s.questions, id)
	delete(s.options, id)
	for aid, a := range s.answers {
		if a.QuestionID == id {
			delete(s.answers, aid)
		}
	}
	for eid, e := range s.notebook {
		if e.SourceQuestionID != nil && *e.SourceQuestionID == id {
			e.SourceQuestionID = nil
			s.notebook[eid] = e
		}
	}
}

func (s *Store) GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	if err := s.injected("GetQuestion", id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	q = s.hydrateLocked(q)
	return &q, nil
}

func (s *Store) hydrateLocked(q models.Question) models.Question {
	q.SubjectName = s.subjects[q.SubjectID].Name
	q.TopicName = s.topics[q.TopicID].Name
	q.Options = append([]models.Option(nil), s.options[q.ID]...)
	return q
}

// sortedQuestionsLocked returns questions newest first.
func (s *Store) sortedQuestionsLocked(keep func(models.Question) bool) []models.Question {
	var out []models.Question
	for _, q := range s.questions {
		if keep == nil || keep(q) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.order[out[i].ID] > s.order[out[j].ID]
	})
	return out
}

func (s *Store) ListQuestions(ctx context.Context, limit, offset int) ([]models.Question, int, error) {
	if err := s.injected("ListQuestions", nil); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.sortedQuestionsLocked(nil)
	total := len(all)
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	page := make([]models.Question, 0, end-offset)
	for _, q := range all[offset:end] {
		q.SubjectName = s.subjects[q.SubjectID].Name
		q.TopicName = s.topics[q.TopicID].Name
		page = append(page, q)
	}
	return page, total, nil
}

func (s *Store) ListSubjectQuestions(ctx context.Context, subjectID uuid.UUID) ([]models.Question, error) {
	if err := s.injected("ListSubjectQuestions", subjectID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	qs := s.sortedQuestionsLocked(func(q models.Question) bool { return q.SubjectID == subjectID })
	for i := range qs {
		qs[i] = s.hydrateLocked(qs[i])
	}
	return qs, nil
}

func (s *Store) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	if err := s.injected("AdminStats", nil); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &models.AdminStats{
		TotalQuestions: len(s.questions),
		TotalSubjects:  len(s.subjects),
		TotalUsers:     len(s.users),
		TotalSessions:  len(s.sessions),
		TotalAnswers:   len(s.answers),
	}
	for _, sess := range s.sessions {
		if sess.Completed() {
			stats.CompletedSessions++
		}
	}
	return stats, nil
}

// ── Sessions ────────────────────────────────────────────

func (s *Store) InsertSession(ctx context.Context, userID, subjectID uuid.UUID, startedAt time.Time) (uuid.UUID, error) {
	if err := s.injected("InsertSession", subjectID); err != nil {
		return uuid.Nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subjects[subjectID]; !ok {
		return uuid.Nil, fmt.Errorf("insert session: subject %s: %w", subjectID, store.ErrNotFound)
	}
	sess := models.QuizSession{
		ID:        s.nextID(),
		UserID:    userID,
		SubjectID: subjectID,
		StartedAt: startedAt,
	}
	s.sessions[sess.ID] = sess
	return sess.ID, nil
}

func (s *Store) CompleteSession(ctx context.Context, userID, sessionID uuid.UUID, score, total int, at time.Time) error {
	if err := s.injected("CompleteSession", sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok || sess.UserID != userID {
		return store.ErrNotFound
	}
	sess.CompletedAt = &at
	sess.Score = &score
	sess.TotalQuestions = &total
	s.sessions[sessionID] = sess
	return nil
}

func (s *Store) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*models.QuizSession, error) {
	if err := s.injected("GetSession", sessionID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok || sess.UserID != userID {
		return nil, store.ErrNotFound
	}
	sess.SubjectName = s.subjects[sess.SubjectID].Name
	return &sess, nil
}

func (s *Store) ListCompletedSessions(ctx context.Context, userID uuid.UUID, limit int) ([]models.QuizSession, error) {
	if err := s.injected("ListCompletedSessions", userID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.QuizSession
	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.Completed() {
			sess.SubjectName = s.subjects[sess.SubjectID].Name
			out = append(out, sess)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CompletedAt.Equal(*out[j].CompletedAt) {
			return out[i].CompletedAt.After(*out[j].CompletedAt)
		}
		return s.order[out[i].ID] > s.order[out[j].ID]
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) SubjectCounts(ctx context.Context, userID uuid.UUID) ([]models.SubjectCounts, error) {
	if err := s.injected("SubjectCounts", userID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	bySubject := make(map[uuid.UUID]*models.SubjectCounts, len(s.subjects))
	for id, sub := range s.subjects {
		bySubject[id] = &models.SubjectCounts{SubjectID: id, SubjectName: sub.Name}
	}
	for _, q := range s.questions {
		if c, ok := bySubject[q.SubjectID]; ok {
			c.QuestionCount++
		}
	}
	for _, sess := range s.sessions {
		if sess.UserID != userID || !sess.Completed() {
			continue
		}
		if c, ok := bySubject[sess.SubjectID]; ok {
			c.SessionCount++
			c.ScoreSum += *sess.Score
			c.TotalQuestions += *sess.TotalQuestions
		}
	}
	out := make([]models.SubjectCounts, 0, len(bySubject))
	for _, c := range bySubject {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectName < out[j].SubjectName })
	return out, nil
}

// ── Answers ─────────────────────────────────────────────

func (s *Store) UpsertAnswer(ctx context.Context, a *models.Answer) (uuid.UUID, error) {
	if err := s.injected("UpsertAnswer", a); err != nil {
		return uuid.Nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[a.SessionID]
	if !ok || sess.UserID != a.UserID {
		return uuid.Nil, fmt.Errorf("upsert answer: session %s: %w", a.SessionID, store.ErrNotFound)
	}
	if _, ok := s.questions[a.QuestionID]; !ok {
		return uuid.Nil, fmt.Errorf("upsert answer: question %s: %w", a.QuestionID, store.ErrNotFound)
	}
	for _, row := range s.answers {
		if row.SessionID == a.SessionID && row.QuestionID == a.QuestionID {
			row.SelectedOptionID = a.SelectedOptionID
			row.IsCorrect = a.IsCorrect
			row.ErrorType = nil
			row.CreatedAt = a.CreatedAt
			s.seq++
			row.seq = s.seq
			return row.ID, nil
		}
	}
	row := &answerRow{Answer: *a}
	row.ID = s.nextID()
	row.ErrorType = nil
	row.seq = s.seq
	s.answers[row.ID] = row
	return row.ID, nil
}

func (s *Store) SetErrorType(ctx context.Context, userID, answerID uuid.UUID, t models.ErrorType) error {
	if err := s.injected("SetErrorType", answerID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.answers[answerID]
	if !ok || row.UserID != userID {
		return store.ErrNotFound
	}
	et := t
	row.ErrorType = &et
	return nil
}

func matchesErrorType(et *models.ErrorType, f models.ErrorTypeFilter) bool {
	switch f {
	case "", models.FilterAll:
		return true
	case models.FilterUnclassified:
		return et == nil
	default:
		return et != nil && string(*et) == string(f)
	}
}

func (s *Store) ListIncorrectAnswers(ctx context.Context, userID uuid.UUID, filter models.ReviewFilter) ([]models.IncorrectAnswer, error) {
	if err := s.injected("ListIncorrectAnswers", filter); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []*answerRow
	for _, a := range s.answers {
		if a.UserID != userID || a.IsCorrect {
			continue
		}
		q, ok := s.questions[a.QuestionID]
		if !ok {
			continue
		}
		if filter.SubjectID != nil && q.SubjectID != *filter.SubjectID {
			continue
		}
		if !matchesErrorType(a.ErrorType, filter.ErrorType) {
			continue
		}
		rows = append(rows, a)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]models.IncorrectAnswer, 0, len(rows))
	for _, a := range rows {
		q := s.hydrateLocked(s.questions[a.QuestionID])
		var et *models.ErrorType
		if a.ErrorType != nil {
			v := *a.ErrorType
			et = &v
		}
		out = append(out, models.IncorrectAnswer{
			AnswerID:         a.ID,
			QuestionID:       a.QuestionID,
			SelectedOptionID: a.SelectedOptionID,
			ErrorType:        et,
			CreatedAt:        a.CreatedAt,
			Statement:        q.Statement,
			Explanation:      q.Explanation,
			Tips:             q.Tips,
			SubjectID:        q.SubjectID,
			SubjectName:      q.SubjectName,
			TopicName:        q.TopicName,
			Options:          q.Options,
		})
	}
	return out, nil
}

func (s *Store) CountAnswers(ctx context.Context, userID uuid.UUID) (int, error) {
	if err := s.injected("CountAnswers", userID); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.answers {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteIncorrectAnswers(ctx context.Context, userID, questionID uuid.UUID) (int, error) {
	if err := s.injected("DeleteIncorrectAnswers", questionID); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, a := range s.answers {
		if a.UserID == userID && a.QuestionID == questionID && !a.IsCorrect {
			delete(s.answers, id)
			n++
		}
	}
	return n, nil
}

// ── Notebook ────────────────────────────────────────────

func (s *Store) InsertNotebookEntry(ctx context.Context, e *models.NotebookEntry) (uuid.UUID, error) {
	if err := s.injected("InsertNotebookEntry", e); err != nil {
		return uuid.Nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subjects[e.SubjectID]; !ok {
		return uuid.Nil, fmt.Errorf("insert notebook entry: subject %s: %w", e.SubjectID, store.ErrNotFound)
	}
	row := *e
	row.ID = s.nextID()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = s.now()
	}
	s.notebook[row.ID] = row
	return row.ID, nil
}

func (s *Store) ListNotebookEntries(ctx context.Context, userID uuid.UUID) ([]models.NotebookEntry, error) {
	if err := s.injected("ListNotebookEntries", userID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.NotebookEntry
	for _, e := range s.notebook {
		if e.UserID == userID {
			e.SubjectName = s.subjects[e.SubjectID].Name
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.order[out[i].ID] > s.order[out[j].ID]
	})
	return out, nil
}

func (s *Store) DeleteNotebookEntry(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.injected("DeleteNotebookEntry", id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.notebook[id]
	if !ok || e.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.notebook, id)
	return nil
}

// ── Users ───────────────────────────────────────────────

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if err := s.injected("CreateUser", u); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("insert user: %w", store.ErrConflict)
		}
	}
	u.ID = s.nextID()
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Role == "" {
		u.Role = models.RoleStudent
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := s.injected("GetUserByEmail", email); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err := s.injected("GetUser", id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}
