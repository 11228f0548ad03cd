// Package taxonomy maps free-text subject and topic names onto stored rows,
// creating them on first use.
package taxonomy

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/quizdeck/backend/internal/apperr"
	"github.com/quizdeck/backend/internal/logger"
	"github.com/quizdeck/backend/internal/models"
	"github.com/quizdeck/backend/internal/store"
)

type Resolver struct {
	store store.TaxonomyStore
	log   *logger.Logger
}

func NewResolver(st store.TaxonomyStore, log *logger.Logger) *Resolver {
	return &Resolver{store: st, log: log.With("service", "TaxonomyResolver")}
}

// Resolve returns the ids for subjectName and topicName, matching existing
// rows case-insensitively. A blank topic files under the subject's default topic.
func (r *Resolver) Resolve(ctx context.Context, subjectName, topicName string) (models.Taxonomy, error) {
	const op = "resolve taxonomy"

	subjectName = strings.TrimSpace(subjectName)
	topicName = strings.TrimSpace(topicName)
	if subjectName == "" {
		return models.Taxonomy{}, apperr.Validation(op, "subject name is required")
	}
	if topicName == "" {
		topicName = models.DefaultTopicName
	}

	subject, err := r.subject(ctx, subjectName)
	if err != nil {
		return models.Taxonomy{}, store.Wrap(op, err)
	}
	topic, err := r.topic(ctx, subject.ID, topicName)
	if err != nil {
		return models.Taxonomy{}, store.Wrap(op, err)
	}
	return models.Taxonomy{SubjectID: subject.ID, TopicID: topic.ID}, nil
}

func (r *Resolver) subject(ctx context.Context, name string) (*models.Subject, error) {
	sub, err := r.store.FindSubjectByName(ctx, name)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	sub, err = r.store.InsertSubject(ctx, name)
	if errors.Is(err, store.ErrConflict) {
		// Another request created it between our lookup and insert.
		sub, err = r.store.FindSubjectByName(ctx, name)
	}
	if err != nil {
		return nil, persistence(err)
	}
	r.log.Info("subject created", "subject_id", sub.ID, "name", sub.Name)
	return sub, nil
}

func (r *Resolver) topic(ctx context.Context, subjectID uuid.UUID, name string) (*models.Topic, error) {
	t, err := r.store.FindTopicByName(ctx, subjectID, name)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	t, err = r.store.InsertTopic(ctx, subjectID, name)
	if errors.Is(err, store.ErrConflict) {
		t, err = r.store.FindTopicByName(ctx, subjectID, name)
	}
	if err != nil {
		return nil, persistence(err)
	}
	r.log.Info("topic created", "topic_id", t.ID, "subject_id", subjectID, "name", t.Name)
	return t, nil
}

// A create that fails after a lookup miss is a persistence failure even when
// the driver reported not found (the subject vanished mid-resolve).
func persistence(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Persistence("create taxonomy", err)
	}
	return err
}
