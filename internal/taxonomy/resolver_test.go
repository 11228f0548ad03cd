package taxonomy

import (
	"context"
	"errors"
	"testing"

	"github.com/quizdeck/backend/internal/apperr"
	"github.com/quizdeck/backend/internal/logger"
	"github.com/quizdeck/backend/internal/models"
	"github.com/quizdeck/backend/internal/store"
	"github.com/quizdeck/backend/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver() (*Resolver, *memory.Store) {
	st := memory.New()
	return NewResolver(st, logger.Nop()), st
}

func TestResolveIsIdempotent(t *testing.T) {
	r, st := newResolver()
	ctx := context.Background()

	first, err := r.Resolve(ctx, "Math", "Algebra")
	require.NoError(t, err)
	second, err := r.Resolve(ctx, "Math", "Algebra")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	stats, err := st.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSubjects)
}

func TestResolveMatchesCaseAndWhitespace(t *testing.T) {
	r, _ := newResolver()
	ctx := context.Background()

	a, err := r.Resolve(ctx, "Direito Constitucional", "Princípios")
	require.NoError(t, err)
	b, err := r.Resolve(ctx, "  direito constitucional ", "PRINCÍPIOS")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestResolveTopicsAreScopedToSubject(t *testing.T) {
	r, _ := newResolver()
	ctx := context.Background()

	math, err := r.Resolve(ctx, "Math", "Basics")
	require.NoError(t, err)
	physics, err := r.Resolve(ctx, "Physics", "Basics")
	require.NoError(t, err)

	assert.NotEqual(t, math.SubjectID, physics.SubjectID)
	assert.NotEqual(t, math.TopicID, physics.TopicID)
}

func TestResolveBlankNames(t *testing.T) {
	r, st := newResolver()
	ctx := context.Background()

	_, err := r.Resolve(ctx, "   ", "Algebra")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	tax, err := r.Resolve(ctx, "Math", "")
	require.NoError(t, err)
	topic, err := st.FindTopicByName(ctx, tax.SubjectID, models.DefaultTopicName)
	require.NoError(t, err)
	assert.Equal(t, tax.TopicID, topic.ID)
}

func TestResolveInsertFailureIsPersistence(t *testing.T) {
	r, st := newResolver()
	st.FailOn("InsertSubject", errors.New("disk full"))

	_, err := r.Resolve(context.Background(), "Math", "Algebra")
	assert.True(t, apperr.Is(err, apperr.KindPersistence))
}

func TestResolveLostRaceRereads(t *testing.T) {
	r, st := newResolver()
	ctx := context.Background()
	existing, err := st.InsertSubject(ctx, "Math")
	require.NoError(t, err)

	// The first lookup misses, as if another request inserted concurrently.
	calls := 0
	st.FailIf("FindSubjectByName", func(any) bool {
		calls++
		return calls == 1
	}, store.ErrNotFound)

	tax, err := r.Resolve(ctx, "Math", "Algebra")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, tax.SubjectID)
}
