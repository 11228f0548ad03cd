package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/quizdeck/backend/internal/apperr"
	"github.com/quizdeck/backend/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	content string
	err     error
	prompt  string
}

func (s *stubClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (*LLMResponse, error) {
	s.prompt = userPrompt
	if s.err != nil {
		return nil, s.err
	}
	return &LLMResponse{Content: s.content}, nil
}

func TestDraftBatchDefaultsAndCaps(t *testing.T) {
	g := New(NewMockClient(), "mock", logger.Nop())
	ctx := context.Background()

	payload, err := g.DraftBatch(ctx, DraftRequest{Subject: "Direito Constitucional", Topic: "Poderes"})
	require.NoError(t, err)
	assert.Len(t, payload.Questions, defaultCount)
	assert.Equal(t, "Direito Constitucional", payload.Shared.Subject)

	payload, err = g.DraftBatch(ctx, DraftRequest{Subject: "Direito", Count: 50})
	require.NoError(t, err)
	assert.Len(t, payload.Questions, maxCount)
}

func TestDraftBatchProducesIngestibleQuestions(t *testing.T) {
	g := New(NewMockClient(), "mock", logger.Nop())
	banca := "CESPE"
	payload, err := g.DraftBatch(context.Background(), DraftRequest{Subject: "Direito", Count: 3, Banca: banca})
	require.NoError(t, err)

	require.NotNil(t, payload.Shared.Banca)
	assert.Equal(t, banca, *payload.Shared.Banca)
	for _, q := range payload.Questions {
		require.GreaterOrEqual(t, len(q.Options), 2)
		require.Less(t, q.CorrectOptionIndex, len(q.Options))
		assert.NotEmpty(t, strings.TrimSpace(q.Options[q.CorrectOptionIndex]))
		assert.NotNil(t, q.Explanation)
	}
}

func TestDraftBatchRequiresSubject(t *testing.T) {
	g := New(NewMockClient(), "mock", logger.Nop())
	_, err := g.DraftBatch(context.Background(), DraftRequest{Subject: "  "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDraftBatchSurfacesClientErrors(t *testing.T) {
	boom := errors.New("rate limited")
	g := New(&stubClient{err: boom}, "stub", logger.Nop())
	_, err := g.DraftBatch(context.Background(), DraftRequest{Subject: "Math"})
	assert.ErrorIs(t, err, boom)

	g = New(&stubClient{content: "I cannot help with that"}, "stub", logger.Nop())
	_, err = g.DraftBatch(context.Background(), DraftRequest{Subject: "Math"})
	assert.Error(t, err)
}

func TestBuildDraftUserPrompt(t *testing.T) {
	stub := &stubClient{content: validDraftJSON(2)}
	g := New(stub, "stub", logger.Nop())
	ano := 2024
	_, err := g.DraftBatch(context.Background(), DraftRequest{
		Subject: "Português", Topic: "Crase", Count: 2, Banca: "FGV", Ano: &ano, Instructions: "nível difícil",
	})
	require.NoError(t, err)

	for _, want := range []string{"exactly 2 questions", "SUBJECT: Português", "TOPIC: Crase", "FGV", "YEAR: 2024", "nível difícil"} {
		assert.True(t, strings.Contains(stub.prompt, want), "prompt missing %q", want)
	}
}

func TestDraftSystemPrompt(t *testing.T) {
	prompt := DraftSystemPrompt()
	for _, keyword := range []string{"JSON", "correct_option_index", "Exactly one option"} {
		if !strings.Contains(prompt, keyword) {
			t.Errorf("system prompt missing keyword %q", keyword)
		}
	}
}
