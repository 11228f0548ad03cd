// Package generator drafts batches of questions with an LLM. Drafts are
// returned to the caller for review and are never written to the store.
package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/quizdeck/backend/internal/apperr"
	"github.com/quizdeck/backend/internal/config"
	"github.com/quizdeck/backend/internal/logger"
	"github.com/quizdeck/backend/internal/models"
)

const (
	defaultCount = 5
	maxCount     = 20
)

type DraftRequest struct {
	Subject      string `json:"subject"`
	Topic        string `json:"topic"`
	Count        int    `json:"count"`
	Banca        string `json:"banca,omitempty"`
	Ano          *int   `json:"ano,omitempty"`
	Orgao        string `json:"orgao,omitempty"`
	Cargo        string `json:"cargo,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

type Generator struct {
	llm   LLMClient
	model string
	log   *logger.Logger
}

func New(llm LLMClient, model string, log *logger.Logger) *Generator {
	return &Generator{llm: llm, model: model, log: log.With("service", "Generator")}
}

// FromConfig picks the Anthropic client in api mode and the mock otherwise.
func FromConfig(cfg config.GeneratorConfig, log *logger.Logger) *Generator {
	if cfg.Mode == config.GeneratorAPI {
		log.Info("generator using Anthropic API", "model", cfg.Model)
		return New(NewAPIClient(cfg.APIKey, cfg.Model, log), cfg.Model, log)
	}
	log.Info("generator using mock data")
	return New(NewMockClient(), "mock", log)
}

func (g *Generator) ModelName() string {
	return g.model
}

// DraftBatch asks the model for questions and shapes them as a BatchPayload
// ready for CreateBatch.
func (g *Generator) DraftBatch(ctx context.Context, req DraftRequest) (*models.BatchPayload, error) {
	const op = "draft batch"

	req.Subject = strings.TrimSpace(req.Subject)
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Subject == "" {
		return nil, apperr.Validation(op, "subject is required")
	}
	if req.Count <= 0 {
		req.Count = defaultCount
	}
	if req.Count > maxCount {
		req.Count = maxCount
	}

	resp, err := g.llm.Generate(ctx, DraftSystemPrompt(), BuildDraftUserPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("generate draft: %w", err)
	}

	drafted, err := ParseDraft(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("parse draft: %w", err)
	}
	if len(drafted.Questions) > req.Count {
		drafted.Questions = drafted.Questions[:req.Count]
	}
	for _, p := range similarPairs(drafted.Questions) {
		g.log.Warn("drafted questions look alike", "first", p[0], "second", p[1])
	}

	g.log.Info("batch drafted",
		"subject", req.Subject,
		"questions", len(drafted.Questions),
		"prompt_tokens", resp.PromptTokens,
		"output_tokens", resp.OutputTokens,
	)
	return toPayload(req, drafted), nil
}

func toPayload(req DraftRequest, drafted *DraftedBatch) *models.BatchPayload {
	payload := &models.BatchPayload{
		Shared: models.BatchShared{
			Subject: req.Subject,
			Topic:   req.Topic,
			QuestionMeta: models.QuestionMeta{
				Banca: optional(req.Banca),
				Ano:   req.Ano,
				Orgao: optional(req.Orgao),
				Cargo: optional(req.Cargo),
			},
		},
		Questions: make([]models.BatchQuestion, 0, len(drafted.Questions)),
	}
	for _, q := range drafted.Questions {
		payload.Questions = append(payload.Questions, models.BatchQuestion{
			Statement:          q.Statement,
			Explanation:        optional(q.Explanation),
			Tips:               optional(q.Tips),
			Options:            q.Options,
			CorrectOptionIndex: q.CorrectOptionIndex,
		})
	}
	return payload
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
