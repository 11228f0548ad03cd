package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/quizdeck/backend/internal/logger"
)

// LLMClient is the interface both client implementations satisfy.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// ── APIClient: Anthropic SDK ────────────────────────────

const (
	apiMaxTokens   = 8192
	apiTemperature = 0.4
	apiAttempts    = 3
)

// APIClient drafts through the Anthropic Messages API.
type APIClient struct {
	client *anthropic.Client
	model  string
	log    *logger.Logger
}

func NewAPIClient(apiKey, model string, log *logger.Logger) *APIClient {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &APIClient{client: &client, model: model, log: log.With("client", "anthropic")}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	msg, err := c.send(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   apiMaxTokens,
		Temperature: param.NewOpt(apiTemperature),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, errors.New("anthropic response has no text content")
	}

	return &LLMResponse{
		Content:      text.String(),
		PromptTokens: int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}, nil
}

// send retries with exponential backoff (2s, 4s) and gives up early when ctx ends.
func (c *APIClient) send(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 1; attempt <= apiAttempts; attempt++ {
		if attempt > 1 {
			wait := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		msg, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return msg, nil
		}
		lastErr = err
		c.log.Warn("messages call failed", "attempt", attempt, "model", c.model, "error", err)
	}
	return nil, fmt.Errorf("anthropic: %d attempts failed: %w", apiAttempts, lastErr)
}

// ── MockClient: local development ───────────────────────

// MockClient returns a fixed batch of maxCount questions regardless of the prompt.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	return &LLMResponse{
		Content:      buildMockJSON(maxCount),
		PromptTokens: 800,
		OutputTokens: 2400,
	}, nil
}

func buildMockJSON(n int) string {
	themes := []string{
		"separação dos poderes", "controle de constitucionalidade", "direitos fundamentais",
		"organização do Estado", "processo legislativo", "administração pública",
	}

	questions := "["
	for i := 0; i < n; i++ {
		theme := themes[i%len(themes)]
		correct := i % 4
		if i > 0 {
			questions += ","
		}

		options := "["
		for j := 0; j < 4; j++ {
			label := "incorreta"
			if j == correct {
				label = "correta"
			}
			if j > 0 {
				options += ","
			}
			options += fmt.Sprintf(`"[Mock %d] Alternativa %c sobre %s (%s)"`, i+1, 'A'+j, theme, label)
		}
		options += "]"

		questions += fmt.Sprintf(`{"statement":"[Mock %d] Acerca de %s, assinale a alternativa correta.","options":%s,"correct_option_index":%d,"explanation":"[Mock] A alternativa %c trata corretamente de %s.","tips":"Revise %s."}`,
			i+1, theme, options, correct, 'A'+correct, theme, theme)
	}
	questions += "]"

	return fmt.Sprintf(`{"questions":%s}`, questions)
}
