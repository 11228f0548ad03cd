package questions

import (
	"strings"

	"github.com/quizdeck/backend/internal/apperr"
	"github.com/quizdeck/backend/internal/models"
)

const minOptions = 2

// BuildOptions drops blank option texts and marks the option at correctIndex,
// counted in the unfiltered list, as the single correct one.
func BuildOptions(texts []string, correctIndex int) ([]models.NewOption, error) {
	const op = "build options"

	if correctIndex < 0 || correctIndex >= len(texts) {
		return nil, apperr.Validation(op, "correct option index %d out of range", correctIndex)
	}
	if strings.TrimSpace(texts[correctIndex]) == "" {
		return nil, apperr.Validation(op, "correct option is blank")
	}

	opts := make([]models.NewOption, 0, len(texts))
	for i, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		opts = append(opts, models.NewOption{Text: text, IsCorrect: i == correctIndex})
	}

	if len(opts) < minOptions {
		return nil, apperr.Validation(op, "at least %d non-blank options are required, got %d", minOptions, len(opts))
	}
	return opts, nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
