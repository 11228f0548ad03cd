package generator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DraftedBatch is the JSON shape the model is asked to return.
type DraftedBatch struct {
	Questions []DraftedQuestion `json:"questions"`
}

type DraftedQuestion struct {
	Statement          string   `json:"statement"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
	Explanation        string   `json:"explanation"`
	Tips               string   `json:"tips"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

func ParseDraft(responseBody string) (*DraftedBatch, error) {
	cleaned := stripCodeFences(responseBody)

	var batch DraftedBatch
	if err := json.Unmarshal([]byte(cleaned), &batch); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if err := validateDraft(&batch); err != nil {
		return nil, err
	}

	return &batch, nil
}

// stripCodeFences removes a surrounding ``` or ```json fence if the model added one.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "```"); ok {
		s = strings.TrimPrefix(rest, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func validateDraft(batch *DraftedBatch) error {
	var errs []string

	if len(batch.Questions) == 0 {
		return &ValidationError{Errors: []string{"no questions in batch"}}
	}

	for i, q := range batch.Questions {
		qNum := i + 1

		if strings.TrimSpace(q.Statement) == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty statement", qNum))
		}

		nonBlank := 0
		for _, o := range q.Options {
			if strings.TrimSpace(o) != "" {
				nonBlank++
			}
		}
		if nonBlank < 2 {
			errs = append(errs, fmt.Sprintf("question %d: expected at least 2 options, got %d", qNum, nonBlank))
			continue
		}

		if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
			errs = append(errs, fmt.Sprintf("question %d: correct_option_index %d out of range", qNum, q.CorrectOptionIndex))
		} else if strings.TrimSpace(q.Options[q.CorrectOptionIndex]) == "" {
			errs = append(errs, fmt.Sprintf("question %d: correct option is blank", qNum))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}

const similarityThreshold = 0.6

// similarPairs reports index pairs of statements whose keyword sets overlap
// by more than similarityThreshold, which usually means the model repeated itself.
func similarPairs(questions []DraftedQuestion) [][2]int {
	sets := make([]map[string]struct{}, len(questions))
	for i, q := range questions {
		sets[i] = keywords(q.Statement)
	}

	var pairs [][2]int
	for i := range sets {
		for j := i + 1; j < len(sets); j++ {
			if overlap(sets[i], sets[j]) > similarityThreshold {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}

// keywords lowercases s and keeps words longer than three letters.
func keywords(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,;:!?()\"")
		if len([]rune(w)) > 3 {
			set[w] = struct{}{}
		}
	}
	return set
}

// overlap is the Jaccard index of a and b, 0 when both are empty.
func overlap(a, b map[string]struct{}) float64 {
	shared := 0
	for w := range a {
		if _, ok := b[w]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}
