package generator

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func validDraftJSON(count int) string {
	batch := DraftedBatch{Questions: make([]DraftedQuestion, count)}
	for i := 0; i < count; i++ {
		batch.Questions[i] = DraftedQuestion{
			Statement:          "Sobre o tema número " + strings.Repeat("x", i+1) + ", assinale a correta.",
			Options:            []string{"Primeira", "Segunda", "Terceira", "Quarta"},
			CorrectOptionIndex: i % 4,
			Explanation:        "Porque sim.",
		}
	}
	data, _ := json.Marshal(batch)
	return string(data)
}

func TestParseDraft_ValidJSON(t *testing.T) {
	batch, err := ParseDraft(validDraftJSON(5))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(batch.Questions) != 5 {
		t.Errorf("expected 5 questions, got %d", len(batch.Questions))
	}
}

func TestParseDraft_CodeFences(t *testing.T) {
	for _, fence := range []string{"```json\n", "```\n"} {
		input := fence + validDraftJSON(2) + "\n```"
		if _, err := ParseDraft(input); err != nil {
			t.Errorf("ParseDraft with fence %q: %v", fence, err)
		}
	}
}

func TestParseDraft_InvalidJSON(t *testing.T) {
	if _, err := ParseDraft("not json"); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestParseDraft_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		q    DraftedQuestion
		want string
	}{
		{"empty statement", DraftedQuestion{Options: []string{"a", "b"}}, "empty statement"},
		{"one option", DraftedQuestion{Statement: "s", Options: []string{"a", " "}}, "at least 2 options"},
		{"index out of range", DraftedQuestion{Statement: "s", Options: []string{"a", "b"}, CorrectOptionIndex: 2}, "out of range"},
		{"blank correct", DraftedQuestion{Statement: "s", Options: []string{"a", "b", ""}, CorrectOptionIndex: 2}, "correct option is blank"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, _ := json.Marshal(DraftedBatch{Questions: []DraftedQuestion{tt.q}})
			_, err := ParseDraft(string(data))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(verr.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", verr.Error(), tt.want)
			}
		})
	}
}

func TestParseDraft_Empty(t *testing.T) {
	_, err := ParseDraft(`{"questions":[]}`)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSimilarPairs(t *testing.T) {
	qs := []DraftedQuestion{
		{Statement: "Acerca da separação dos poderes assinale alternativa correta"},
		{Statement: "Acerca da separação dos poderes assinale alternativa correta hoje"},
		{Statement: "Quanto ao orçamento público municipal, julgue item seguinte"},
	}
	pairs := similarPairs(qs)
	if len(pairs) != 1 || pairs[0] != [2]int{0, 1} {
		t.Errorf("similarPairs() = %v, want [[0 1]]", pairs)
	}
}

func TestOverlap(t *testing.T) {
	set := func(words ...string) map[string]struct{} {
		m := make(map[string]struct{})
		for _, w := range words {
			m[w] = struct{}{}
		}
		return m
	}
	tests := []struct {
		a, b map[string]struct{}
		want float64
	}{
		{set(), set(), 0},
		{set("alpha"), set("alpha"), 1},
		{set("alpha", "beta"), set("alpha", "gamma"), 1.0 / 3.0},
	}
	for _, tt := range tests {
		if got := overlap(tt.a, tt.b); got != tt.want {
			t.Errorf("overlap(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestKeywords(t *testing.T) {
	got := keywords("Julgue o item: a União, os Estados.")
	want := map[string]struct{}{"julgue": {}, "item": {}, "união": {}, "estados": {}}
	if len(got) != len(want) {
		t.Fatalf("keywords() = %v, want %v", got, want)
	}
	for w := range want {
		if _, ok := got[w]; !ok {
			t.Errorf("keywords() missing %q", w)
		}
	}
}
