package generator

import (
	"fmt"
	"strings"
)

const draftSystemPrompt = `You write multiple-choice questions for Brazilian public-service exams (concursos públicos).

RULES:
- Every question has a STATEMENT and between 4 and 5 OPTIONS.
- Exactly one option is correct. Distractors must be plausible and mutually exclusive.
- Write in Portuguese, in the register used by the named exam board (banca) when one is given.
- The EXPLANATION says why the correct option is right and, briefly, why the others fail.
- TIPS is one short study hint for a student who got the question wrong.
- Do not number or letter the options; the application does that.

OUTPUT:
Respond with JSON only, no commentary, in this shape:
{"questions":[{"statement":"...","options":["...","..."],"correct_option_index":0,"explanation":"...","tips":"..."}]}
correct_option_index is zero-based.`

func DraftSystemPrompt() string {
	return draftSystemPrompt
}

func BuildDraftUserPrompt(req DraftRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d questions.\n\n", req.Count)
	fmt.Fprintf(&b, "SUBJECT: %s\n", req.Subject)
	if req.Topic != "" {
		fmt.Fprintf(&b, "TOPIC: %s\n", req.Topic)
	}
	if req.Banca != "" {
		fmt.Fprintf(&b, "EXAM BOARD (banca): %s\n", req.Banca)
	}
	if req.Orgao != "" {
		fmt.Fprintf(&b, "AGENCY (órgão): %s\n", req.Orgao)
	}
	if req.Cargo != "" {
		fmt.Fprintf(&b, "POSITION (cargo): %s\n", req.Cargo)
	}
	if req.Ano != nil {
		fmt.Fprintf(&b, "YEAR: %d\n", *req.Ano)
	}
	if s := strings.TrimSpace(req.Instructions); s != "" {
		fmt.Fprintf(&b, "\nADDITIONAL INSTRUCTIONS:\n%s\n", s)
	}
	b.WriteString("\nVary the correct_option_index across questions and cover different aspects of the topic.")
	return b.String()
}
