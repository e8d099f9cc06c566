package engine

import (
	"fmt"
	"strings"

	"eco-quiz-engine/internal/domain"
)

// LevelSize is the fixed number of questions per level.
const LevelSize = 10

// Dedupe keeps the first occurrence of every question text, preserving order.
func Dedupe(entries []domain.BankEntry) []domain.BankEntry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]domain.BankEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Question]; ok {
			continue
		}
		seen[e.Question] = struct{}{}
		out = append(out, e)
	}
	return out
}

// ToQuestion validates a bank entry and converts it. The entry answer must
// match exactly one option.
func ToQuestion(e domain.BankEntry) (domain.Question, error) {
	if strings.TrimSpace(e.Question) == "" {
		return domain.Question{}, domain.ErrEmptyQuestion
	}
	options := make([]domain.Option, len(e.Options))
	matches := 0
	for i, text := range e.Options {
		correct := text == e.Answer
		if correct {
			matches++
		}
		options[i] = domain.Option{Text: text, Correct: correct}
	}
	switch {
	case matches == 0:
		return domain.Question{}, domain.ErrAnswerNotInOptions
	case matches > 1:
		return domain.Question{}, domain.ErrAmbiguousAnswer
	}
	return domain.Question{Text: e.Question, Options: options, CorrectAnswer: e.Answer}, nil
}

// Partition splits questions into consecutive levels of LevelSize.
// A trailing partial chunk is dropped.
func Partition(questions []domain.Question) []domain.Level {
	levels := make([]domain.Level, 0, len(questions)/LevelSize)
	for start := 0; start+LevelSize <= len(questions); start += LevelSize {
		chunk := make([]domain.Question, LevelSize)
		copy(chunk, questions[start:start+LevelSize])
		levels = append(levels, domain.Level{ID: len(levels) + 1, Questions: chunk})
	}
	return levels
}

// BuildLevels dedupes and validates a bank, then partitions it into levels.
// A bank with fewer than LevelSize unique questions yields an empty slice
// together with domain.ErrBankTooSmall.
func BuildLevels(entries []domain.BankEntry) ([]domain.Level, error) {
	unique := Dedupe(entries)
	questions := make([]domain.Question, 0, len(unique))
	for i, e := range unique {
		q, err := ToQuestion(e)
		if err != nil {
			return nil, fmt.Errorf("question %d %q: %w", i+1, e.Question, err)
		}
		questions = append(questions, q)
	}
	levels := Partition(questions)
	if len(levels) == 0 {
		return levels, fmt.Errorf("%d unique questions: %w", len(questions), domain.ErrBankTooSmall)
	}
	return levels, nil
}
