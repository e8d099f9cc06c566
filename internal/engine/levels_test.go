package engine_test

import (
	"errors"
	"fmt"
	"testing"

	"eco-quiz-engine/internal/domain"
	"eco-quiz-engine/internal/engine"
)

func TestBuildLevelsFullChunksOnly(t *testing.T) {
	levels, err := engine.BuildLevels(sampleBank(25))
	if err != nil {
		t.Fatalf("build levels: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(levels))
	}
	for i, lvl := range levels {
		if lvl.ID != i+1 {
			t.Fatalf("expected level id %d, got %d", i+1, lvl.ID)
		}
		if len(lvl.Questions) != engine.LevelSize {
			t.Fatalf("level %d has %d questions", lvl.ID, len(lvl.Questions))
		}
	}
	if got := levels[1].Questions[9].Text; got != "Question 20" {
		t.Fatalf("expected last kept question to be Question 20, got %q", got)
	}
}

func TestBuildLevelsTooSmall(t *testing.T) {
	levels, err := engine.BuildLevels(sampleBank(9))
	if !errors.Is(err, domain.ErrBankTooSmall) {
		t.Fatalf("expected ErrBankTooSmall, got %v", err)
	}
	if levels == nil || len(levels) != 0 {
		t.Fatalf("expected empty level slice, got %v", levels)
	}
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	bank := []domain.BankEntry{
		{Question: "A", Options: []string{"1", "2"}, Answer: "1"},
		{Question: "B", Options: []string{"1", "2"}, Answer: "2"},
		{Question: "A", Options: []string{"x", "y"}, Answer: "y"},
		{Question: "C", Options: []string{"1", "2"}, Answer: "1"},
		{Question: "B", Options: []string{"1", "2"}, Answer: "1"},
	}
	got := engine.Dedupe(bank)
	if len(got) != 3 {
		t.Fatalf("expected 3 unique entries, got %d", len(got))
	}
	order := []string{"A", "B", "C"}
	for i, e := range got {
		if e.Question != order[i] {
			t.Fatalf("position %d: expected %q, got %q", i, order[i], e.Question)
		}
	}
	if got[0].Answer != "1" || got[1].Answer != "2" {
		t.Fatalf("expected first occurrences to survive, got %+v", got)
	}
}

func TestBuildLevelsDedupesBeforePartition(t *testing.T) {
	bank := sampleBank(10)
	bank = append(bank, bank[3], bank[7])
	levels, err := engine.BuildLevels(bank)
	if err != nil {
		t.Fatalf("build levels: %v", err)
	}
	if len(levels) != 1 {
		t.Fatalf("expected duplicates to be dropped, got %d levels", len(levels))
	}
}

func TestBuildLevelsRejectsMalformedEntries(t *testing.T) {
	cases := []struct {
		name  string
		entry domain.BankEntry
		want  error
	}{
		{"missing answer", domain.BankEntry{Question: "Q", Options: []string{"a", "b"}, Answer: "c"}, domain.ErrAnswerNotInOptions},
		{"no options", domain.BankEntry{Question: "Q", Answer: "a"}, domain.ErrAnswerNotInOptions},
		{"ambiguous", domain.BankEntry{Question: "Q", Options: []string{"a", "a"}, Answer: "a"}, domain.ErrAmbiguousAnswer},
		{"empty text", domain.BankEntry{Question: "  ", Options: []string{"a"}, Answer: "a"}, domain.ErrEmptyQuestion},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bank := append(sampleBank(12), tc.entry)
			if _, err := engine.BuildLevels(bank); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestToQuestionMarksCorrectOption(t *testing.T) {
	q, err := engine.ToQuestion(domain.BankEntry{
		Question: "Which of these is a renewable energy source?",
		Options:  []string{"Solar Power", "Natural Gas", "Coal", "Oil"},
		Answer:   "Solar Power",
	})
	if err != nil {
		t.Fatalf("to question: %v", err)
	}
	if !q.Options[0].Correct || q.Options[1].Correct {
		t.Fatalf("unexpected options %+v", q.Options)
	}
	if q.CorrectAnswer != "Solar Power" {
		t.Fatalf("unexpected correct answer %q", q.CorrectAnswer)
	}
}

// sampleBank returns n unique entries whose first option is always correct.
func sampleBank(n int) []domain.BankEntry {
	bank := make([]domain.BankEntry, 0, n)
	for i := 1; i <= n; i++ {
		right := fmt.Sprintf("right %d", i)
		bank = append(bank, domain.BankEntry{
			Question: fmt.Sprintf("Question %d", i),
			Options:  []string{right, "wrong a", "wrong b", "wrong c"},
			Answer:   right,
		})
	}
	return bank
}

func mustLevels(t *testing.T, n int) []domain.Level {
	t.Helper()
	levels, err := engine.BuildLevels(sampleBank(n))
	if err != nil {
		t.Fatalf("build levels: %v", err)
	}
	return levels
}
