package engine_test

import (
	"testing"

	"eco-quiz-engine/internal/domain"
	"eco-quiz-engine/internal/engine"
)

func TestAllCorrectTwoLevels(t *testing.T) {
	s := engine.NewSession(mustLevels(t, 20))
	if _, ok := s.Start(); !ok {
		t.Fatalf("start rejected")
	}

	for level := 0; level < 2; level++ {
		for q := 0; q < engine.LevelSize; q++ {
			if _, ok := s.SubmitAnswer(0); !ok {
				t.Fatalf("level %d question %d: answer rejected", level, q)
			}
			if _, ok := s.Advance(); !ok {
				t.Fatalf("level %d question %d: advance rejected", level, q)
			}
		}
		if s.Phase() != domain.PhaseLevelResults {
			t.Fatalf("expected level results, got %s", s.Phase())
		}
		if _, ok := s.NextLevel(); !ok {
			t.Fatalf("next level rejected")
		}
	}

	snap := s.Snapshot()
	if snap.Phase != domain.PhaseFinalResults {
		t.Fatalf("expected final results, got %s", snap.Phase)
	}
	if snap.Score != 200 || snap.Health != 100 {
		t.Fatalf("expected score 200 health 100, got %d/%d", snap.Score, snap.Health)
	}
	sum := snap.Summary
	if sum == nil {
		t.Fatalf("expected summary")
	}
	if sum.TotalCorrect != 20 || sum.TotalQuestions != 20 || sum.OverallPercentage != 100 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	for _, b := range []domain.Badge{domain.BadgeTree, domain.BadgeEnergy, domain.BadgeRecycle} {
		if !hasBadge(snap.Badges, b) {
			t.Fatalf("expected badge %s in %v", b, snap.Badges)
		}
	}
	if hasBadge(snap.Badges, domain.BadgeAward) {
		t.Fatalf("award must not fire at exactly 200")
	}
	if len(snap.LevelStats) != 2 || snap.LevelStats[0].Score != 100 || snap.LevelStats[1].Score != 200 {
		t.Fatalf("unexpected level stats %+v", snap.LevelStats)
	}
}

func TestAwardAboveThreshold(t *testing.T) {
	s := engine.NewSession(mustLevels(t, 30))
	s.Start()
	for level := 0; level < 3; level++ {
		for q := 0; q < engine.LevelSize; q++ {
			s.SubmitAnswer(0)
			s.Advance()
		}
		s.NextLevel()
	}
	snap := s.Snapshot()
	if snap.Score != 300 || !hasBadge(snap.Badges, domain.BadgeAward) {
		t.Fatalf("expected award at 300, got score %d badges %v", snap.Score, snap.Badges)
	}
}

func TestZeroLevelsFinishWithZeroPercent(t *testing.T) {
	levels, _ := engine.BuildLevels(sampleBank(9))
	s := engine.NewSession(levels)
	snap, ok := s.Start()
	if !ok {
		t.Fatalf("start rejected")
	}
	if snap.Phase != domain.PhaseFinalResults {
		t.Fatalf("expected final results, got %s", snap.Phase)
	}
	if snap.Summary == nil || snap.Summary.OverallPercentage != 0 || snap.Summary.TotalQuestions != 0 {
		t.Fatalf("unexpected summary %+v", snap.Summary)
	}
}

func TestSubmitTwiceIsNoop(t *testing.T) {
	s := engine.NewSession(mustLevels(t, 10))
	s.Start()
	first, ok := s.SubmitAnswer(0)
	if !ok {
		t.Fatalf("first answer rejected")
	}
	second, ok := s.SubmitAnswer(1)
	if ok {
		t.Fatalf("second answer accepted")
	}
	if first.Score != second.Score || first.Health != second.Health || len(second.Answers) != 1 {
		t.Fatalf("state changed: %+v -> %+v", first, second)
	}
	if _, ok := s.Timeout(); ok {
		t.Fatalf("timeout after answer accepted")
	}
}

func TestInvalidOptionIndexRejected(t *testing.T) {
	s := engine.NewSession(mustLevels(t, 10))
	s.Start()
	for _, idx := range []int{-1, 4, 99} {
		if _, ok := s.SubmitAnswer(idx); ok {
			t.Fatalf("index %d accepted", idx)
		}
	}
	if s.Phase() != domain.PhaseInQuestion {
		t.Fatalf("expected still in question, got %s", s.Phase())
	}
}

func TestHealthClampedAndScoreMonotonic(t *testing.T) {
	s := engine.NewSession(mustLevels(t, 50))
	s.Start()
	prevScore := 0
	pattern := []int{1, 1, 0, 1, 2, 3, 0, 0, 0, 0}
	for step := 0; step < 50; step++ {
		snap, ok := s.SubmitAnswer(pattern[step%len(pattern)])
		if !ok {
			t.Fatalf("step %d rejected", step)
		}
		if snap.Health < 0 || snap.Health > 100 {
			t.Fatalf("health out of range: %d", snap.Health)
		}
		if snap.Score < prevScore {
			t.Fatalf("score decreased from %d to %d", prevScore, snap.Score)
		}
		prevScore = snap.Score
		s.Advance()
		if s.Phase() == domain.PhaseLevelResults {
			s.NextLevel()
		}
	}
}

func TestHealthFloorAtZero(t *testing.T) {
	s := engine.NewSession(mustLevels(t, 30))
	s.Start()
	var snap domain.Snapshot
	for i := 0; i < 30; i++ {
		snap, _ = s.SubmitAnswer(1)
		s.Advance()
		if s.Phase() == domain.PhaseLevelResults {
			s.NextLevel()
		}
	}
	if snap.Health != 0 {
		t.Fatalf("expected health floored at 0, got %d", snap.Health)
	}
	if snap.Score != 0 {
		t.Fatalf("expected score 0, got %d", snap.Score)
	}
}

func TestPreviousLevelAtFirstLevelIsNoop(t *testing.T) {
	s := engine.NewSession(mustLevels(t, 20))
	s.Start()
	before := s.Snapshot()
	if _, ok := s.PreviousLevel(); ok {
		t.Fatalf("previous level accepted while in question")
	}
	for q := 0; q < engine.LevelSize; q++ {
		s.SubmitAnswer(0)
		s.Advance()
	}
	results := s.Snapshot()
	after, ok := s.PreviousLevel()
	if ok {
		t.Fatalf("previous level accepted on level 0")
	}
	if after.Phase != results.Phase || after.LevelIndex != 0 || after.Score != results.Score {
		t.Fatalf("state changed: %+v", after)
	}
	if before.LevelIndex != 0 {
		t.Fatalf("unexpected start level %d", before.LevelIndex)
	}
}

func TestPreviousLevelReplaysLevel(t *testing.T) {
	s := engine.NewSession(mustLevels(t, 20))
	s.Start()
	for level := 0; level < 2; level++ {
		for q := 0; q < engine.LevelSize; q++ {
			s.SubmitAnswer(0)
			s.Advance()
		}
		if level == 0 {
			s.NextLevel()
		}
	}
	snap, ok := s.PreviousLevel()
	if !ok {
		t.Fatalf("previous level rejected")
	}
	if snap.Phase != domain.PhaseInQuestion || snap.LevelIndex != 0 || snap.QuestionIndex != 0 {
		t.Fatalf("expected first question of level 0, got %+v", snap)
	}
	if len(snap.Answers) != 0 || snap.TimeLeft != engine.QuestionSeconds {
		t.Fatalf("expected reset log and timer, got %d answers, %ds", len(snap.Answers), snap.TimeLeft)
	}
	if snap.Score != 200 {
		t.Fatalf("score must be kept across levels, got %d", snap.Score)
	}
}

func TestTimeoutPath(t *testing.T) {
	s := engine.NewSession(mustLevels(t, 10))
	s.Start()
	snap, ok := s.Timeout()
	if !ok {
		t.Fatalf("timeout rejected")
	}
	if snap.Health != engine.StartingHealth+engine.WrongHealth {
		t.Fatalf("expected health %d, got %d", engine.StartingHealth+engine.WrongHealth, snap.Health)
	}
	rec := snap.LastAnswer
	if rec == nil || rec.IsCorrect || !rec.TimedOut || rec.SelectedAnswer != "" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if snap.Phase != domain.PhaseAnswerRevealed {
		t.Fatalf("expected answer revealed, got %s", snap.Phase)
	}
}

func TestTickCountsDownAndTimesOutOnce(t *testing.T) {
	s := engine.NewSession(mustLevels(t, 10))
	s.Start()
	for i := 1; i < engine.QuestionSeconds; i++ {
		snap, ok := s.Tick()
		if !ok || snap.TimeLeft != engine.QuestionSeconds-i {
			t.Fatalf("tick %d: ok=%v timeLeft=%d", i, ok, snap.TimeLeft)
		}
	}
	snap, ok := s.Tick()
	if !ok || snap.Phase != domain.PhaseAnswerRevealed || snap.TimeLeft != 0 {
		t.Fatalf("expected timeout on last tick, got %+v", snap)
	}
	if _, ok := s.Tick(); ok {
		t.Fatalf("tick accepted after timeout")
	}
	if got := len(s.Snapshot().Answers); got != 1 {
		t.Fatalf("expected exactly one record, got %d", got)
	}
}

func TestTickStopsAfterAnswer(t *testing.T) {
	s := engine.NewSession(mustLevels(t, 10))
	s.Start()
	s.Tick()
	answered, _ := s.SubmitAnswer(0)
	after, ok := s.Tick()
	if ok || after.TimeLeft != answered.TimeLeft {
		t.Fatalf("timer kept running after answer")
	}
}

func TestAdvanceResetsTimerAndSeq(t *testing.T) {
	s := engine.NewSession(mustLevels(t, 10))
	first, _ := s.Start()
	s.Tick()
	s.SubmitAnswer(0)
	next, ok := s.Advance()
	if !ok {
		t.Fatalf("advance rejected")
	}
	if next.TimeLeft != engine.QuestionSeconds || next.QuestionIndex != 1 {
		t.Fatalf("unexpected snapshot %+v", next)
	}
	if next.Seq == first.Seq {
		t.Fatalf("expected new seq after advance")
	}
	if next.Question == nil || next.Question.CorrectAnswer != "" {
		t.Fatalf("correct answer must stay hidden before reveal")
	}
}

func TestOperationsBeforeStartRejected(t *testing.T) {
	s := engine.NewSession(mustLevels(t, 10))
	ops := []func() (domain.Snapshot, bool){s.Advance, s.NextLevel, s.PreviousLevel, s.Tick, s.Timeout}
	for i, op := range ops {
		if _, ok := op(); ok {
			t.Fatalf("op %d accepted before start", i)
		}
	}
	if _, ok := s.SubmitAnswer(0); ok {
		t.Fatalf("answer accepted before start")
	}
	s.Start()
	if _, ok := s.Start(); ok {
		t.Fatalf("second start accepted")
	}
}

func TestFinalResultsIsTerminal(t *testing.T) {
	s := engine.NewSession(mustLevels(t, 10))
	s.Start()
	for q := 0; q < engine.LevelSize; q++ {
		s.SubmitAnswer(q % 2)
		s.Advance()
	}
	final, ok := s.NextLevel()
	if !ok || final.Phase != domain.PhaseFinalResults {
		t.Fatalf("expected final results, got %+v", final)
	}
	if final.Summary.OverallPercentage != 50 {
		t.Fatalf("expected 50%%, got %d", final.Summary.OverallPercentage)
	}
	ops := []func() (domain.Snapshot, bool){s.Start, s.Advance, s.NextLevel, s.PreviousLevel, s.Tick}
	for i, op := range ops {
		if _, ok := op(); ok {
			t.Fatalf("op %d accepted after final results", i)
		}
	}
}

func TestSummarizeRounds(t *testing.T) {
	sum := engine.Summarize([]domain.LevelStat{
		{Level: 1, Correct: 7, Total: 10},
		{Level: 2, Correct: 6, Total: 10},
		{Level: 3, Correct: 0, Total: 10},
	})
	if sum.TotalCorrect != 13 || sum.TotalQuestions != 30 || sum.OverallPercentage != 43 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if got := engine.Summarize(nil).OverallPercentage; got != 0 {
		t.Fatalf("expected 0 for no stats, got %d", got)
	}
}

func hasBadge(badges []domain.Badge, want domain.Badge) bool {
	for _, b := range badges {
		if b == want {
			return true
		}
	}
	return false
}
