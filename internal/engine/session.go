package engine

import (
	"math"

	"eco-quiz-engine/internal/domain"
)

const (
	QuestionSeconds = 30
	StartingHealth  = 50
	MaxHealth       = 100

	CorrectPoints = 10
	CorrectHealth = 5
	WrongHealth   = -2

	EnergyHealthThreshold = 80
	RecycleScoreThreshold = 50
	AwardScoreThreshold   = 200
)

// Session is a single play-through over a fixed set of levels.
// It is not safe for concurrent use; hosts serialize calls.
//
// Every transition returns the resulting snapshot and whether it was
// accepted. Rejected transitions leave the session untouched.
type Session struct {
	levels []domain.Level

	phase    domain.Phase
	seq      int
	level    int
	question int
	score    int
	health   int
	timeLeft int

	badges  []domain.Badge
	earned  map[domain.Badge]struct{}
	answers []domain.AnswerRecord
	stats   []domain.LevelStat
	summary *domain.Summary
}

// NewSession creates a session in the NotStarted phase. The levels are
// shared read-only and must not be mutated by the caller afterwards.
func NewSession(levels []domain.Level) *Session {
	return &Session{
		levels:   levels,
		phase:    domain.PhaseNotStarted,
		health:   StartingHealth,
		timeLeft: QuestionSeconds,
		earned:   make(map[domain.Badge]struct{}),
	}
}

// Start enters the first question. Without levels the session moves
// straight to the final results.
func (s *Session) Start() (domain.Snapshot, bool) {
	if s.phase != domain.PhaseNotStarted {
		return s.Snapshot(), false
	}
	if len(s.levels) == 0 {
		s.finish()
		return s.Snapshot(), true
	}
	s.enterLevel(0)
	return s.Snapshot(), true
}

// SubmitAnswer records the option at index for the active question.
func (s *Session) SubmitAnswer(index int) (domain.Snapshot, bool) {
	if s.phase != domain.PhaseInQuestion {
		return s.Snapshot(), false
	}
	q := s.current()
	if index < 0 || index >= len(q.Options) {
		return s.Snapshot(), false
	}
	opt := q.Options[index]
	s.record(domain.AnswerRecord{
		Question:       q.Text,
		SelectedAnswer: opt.Text,
		CorrectAnswer:  q.CorrectAnswer,
		IsCorrect:      opt.Correct,
	})
	return s.Snapshot(), true
}

// Timeout records a missed deadline for the active question.
func (s *Session) Timeout() (domain.Snapshot, bool) {
	if s.phase != domain.PhaseInQuestion {
		return s.Snapshot(), false
	}
	q := s.current()
	s.timeLeft = 0
	s.record(domain.AnswerRecord{
		Question:      q.Text,
		CorrectAnswer: q.CorrectAnswer,
		TimedOut:      true,
	})
	return s.Snapshot(), true
}

// Tick consumes one second of the active question's countdown. Reaching
// zero times the question out.
func (s *Session) Tick() (domain.Snapshot, bool) {
	if s.phase != domain.PhaseInQuestion {
		return s.Snapshot(), false
	}
	if s.timeLeft > 0 {
		s.timeLeft--
	}
	if s.timeLeft == 0 {
		return s.Timeout()
	}
	return s.Snapshot(), true
}

// Advance moves past a revealed answer, either to the next question or to
// the level results.
func (s *Session) Advance() (domain.Snapshot, bool) {
	if s.phase != domain.PhaseAnswerRevealed {
		return s.Snapshot(), false
	}
	lvl := s.levels[s.level]
	if s.question+1 < len(lvl.Questions) {
		s.question++
		s.present()
		return s.Snapshot(), true
	}

	correct := 0
	for _, a := range s.answers {
		if a.IsCorrect {
			correct++
		}
	}
	s.stats = append(s.stats, domain.LevelStat{
		Level:   lvl.ID,
		Correct: correct,
		Total:   len(lvl.Questions),
		Score:   s.score,
	})
	s.phase = domain.PhaseLevelResults
	return s.Snapshot(), true
}

// NextLevel leaves the level results for the next level, or for the final
// results after the last one.
func (s *Session) NextLevel() (domain.Snapshot, bool) {
	if s.phase != domain.PhaseLevelResults {
		return s.Snapshot(), false
	}
	if s.level+1 >= len(s.levels) {
		s.finish()
		return s.Snapshot(), true
	}
	s.enterLevel(s.level + 1)
	return s.Snapshot(), true
}

// PreviousLevel replays the level before the current one. It is a no-op on
// the first level.
func (s *Session) PreviousLevel() (domain.Snapshot, bool) {
	if s.phase != domain.PhaseLevelResults || s.level == 0 {
		return s.Snapshot(), false
	}
	s.enterLevel(s.level - 1)
	return s.Snapshot(), true
}

// Phase reports the current phase.
func (s *Session) Phase() domain.Phase { return s.phase }

// Seq changes every time a new question is presented.
func (s *Session) Seq() int { return s.seq }

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() domain.Snapshot {
	snap := domain.Snapshot{
		Phase:      s.phase,
		Seq:        s.seq,
		LevelIndex: s.level,
		LevelCount: len(s.levels),
		Score:      s.score,
		Health:     s.health,
		TimeLeft:   s.timeLeft,
		Badges:     append([]domain.Badge{}, s.badges...),
		Answers:    append([]domain.AnswerRecord{}, s.answers...),
		LevelStats: append([]domain.LevelStat{}, s.stats...),
	}
	if len(s.levels) > 0 {
		snap.LevelNumber = s.levels[s.level].ID
		snap.QuestionCount = len(s.levels[s.level].Questions)
	}

	switch s.phase {
	case domain.PhaseInQuestion, domain.PhaseAnswerRevealed:
		snap.QuestionIndex = s.question
		snap.QuestionNumber = s.question + 1
		q := s.current()
		view := &domain.QuestionView{Text: q.Text, Options: make([]string, len(q.Options))}
		for i, o := range q.Options {
			view.Options[i] = o.Text
		}
		if s.phase == domain.PhaseAnswerRevealed {
			view.CorrectAnswer = q.CorrectAnswer
		}
		snap.Question = view
	case domain.PhaseLevelResults:
		snap.QuestionIndex = s.question
		snap.QuestionNumber = s.question + 1
	}

	if n := len(s.answers); n > 0 && s.phase != domain.PhaseInQuestion {
		last := s.answers[n-1]
		snap.LastAnswer = &last
	}
	if s.summary != nil {
		sum := *s.summary
		sum.Badges = append([]domain.Badge{}, s.summary.Badges...)
		snap.Summary = &sum
	}
	return snap
}

// Summarize aggregates level stats. Without stats the percentage is 0.
func Summarize(stats []domain.LevelStat) domain.Summary {
	var sum domain.Summary
	for _, st := range stats {
		sum.TotalQuestions += st.Total
		sum.TotalCorrect += st.Correct
	}
	if sum.TotalQuestions > 0 {
		sum.OverallPercentage = int(math.Round(100 * float64(sum.TotalCorrect) / float64(sum.TotalQuestions)))
	}
	return sum
}

func (s *Session) current() domain.Question {
	return s.levels[s.level].Questions[s.question]
}

func (s *Session) enterLevel(idx int) {
	s.level = idx
	s.question = 0
	s.answers = nil
	s.present()
}

func (s *Session) present() {
	s.seq++
	s.timeLeft = QuestionSeconds
	s.phase = domain.PhaseInQuestion
}

func (s *Session) record(rec domain.AnswerRecord) {
	if rec.IsCorrect {
		s.score += CorrectPoints
		s.health = clamp(s.health+CorrectHealth, 0, MaxHealth)
	} else {
		s.health = clamp(s.health+WrongHealth, 0, MaxHealth)
	}
	s.answers = append(s.answers, rec)
	s.phase = domain.PhaseAnswerRevealed

	if rec.IsCorrect {
		s.unlock(domain.BadgeTree)
	}
	if s.health > EnergyHealthThreshold {
		s.unlock(domain.BadgeEnergy)
	}
	if s.score > RecycleScoreThreshold {
		s.unlock(domain.BadgeRecycle)
	}
}

func (s *Session) finish() {
	if s.score > AwardScoreThreshold {
		s.unlock(domain.BadgeAward)
	}
	sum := Summarize(s.stats)
	sum.Score = s.score
	sum.Badges = append([]domain.Badge{}, s.badges...)
	s.summary = &sum
	s.phase = domain.PhaseFinalResults
}

func (s *Session) unlock(b domain.Badge) {
	if _, ok := s.earned[b]; ok {
		return
	}
	s.earned[b] = struct{}{}
	s.badges = append(s.badges, b)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
