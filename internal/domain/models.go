package domain

import "time"

// BankEntry is one raw question as supplied by a question-bank provider.
// Answer must equal exactly one element of Options.
type BankEntry struct {
	Question string   `json:"question" yaml:"question"`
	Options  []string `json:"options" yaml:"options"`
	Answer   string   `json:"answer" yaml:"answer"`
}

// Bank is a named, ordered question bank.
type Bank struct {
	ID      string      `json:"id" yaml:"id"`
	Title   string      `json:"title" yaml:"title"`
	Entries []BankEntry `json:"entries" yaml:"entries"`
}

// Option represents a possible answer for a question.
type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question is an MCQ question with exactly one correct option.
type Question struct {
	Text          string   `json:"text"`
	Options       []Option `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Level is a fixed-size slice of the deduplicated bank. IDs start at 1.
type Level struct {
	ID        int        `json:"id"`
	Questions []Question `json:"questions"`
}

// AnswerRecord is produced once per answered (or timed out) question.
type AnswerRecord struct {
	Question       string `json:"question"`
	SelectedAnswer string `json:"selectedAnswer"`
	CorrectAnswer  string `json:"correctAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
	TimedOut       bool   `json:"timedOut"`
}

// LevelStat is the snapshot taken when a level is finished.
type LevelStat struct {
	Level   int `json:"level"`
	Correct int `json:"correct"`
	Total   int `json:"total"`
	Score   int `json:"score"`
}

// Badge identifies an achievement. Once earned it is never revoked.
type Badge string

const (
	BadgeTree    Badge = "tree"
	BadgeEnergy  Badge = "energy"
	BadgeRecycle Badge = "recycle"
	BadgeAward   Badge = "award"
)

// Phase is the state of a play-through.
type Phase string

const (
	PhaseNotStarted     Phase = "notStarted"
	PhaseInQuestion     Phase = "inQuestion"
	PhaseAnswerRevealed Phase = "answerRevealed"
	PhaseLevelResults   Phase = "levelResults"
	PhaseFinalResults   Phase = "finalResults"
)

// QuestionView is what the presentation layer may show for the active question.
// CorrectAnswer stays empty until the answer has been revealed.
type QuestionView struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
}

// Summary is computed when a play-through enters the final results.
type Summary struct {
	TotalQuestions    int     `json:"totalQuestions"`
	TotalCorrect      int     `json:"totalCorrect"`
	OverallPercentage int     `json:"overallPercentage"`
	Score             int     `json:"score"`
	Badges            []Badge `json:"badges"`
}

// Snapshot is a read-only copy of a play-through, sufficient to re-render it.
type Snapshot struct {
	Phase          Phase          `json:"phase"`
	Seq            int            `json:"seq"`
	LevelIndex     int            `json:"levelIndex"`
	LevelNumber    int            `json:"levelNumber"`
	LevelCount     int            `json:"levelCount"`
	QuestionIndex  int            `json:"questionIndex"`
	QuestionNumber int            `json:"questionNumber"`
	QuestionCount  int            `json:"questionCount"`
	Question       *QuestionView  `json:"question,omitempty"`
	Score          int            `json:"score"`
	Health         int            `json:"health"`
	TimeLeft       int            `json:"timeLeft"`
	Badges         []Badge        `json:"badges"`
	Answers        []AnswerRecord `json:"answers"`
	LastAnswer     *AnswerRecord  `json:"lastAnswer,omitempty"`
	LevelStats     []LevelStat    `json:"levelStats"`
	Summary        *Summary       `json:"summary,omitempty"`
}

// Standing aggregates every finished play-through of one player.
type Standing struct {
	PlayerID       string    `json:"playerId"`
	DisplayName    string    `json:"displayName"`
	TotalScore     int       `json:"totalScore"`
	BestScore      int       `json:"bestScore"`
	BestPercentage int       `json:"bestPercentage"`
	PlayThroughs   int       `json:"playThroughs"`
	Rank           int       `json:"rank"`
	Badges         []Badge   `json:"badges"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Leaderboard is the ordered list of standings.
type Leaderboard struct {
	Entries   []Standing `json:"entries"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Result is what a finished play-through contributes to the standings.
type Result struct {
	PlayerID    string
	DisplayName string
	BankID      string
	Summary     Summary
	FinishedAt  time.Time
}
