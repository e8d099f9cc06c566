package app

import (
	"context"
	"time"

	"eco-quiz-engine/internal/domain"
	"eco-quiz-engine/internal/engine"
	"eco-quiz-engine/internal/pkg/logger"
	"github.com/google/uuid"
)

// PlayRepository abstracts where live plays are kept (in-memory, Redis-marked, etc).
type PlayRepository interface {
	Put(play *Play)
	Get(playID string) (*Play, bool)
	Delete(playID string)
}

// BankRepository loads question banks (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.Bank, error)
}

// StandingsRepository accumulates finished play-throughs per player.
type StandingsRepository interface {
	Record(ctx context.Context, result domain.Result) (domain.Standing, error)
	Leaderboard(ctx context.Context, limit int) (domain.Leaderboard, error)
}

// Options tunes the countdown, level caching and logging of a GameService.
type Options struct {
	Clock    Clock
	Tick     time.Duration
	AutoTick bool
	// LevelTTL bounds how long built levels are reused before the bank is
	// fetched again. Zero keeps them until the process exits.
	LevelTTL time.Duration
	Logger   *logger.Logger
}

// GameService contains the play-through use cases.
type GameService struct {
	plays     PlayRepository
	catalog   *LevelCatalog
	standings StandingsRepository
	opts      Options
	log       *logger.Logger
	newID     func() string
}

func NewGameService(plays PlayRepository, banks BankRepository, standings StandingsRepository, opts Options) *GameService {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &GameService{
		plays:     plays,
		catalog:   NewLevelCatalog(banks, opts.LevelTTL, opts.Clock.Now),
		standings: standings,
		opts:      opts,
		log:       opts.Logger.With("component", "game_service"),
		newID:     uuid.NewString,
	}
}

// Create builds a new play-through over bankID in the NotStarted phase.
// Bank loading and level construction failures are returned as is.
func (s *GameService) Create(ctx context.Context, bankID, playerID, displayName string) (*Play, error) {
	levels, err := s.catalog.Levels(ctx, bankID)
	if err != nil {
		s.log.Warn("levels unavailable", "bank_id", bankID, "error", err)
		return nil, err
	}
	play := NewPlay(s.newID(), bankID, playerID, displayName, levels, PlayOptions{
		Clock:    s.opts.Clock,
		Tick:     s.opts.Tick,
		AutoTick: s.opts.AutoTick,
	})
	s.plays.Put(play)
	s.log.Debug("play created", "play_id", play.ID(), "bank_id", bankID, "levels", len(levels))
	return play, nil
}

// Start enters the first question.
func (s *GameService) Start(ctx context.Context, playID string) (domain.Snapshot, bool, error) {
	return s.apply(ctx, playID, (*engine.Session).Start)
}

// Answer submits the option at optionIndex for the open question.
func (s *GameService) Answer(ctx context.Context, playID string, optionIndex int) (domain.Snapshot, bool, error) {
	return s.apply(ctx, playID, func(sess *engine.Session) (domain.Snapshot, bool) {
		return sess.SubmitAnswer(optionIndex)
	})
}

// Timeout records a missed deadline for the open question.
func (s *GameService) Timeout(ctx context.Context, playID string) (domain.Snapshot, bool, error) {
	return s.apply(ctx, playID, (*engine.Session).Timeout)
}

// Tick advances the countdown by one step. Hosts that run with AutoTick call it themselves.
func (s *GameService) Tick(ctx context.Context, playID string) (domain.Snapshot, bool, error) {
	return s.apply(ctx, playID, (*engine.Session).Tick)
}

func (s *GameService) Advance(ctx context.Context, playID string) (domain.Snapshot, bool, error) {
	return s.apply(ctx, playID, (*engine.Session).Advance)
}

func (s *GameService) NextLevel(ctx context.Context, playID string) (domain.Snapshot, bool, error) {
	return s.apply(ctx, playID, (*engine.Session).NextLevel)
}

func (s *GameService) PreviousLevel(ctx context.Context, playID string) (domain.Snapshot, bool, error) {
	return s.apply(ctx, playID, (*engine.Session).PreviousLevel)
}

// Snapshot returns the current state of a play.
func (s *GameService) Snapshot(_ context.Context, playID string) (domain.Snapshot, error) {
	play, ok := s.plays.Get(playID)
	if !ok {
		return domain.Snapshot{}, domain.ErrPlayNotFound
	}
	return play.Snapshot(), nil
}

// Subscribe returns a channel that receives a snapshot after every transition.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(_ context.Context, playID string) (<-chan domain.Snapshot, func(), error) {
	play, ok := s.plays.Get(playID)
	if !ok {
		return nil, nil, domain.ErrPlayNotFound
	}
	ch, cancel := play.subscribe()
	return ch, cancel, nil
}

// End tears a play down: the countdown stops and subscribers are released.
func (s *GameService) End(_ context.Context, playID string) {
	play, ok := s.plays.Get(playID)
	if !ok {
		return
	}
	play.close()
	s.plays.Delete(playID)
	s.log.Debug("play ended", "play_id", playID)
}

// Leaderboard returns the top standings.
func (s *GameService) Leaderboard(ctx context.Context, limit int) (domain.Leaderboard, error) {
	return s.standings.Leaderboard(ctx, limit)
}

func (s *GameService) apply(ctx context.Context, playID string, op func(*engine.Session) (domain.Snapshot, bool)) (domain.Snapshot, bool, error) {
	play, ok := s.plays.Get(playID)
	if !ok {
		return domain.Snapshot{}, false, domain.ErrPlayNotFound
	}
	snap, accepted, finished := play.apply(op)
	if finished {
		s.record(ctx, play, snap)
	}
	return snap, accepted, nil
}

func (s *GameService) record(ctx context.Context, play *Play, snap domain.Snapshot) {
	if s.standings == nil || snap.Summary == nil {
		return
	}
	standing, err := s.standings.Record(ctx, domain.Result{
		PlayerID:    play.PlayerID(),
		DisplayName: play.DisplayName(),
		BankID:      play.BankID(),
		Summary:     *snap.Summary,
		FinishedAt:  s.opts.Clock.Now(),
	})
	if err != nil {
		s.log.Error("record standing failed", "play_id", play.ID(), "error", err)
		return
	}
	s.log.Info("play finished",
		"play_id", play.ID(),
		"score", snap.Summary.Score,
		"percentage", snap.Summary.OverallPercentage,
		"total_score", standing.TotalScore,
	)
}
