package memory

import (
	"context"
	"sync"
	"time"

	"eco-quiz-engine/internal/app"
	"eco-quiz-engine/internal/domain"
)

// StandingsStore keeps player standings in process memory.
type StandingsStore struct {
	now func() time.Time

	mu      sync.RWMutex
	players map[string]domain.Standing
}

func NewStandingsStore() *StandingsStore {
	return &StandingsStore{
		now:     time.Now,
		players: make(map[string]domain.Standing),
	}
}

func (s *StandingsStore) Record(_ context.Context, result domain.Result) (domain.Standing, error) {
	if result.FinishedAt.IsZero() {
		result.FinishedAt = s.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := app.ApplyResult(s.players[result.PlayerID], result)
	s.players[result.PlayerID] = next
	return next, nil
}

// Leaderboard returns up to limit standings; limit <= 0 returns all.
func (s *StandingsStore) Leaderboard(_ context.Context, limit int) (domain.Leaderboard, error) {
	s.mu.RLock()
	entries := make([]domain.Standing, 0, len(s.players))
	for _, st := range s.players {
		entries = append(entries, st)
	}
	s.mu.RUnlock()

	app.SortStandings(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: s.now()}, nil
}
