package app

import (
	"context"
	"sync"
	"time"

	"eco-quiz-engine/internal/domain"
	"eco-quiz-engine/internal/engine"
	"golang.org/x/sync/singleflight"
)

// LevelCatalog builds the levels of each bank and shares them read-only
// between plays. Built levels expire after ttl so a reloaded bank is picked
// up; ttl <= 0 keeps them for the life of the catalog.
type LevelCatalog struct {
	banks BankRepository
	ttl   time.Duration
	now   func() time.Time
	sf    singleflight.Group

	mu     sync.RWMutex
	levels map[string]builtLevels
}

type builtLevels struct {
	levels    []domain.Level
	expiresAt time.Time
}

func NewLevelCatalog(banks BankRepository, ttl time.Duration, now func() time.Time) *LevelCatalog {
	if now == nil {
		now = time.Now
	}
	return &LevelCatalog{
		banks:  banks,
		ttl:    ttl,
		now:    now,
		levels: make(map[string]builtLevels),
	}
}

// Levels returns the levels of bankID, loading and building them when
// missing or expired. Construction failures are returned and not cached.
func (c *LevelCatalog) Levels(ctx context.Context, bankID string) ([]domain.Level, error) {
	if levels, ok := c.cached(bankID); ok {
		return levels, nil
	}

	result, err, _ := c.sf.Do(bankID, func() (interface{}, error) {
		if levels, ok := c.cached(bankID); ok {
			return levels, nil
		}

		bank, err := c.banks.GetBank(ctx, bankID)
		if err != nil {
			return nil, err
		}
		levels, err := engine.BuildLevels(bank.Entries)
		if err != nil {
			return nil, err
		}

		entry := builtLevels{levels: levels}
		if c.ttl > 0 {
			entry.expiresAt = c.now().Add(c.ttl)
		}
		c.mu.Lock()
		c.levels[bankID] = entry
		c.mu.Unlock()
		return levels, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Level), nil
}

func (c *LevelCatalog) cached(bankID string) ([]domain.Level, bool) {
	c.mu.RLock()
	entry, ok := c.levels[bankID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(c.now()) {
		return nil, false
	}
	return entry.levels, true
}
