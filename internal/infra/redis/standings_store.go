package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"eco-quiz-engine/internal/app"
	"eco-quiz-engine/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	standingsScoresKey  = "standings:scores"
	standingsPlayersKey = "standings:players"
)

// StandingsStore keeps standings in Redis:
//
//	ZADD standings:scores {totalScore} {playerID}
//	HSET standings:players {playerID} {json}
type StandingsStore struct {
	client     *redis.Client
	now        func() time.Time
	maxRetries int
}

func NewStandingsStore(client *redis.Client) *StandingsStore {
	return &StandingsStore{client: client, now: time.Now, maxRetries: 5}
}

// Record applies result under WATCH so concurrent instances do not lose updates.
func (s *StandingsStore) Record(ctx context.Context, result domain.Result) (domain.Standing, error) {
	if result.FinishedAt.IsZero() {
		result.FinishedAt = s.now()
	}

	var next domain.Standing
	txf := func(tx *redis.Tx) error {
		prev, err := s.load(ctx, tx, result.PlayerID)
		if err != nil {
			return err
		}
		next = app.ApplyResult(prev, result)
		raw, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, standingsPlayersKey, result.PlayerID, raw)
			pipe.ZAdd(ctx, standingsScoresKey, redis.Z{Score: float64(next.TotalScore), Member: result.PlayerID})
			return nil
		})
		return err
	}

	for i := 0; i < s.maxRetries; i++ {
		err := s.client.Watch(ctx, txf, standingsPlayersKey)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return domain.Standing{}, fmt.Errorf("record standing: %w", err)
		}
	}
	return domain.Standing{}, fmt.Errorf("record standing: %w", redis.TxFailedErr)
}

// Leaderboard returns up to limit standings; limit <= 0 returns all.
// Every player tied with the last score on the page is fetched before
// sorting, so the cut-off follows SortStandings rather than member order.
func (s *StandingsStore) Leaderboard(ctx context.Context, limit int) (domain.Leaderboard, error) {
	ids, err := s.candidates(ctx, limit)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("leaderboard: %w", err)
	}
	lb := domain.Leaderboard{Entries: make([]domain.Standing, 0, len(ids)), UpdatedAt: s.now()}
	if len(ids) == 0 {
		return lb, nil
	}

	raws, err := s.client.HMGet(ctx, standingsPlayersKey, ids...).Result()
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("leaderboard: %w", err)
	}
	for _, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		var st domain.Standing
		if err := json.Unmarshal([]byte(str), &st); err != nil {
			continue
		}
		lb.Entries = append(lb.Entries, st)
	}
	app.SortStandings(lb.Entries)
	if limit > 0 && len(lb.Entries) > limit {
		lb.Entries = lb.Entries[:limit]
	}
	return lb, nil
}

// candidates returns the top limit player ids plus everyone tied with the
// lowest score among them.
func (s *StandingsStore) candidates(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return s.client.ZRevRange(ctx, standingsScoresKey, 0, -1).Result()
	}
	page, err := s.client.ZRevRangeWithScores(ctx, standingsScoresKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(page) < limit {
		ids := make([]string, 0, len(page))
		for _, z := range page {
			ids = append(ids, z.Member.(string))
		}
		return ids, nil
	}
	cutoff := strconv.FormatFloat(page[len(page)-1].Score, 'f', -1, 64)
	return s.client.ZRevRangeByScore(ctx, standingsScoresKey, &redis.ZRangeBy{Min: cutoff, Max: "+inf"}).Result()
}

func (s *StandingsStore) load(ctx context.Context, tx *redis.Tx, playerID string) (domain.Standing, error) {
	raw, err := tx.HGet(ctx, standingsPlayersKey, playerID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Standing{}, nil
	}
	if err != nil {
		return domain.Standing{}, err
	}
	var st domain.Standing
	if err := json.Unmarshal(raw, &st); err != nil {
		return domain.Standing{}, err
	}
	return st, nil
}
