package redis

import (
	"context"
	"sync"
	"time"

	"eco-quiz-engine/internal/app"
	"github.com/redis/go-redis/v9"
)

// PlayStore is a Redis-aware implementation of app.PlayRepository.
// Plays stay in the local map; Redis only carries a liveness marker per
// play (play:{id} -> player id) so other instances can count live plays.
// Nothing of the play state itself is written.
type PlayStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	plays  map[string]*app.Play
}

func NewPlayStore(client *redis.Client, ttl time.Duration) *PlayStore {
	return &PlayStore{
		client: client,
		ttl:    ttl,
		plays:  make(map[string]*app.Play),
	}
}

func (s *PlayStore) Put(play *app.Play) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays[play.ID()] = play
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(play.ID()), play.PlayerID(), s.ttl).Err()
}

func (s *PlayStore) Get(playID string) (*app.Play, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	play, ok := s.plays[playID]
	if ok && s.ttl > 0 {
		_ = s.client.Expire(context.Background(), s.key(playID), s.ttl).Err()
	}
	return play, ok
}

func (s *PlayStore) Delete(playID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plays, playID)
	_ = s.client.Del(context.Background(), s.key(playID)).Err()
}

func (s *PlayStore) key(playID string) string {
	return "play:" + playID
}
