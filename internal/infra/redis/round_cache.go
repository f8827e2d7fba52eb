package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"jeopardy-board/internal/domain"
	"jeopardy-board/internal/infra/memory"
)

// RoundCache caches resolved rounds in Redis and falls back to a loader on cache miss.
// Each round is stored as one JSON blob: SET board:round:{roundID} {json} EX ttl
type RoundCache struct {
	client *redis.Client
	loader memory.RoundLoader
	ttl    time.Duration
	log    zerolog.Logger
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewRoundCache(client *redis.Client, loader memory.RoundLoader, ttl time.Duration, log zerolog.Logger) *RoundCache {
	return &RoundCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *RoundCache) GetRound(ctx context.Context, roundID string) (domain.Round, error) {
	if round, ok := r.cached(ctx, roundID); ok {
		return round, nil
	}

	result, err, _ := r.sf.Do(roundID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if round, ok := r.cached(ctx, roundID); ok {
			return round, nil
		}

		round, err := r.loader.LoadRound(ctx, roundID)
		if err != nil {
			return domain.Round{}, err
		}

		raw, err := json.Marshal(round)
		if err != nil {
			return round, nil
		}
		if err := r.client.Set(ctx, r.key(roundID), raw, r.ttlWithJitter()).Err(); err != nil {
			r.log.Warn().Err(err).Str("round", roundID).Msg("round cache write failed")
		}
		return round, nil
	})
	if err != nil {
		return domain.Round{}, err
	}
	return result.(domain.Round), nil
}

// ListRounds delegates to the loader; the list is not cached.
func (r *RoundCache) ListRounds(ctx context.Context) ([]domain.RoundMetadata, error) {
	if lister, ok := r.loader.(memory.RoundLister); ok {
		return lister.ListRounds(ctx)
	}
	return nil, nil
}

// Invalidate drops a cached round.
func (r *RoundCache) Invalidate(ctx context.Context, roundID string) error {
	return r.client.Del(ctx, r.key(roundID)).Err()
}

func (r *RoundCache) cached(ctx context.Context, roundID string) (domain.Round, bool) {
	raw, err := r.client.Get(ctx, r.key(roundID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn().Err(err).Str("round", roundID).Msg("round cache read failed")
		}
		return domain.Round{}, false
	}
	var round domain.Round
	if err := json.Unmarshal(raw, &round); err != nil {
		return domain.Round{}, false
	}
	return round, true
}

func (r *RoundCache) key(roundID string) string {
	return "board:round:" + roundID
}

func (r *RoundCache) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
