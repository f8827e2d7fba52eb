package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"jeopardy-board/internal/domain"
)

// RoundLoader fetches round content from a backing source (database, bundled files).
type RoundLoader interface {
	LoadRound(ctx context.Context, roundID string) (domain.Round, error)
}

// RoundLister is implemented by loaders that can enumerate rounds.
type RoundLister interface {
	ListRounds(ctx context.Context) ([]domain.RoundMetadata, error)
}

// RoundCache caches rounds with TTL to avoid repeated loads.
type RoundCache struct {
	loader RoundLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedRound
}

type cachedRound struct {
	round     domain.Round
	expiresAt time.Time
}

func NewRoundCache(loader RoundLoader, ttl time.Duration) *RoundCache {
	return &RoundCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedRound),
	}
}

func (r *RoundCache) GetRound(ctx context.Context, roundID string) (domain.Round, error) {
	if round, ok := r.lookup(roundID); ok {
		return round, nil
	}

	result, err, _ := r.sf.Do(roundID, func() (interface{}, error) {
		if round, ok := r.lookup(roundID); ok {
			return round, nil
		}

		round, err := r.loader.LoadRound(ctx, roundID)
		if err != nil {
			return domain.Round{}, err
		}

		r.mu.Lock()
		r.cache[roundID] = cachedRound{
			round:     round,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return round, nil
	})
	if err != nil {
		return domain.Round{}, err
	}
	return result.(domain.Round), nil
}

// ListRounds is not cached; listing is rare and must see new rounds.
func (r *RoundCache) ListRounds(ctx context.Context) ([]domain.RoundMetadata, error) {
	if lister, ok := r.loader.(RoundLister); ok {
		return lister.ListRounds(ctx)
	}
	return nil, nil
}

// Invalidate drops a cached round.
func (r *RoundCache) Invalidate(roundID string) {
	r.mu.Lock()
	delete(r.cache, roundID)
	r.mu.Unlock()
}

func (r *RoundCache) lookup(roundID string) (domain.Round, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[roundID]; ok && entry.expiresAt.After(now) {
		return entry.round, true
	}
	return domain.Round{}, false
}

func (r *RoundCache) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticRoundLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticRoundLoader struct {
	rounds map[string]domain.Round
}

func NewStaticRoundLoader(rounds map[string]domain.Round) *StaticRoundLoader {
	return &StaticRoundLoader{rounds: rounds}
}

func (l *StaticRoundLoader) LoadRound(_ context.Context, roundID string) (domain.Round, error) {
	if round, ok := l.rounds[roundID]; ok {
		return round, nil
	}
	return domain.Round{}, domain.ErrRoundNotFound
}

func (l *StaticRoundLoader) ListRounds(_ context.Context) ([]domain.RoundMetadata, error) {
	out := make([]domain.RoundMetadata, 0, len(l.rounds))
	for id, round := range l.rounds {
		meta := domain.RoundMetadata{ID: id, Name: round.Name}
		for _, cat := range round.Categories {
			meta.Categories = append(meta.Categories, cat.Name)
			if meta.Language == "" {
				meta.Language = cat.Lang
			}
		}
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
