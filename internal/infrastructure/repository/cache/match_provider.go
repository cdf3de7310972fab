package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/last-man-standing/internal/domain/match"
	basecache "github.com/riskibarqy/last-man-standing/internal/platform/cache"
	"github.com/riskibarqy/last-man-standing/internal/platform/logging"
)

const (
	roundKeyPrefix = "match:round:"
	scheduledKey   = "match:scheduled"
)

// MatchProvider caches provider responses and keeps serving the last good
// response, marked stale, while the provider fails.
type MatchProvider struct {
	next   match.Provider
	cache  *basecache.Store
	logger *logging.Logger
	now    func() time.Time
}

func NewMatchProvider(next match.Provider, cache *basecache.Store, logger *logging.Logger) *MatchProvider {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchProvider{next: next, cache: cache, logger: logger, now: time.Now}
}

type cachedMatches struct {
	items     []match.Match
	fetchedAt time.Time
}

func (p *MatchProvider) RoundSnapshot(ctx context.Context, round int) (match.Snapshot, error) {
	key := roundKeyPrefix + strconv.Itoa(round)
	cached, stale, err := p.load(ctx, key, func(ctx context.Context) ([]match.Match, error) {
		return p.next.MatchesByRound(ctx, round)
	})
	if err != nil {
		return match.Snapshot{}, errors.Wrapf(err, "no snapshot for round %d", round)
	}
	if stale {
		p.logger.WarnContext(ctx, "match provider unavailable, serving stale round snapshot",
			"round", round,
			"fetched_at", cached.fetchedAt,
		)
	}

	return match.Snapshot{
		Round:     round,
		Matches:   cloneMatches(cached.items),
		FetchedAt: cached.fetchedAt,
		Stale:     stale,
	}, nil
}

func (p *MatchProvider) MatchesByRound(ctx context.Context, round int) ([]match.Match, error) {
	snapshot, err := p.RoundSnapshot(ctx, round)
	if err != nil {
		return nil, err
	}
	return snapshot.Matches, nil
}

func (p *MatchProvider) ScheduledMatches(ctx context.Context) ([]match.Match, error) {
	cached, stale, err := p.load(ctx, scheduledKey, p.next.ScheduledMatches)
	if err != nil {
		return nil, errors.Wrap(err, "no snapshot for scheduled matches")
	}
	if stale {
		p.logger.WarnContext(ctx, "match provider unavailable, serving stale schedule",
			"fetched_at", cached.fetchedAt,
		)
	}
	return cloneMatches(cached.items), nil
}

// Invalidate forces the next read of round and of the schedule to go to the
// provider. The previous snapshots stay as the fallback if that read fails.
func (p *MatchProvider) Invalidate(ctx context.Context, round int) {
	p.cache.Expire(ctx, roundKeyPrefix+strconv.Itoa(round))
	p.cache.Expire(ctx, scheduledKey)
}

func (p *MatchProvider) load(
	ctx context.Context,
	key string,
	fetch func(context.Context) ([]match.Match, error),
) (cachedMatches, bool, error) {
	v, stale, err := p.cache.GetOrLoadStale(ctx, key, func(ctx context.Context) (any, error) {
		items, err := fetch(ctx)
		if err != nil {
			p.logger.WarnContext(ctx, "match provider request failed", "cache_key", key, "error", err)
			return nil, err
		}
		return cachedMatches{items: cloneMatches(items), fetchedAt: p.now().UTC()}, nil
	})
	if err != nil {
		return cachedMatches{}, false, err
	}

	cached, ok := v.(cachedMatches)
	if !ok {
		return cachedMatches{}, false, errors.Newf("unexpected cached value %T for %s", v, key)
	}
	return cached, stale, nil
}

func cloneMatches(items []match.Match) []match.Match {
	out := make([]match.Match, 0, len(items))
	for _, m := range items {
		if m.Score != nil {
			score := *m.Score
			m.Score = &score
		}
		out = append(out, m)
	}
	return out
}
