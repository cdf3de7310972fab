package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/last-man-standing/internal/domain/pick"
)

type PickRepository struct {
	mu    sync.RWMutex
	items map[pick.Key]pick.Pick
}

func NewPickRepository(picks ...pick.Pick) *PickRepository {
	items := make(map[pick.Key]pick.Pick, len(picks))
	for _, p := range picks {
		items[p.Key()] = p
	}
	return &PickRepository{items: items}
}

func (r *PickRepository) CreateIfAbsent(_ context.Context, item pick.Pick) (pick.Pick, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[item.Key()]; ok {
		return existing, false, nil
	}
	if item.Cycle < 1 {
		item.Cycle = 1
	}
	r.items[item.Key()] = item
	return item, true, nil
}

func (r *PickRepository) GetByPlayerAndRound(_ context.Context, playerID string, round int) (pick.Pick, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[pick.Key{PlayerID: playerID, Round: round}]
	return item, ok, nil
}

func (r *PickRepository) ListByRound(_ context.Context, round int) ([]pick.Pick, error) {
	return r.filter(func(p pick.Pick) bool { return p.Round == round }), nil
}

func (r *PickRepository) ListByPlayer(_ context.Context, playerID string) ([]pick.Pick, error) {
	return r.filter(func(p pick.Pick) bool { return p.PlayerID == playerID }), nil
}

func (r *PickRepository) Delete(_ context.Context, pickID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, item := range r.items {
		if item.ID == pickID {
			delete(r.items, key)
		}
	}
	return nil
}

func (r *PickRepository) DeleteByRound(_ context.Context, round int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for key := range r.items {
		if key.Round == round {
			delete(r.items, key)
			deleted++
		}
	}
	return deleted, nil
}

func (r *PickRepository) filter(keep func(pick.Pick) bool) []pick.Pick {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0)
	for _, item := range r.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}
