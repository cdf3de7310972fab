package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/last-man-standing/internal/domain/player"
)

type PlayerRepository struct {
	mu    sync.RWMutex
	items map[string]player.Player
}

func NewPlayerRepository(players ...player.Player) *PlayerRepository {
	items := make(map[string]player.Player, len(players))
	for _, p := range players {
		if p.Version == 0 {
			p.Version = 1
		}
		items[p.ID] = p.Clone()
	}
	return &PlayerRepository{items: items}
}

func (r *PlayerRepository) Get(_ context.Context, playerID string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[playerID]
	if !ok {
		return player.Player{}, false, nil
	}
	return item.Clone(), true, nil
}

func (r *PlayerRepository) List(_ context.Context) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PlayerRepository) Create(_ context.Context, item player.Player) (player.Player, bool, error) {
	if err := item.Validate(); err != nil {
		return player.Player{}, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[item.ID]; ok {
		return existing.Clone(), false, nil
	}
	item = item.Clone()
	item.Version = 1
	r.items[item.ID] = item
	return item.Clone(), true, nil
}

func (r *PlayerRepository) CompareAndSwap(_ context.Context, expectedVersion int64, next player.Player) (player.Player, error) {
	if err := next.Validate(); err != nil {
		return player.Player{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[next.ID]
	if !ok || current.Version != expectedVersion {
		return player.Player{}, player.ErrVersionConflict
	}
	next = next.Clone()
	next.Version = expectedVersion + 1
	next.CreatedAt = current.CreatedAt
	r.items[next.ID] = next
	return next.Clone(), nil
}
