package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/last-man-standing/internal/domain/pool"
)

type SettingsRepository struct {
	mu       sync.RWMutex
	settings pool.Settings
	stored   bool
}

func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

func (r *SettingsRepository) Get(_ context.Context) (pool.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.stored {
		return pool.DefaultSettings(time.Time{}), nil
	}
	return r.settings, nil
}

func (r *SettingsRepository) CompareAndSwap(_ context.Context, expectedVersion int64, next pool.Settings) (pool.Settings, error) {
	if err := next.Validate(); err != nil {
		return pool.Settings{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.settings.Version != expectedVersion {
		return pool.Settings{}, pool.ErrVersionConflict
	}
	next.Version = expectedVersion + 1
	r.settings = next
	r.stored = true
	return next, nil
}
