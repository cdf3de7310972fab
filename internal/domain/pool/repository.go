package pool

import "context"

// SettingsRepository stores the singleton pool settings. Get returns defaults when
// nothing was stored yet. CompareAndSwap follows player.Repository semantics.
type SettingsRepository interface {
	Get(ctx context.Context) (Settings, error)
	CompareAndSwap(ctx context.Context, expectedVersion int64, next Settings) (Settings, error)
}
